package mesh

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/knowrobco/neemsim/pkg/logger"
)

// DefaultDataLink is the public NEEM data repository serving meshes and
// URDF models as directory index pages.
const DefaultDataLink = "https://neem-data.informatik.uni-bremen.de/data/"

// defaultMeshFolders are the repository folders known to hold object
// meshes. Searching starts there before falling back to a full crawl.
var defaultMeshFolders = []string{
	"pouring_hands_neem/meshes/",
	"kitchen_object_meshes/",
	"bielefeld_study_neem/meshes/",
}

// defaultSkipFolders are repository subtrees never worth crawling.
var defaultSkipFolders = []string{"refills_models"}

// Repository searches an HTTP directory index for files with names
// similar to a query.
type Repository struct {
	baseURL     string
	startIn     []string
	skipFolders []string
	hc          *http.Client
	log         *slog.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithStartFolders sets folder URLs searched before the repository
// root.
func WithStartFolders(folders ...string) RepositoryOption {
	return func(r *Repository) { r.startIn = folders }
}

// WithSkipFolders sets name fragments of folders excluded from the
// crawl.
func WithSkipFolders(folders ...string) RepositoryOption {
	return func(r *Repository) { r.skipFolders = folders }
}

// WithRepositoryClient sets the HTTP client used for index pages.
func WithRepositoryClient(hc *http.Client) RepositoryOption {
	return func(r *Repository) { r.hc = hc }
}

// WithRepositoryLogger sets the repository logger.
func WithRepositoryLogger(log *slog.Logger) RepositoryOption {
	return func(r *Repository) { r.log = log }
}

// NewRepository creates a searcher over the index at baseURL.
func NewRepository(baseURL string, opts ...RepositoryOption) *Repository {
	r := &Repository{
		baseURL:     baseURL,
		skipFolders: defaultSkipFolders,
		hc:          &http.Client{Timeout: 10 * time.Second},
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindFirst crawls the repository depth-first and returns the URL of
// the first file whose name contains any of the queries,
// case-insensitively. Files matching an ignore fragment are skipped.
// It returns ErrNoDescription when nothing matches.
func (r *Repository) FindFirst(ctx context.Context, queries []string, ignore []string) (string, error) {
	if len(queries) == 0 {
		return "", fmt.Errorf("no queries: %w", ErrNoDescription)
	}

	lowered := make([]string, len(queries))
	for i, q := range queries {
		lowered[i] = strings.ToLower(q)
	}

	stack := append([]string{r.baseURL}, r.startIn...)
	seen := make(map[string]bool)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		folder := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[folder] {
			continue
		}
		seen[folder] = true

		links, err := r.links(ctx, folder)
		if err != nil {
			r.log.Warn("skipping unreadable repository folder", "folder", folder, "error", err)
			continue
		}

	link:
		for _, link := range links {
			for _, skip := range r.skipFolders {
				if strings.Contains(link, skip) {
					continue link
				}
			}
			if strings.HasSuffix(link, "/") {
				stack = append(stack, link)
				continue
			}
			lower := strings.ToLower(link)
			for _, ig := range ignore {
				if strings.Contains(lower, strings.ToLower(ig)) {
					continue link
				}
			}
			for _, q := range lowered {
				if strings.Contains(lower, q) {
					return link, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no file matching %v: %w", queries, ErrNoDescription)
}

// links fetches a directory index page and returns the child links it
// references, absolute and strictly below pageURL.
func (r *Repository) links(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", pageURL, err)
	}

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref).String()
				if strings.HasPrefix(abs, pageURL) && abs != pageURL {
					out = append(out, abs)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return out, nil
}
