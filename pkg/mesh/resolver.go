package mesh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
)

// downloadConfirmTimeout bounds the wait for a downloaded file to show
// up in the data directory.
const downloadConfirmTimeout = 5 * time.Second

// Resolver implements description resolution against local data
// directories and the online NEEM data repository. It satisfies
// replay.Describer.
type Resolver struct {
	dataDirs []string
	dataLink string
	repo     *Repository
	hc       *http.Client
	log      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDataDirs sets the local directories searched for description
// files. Downloads land in the first one.
func WithDataDirs(dirs ...string) Option {
	return func(r *Resolver) { r.dataDirs = dirs }
}

// WithDataLink sets the online data repository URL.
func WithDataLink(link string) Option {
	return func(r *Resolver) { r.dataLink = link }
}

// WithRepository sets the repository searcher. Overrides the one built
// from the data link.
func WithRepository(repo *Repository) Option {
	return func(r *Resolver) { r.repo = repo }
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.hc = hc }
}

// WithLogger sets the resolver logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a resolver over the given data directories and
// the public NEEM data repository.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		dataLink: DefaultDataLink,
		hc:       &http.Client{Timeout: 30 * time.Second},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.repo == nil {
		folders := make([]string, len(defaultMeshFolders))
		for i, f := range defaultMeshFolders {
			folders[i] = r.dataLink + f
		}
		r.repo = NewRepository(r.dataLink,
			WithStartFolders(folders...),
			WithRepositoryClient(r.hc),
			WithRepositoryLogger(r.log),
		)
	}

	return r
}

// DescribeEnvironment returns the URDF for a recorded environment.
func (r *Resolver) DescribeEnvironment(_ context.Context, environment string) (string, error) {
	return EnvironmentDescription(environment)
}

// DescribePerformer returns the URDF for a known robot performer.
func (r *Resolver) DescribePerformer(_ context.Context, performer string) (string, error) {
	return PerformerDescription(performer)
}

// DescribeParticipant resolves a participant to a mesh file. Sources
// are tried in order: local data directories, the mesh path recorded in
// the episode, the online repository, and finally a same-shape
// stand-in. A NIL participant resolves to no description without error.
func (r *Resolver) DescribeParticipant(ctx context.Context, participant string, res *neem.Result) (string, error) {
	candidates := NameCandidates(participant)
	if len(candidates) == 0 {
		return "", fmt.Errorf("participant %q has no usable name: %w", participant, ErrNoDescription)
	}

	if IsNilParticipant(participant) {
		return "", nil
	}

	if found := r.findInDataDirs(candidates); found != "" {
		return found, nil
	}

	if link := r.MeshLink(participant, res); link != "" {
		downloaded, err := r.download(ctx, link)
		if err == nil {
			return downloaded, nil
		}
		r.log.Warn("recorded mesh link unusable", "participant", participant, "link", link, "error", err)
	}

	link, err := r.repo.FindFirst(ctx, candidates, []string{".mtl"})
	if err == nil {
		downloaded, derr := r.download(ctx, link)
		if derr == nil {
			return downloaded, nil
		}
		r.log.Warn("repository mesh unusable", "participant", participant, "link", link, "error", derr)
	} else if !errors.Is(err, ErrNoDescription) {
		return "", err
	}

	return ShapeFallback(participant)
}

// MeshLink returns the downloadable mesh URL recorded for a
// participant, or "" when the episode carries none. ROS package paths
// are rewritten against the data repository.
func (r *Resolver) MeshLink(participant string, res *neem.Result) string {
	if res == nil {
		return ""
	}

	for _, meshPath := range res.FilterByParticipant(participant).Strings(neem.ColObjectMeshPath, true) {
		if meshPath == "" {
			continue
		}
		if strings.Contains(meshPath, "package:/") {
			return strings.Replace(meshPath, "package:/", r.dataLink, 1)
		}
		return meshPath
	}

	return ""
}

// findInDataDirs returns the first file in the data directories whose
// name contains a candidate.
func (r *Resolver) findInDataDirs(candidates []string) string {
	for _, dir := range r.dataDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			r.log.Warn("skipping unreadable data directory", "dir", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			for _, candidate := range candidates {
				if strings.Contains(entry.Name(), candidate) {
					return filepath.Join(dir, entry.Name())
				}
			}
		}
	}
	return ""
}

// download fetches fileLink into the first data directory and waits for
// the file to arrive on disk before returning its path.
func (r *Resolver) download(ctx context.Context, fileLink string) (string, error) {
	if len(r.dataDirs) == 0 {
		return "", errors.New("mesh: no data directories configured")
	}

	dir := r.dataDirs[0]
	target := filepath.Join(dir, path.Base(fileLink))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("mesh: watching data dir: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return "", fmt.Errorf("mesh: watching data dir %q: %w", dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileLink, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("mesh: downloading %s: %w", fileLink, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mesh: downloading %s: status %d", fileLink, resp.StatusCode)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("mesh: writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := r.awaitFile(ctx, watcher, target); err != nil {
		return "", err
	}

	r.log.Debug("downloaded description", "link", fileLink, "path", target)
	return target, nil
}

// awaitFile blocks until target is visible on disk, confirmed either by
// a watcher event or a successful stat.
func (r *Resolver) awaitFile(ctx context.Context, watcher *fsnotify.Watcher, target string) error {
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	deadline := time.NewTimer(downloadConfirmTimeout)
	defer deadline.Stop()

	for {
		select {
		case event := <-watcher.Events:
			if event.Name == target && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				return nil
			}
		case err := <-watcher.Errors:
			return fmt.Errorf("mesh: waiting for %s: %w", target, err)
		case <-deadline.C:
			if _, err := os.Stat(target); err == nil {
				return nil
			}
			return fmt.Errorf("mesh: file %s did not arrive", target)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
