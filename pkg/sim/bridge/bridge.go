// Package bridge implements sim.Simulator against a remote simulation
// process over its HTTP bridge. The bridge exposes the scene as a small
// JSON resource tree: objects under /objects, attachments under
// /attachments.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/sim"
)

const defaultTimeout = 10 * time.Second

// Client talks to a simulation bridge.
type Client struct {
	target string
	hc     *http.Client
	log    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the bridge at target, e.g.
// "http://localhost:9000".
func New(target string, opts ...Option) *Client {
	c := &Client{
		target: strings.TrimRight(target, "/"),
		hc:     &http.Client{Timeout: defaultTimeout},
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type attachment struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type poseBody struct {
	Pose neem.Pose `json:"pose"`
}

// Spawn adds an object to the remote scene.
func (c *Client) Spawn(ctx context.Context, obj sim.Object) error {
	return c.do(ctx, http.MethodPost, "/objects", obj, nil)
}

// SetPose moves an object in the remote scene.
func (c *Client) SetPose(ctx context.Context, name string, pose neem.Pose) error {
	return c.do(ctx, http.MethodPut, "/objects/"+url.PathEscape(name)+"/pose", poseBody{Pose: pose}, nil)
}

// Pose returns the current pose of a remote object.
func (c *Client) Pose(ctx context.Context, name string) (neem.Pose, error) {
	var body poseBody
	if err := c.do(ctx, http.MethodGet, "/objects/"+url.PathEscape(name)+"/pose", nil, &body); err != nil {
		return neem.Pose{}, err
	}
	return body.Pose, nil
}

// Attach fixes child to parent in the remote scene.
func (c *Client) Attach(ctx context.Context, parent, child string) error {
	return c.do(ctx, http.MethodPost, "/attachments", attachment{Parent: parent, Child: child}, nil)
}

// Detach releases a child in the remote scene.
func (c *Client) Detach(ctx context.Context, child string) error {
	return c.do(ctx, http.MethodDelete, "/attachments/"+url.PathEscape(child), nil, nil)
}

// Remove deletes an object from the remote scene.
func (c *Client) Remove(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/objects/"+url.PathEscape(name), nil, nil)
}

// Objects lists the remote scene contents.
func (c *Client) Objects(ctx context.Context) ([]sim.Object, error) {
	var out []sim.Object
	if err := c.do(ctx, http.MethodGet, "/objects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close is a no-op; the bridge owns the scene lifecycle.
func (c *Client) Close() error { return nil }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("bridge: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.target+path, body)
	if err != nil {
		return fmt.Errorf("bridge: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("bridge request", "method", method, "path", path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sim.ErrObjectNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bridge: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("bridge: decode response: %w", err)
		}
	}

	return nil
}
