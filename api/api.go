package api

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/knowrobco/neemsim/pkg/neemquery"
)

// Server is the API server for browsing episodes and their recorded data.
type Server struct {
	config Config
	iface  *neemquery.Interface
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The interface is injected to allow sharing the database connection with
// other components (e.g., a replay running in the same process).
func NewServer(config Config, iface *neemquery.Interface, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		iface:  iface,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/episodes", s.handleListEpisodes)
	app.Get("/episodes/:id/tasks", s.handleEpisodeTasks)
	app.Get("/episodes/:id/plan", s.handleEpisodePlan)
	app.Get("/episodes/:id/motion", s.handleEpisodeMotion)

	return s
}

// Mount attaches an HTTP handler under the given path prefix (e.g. the
// MCP streamable handler at /mcp).
func (s *Server) Mount(prefix string, h http.Handler) {
	s.app.All(prefix+"*", adaptor.HTTPHandler(h))
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Test dispatches a request against the app without a network listener.
// It exposes fiber's testing hook for the server's own specs.
func (s *Server) Test(req *http.Request) (*http.Response, error) {
	return s.app.Test(req)
}
