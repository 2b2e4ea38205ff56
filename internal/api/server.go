// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/core"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/graphql"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/plugin"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/store"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/websocket"
)

// Server holds the dependencies for our API.
type Server struct {
	app       *core.App
	db        *sql.DB
	store     *store.Store
	service   *plugin.Service
	installer *plugin.Installer

	// bridgeBackend serves the file bridge endpoint. It is always a
	// direct backend: the bridge exists so a *remote* host can reach
	// this process's filesystem.
	bridgeBackend filerepo.Backend
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Service returns the plugin file service.
func (s *Server) Service() *plugin.Service {
	return s.service
}

// SetInstaller replaces the installer for testing purposes
func (s *Server) SetInstaller(installer *plugin.Installer) {
	s.installer = installer
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	repo := app.NewFileRepository()
	service := plugin.NewService(repo, app.Config.Plugins.AssetBaseURL)
	executor := graphql.NewClient(app.Config.API.Endpoint)
	installer := plugin.NewInstaller(service, executor, app.WsHub)

	return &Server{
		app:           app,
		db:            app.DB,
		store:         store.New(app.DB),
		service:       service,
		installer:     installer,
		bridgeBackend: filerepo.NewDirectBackend(),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/health", s.handleHealth)

	r.Route("/api/plugins", func(r chi.Router) {
		r.Get("/", s.handleListPlugins)
		r.Post("/install", s.handleInstallPlugin)
		r.Get("/health", s.handlePluginHealth)
		r.Get("/{pluginID}", s.handleGetPlugin)
		r.Get("/{pluginID}/details", s.handleGetPluginDetails)
		r.Delete("/{pluginID}", s.handleRemovePlugin)
	})

	r.Get("/api/registry", s.handleGetRegistry)

	// File bridge for remote admin hosts without filesystem access.
	r.Post("/internal/file-bridge", s.handleFileBridge)

	// Install progress events.
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.app.WsHub, w, r)
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		RespondWithError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
