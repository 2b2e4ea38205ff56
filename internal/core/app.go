package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/config"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/db"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/filerepo"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/websocket"
	"github.com/PalisadoesFoundation/talawa-plugin-host/migrations"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	WsHub   *websocket.Hub
	Version string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database, migrations.FS); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		Config: cfg,
		DB:     database,
		WsHub:  websocket.NewHub(),
	}, nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// NewFileRepository builds the plugin file repository for the configured
// environment: "direct" talks to the local filesystem, "bridge" posts
// file operations to the configured bridge endpoint.
func (a *App) NewFileRepository() *filerepo.Repository {
	var backend filerepo.Backend
	if a.Config.Environment == "bridge" {
		backend = filerepo.NewBridgeBackend(a.Config.Bridge.Endpoint)
	} else {
		backend = filerepo.NewDirectBackend()
	}
	return filerepo.New(backend, a.Config.Plugins.Path)
}
