// A NEW file to hold a shared test server setup utility, which simplifies all API tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/api"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/config"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/core"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/websocket"
)

// SetupTestApp builds a core.App over an in-memory database with the
// plugin store rooted in a per-test temporary directory.
func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Environment = "direct"
	cfg.Plugins.Path = t.TempDir()
	cfg.Plugins.AssetBaseURL = "/src/plugin/available"

	hub := websocket.NewHub()
	go hub.Run()

	return &core.App{
		Config:  cfg,
		DB:      db,
		WsHub:   hub,
		Version: "test",
	}
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB
}
