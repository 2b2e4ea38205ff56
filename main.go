package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/api"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/core"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/jobs"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/plugin"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/store"
)

var version = "dev"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()
	app.Version = version

	// Start the websocket hub for install progress events.
	go app.WsHub.Run()

	// Wire the plugin file service over the configured backend.
	repo := app.NewFileRepository()
	if err := repo.Initialize(context.Background()); err != nil {
		log.Fatalf("Could not initialize plugin file store: %v", err)
	}
	service := plugin.NewService(repo, app.Config.Plugins.AssetBaseURL)
	plugin.SetDefault(service)

	st := store.New(app.DB)

	// Reconcile the registry with whatever is already on disk.
	if err := plugin.SyncRegistry(context.Background(), service, st); err != nil {
		log.Printf("Warning: initial registry sync failed: %v", err)
	}

	// Watch the plugin store for out-of-band changes (manual plugin
	// drops, deletions) and re-sync when they happen. The watcher needs
	// direct filesystem access, so it only runs in direct environments.
	if app.Config.Environment == "direct" {
		watcher := plugin.NewWatcherService(repo.BasePath(), func(changedPaths []string) {
			if err := plugin.SyncRegistry(context.Background(), service, st); err != nil {
				log.Printf("Warning: registry sync failed: %v", err)
			}
			app.WsHub.Broadcast([]byte(`{"type":"plugins-changed"}`))
		})
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: could not start plugin store watcher: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	// Start the periodic registry sync job.
	scheduler := jobs.StartJobs(app.Config.SyncInterval, service, st)
	defer scheduler.Stop()

	// Setup the API server
	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting plugin host on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
