package api

import (
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxUploadSize caps plugin archive uploads at 64 MiB.
const maxUploadSize = 64 << 20

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins := s.service.GetInstalledPlugins(r.Context())
	RespondWithJSON(w, http.StatusOK, plugins)
}

func (s *Server) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	pluginID := chi.URLParam(r, "pluginID")
	installed := s.service.GetPlugin(r.Context(), pluginID)
	if installed == nil {
		RespondWithError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, installed)
}

func (s *Server) handleGetPluginDetails(w http.ResponseWriter, r *http.Request) {
	pluginID := chi.URLParam(r, "pluginID")
	details := s.service.PluginDetails(r.Context(), pluginID)
	if details == nil {
		RespondWithError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, details)
}

func (s *Server) handlePluginHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.service.HealthCheck(r.Context()))
}

// handleInstallPlugin accepts a multipart upload with the plugin archive
// under the "file" field and runs the staged installation. A successful
// install is recorded in the local registry table.
func (s *Server) handleInstallPlugin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Missing plugin zip file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result := s.installer.InstallFromZip(r.Context(), data)
	if !result.Success {
		RespondWithJSON(w, http.StatusBadRequest, result)
		return
	}

	version := ""
	if result.Manifest != nil {
		version = result.Manifest.Version
	}
	components := strings.Join(result.InstalledComponents, ",")
	if err := s.store.CreateOrUpdateInstalledPlugin(result.PluginID, version, components); err != nil {
		// The plugin is installed; a bookkeeping failure is not worth
		// failing the request over.
		log.Printf("Failed to record installed plugin %s: %v", result.PluginID, err)
	}

	RespondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleRemovePlugin(w http.ResponseWriter, r *http.Request) {
	pluginID := chi.URLParam(r, "pluginID")
	if !s.installer.RemovePlugin(r.Context(), pluginID) {
		RespondWithError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	if err := s.store.DeleteInstalledPlugin(pluginID); err != nil {
		log.Printf("Failed to delete registry entry for %s: %v", pluginID, err)
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type registryEntry struct {
	PluginID         string   `json:"pluginId"`
	InstalledVersion string   `json:"installedVersion"`
	Components       []string `json:"components"`
	InstalledAt      string   `json:"installedAt"`
	UpdatedAt        string   `json:"updatedAt"`
}

func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.GetAllInstalledPlugins()
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read plugin registry")
		return
	}

	entries := make([]registryEntry, 0, len(rows))
	for _, row := range rows {
		components := []string{}
		if row.Components != "" {
			components = strings.Split(row.Components, ",")
		}
		entries = append(entries, registryEntry{
			PluginID:         row.PluginID,
			InstalledVersion: row.InstalledVersion,
			Components:       components,
			InstalledAt:      row.InstalledAt.UTC().Format("2006-01-02T15:04:05Z"),
			UpdatedAt:        row.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	RespondWithJSON(w, http.StatusOK, entries)
}
