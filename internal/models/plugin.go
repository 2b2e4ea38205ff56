package models

import "time"

// PluginManifest represents the manifest.json structure shared by the
// admin and api bundles of a plugin package.
type PluginManifest struct {
	Name            string           `json:"name"`
	PluginID        string           `json:"pluginId"`
	Version         string           `json:"version"`
	Description     string           `json:"description"`
	Author          string           `json:"author"`
	Main            string           `json:"main"`
	Icon            string           `json:"icon,omitempty"`
	ExtensionPoints []ExtensionPoint `json:"extensionPoints,omitempty"`
}

// ExtensionPoint describes a route the admin UI registers for a plugin.
type ExtensionPoint struct {
	PluginID  string `json:"pluginId"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Exact     bool   `json:"exact"`
}

// InstalledPlugin is the read-time projection of a plugin directory on the
// admin file store. The file store is the source of truth; timestamps are
// assembled when the plugin is read, not persisted alongside it.
type InstalledPlugin struct {
	PluginID    string          `json:"pluginId"`
	Manifest    *PluginManifest `json:"manifest"`
	InstalledAt time.Time       `json:"installedAt"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// PluginInfoFile maps the optional info.json shipped inside a plugin.
type PluginInfoFile struct {
	Homepage    string           `json:"homepage,omitempty"`
	License     string           `json:"license,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Screenshots []string         `json:"screenshots,omitempty"`
	Features    []string         `json:"features,omitempty"`
	Changelog   []ChangelogEntry `json:"changelog,omitempty"`
}

// ChangelogEntry is a single release note inside info.json.
type ChangelogEntry struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Changes []string `json:"changes"`
}

// PluginDetails is the full projection served to the plugin store UI,
// assembled from manifest.json, info.json and README.md.
type PluginDetails struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Author      string           `json:"author"`
	Version     string           `json:"version"`
	Icon        string           `json:"icon"`
	Homepage    string           `json:"homepage"`
	License     string           `json:"license"`
	Tags        []string         `json:"tags"`
	Readme      string           `json:"readme"`
	Screenshots []string         `json:"screenshots"`
	Features    []string         `json:"features"`
	Changelog   []ChangelogEntry `json:"changelog"`
}

// ZipStructure describes the layout of an uploaded plugin archive after
// validation. Admin file contents are materialized into AdminFiles keyed
// by path with the "admin/" prefix stripped; api files are listed by name
// only, their contents travel to the server inside the raw archive.
type ZipStructure struct {
	HasAdminFolder bool            `json:"hasAdminFolder"`
	HasAPIFolder   bool            `json:"hasApiFolder"`
	AdminManifest  *PluginManifest `json:"adminManifest,omitempty"`
	APIManifest    *PluginManifest `json:"apiManifest,omitempty"`
	PluginID       string          `json:"pluginId"`
	AdminFiles     map[string]string
	APIFiles       []string `json:"apiFiles,omitempty"`
}

// ValidationResult is the outcome of validating a plugin file set.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Error    string          `json:"error,omitempty"`
	Manifest *PluginManifest `json:"manifest,omitempty"`
}

// InstallResult reports the outcome of a plugin installation. A failed
// install carries Success=false and a human-readable Error; callers that
// care about partial progress inspect InstalledComponents.
type InstallResult struct {
	Success             bool            `json:"success"`
	PluginID            string          `json:"pluginId"`
	Path                string          `json:"path,omitempty"`
	FilesWritten        int             `json:"filesWritten"`
	WrittenFiles        []string        `json:"writtenFiles,omitempty"`
	Manifest            *PluginManifest `json:"manifest,omitempty"`
	InstalledComponents []string        `json:"installedComponents,omitempty"`
	Error               string          `json:"error,omitempty"`
}

// HealthStatus is returned by the plugin file service health check.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
