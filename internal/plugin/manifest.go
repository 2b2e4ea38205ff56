package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

// requiredManifestFields lists the manifest fields every bundle must
// carry, in the order validation reports them.
var requiredManifestFields = []string{"name", "pluginId", "version", "description", "author", "main"}

// parseManifest decodes a manifest.json document.
func parseManifest(raw string) (*models.PluginManifest, error) {
	var manifest models.PluginManifest
	if err := json.Unmarshal([]byte(raw), &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest.json: %w", err)
	}
	return &manifest, nil
}

// missingManifestField returns the name of the first required field that
// is empty, or "" when the manifest is complete. Fields are checked in
// the fixed order of requiredManifestFields.
func missingManifestField(manifest *models.PluginManifest) string {
	values := map[string]string{
		"name":        manifest.Name,
		"pluginId":    manifest.PluginID,
		"version":     manifest.Version,
		"description": manifest.Description,
		"author":      manifest.Author,
		"main":        manifest.Main,
	}
	for _, field := range requiredManifestFields {
		if values[field] == "" {
			return field
		}
	}
	return ""
}

// validateManifestComplete checks that all required fields are present.
// Both bundle manifests of a plugin package go through this routine.
func validateManifestComplete(manifest *models.PluginManifest) error {
	if field := missingManifestField(manifest); field != "" {
		return fmt.Errorf("manifest missing required field: %s", field)
	}
	return nil
}
