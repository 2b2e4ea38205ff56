package plugin

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

// Plugin IDs get prefixed onto generated API operation names, where
// hyphens are not legal identifier characters.
var pluginIDPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

const (
	pluginIDMinLength = 3
	pluginIDMaxLength = 50
)

// isSafePath rejects paths that could escape the plugin directory:
// traversal segments, leading slashes and backslashes.
func isSafePath(path string) bool {
	return !strings.Contains(path, "..") &&
		!strings.HasPrefix(path, "/") &&
		!strings.Contains(path, `\`)
}

// ValidateFiles checks a plugin file set before installation: the set
// must be non-empty, carry a parseable manifest.json with all required
// fields, include the manifest's main file, and use only safe paths.
func ValidateFiles(files map[string]string) models.ValidationResult {
	if len(files) == 0 {
		return models.ValidationResult{Valid: false, Error: "No files provided for installation"}
	}

	raw, ok := files["manifest.json"]
	if !ok {
		return models.ValidationResult{Valid: false, Error: "manifest.json is required"}
	}

	manifest, err := parseManifest(raw)
	if err != nil {
		return models.ValidationResult{Valid: false, Error: "Invalid manifest.json format"}
	}

	if field := missingManifestField(manifest); field != "" {
		return models.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("Missing required field in manifest: %s", field),
		}
	}

	if _, ok := files[manifest.Main]; !ok {
		return models.ValidationResult{
			Valid: false,
			Error: fmt.Sprintf("Main file not found: %s", manifest.Main),
		}
	}

	// Sorted so the reported path is deterministic.
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if !isSafePath(path) {
			return models.ValidationResult{
				Valid: false,
				Error: fmt.Sprintf("Invalid file path: %s", path),
			}
		}
	}

	return models.ValidationResult{Valid: true, Manifest: manifest}
}

// ValidateID checks a plugin identifier against the naming rule
// ^[a-zA-Z][a-zA-Z0-9_]*$ with length between 3 and 50 characters.
func ValidateID(pluginID string) error {
	if pluginID == "" {
		return errors.New("Plugin ID is required")
	}
	if !pluginIDPattern.MatchString(pluginID) {
		return errors.New("Plugin ID must start with a letter and contain only letters, numbers, and underscores (no hyphens)")
	}
	if len(pluginID) < pluginIDMinLength || len(pluginID) > pluginIDMaxLength {
		return fmt.Errorf("Plugin ID must be between %d and %d characters", pluginIDMinLength, pluginIDMaxLength)
	}
	return nil
}
