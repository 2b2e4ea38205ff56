package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

const defaultPluginIcon = "/images/logo512.png"

// PluginDetails assembles the full store-page projection for a plugin
// from its manifest, optional info.json and optional README.md. Returns
// nil when the plugin cannot be read or carries no manifest.
func (s *Service) PluginDetails(ctx context.Context, pluginID string) *models.PluginDetails {
	files, manifest, err := s.repo.ReadPluginFiles(ctx, pluginID)
	if err != nil {
		log.Printf("Failed to read plugin files for %s: %v", pluginID, err)
		return nil
	}
	if manifest == nil {
		log.Printf("No manifest found for plugin %s", pluginID)
		return nil
	}

	var info models.PluginInfoFile
	if raw, ok := files["info.json"]; ok {
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			log.Printf("Failed to parse info.json for plugin %s: %v", pluginID, err)
		}
	}

	readme := files["README.md"]

	features := info.Features
	if len(features) == 0 && readme != "" {
		features = ExtractReadmeFeatures(readme)
	}
	if features == nil {
		features = []string{}
	}

	// Screenshot paths inside the plugin's assets directory are rewritten
	// to absolute plugin-asset URLs; anything else passes through.
	screenshots := make([]string, 0, len(info.Screenshots))
	for _, screenshot := range info.Screenshots {
		if strings.HasPrefix(screenshot, "assets/") {
			screenshots = append(screenshots, fmt.Sprintf("%s/%s/%s", s.assetBaseURL, pluginID, screenshot))
		} else {
			screenshots = append(screenshots, screenshot)
		}
	}

	details := &models.PluginDetails{
		ID:          manifest.PluginID,
		Name:        manifest.Name,
		Description: manifest.Description,
		Author:      manifest.Author,
		Version:     manifest.Version,
		Icon:        manifest.Icon,
		Homepage:    info.Homepage,
		License:     info.License,
		Tags:        info.Tags,
		Readme:      readme,
		Screenshots: screenshots,
		Features:    features,
		Changelog:   info.Changelog,
	}

	if details.ID == "" {
		details.ID = pluginID
	}
	if details.Name == "" {
		details.Name = pluginID
	}
	if details.Description == "" {
		details.Description = "No description available"
	}
	if details.Author == "" {
		details.Author = "Unknown"
	}
	if details.Version == "" {
		details.Version = "1.0.0"
	}
	if details.Icon == "" {
		details.Icon = defaultPluginIcon
	}
	if details.License == "" {
		details.License = "MIT"
	}
	if details.Tags == nil {
		details.Tags = []string{}
	}
	if details.Changelog == nil {
		details.Changelog = []models.ChangelogEntry{}
	}

	return details
}

// ExtractReadmeFeatures pulls feature bullets out of a README: the lines
// after the literal "Features:" marker that start with "-", dash
// stripped. This is a best-effort text heuristic, not a markdown parser.
func ExtractReadmeFeatures(readme string) []string {
	_, section, found := strings.Cut(readme, "Features:")
	if !found {
		return []string{}
	}

	features := []string{}
	for _, line := range strings.Split(section, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "-") {
			continue
		}
		features = append(features, strings.TrimSpace(strings.Replace(line, "-", "", 1)))
	}
	return features
}
