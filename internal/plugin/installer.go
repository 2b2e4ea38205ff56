package plugin

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/models"
)

// MutationExecutor performs the remote registry mutations an installation
// needs: creating the plugin row and shipping the api bundle. The GraphQL
// client implements it; tests substitute their own.
type MutationExecutor interface {
	CreatePlugin(ctx context.Context, pluginID string) error
	UploadPluginZip(ctx context.Context, zipData []byte, activate bool) (bool, error)
}

// Broadcaster publishes install progress to connected admin sessions.
type Broadcaster interface {
	Broadcast(message []byte)
}

// binaryExtensions lists file extensions whose contents are stored as
// base64 data URIs instead of raw text.
var binaryExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "svg": true,
	"ico": true, "webp": true, "pdf": true, "zip": true, "tar": true,
	"gz": true,
}

func isBinaryPath(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	return binaryExtensions[strings.ToLower(name[idx+1:])]
}

// Installer drives the three-stage installation of an uploaded plugin
// archive: registry creation, api bundle upload, admin materialization.
type Installer struct {
	service     *Service
	executor    MutationExecutor
	broadcaster Broadcaster
}

// NewInstaller creates an Installer. The executor and broadcaster are
// both optional; a nil executor skips the remote stages, a nil
// broadcaster skips progress events.
func NewInstaller(service *Service, executor MutationExecutor, broadcaster Broadcaster) *Installer {
	return &Installer{service: service, executor: executor, broadcaster: broadcaster}
}

type progressEvent struct {
	Type     string `json:"type"`
	PluginID string `json:"pluginId"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

func (inst *Installer) publishProgress(pluginID, stage, message string) {
	if inst.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(progressEvent{
		Type:     "install_progress",
		PluginID: pluginID,
		Stage:    stage,
		Message:  message,
	})
	if err != nil {
		return
	}
	inst.broadcaster.Broadcast(payload)
}

// ValidateZipStructure parses an uploaded archive and checks its layout.
// A valid archive carries an admin/ bundle, an api/ bundle, or both, each
// with a complete manifest.json; when both are present their pluginId
// fields must agree. An archive with neither folder is not an error at
// this stage; InstallFromZip rejects it.
func ValidateZipStructure(data []byte) (*models.ZipStructure, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}

	structure := &models.ZipStructure{
		AdminFiles: map[string]string{},
		APIFiles:   []string{},
	}

	for _, entry := range reader.File {
		name := entry.Name
		if strings.HasPrefix(name, "__MACOSX/") || strings.HasSuffix(name, "/.DS_Store") || name == ".DS_Store" {
			continue
		}

		// Directory entries do not make a bundle present; only files do.
		if entry.FileInfo().IsDir() {
			continue
		}

		switch {
		case strings.HasPrefix(name, "admin/"):
			structure.HasAdminFolder = true
			content, err := readZipEntry(entry)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", name, err)
			}
			structure.AdminFiles[strings.TrimPrefix(name, "admin/")] = content
		case strings.HasPrefix(name, "api/"):
			structure.HasAPIFolder = true
			structure.APIFiles = append(structure.APIFiles, strings.TrimPrefix(name, "api/"))
		}
	}

	if structure.HasAdminFolder {
		raw, ok := structure.AdminFiles["manifest.json"]
		if !ok {
			return nil, errors.New("admin/manifest.json not found in the plugin ZIP")
		}
		manifest, err := parseManifest(raw)
		if err != nil {
			return nil, errors.New("Invalid admin manifest.json")
		}
		if err := validateManifestComplete(manifest); err != nil {
			return nil, errors.New("Invalid admin manifest.json")
		}
		structure.AdminManifest = manifest
		structure.PluginID = manifest.PluginID
	}

	if structure.HasAPIFolder {
		manifest, err := readAPIManifest(reader)
		if err != nil {
			return nil, err
		}
		structure.APIManifest = manifest
		if structure.PluginID == "" {
			structure.PluginID = manifest.PluginID
		} else if manifest.PluginID != structure.PluginID {
			// The admin and api bundles must describe the same plugin.
			// The mismatch surfaces as a bad api manifest.
			return nil, errors.New("Invalid api manifest.json")
		}
	}

	return structure, nil
}

func readAPIManifest(reader *zip.Reader) (*models.PluginManifest, error) {
	for _, entry := range reader.File {
		if entry.Name != "api/manifest.json" {
			continue
		}
		raw, err := readZipEntryRaw(entry)
		if err != nil {
			return nil, errors.New("Invalid api manifest.json")
		}
		manifest, err := parseManifest(string(raw))
		if err != nil {
			return nil, errors.New("Invalid api manifest.json")
		}
		if err := validateManifestComplete(manifest); err != nil {
			return nil, errors.New("Invalid api manifest.json")
		}
		return manifest, nil
	}
	return nil, errors.New("api/manifest.json not found in the plugin ZIP")
}

func readZipEntryRaw(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// readZipEntry reads an archive entry as a string, encoding binary
// formats as base64 data URIs so they survive the JSON file map.
func readZipEntry(entry *zip.File) (string, error) {
	raw, err := readZipEntryRaw(entry)
	if err != nil {
		return "", err
	}
	if isBinaryPath(entry.Name) {
		return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw), nil
	}
	return string(raw), nil
}

// isAlreadyExistsError reports whether a registry mutation failed only
// because the plugin row already exists. Such failures are benign on
// reinstall and are swallowed.
func isAlreadyExistsError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

func zipFailure(pluginID, message string) *models.InstallResult {
	return &models.InstallResult{
		Success:             false,
		PluginID:            pluginID,
		InstalledComponents: []string{},
		Error:               message,
	}
}

// InstallFromZip runs the staged installation of an uploaded archive:
// create the plugin row in the registry, upload the api bundle (inactive),
// then materialize the admin bundle on the file store. Stages that
// succeeded before a later failure are not rolled back; the failure
// result names the stage that broke.
func (inst *Installer) InstallFromZip(ctx context.Context, data []byte) (result *models.InstallResult) {
	pluginID := ""
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Zip installation panicked: %v", r)
			result = zipFailure(pluginID, recoveredMessage(r))
		}
	}()

	structure, err := ValidateZipStructure(data)
	if err != nil {
		return zipFailure("", err.Error())
	}

	if !structure.HasAdminFolder && !structure.HasAPIFolder {
		return zipFailure("", "Zip file must contain either 'admin' or 'api' folder with valid plugin structure")
	}

	pluginID = structure.PluginID
	manifest := structure.AdminManifest
	if manifest == nil {
		manifest = structure.APIManifest
	}
	if pluginID == "" || manifest == nil {
		return zipFailure(pluginID, "Invalid plugin structure: missing pluginId or manifest")
	}

	if existing := inst.service.GetPlugin(ctx, pluginID); existing != nil && existing.Manifest != nil {
		if CompareVersions(manifest.Version, existing.Manifest.Version) < 0 {
			log.Printf("Plugin %s: installing version %s over newer installed version %s",
				pluginID, manifest.Version, existing.Manifest.Version)
		}
	}

	installedComponents := []string{}

	if inst.executor != nil {
		inst.publishProgress(pluginID, "registry", "Creating plugin in registry")
		if err := inst.executor.CreatePlugin(ctx, pluginID); err != nil && !isAlreadyExistsError(err) {
			return zipFailure(pluginID, "Failed to create plugin in database: "+err.Error())
		}
	}

	if structure.HasAPIFolder && inst.executor != nil {
		inst.publishProgress(pluginID, "api", "Uploading API component")
		ok, err := inst.executor.UploadPluginZip(ctx, data, false)
		if err != nil {
			return zipFailure(pluginID, "Failed to install API component: "+err.Error())
		}
		if ok {
			installedComponents = append(installedComponents, "API")
		}
	}

	var written *models.InstallResult
	if structure.HasAdminFolder {
		inst.publishProgress(pluginID, "admin", "Installing admin component")
		validation := ValidateFiles(structure.AdminFiles)
		if !validation.Valid {
			return zipFailure(pluginID, "Invalid admin plugin structure: "+validation.Error)
		}
		written = inst.service.InstallPlugin(ctx, pluginID, structure.AdminFiles)
		if !written.Success {
			return zipFailure(pluginID, "Failed to install admin plugin: "+written.Error)
		}
		installedComponents = append(installedComponents, "Admin")
	}

	inst.publishProgress(pluginID, "done", "Installation complete")

	result = &models.InstallResult{
		Success:             true,
		PluginID:            pluginID,
		Manifest:            manifest,
		InstalledComponents: installedComponents,
	}
	if written != nil {
		result.Path = written.Path
		result.FilesWritten = written.FilesWritten
		result.WrittenFiles = written.WrittenFiles
	}
	return result
}

// GetInstalledPlugins lists installed plugins, degrading to an empty
// slice if the underlying service panics.
func (inst *Installer) GetInstalledPlugins(ctx context.Context) (plugins []models.InstalledPlugin) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Listing installed plugins panicked: %v", r)
			plugins = []models.InstalledPlugin{}
		}
	}()
	return inst.service.GetInstalledPlugins(ctx)
}

// RemovePlugin removes a plugin, reporting false on panic.
func (inst *Installer) RemovePlugin(ctx context.Context, pluginID string) (removed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Removing plugin %s panicked: %v", pluginID, r)
			removed = false
		}
	}()
	return inst.service.RemovePlugin(ctx, pluginID)
}
