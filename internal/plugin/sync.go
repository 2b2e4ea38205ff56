package plugin

import (
	"context"
	"log"
	"strings"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/store"
)

// SyncRegistry reconciles the installed-plugins table with the file
// store. Plugins present on disk but missing from the table are
// registered; rows whose plugin directory disappeared are deleted; rows
// whose version drifted from the manifest are updated. The file store
// always wins.
func SyncRegistry(ctx context.Context, service *Service, st *store.Store) error {
	onDisk := service.GetInstalledPlugins(ctx)
	diskByID := make(map[string]string, len(onDisk))
	for _, p := range onDisk {
		version := ""
		if p.Manifest != nil {
			version = p.Manifest.Version
		}
		diskByID[p.PluginID] = version
	}

	rows, err := st.GetAllInstalledPlugins()
	if err != nil {
		return err
	}

	tracked := make(map[string]*store.InstalledPlugin, len(rows))
	for _, row := range rows {
		tracked[row.PluginID] = row
		if _, exists := diskByID[row.PluginID]; !exists {
			log.Printf("Registry sync: plugin %s no longer on disk, removing entry", row.PluginID)
			if err := st.DeleteInstalledPlugin(row.PluginID); err != nil {
				log.Printf("Registry sync: failed to delete entry for %s: %v", row.PluginID, err)
			}
		}
	}

	for pluginID, version := range diskByID {
		row, exists := tracked[pluginID]
		if exists && row.InstalledVersion == version {
			continue
		}
		components := "Admin"
		if exists && row.Components != "" {
			components = row.Components
			if !strings.Contains(components, "Admin") {
				components = components + ",Admin"
			}
		}
		if !exists {
			log.Printf("Registry sync: found untracked plugin %s, registering", pluginID)
		}
		if err := st.CreateOrUpdateInstalledPlugin(pluginID, version, components); err != nil {
			log.Printf("Registry sync: failed to register %s: %v", pluginID, err)
		}
	}

	return nil
}
