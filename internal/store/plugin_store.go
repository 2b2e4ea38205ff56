package store

import (
	"database/sql"
	"time"
)

// InstalledPlugin represents an installed plugin tracking entry. The
// file store remains the source of truth for plugin content; these rows
// are bookkeeping for the admin UI and update checks.
type InstalledPlugin struct {
	ID               int64
	PluginID         string
	InstalledVersion string
	Components       string
	InstalledAt      time.Time
	UpdatedAt        time.Time
}

// GetInstalledPlugin returns an installed plugin entry by plugin ID
func (s *Store) GetInstalledPlugin(pluginID string) (*InstalledPlugin, error) {
	var installed InstalledPlugin
	err := s.db.QueryRow(`
		SELECT id, plugin_id, installed_version, components, installed_at, updated_at
		FROM installed_plugins
		WHERE plugin_id = ?
	`, pluginID).Scan(
		&installed.ID,
		&installed.PluginID,
		&installed.InstalledVersion,
		&installed.Components,
		&installed.InstalledAt,
		&installed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &installed, nil
}

// CreateOrUpdateInstalledPlugin creates or updates an installed plugin entry
func (s *Store) CreateOrUpdateInstalledPlugin(pluginID, version, components string) error {
	// Check if plugin already exists
	existing, err := s.GetInstalledPlugin(pluginID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if existing != nil {
		// Update existing entry
		_, err = s.db.Exec(`
			UPDATE installed_plugins
			SET installed_version = ?, components = ?, updated_at = CURRENT_TIMESTAMP
			WHERE plugin_id = ?
		`, version, components, pluginID)
		return err
	}

	// Insert new entry
	_, err = s.db.Exec(`
		INSERT INTO installed_plugins (plugin_id, installed_version, components, installed_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, pluginID, version, components)
	return err
}

// DeleteInstalledPlugin deletes an installed plugin entry
func (s *Store) DeleteInstalledPlugin(pluginID string) error {
	_, err := s.db.Exec(`DELETE FROM installed_plugins WHERE plugin_id = ?`, pluginID)
	return err
}

// GetAllInstalledPlugins returns all installed plugin entries
func (s *Store) GetAllInstalledPlugins() ([]*InstalledPlugin, error) {
	rows, err := s.db.Query(`
		SELECT id, plugin_id, installed_version, components, installed_at, updated_at
		FROM installed_plugins
		ORDER BY installed_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var installed []*InstalledPlugin
	for rows.Next() {
		var inst InstalledPlugin
		err := rows.Scan(
			&inst.ID,
			&inst.PluginID,
			&inst.InstalledVersion,
			&inst.Components,
			&inst.InstalledAt,
			&inst.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		installed = append(installed, &inst)
	}

	return installed, rows.Err()
}
