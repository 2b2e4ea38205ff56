package store_test

import (
	"database/sql"
	"testing"

	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/store"
	"github.com/PalisadoesFoundation/talawa-plugin-host/internal/testutil"
)

func TestInstalledPluginStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	storeInstance := store.New(db)

	t.Run("Create and get", func(t *testing.T) {
		if err := storeInstance.CreateOrUpdateInstalledPlugin("test_plugin", "1.0.0", "Admin"); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}

		installed, err := storeInstance.GetInstalledPlugin("test_plugin")
		if err != nil {
			t.Fatalf("Failed to get entry: %v", err)
		}
		if installed.InstalledVersion != "1.0.0" {
			t.Errorf("Expected version 1.0.0, got %s", installed.InstalledVersion)
		}
		if installed.Components != "Admin" {
			t.Errorf("Expected components Admin, got %s", installed.Components)
		}
	})

	t.Run("Update existing entry", func(t *testing.T) {
		if err := storeInstance.CreateOrUpdateInstalledPlugin("test_plugin", "2.0.0", "API,Admin"); err != nil {
			t.Fatalf("Failed to update entry: %v", err)
		}

		installed, err := storeInstance.GetInstalledPlugin("test_plugin")
		if err != nil {
			t.Fatalf("Failed to get entry: %v", err)
		}
		if installed.InstalledVersion != "2.0.0" {
			t.Errorf("Expected version 2.0.0 after update, got %s", installed.InstalledVersion)
		}
	})

	t.Run("Get all", func(t *testing.T) {
		if err := storeInstance.CreateOrUpdateInstalledPlugin("other_plugin", "0.1.0", "API"); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}

		all, err := storeInstance.GetAllInstalledPlugins()
		if err != nil {
			t.Fatalf("Failed to list entries: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 entries, got %d", len(all))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := storeInstance.DeleteInstalledPlugin("test_plugin"); err != nil {
			t.Fatalf("Failed to delete entry: %v", err)
		}
		if _, err := storeInstance.GetInstalledPlugin("test_plugin"); err != sql.ErrNoRows {
			t.Errorf("Expected sql.ErrNoRows, got %v", err)
		}

		// Deleting a missing entry is a no-op.
		if err := storeInstance.DeleteInstalledPlugin("test_plugin"); err != nil {
			t.Errorf("Expected no error deleting missing entry, got %v", err)
		}
	})
}
