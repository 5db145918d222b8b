package database

import (
	"os"
	"path/filepath"
	"testing"

	"clinic-go/internal/config"
)

func TestNewLazyFromConfig(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		lazy, err := NewLazyFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewLazyFromConfig() failed: %v", err)
		}
		t.Cleanup(func() { lazy.Close() })

		store, err := lazy.Acquire()
		if err != nil {
			t.Fatalf("Acquire() failed: %v", err)
		}

		// The schema must be in place.
		if err := store.SetSetting("k", "v"); err != nil {
			t.Errorf("SetSetting() on fresh memory store failed: %v", err)
		}
	})

	t.Run("sqlite store creates the data directory lazily", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "data")
		lazy, err := NewLazyFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dataDir})
		if err != nil {
			t.Fatalf("NewLazyFromConfig() failed: %v", err)
		}
		t.Cleanup(func() { lazy.Close() })

		// Nothing touches the filesystem until the first Acquire.
		if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
			t.Errorf("data directory exists before first Acquire, stat err = %v", err)
		}

		if _, err := lazy.Acquire(); err != nil {
			t.Fatalf("Acquire() failed: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dataDir, "clinic.db")); err != nil {
			t.Errorf("database file missing after Acquire: %v", err)
		}
	})

	t.Run("sqlite store requires data_dir", func(t *testing.T) {
		_, err := NewLazyFromConfig(config.DatabaseConfig{Type: "sqlite"})
		if err == nil {
			t.Error("NewLazyFromConfig() succeeded without data_dir, want error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewLazyFromConfig(config.DatabaseConfig{Type: "postgres"})
		if err == nil {
			t.Error("NewLazyFromConfig() succeeded for unknown type, want error")
		}
	})
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.SetSetting("clinic_name", "Sunrise Clinic"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.GetSetting("clinic_name")
	if err != nil {
		t.Fatalf("GetSetting() failed: %v", err)
	}
	if !ok || value != "Sunrise Clinic" {
		t.Errorf("GetSetting() = (%q, %v), want (Sunrise Clinic, true)", value, ok)
	}
}
