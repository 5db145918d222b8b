package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CLINIC_CONFIG_PATH", "/custom/clinic.toml")
		t.Setenv("CLINIC_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() failed: %v", err)
		}

		if defaults["config_path"] != "/custom/clinic.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/clinic.toml")
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/home")
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/home/log")
		}
	})

	t.Run("falls back to home directory", func(t *testing.T) {
		t.Setenv("CLINIC_CONFIG_PATH", "")
		t.Setenv("CLINIC_HOME", "")

		homeDir, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("cannot determine home directory: %v", err)
		}

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() failed: %v", err)
		}

		wantConfig := filepath.Join(homeDir, ".config", "clinic.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}
		wantBase := filepath.Join(homeDir, ".local", "share", "clinic")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
	})
}
