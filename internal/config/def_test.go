package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moulars.toml")
	body := `
data_root = "/var/moulars/data"

[server]
listen_port = 14617
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataRoot != "/var/moulars/data" {
		t.Errorf("DataRoot = %q, want /var/moulars/data", cfg.DataRoot)
	}
	if cfg.VaultDB.DBType != "none" {
		t.Errorf("VaultDB.DBType = %q, want default \"none\"", cfg.VaultDB.DBType)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default \"info\"", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/moulars.toml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
