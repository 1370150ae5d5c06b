package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// DefaultConfig returns the configuration defaults used when a key is
// absent from the TOML document.
func DefaultConfig() *Config {
	return &Config{
		DataRoot:       "./data",
		BuildID:        0,
		RestrictLogins: false,
		LogLevel:       "info",
		Server: ServerConfig{
			ListenAddress: "0.0.0.0",
			ListenPort:    14617,
			APIAddress:    "0.0.0.0",
			APIPort:       14615,
		},
		VaultDB: VaultDBConfig{
			DBType: "none",
		},
		Manifest: ManifestConfig{
			CacheDir:     "./data/cache",
			CacheEntries: 256,
		},
	}
}

// Load reads and parses a TOML config file, applying defaults for any
// key left unset.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, xerrors.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.VaultDB.DBType == "" {
		cfg.VaultDB.DBType = "none"
	}

	return cfg, nil
}
