package config

// // NOTE: ONLY PUT STRUCT DEFINITIONS IN THIS FILE, mirroring the
// // teacher's own convention for keeping generated config docs in sync.

// Config is the top-level TOML document (spec.md §6.1).
type Config struct {
	// DataRoot is the root of the manifest engine's content tree.
	DataRoot string `toml:"data_root"`
	// BuildID is the client build id clients must present during Connect.
	BuildID uint32 `toml:"build_id"`
	// RestrictLogins rejects non-admin logins when true.
	RestrictLogins bool `toml:"restrict_logins"`
	// LogLevel is the ipfs/go-log level name (debug/info/warn/error).
	LogLevel string `toml:"log_level"`

	Server    ServerConfig    `toml:"server"`
	CryptKeys CryptKeysConfig `toml:"crypt_keys"`
	VaultDB   VaultDBConfig   `toml:"vault_db"`
	Manifest  ManifestConfig  `toml:"manifest"`
}

// ServerConfig is the [server] TOML table.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    uint16 `toml:"listen_port"`
	FileServerIP  string `toml:"file_server_ip"`
	AuthServerIP  string `toml:"auth_server_ip"`
	GameServerIP  string `toml:"game_server_ip"`
	APIAddress    string `toml:"api_address"`
	APIPort       uint16 `toml:"api_port"`
}

// CryptKeysConfig is the [crypt_keys] TOML table: six base64 big-endian
// values, one (N, K) pair per channel.
type CryptKeysConfig struct {
	AuthN string `toml:"auth_n"`
	AuthK string `toml:"auth_k"`
	GameN string `toml:"game_n"`
	GameK string `toml:"game_k"`
	GateN string `toml:"gate_n"`
	GateK string `toml:"gate_k"`
}

// VaultDBConfig is the [vault_db] TOML table.
type VaultDBConfig struct {
	// DBType is one of "none", "sqlite", "postgres", "mysql".
	DBType string `toml:"db_type"`
	// DSN is the backend-specific connection string; unused for "none".
	DSN string `toml:"dsn"`
}

// ManifestConfig is the [manifest] TOML table (spec.md §4.G).
type ManifestConfig struct {
	// CacheDir holds the compressed-hash-named gzip blobs the build
	// step produces; it is separate from DataRoot so it can live on
	// faster storage or be wiped without touching source content.
	CacheDir string `toml:"cache_dir"`
	// CacheEntries bounds the in-memory hot set of recently used gzip
	// blob sizes (spec.md's manifest cache is authoritative on disk; this
	// is purely an access-time optimization).
	CacheEntries int `toml:"cache_entries"`
	// PythonInterpreter, if set, enables compiling Python/*.py into the
	// encrypted .pak (spec.md §4.G); left empty, that step is skipped.
	PythonInterpreter string `toml:"python_interpreter"`
}
