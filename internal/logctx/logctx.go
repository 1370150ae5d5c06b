// Package logctx centralizes logger construction so every package gets
// a named, level-controlled logger the same way, grounded on the
// teacher's one-`var log = logging.Logger("name")`-per-package
// convention (node/handler/handler.go, node/common/impl.go).
package logctx

import (
	logging "github.com/ipfs/go-log/v2"
)

// Logger returns a named logger. Call once per package as a package
// level var, e.g. `var log = logctx.Logger("vault")`.
func Logger(name string) *logging.ZapEventLogger {
	return logging.Logger(name)
}

// SetLevel applies a single level string (e.g. "debug", "info", "warn",
// "error") to every logger created through this package, mirroring
// cmd/titan-scheduler/main.go's startup log configuration.
func SetLevel(level string) {
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		lvl = logging.LevelInfo
	}
	logging.SetAllLoggers(lvl)
}
