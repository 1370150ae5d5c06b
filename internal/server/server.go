// Package server implements the lobby listener and per-channel
// connection lifecycle (spec.md §5): one TCP listener demuxing by the
// Connect-time channel selector byte into the Gate, Auth, File, and
// Game protocols, each connection's handshake and dispatch loop, and
// the broadcast-signal shutdown with a bounded grace window. Grounded
// on original_source/src/gate_keeper/server.rs's "one task per accepted
// socket, read loop until disconnect" shape, re-expressed with a
// goroutine per connection and an explicit context for cancellation in
// place of tokio's task model.
package server

import (
	"context"
	"math/big"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/zrax/moulars/internal/age"
	"github.com/zrax/moulars/internal/config"
	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/logctx"
	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/vault"
)

var log = logctx.Logger("server")

// DH base g per channel (spec.md §4.A: "G is small and fixed per
// channel (7 for gate, 41 for auth, 73 for game)").
const (
	gateG = 7
	authG = 41
	gameG = 73
)

// keyLenBytes is ceil(bits(N)/8) for the fixed 512-bit modulus
// (spec.md §4.A), the wire length of a client's DH public value.
const keyLenBytes = (crypt.KeyBits + 7) / 8

// DefaultShutdownGrace is how long Shutdown waits for in-flight
// connections to finish before returning (spec.md §5 "each listener
// stops accepting, drains in-flight work, then exits within a
// configurable grace window (default 10 s)").
const DefaultShutdownGrace = 10 * time.Second

// Server owns every shared dependency the four channels' handlers need
// and the TCP listener they're all multiplexed behind.
type Server struct {
	cfg *config.Config

	backend  db.Backend
	store    *vault.Store
	ages     *age.Manager
	manifest *manifest.Manager

	gateParams *crypt.Params
	authParams *crypt.Params
	gameParams *crypt.Params

	listener net.Listener
	wg       sync.WaitGroup
}

// New wires up a Server from cfg: opens the configured DB backend,
// constructs the Vault store and Age instance manager over it, rebuilds
// the manifest engine, and decodes the configured DH keys for each
// encrypted channel.
func New(cfg *config.Config) (*Server, error) {
	backend, err := openBackend(cfg.VaultDB)
	if err != nil {
		return nil, err
	}
	store := vault.NewStore(backend)
	ages := age.NewManager(backend, store)

	mgr, err := manifest.NewManager(cfg.DataRoot, cfg.Manifest.CacheDir, cfg.Manifest.CacheEntries, cfg.BuildID)
	if err != nil {
		return nil, err
	}
	if err := mgr.Rebuild(); err != nil {
		return nil, err
	}

	gateParams, err := channelParams(gateG, cfg.CryptKeys.GateN, cfg.CryptKeys.GateK)
	if err != nil {
		return nil, err
	}
	authParams, err := channelParams(authG, cfg.CryptKeys.AuthN, cfg.CryptKeys.AuthK)
	if err != nil {
		return nil, err
	}
	gameParams, err := channelParams(gameG, cfg.CryptKeys.GameN, cfg.CryptKeys.GameK)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:        cfg,
		backend:    backend,
		store:      store,
		ages:       ages,
		manifest:   mgr,
		gateParams: gateParams,
		authParams: authParams,
		gameParams: gameParams,
	}, nil
}

func channelParams(g int64, nB64, kB64 string) (*crypt.Params, error) {
	n, err := crypt.DecodeBase64BE(nB64)
	if err != nil {
		return nil, err
	}
	k, err := crypt.DecodeBase64BE(kB64)
	if err != nil {
		return nil, err
	}
	return &crypt.Params{G: big.NewInt(g), N: n, K: k}, nil
}

func openBackend(cfg config.VaultDBConfig) (db.Backend, error) {
	switch cfg.DBType {
	case "", "none":
		return db.NewMemory(), nil
	case "sqlite":
		return db.OpenSQLite(cfg.DSN)
	case "postgres":
		return db.OpenPostgres(cfg.DSN)
	case "mysql":
		return db.OpenMySQL(cfg.DSN)
	default:
		return nil, moulerr.New(moulerr.Protocol, "server.openBackend: unknown db type "+cfg.DBType, nil)
	}
}

// ListenAndServe opens the lobby listener and accepts connections until
// ctx is canceled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.ListenAddress, strconv.Itoa(int(s.cfg.Server.ListenPort)))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	log.Infow("listening", "addr", addr)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				log.Warnw("accept failed", "err", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits up to grace for
// in-flight connections to finish (spec.md §5 "Cancellation").
func (s *Server) Shutdown(grace time.Duration) {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		log.Warnw("shutdown grace window elapsed with connections still open")
	}
}
