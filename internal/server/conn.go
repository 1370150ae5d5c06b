package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/proto"
	"github.com/zrax/moulars/internal/proto/auth"
	"github.com/zrax/moulars/internal/proto/file"
	"github.com/zrax/moulars/internal/proto/game"
	"github.com/zrax/moulars/internal/proto/gate"
	"github.com/zrax/moulars/internal/transport"
	"github.com/zrax/moulars/internal/wire"
)

// handleConn demuxes one accepted socket by its Connect-time channel
// selector byte, runs that channel's handshake, and then its
// read-dispatch loop until the client disconnects or a protocol error
// occurs (spec.md §4.C, grounded on original_source/src/gate_keeper/
// server.rs's init_client + per-client read loop, re-expressed as one
// goroutine per connection rather than one async task).
func (s *Server) handleConn(ctx context.Context, raw net.Conn) {
	defer raw.Close()

	var selector [1]byte
	if _, err := io.ReadFull(raw, selector[:]); err != nil {
		return
	}
	channel := transport.ChannelID(selector[0])

	hr := wire.NewReader(raw)
	header, err := transport.ReadConnectHeader(hr, channel)
	if err != nil {
		log.Warnw("bad connect header", "channel", channel, "err", err)
		return
	}
	if !s.manifest.CheckBuildID(header.BuildID) {
		log.Warnw("build id mismatch", "channel", channel, "client_build_id", header.BuildID)
		return
	}

	var conn *transport.Conn
	if channel.RequiresEncryption() {
		params, ok := s.paramsFor(channel)
		if !ok {
			log.Warnw("unknown channel on connect", "channel", channel)
			return
		}
		conn, err = transport.ServerHandshake(raw, channel, params, keyLenBytes)
		if err != nil {
			log.Warnw("handshake failed", "channel", channel, "err", err)
			return
		}
	} else {
		conn = transport.NewPlainConn(raw, channel)
	}

	log.Infow("connection established", "channel", channel, "remote", raw.RemoteAddr())

	switch channel {
	case transport.ChannelGate:
		s.serveGate(conn)
	case transport.ChannelFile:
		s.serveFile(conn)
	case transport.ChannelAuth:
		s.serveAuth(ctx, conn)
	case transport.ChannelGame:
		s.serveGame(ctx, conn, fmt.Sprintf("%p", raw))
	default:
		log.Warnw("unsupported channel selector", "channel", channel)
	}
}

func (s *Server) paramsFor(channel transport.ChannelID) (*crypt.Params, bool) {
	switch channel {
	case transport.ChannelGate:
		return s.gateParams, true
	case transport.ChannelAuth:
		return s.authParams, true
	case transport.ChannelGame:
		return s.gameParams, true
	default:
		return nil, false
	}
}

func (s *Server) serveGate(conn *transport.Conn) {
	d := gate.NewDispatch(gate.Endpoints{
		FileServerIP: s.cfg.Server.FileServerIP,
		AuthServerIP: s.cfg.Server.AuthServerIP,
	})
	for {
		if err := proto.Serve(conn.Reader(), conn.Writer(), gate.RequestTable, gate.ReplyTable, d); err != nil {
			return
		}
	}
}

func (s *Server) serveFile(conn *transport.Conn) {
	sess := file.NewSession()
	d := file.NewDispatch(sess, file.Deps{Manifest: s.manifest})
	for {
		if err := proto.Serve(conn.Reader(), conn.Writer(), file.RequestTable, file.ReplyTable, d); err != nil {
			return
		}
	}
}

func (s *Server) serveAuth(ctx context.Context, conn *transport.Conn) {
	sess := auth.NewSession()
	deps := auth.Deps{
		Backend:        s.backend,
		Vault:          s.store,
		Ages:           s.ages,
		Manifest:       s.manifest,
		RestrictLogins: s.cfg.RestrictLogins,
		GameServerIP:   s.cfg.Server.GameServerIP,
	}
	d := auth.NewDispatch(sess, conn.Writer(), deps)
	for {
		if err := proto.Serve(conn.Reader(), conn.Writer(), auth.RequestTable, auth.ReplyTable, d); err != nil {
			return
		}
	}
}

// serveGame runs the Game channel's connection loop. Unlike the other
// three channels, Game replies aren't the only traffic on the
// connection's write side: age.Instance deliveries (propagated
// plMessages, SDL updates) arrive asynchronously on the Instance's own
// goroutine via game.PushedMessage, and must be interleaved onto the
// same *wire.Writer as the synchronous request/reply path without
// tearing a single Encode call in half (spec.md §5 "one read task and
// one write task per connection (joined by a bounded mpsc channel for
// outbound)"). proto.Serve alone only serializes the reply path, so
// this loop wraps every Encode call, from either source, in a shared
// mutex instead of reusing proto.Serve directly.
func (s *Server) serveGame(ctx context.Context, conn *transport.Conn, connID string) {
	sess := game.NewSession()
	push := make(chan game.PushedMessage, 64)
	deps := game.Deps{Ages: s.ages, Push: push}
	d := game.NewDispatch(sess, connID, deps)

	var writeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case pushed, ok := <-push:
				if !ok {
					return
				}
				writeMu.Lock()
				err := proto.Encode(conn.Writer(), game.ReplyTable, pushed.ID, pushed.Values)
				writeMu.Unlock()
				if err != nil {
					log.Warnw("failed to write pushed game message", "conn", connID, "err", err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	defer game.TeardownSession(sess)

	for {
		msg, err := proto.Decode(conn.Reader(), game.RequestTable)
		if err != nil {
			return
		}
		h, ok := d[msg.ID]
		if !ok {
			log.Warnw("no handler for game message", "conn", connID, "id", msg.ID)
			return
		}
		replyID, replyValues, hasReply, err := h(msg)
		if err != nil {
			log.Warnw("game handler error", "conn", connID, "err", err)
			return
		}
		if !hasReply {
			continue
		}
		writeMu.Lock()
		err = proto.Encode(conn.Writer(), game.ReplyTable, replyID, replyValues)
		writeMu.Unlock()
		if err != nil {
			return
		}
	}
}
