package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zrax/moulars/internal/config"
	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/db"
	"github.com/zrax/moulars/internal/manifest"
	"github.com/zrax/moulars/internal/transport"
	"github.com/zrax/moulars/internal/wire"
)

func TestOpenBackendDefaultsToMemory(t *testing.T) {
	backend, err := openBackend(config.VaultDBConfig{})
	require.NoError(t, err)
	require.IsType(t, &db.Memory{}, backend)
}

func TestOpenBackendRejectsUnknownType(t *testing.T) {
	_, err := openBackend(config.VaultDBConfig{DBType: "oracle"})
	require.Error(t, err)
}

func TestChannelParamsRoundTripsBase64Keys(t *testing.T) {
	n, k, err := crypt.GenerateChannelKeys(authG)
	require.NoError(t, err)
	nB64 := crypt.EncodeBase64BE(n, crypt.KeyBits/8)
	kB64 := crypt.EncodeBase64BE(k, crypt.KeyBits/8)

	params, err := channelParams(authG, nB64, kB64)
	require.NoError(t, err)
	require.Equal(t, int64(authG), params.G.Int64())
	require.Zero(t, params.N.Cmp(n), "decoded N does not match the encoded original")
	require.Zero(t, params.K.Cmp(k), "decoded K does not match the encoded original")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	mgr, err := manifest.NewManager(root, cacheDir, 16, 0)
	if err != nil {
		t.Fatalf("manifest.NewManager: %v", err)
	}
	if err := mgr.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return &Server{
		cfg:      &config.Config{},
		backend:  db.NewMemory(),
		manifest: mgr,
	}
}

// TestHandleConnFileChannelPingRoundTrip exercises handleConn end to end
// on the File channel, the one channel with no DH/RC4 handshake, and
// confirms a PingRequest comes back as a matching PingReply (spec.md §8
// scenario S1's "first contact" shape, restricted to File's degenerate
// transport).
func TestHandleConnFileChannelPingRoundTrip(t *testing.T) {
	s := newTestServer(t)

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	done := make(chan struct{})
	go func() {
		s.handleConn(context.Background(), serverSide)
		close(done)
	}()

	cw := wire.NewWriter(clientSide)
	if _, err := clientSide.Write([]byte{byte(transport.ChannelFile)}); err != nil {
		t.Fatalf("write selector: %v", err)
	}
	header := &transport.ConnectHeader{BuildID: 0}
	if err := transport.WriteConnectHeader(cw, header); err != nil {
		t.Fatalf("WriteConnectHeader: %v", err)
	}

	if err := cw.WriteUint16(0); err != nil { // MsgPingRequest id
		t.Fatalf("write ping id: %v", err)
	}
	if err := cw.WriteUint32(12345); err != nil {
		t.Fatalf("write ping_time: %v", err)
	}

	cr := wire.NewReader(clientSide)
	replyID, err := cr.ReadUint16()
	if err != nil {
		t.Fatalf("read reply id: %v", err)
	}
	if replyID != 0 {
		t.Fatalf("got reply id %d, want 0 (PingReply)", replyID)
	}
	pingTime, err := cr.ReadUint32()
	if err != nil {
		t.Fatalf("read ping_time: %v", err)
	}
	if pingTime != 12345 {
		t.Fatalf("got ping_time %d, want 12345", pingTime)
	}

	clientSide.Close()
	<-done
}

func TestHandleConnRejectsUnknownChannelSelector(t *testing.T) {
	s := newTestServer(t)

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	done := make(chan struct{})
	go func() {
		s.handleConn(context.Background(), serverSide)
		close(done)
	}()

	if _, err := clientSide.Write([]byte{0xFF}); err != nil {
		t.Fatalf("write selector: %v", err)
	}
	clientSide.Close()
	<-done
}
