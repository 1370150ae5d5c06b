package transport

import (
	"io"
	"math/big"
	"net"
	"testing"

	"github.com/zrax/moulars/internal/crypt"
)

// TestServerHandshakeEndToEnd plays both sides of the DH/RC4 handshake
// over a net.Pipe and confirms that traffic the server then sends
// decrypts correctly on the client end (spec.md §8 invariant 3,
// scenario S1 shape).
func TestServerHandshakeEndToEnd(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	n, k, err := crypt.GenerateChannelKeys(41)
	if err != nil {
		t.Fatalf("GenerateChannelKeys: %v", err)
	}
	params := &crypt.Params{G: big.NewInt(41), N: n, K: k}
	keyLen := (crypt.KeyBits + 7) / 8

	clientY, clientExp, err := crypt.GenerateClientKeypair(params)
	if err != nil {
		t.Fatalf("GenerateClientKeypair: %v", err)
	}

	serverErr := make(chan error, 1)
	var serverConn *Conn
	go func() {
		c, err := ServerHandshake(serverSide, ChannelAuth, params, keyLen)
		serverConn = c
		serverErr <- err
	}()

	// Client sends Y as little-endian fixed-width bytes.
	yBytes := clientY.Bytes()
	leBytes := make([]byte, keyLen)
	for i, b := range yBytes {
		leBytes[len(yBytes)-1-i] = b
	}
	if _, err := clientSide.Write(leBytes); err != nil {
		t.Fatalf("client write Y: %v", err)
	}

	// Read the server's Encrypt reply: msg id, length, 7-byte nonce.
	reply := make([]byte, encryptReplyLen)
	if _, err := io.ReadFull(clientSide, reply); err != nil {
		t.Fatalf("client read reply: %v", err)
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("ServerHandshake: %v", err)
	}

	serverX := params.ServerPublic()
	clientShared := new(big.Int).Exp(serverX, clientExp, n)
	clientKey := crypt.KeyBytes(clientShared, 7)

	clientCipher, err := crypt.NewRC4(clientKey)
	if err != nil {
		t.Fatalf("NewRC4: %v", err)
	}

	// Server writes an encrypted message; the client decrypts with its
	// independently-derived key and must recover the plaintext.
	plaintext := []byte("AuthSrvIpAddressReply")
	writeErr := make(chan error, 1)
	go func() {
		err := serverConn.writer.WriteFixedBuffer(plaintext)
		writeErr <- err
	}()

	got := make([]byte, len(plaintext))
	if _, err := clientSide.Read(got); err != nil {
		t.Fatalf("client read ciphertext: %v", err)
	}
	if err := <-writeErr; err != nil {
		t.Fatalf("server write: %v", err)
	}

	decrypted := make([]byte, len(got))
	clientCipher.XORKeyStream(decrypted, got)

	if string(decrypted) != string(plaintext) {
		t.Fatalf("got %q, want %q", decrypted, plaintext)
	}
}
