package transport

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

const (
	// encryptReplyMsgID and encryptReplyLen match the original moulars
	// wire shape: 1-byte message id, 1-byte total length, then the
	// server nonce (SPEC_FULL.md §4.A).
	encryptReplyMsgID = 1
	serverNonceLen    = 7
	encryptReplyLen   = 2 + serverNonceLen
)

// rc4KeyLen is the number of bytes of the DH shared secret used to key
// RC4, per spec.md §4.A.
const rc4KeyLen = 7

// ServerHandshake runs the server side of the DH/RC4 handshake on an
// already-Connect'd plaintext stream and returns the keyed Conn. params
// is the channel's fixed (G, N, K); keyLenBytes is ceil(bits(N)/8), the
// length of the client's Y value on the wire.
func ServerHandshake(raw io.ReadWriter, channel ChannelID, params *crypt.Params, keyLenBytes int) (*Conn, error) {
	r := wire.NewReader(raw)
	clientYBytes, err := r.ReadFixedBuffer(keyLenBytes)
	if err != nil {
		return nil, err
	}
	clientY := new(big.Int).SetBytes(reverseBytes(clientYBytes)) // wire is little-endian

	shared := params.SharedSecret(clientY)
	key := crypt.KeyBytes(shared, rc4KeyLen)

	nonce := make([]byte, serverNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.ServerHandshake: nonce", err)
	}

	w := wire.NewWriter(raw)
	if err := w.WriteUint8(encryptReplyMsgID); err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.ServerHandshake: write", err)
	}
	if err := w.WriteUint8(encryptReplyLen); err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.ServerHandshake: write", err)
	}
	if err := w.WriteFixedBuffer(nonce); err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.ServerHandshake: write", err)
	}

	return newConn(raw, channel, key)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
