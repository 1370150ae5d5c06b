package transport

import (
	"io"

	"github.com/zrax/moulars/internal/crypt"
	"github.com/zrax/moulars/internal/moulerr"
	"github.com/zrax/moulars/internal/wire"
)

// Conn is a message-oriented, RC4-encrypted transport over an
// underlying duplex byte stream (spec.md §4.C). Reads and writes are
// encrypted independently: the read and write directions each advance
// their own RC4 keystream even though both are keyed identically.
type Conn struct {
	raw        io.ReadWriter
	channel    ChannelID
	cipherRead *crypt.RC4
	cipherWrite *crypt.RC4
	reader     *wire.Reader
	writer     *wire.Writer
}

// encReader and encWriter adapt a Conn's raw stream plus its per-direction RC4
// ciphers into something wire.Reader/wire.Writer can use directly,
// matching the original moulars CryptTcpStream's "apply keystream on
// the way through" shape.
type encReader struct {
	raw    io.Reader
	cipher *crypt.RC4
}

func (e *encReader) Read(p []byte) (int, error) {
	n, err := e.raw.Read(p)
	if n > 0 {
		e.cipher.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

type encWriter struct {
	raw    io.Writer
	cipher *crypt.RC4
}

func (e *encWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	e.cipher.XORKeyStream(buf, p)
	return e.raw.Write(buf)
}

func newConn(raw io.ReadWriter, channel ChannelID, key []byte) (*Conn, error) {
	cr, err := crypt.NewRC4(key)
	if err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.newConn", err)
	}
	cw, err := crypt.NewRC4(key)
	if err != nil {
		return nil, moulerr.New(moulerr.IO, "transport.newConn", err)
	}

	c := &Conn{
		raw:         raw,
		channel:     channel,
		cipherRead:  cr,
		cipherWrite: cw,
	}
	c.reader = wire.NewReader(&encReader{raw: raw, cipher: cr})
	c.writer = wire.NewWriter(&encWriter{raw: raw, cipher: cw})
	return c, nil
}

// NewPlainConn wraps a stream with no encryption, for the File channel's
// degenerate handshake (spec.md §4.C).
func NewPlainConn(raw io.ReadWriter, channel ChannelID) *Conn {
	return &Conn{
		raw:     raw,
		channel: channel,
		reader:  wire.NewReader(raw),
		writer:  wire.NewWriter(raw),
	}
}

// Channel returns which of the four wire protocols this Conn speaks.
func (c *Conn) Channel() ChannelID { return c.channel }

// Reader exposes the buffered wire decoder for this connection's
// message table driver.
func (c *Conn) Reader() *wire.Reader { return c.reader }

// Writer exposes the buffered wire encoder for this connection's reply
// encoder.
func (c *Conn) Writer() *wire.Writer { return c.writer }
