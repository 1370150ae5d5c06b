package manifest

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/zrax/moulars/internal/moulerr"
)

// ChunkSize is the fixed download chunk size (spec.md §4.G "64 KiB
// chunks with a running acknowledgement").
const ChunkSize = 64 * 1024

// UnackedTimeout is how long a chunk may go unacknowledged before the
// download (and, per spec.md §4.G, the connection) is considered dead.
const UnackedTimeout = 30 * time.Second

// Download streams one file in ChunkSize chunks, gated so the next
// chunk is not produced until the previous one is acknowledged (spec.md
// §4.G "the server does not send chunk N+1 until ACK(N) is received").
// One Download belongs to exactly one File-channel connection; it is
// not safe for concurrent NextChunk/Ack calls from multiple goroutines,
// matching the per-connection strict-FIFO model (spec.md §5).
type Download struct {
	f         *os.File
	totalSize int64

	mu        sync.Mutex
	nextSeq   uint32
	pending   bool // a chunk was sent and not yet acked
	timer     *time.Timer
	onTimeout func()
}

// OpenDownload opens path for chunked reading. onTimeout is invoked
// (once, from a timer goroutine) if a sent chunk goes unacknowledged
// for longer than UnackedTimeout; the caller should close the
// connection from there.
func OpenDownload(path string, onTimeout func()) (*Download, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, moulerr.New(moulerr.NotFound, "manifest.OpenDownload", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, moulerr.New(moulerr.IO, "manifest.OpenDownload", err)
	}
	return &Download{f: f, totalSize: info.Size(), onTimeout: onTimeout}, nil
}

// TotalSize is the file's full size, sent to the client before the
// first chunk so it can show progress.
func (d *Download) TotalSize() int64 { return d.totalSize }

// NextChunk reads and returns the next chunk along with its sequence
// id, starting the unacked-chunk timeout. It returns a Busy error if
// the previous chunk has not yet been acknowledged.
func (d *Download) NextChunk() (seq uint32, data []byte, done bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending {
		return 0, nil, false, moulerr.New(moulerr.Busy, "manifest.NextChunk", nil)
	}

	buf := make([]byte, ChunkSize)
	n, readErr := io.ReadFull(d.f, buf)
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return 0, nil, false, moulerr.New(moulerr.IO, "manifest.NextChunk", readErr)
	}
	if n == 0 {
		return d.nextSeq, nil, true, nil
	}

	seq = d.nextSeq
	data = buf[:n]
	d.nextSeq++
	d.pending = true
	d.timer = time.AfterFunc(UnackedTimeout, d.fireTimeout)
	return seq, data, false, nil
}

func (d *Download) fireTimeout() {
	d.mu.Lock()
	stillPending := d.pending
	cb := d.onTimeout
	d.mu.Unlock()
	if stillPending && cb != nil {
		cb()
	}
}

// Ack acknowledges chunk seq. A seq that doesn't match the outstanding
// chunk is a Protocol error (spec.md §4.D "Unknown-but-plausible fields
// are never silently skipped" applies equally to out-of-order ACKs).
func (d *Download) Ack(seq uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending || seq != d.nextSeq-1 {
		return moulerr.New(moulerr.Protocol, "manifest.Ack", nil)
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return nil
}

// Close releases the underlying file handle and cancels any pending
// timeout timer.
func (d *Download) Close() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	return d.f.Close()
}
