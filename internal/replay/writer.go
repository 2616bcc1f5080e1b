// Package replay records arena matches as zstd-compressed JSON lines.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Ext is the replay file extension.
const Ext = ".jsonl.zst"

// Writer appends records to one replay file.
type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// PathFor returns the replay path of matchID under dir.
func PathFor(dir, matchID string) string {
	return filepath.Join(dir, matchID+Ext)
}

// Create opens a new replay file for matchID under dir.
func Create(dir, matchID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := PathFor(dir, matchID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{path: path, f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) WriteHeader(h *Header) error { return w.write(Record{Kind: KindHeader, Header: h}) }
func (w *Writer) WriteFrame(f *Frame) error   { return w.write(Record{Kind: KindFrame, Frame: f}) }
func (w *Writer) WriteResult(r *Result) error { return w.write(Record{Kind: KindResult, Result: r}) }

func (w *Writer) write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("replay: write after close")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes the compressor and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.w, w.enc, w.f = nil, nil, nil
	return err
}
