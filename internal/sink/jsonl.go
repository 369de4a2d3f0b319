package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/civictriage/ticketsynth/internal/synth"
)

const jsonlBufferSize = 256 << 10

// JSONL writes one compact JSON object per line, optionally compressed.
type JSONL struct {
	file io.Closer // nil when writing to a caller-owned io.Writer
	z    io.WriteCloser
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONL creates (or truncates) path, creating parent directories as needed.
func NewJSONL(path string, c Compression) (*JSONL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewJSONLWriter(f, c.Resolve(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewJSONLWriter writes to w. Closing the JSONL does not close w.
func NewJSONLWriter(w io.Writer, c Compression) (*JSONL, error) {
	z, err := c.wrap(w)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriterSize(z, jsonlBufferSize)
	return &JSONL{z: z, buf: buf, enc: newEncoder(buf)}, nil
}

func (w *JSONL) Write(_ context.Context, t *synth.Ticket) error {
	return w.enc.Encode(t)
}

// Close flushes buffered lines, finishes the compressed stream and closes the file.
func (w *JSONL) Close() error {
	err := w.buf.Flush()
	err = errors.Join(err, w.z.Close())
	if w.file != nil {
		err = errors.Join(err, w.file.Close())
	}
	return err
}

// MarshalLine renders t exactly as it appears on a JSONL line, without the newline.
func MarshalLine(t *synth.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	if err := newEncoder(&buf).Encode(t); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// newEncoder keeps "&" in category names literal.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}
