// Package dataset reads generated JSONL corpora back and summarises them.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/civictriage/ticketsynth/internal/sink"
	"github.com/civictriage/ticketsynth/internal/synth"
)

const maxLineSize = 1 << 20

// Record is one line of a corpus. DecodeErr is set when Raw is not a valid ticket;
// the reader keeps going so callers can report every bad line.
type Record struct {
	Line      int64
	Raw       []byte
	Ticket    synth.Ticket
	DecodeErr error
}

// Reader iterates a JSONL corpus line by line.
type Reader struct {
	closers []io.Closer
	sc      *bufio.Scanner
	line    int64
}

// Open opens path, decompressing .gz and .zst files transparently.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := sink.NewDecompressor(f, sink.CompressionAuto.Resolve(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	r := NewReader(rc)
	r.closers = []io.Closer{rc, f}
	return r, nil
}

// NewReader reads uncompressed JSONL from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineSize)
	return &Reader{sc: sc}
}

// Next returns the next record, or io.EOF after the last line.
func (r *Reader) Next() (Record, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line+1, err)
		}
		return Record{}, io.EOF
	}
	r.line++
	rec := Record{Line: r.line, Raw: append([]byte(nil), r.sc.Bytes()...)}
	rec.DecodeErr = json.Unmarshal(rec.Raw, &rec.Ticket)
	return rec, nil
}

func (r *Reader) Close() error {
	var err error
	for _, c := range r.closers {
		err = errors.Join(err, c.Close())
	}
	return err
}
