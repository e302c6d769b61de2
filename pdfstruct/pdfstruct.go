// Package pdfstruct provides methods for locating and patching the basic
// structure of a PDF.  It doesn't understand the semantics of the PDF at all;
// it just knows how to find the cross-reference sections, read the entries in
// them, read the raw bytes of the objects they point to, and mark entries
// free.
package pdfstruct

import (
	"bytes"
	"fmt"
	"io"
)

// A Buffer is the random-access byte store holding an entire PDF file.  It is
// owned by a single caller for its whole lifetime; none of its methods are
// safe for concurrent use.  Writes never change its length.
type Buffer struct {
	data  []byte
	sync  func([]byte) error
	close func([]byte) error
}

// NewBuffer returns a Buffer over the supplied bytes.  Writes to the Buffer
// modify data directly.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the size of the buffer in bytes.
func (b *Buffer) Len() int64 { return int64(len(b.data)) }

// Bytes returns the contents of the buffer.  The slice aliases the buffer, so
// it must not be retained past Close.
func (b *Buffer) Bytes() []byte { return b.data }

// ReadAt implements io.ReaderAt.
func (b *Buffer) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("read at negative offset %d", off)
	}
	if off >= b.Len() {
		return 0, io.EOF
	}
	n = copy(p, b.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}

// WriteAt implements io.WriterAt.  It refuses to write past the end of the
// buffer, since the file size is fixed.
func (b *Buffer) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off+int64(len(p)) > b.Len() {
		return 0, fmt.Errorf("write of %d bytes at offset %d is outside buffer of %d bytes", len(p), off, b.Len())
	}
	return copy(b.data[off:], p), nil
}

// ReadLineAt returns the line starting at off, without its terminator, and the
// offset of the line following it.  A line is terminated by "\r\n", "\n", or
// a lone "\r".  The last line of the buffer need not be terminated.  When off
// is at or past the end of the buffer, ReadLineAt returns io.EOF.
func (b *Buffer) ReadLineAt(off int64) (line []byte, next int64, err error) {
	if off < 0 {
		return nil, off, fmt.Errorf("read line at negative offset %d", off)
	}
	if off >= b.Len() {
		return nil, off, io.EOF
	}
	rest := b.data[off:]
	idx := bytes.IndexAny(rest, "\r\n")
	if idx < 0 {
		return rest, b.Len(), nil
	}
	next = off + int64(idx) + 1
	if rest[idx] == '\r' && idx+1 < len(rest) && rest[idx+1] == '\n' {
		next++
	}
	return rest[:idx], next, nil
}

// Find returns the offset of the first occurrence of token at or after from,
// or -1 if there is none.
func (b *Buffer) Find(token []byte, from int64) int64 {
	if from < 0 {
		from = 0
	}
	if from >= b.Len() {
		return -1
	}
	idx := bytes.Index(b.data[from:], token)
	if idx < 0 {
		return -1
	}
	return from + int64(idx)
}

// FindAll returns the offsets of every occurrence of token, in ascending
// order.  Each search resumes just past the previous match.
func (b *Buffer) FindAll(token []byte) (offsets []int64) {
	if len(token) == 0 {
		return nil
	}
	for pos := b.Find(token, 0); pos >= 0; pos = b.Find(token, pos+int64(len(token))) {
		offsets = append(offsets, pos)
	}
	return offsets
}

// Sync flushes any changes to the underlying file, if there is one.
func (b *Buffer) Sync() error {
	if b.sync == nil {
		return nil
	}
	return b.sync(b.data)
}

// Close flushes and releases the buffer.  The Buffer must not be used after
// Close.
func (b *Buffer) Close() (err error) {
	if b.close != nil {
		err = b.close(b.data)
	}
	b.data, b.sync, b.close = nil, nil, nil
	return err
}
