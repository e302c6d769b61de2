package pdfstruct

import (
	"bytes"
	"fmt"
)

// freeRecord is the body of a cross-reference entry for a deleted object:  a
// zero next-free pointer and the maximum generation number, so the object
// number is never reused.
const freeRecord = "0000000000 65535 f"

// RecordSize is the length of a standard cross-reference record, including
// its two-byte line terminator.
const RecordSize = 20

// FreeEntry marks the entry free by overwriting its record in place.  The
// original record's length and line terminator are preserved exactly, so
// nothing else in the file moves; a record longer than the free entry is
// padded with spaces.  A record too short to hold the free entry yields a
// *RecordWidthError and is left untouched.  On success the entry itself is
// updated to match what was written.
func (b *Buffer) FreeEntry(e *XRefEntry) (err error) {
	var (
		rec []byte
		eol int
	)
	if e.Length <= 0 {
		return &RecordWidthError{Record: e.Record, Length: e.Length}
	}
	rec = make([]byte, e.Length)
	if _, err = b.ReadAt(rec, e.Record); err != nil {
		return fmt.Errorf("reading xref record at offset %d: %w", e.Record, err)
	}
	for eol = len(rec); eol > 0 && (rec[eol-1] == '\r' || rec[eol-1] == '\n'); eol-- {
	}
	if eol < len(freeRecord) {
		return &RecordWidthError{Record: e.Record, Length: e.Length}
	}
	// Make sure the record still says what we parsed from it.
	if cur, perr := ParseEntry(e.Record, rec[:eol]); perr != nil || cur.Offset != e.Offset || cur.InUse != e.InUse {
		return fmt.Errorf("xref record at offset %d changed since it was read", e.Record)
	}
	out := make([]byte, 0, len(rec))
	out = append(out, freeRecord...)
	out = append(out, bytes.Repeat([]byte{' '}, eol-len(freeRecord))...)
	out = append(out, rec[eol:]...)
	if _, err = b.WriteAt(out, e.Record); err != nil {
		return fmt.Errorf("writing xref record at offset %d: %w", e.Record, err)
	}
	e.Offset, e.Generation, e.InUse = 0, 65535, false
	return nil
}
