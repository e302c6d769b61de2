package pdfstruct

import (
	"bytes"
)

var (
	eofMarker    = []byte("%%EOF")
	startXRefKW  = []byte("startxref")
	headerMarker = []byte("%PDF-")
)

// tailWindow bounds how much trailing padding may follow %%EOF.
const tailWindow = 32

// Version returns the version number from the "%PDF-x.y" header line, or an
// empty string if the file doesn't start with one.
func (b *Buffer) Version() string {
	line, _, err := b.ReadLineAt(0)
	if err != nil || !bytes.HasPrefix(line, headerMarker) {
		return ""
	}
	return string(bytes.TrimRight(line[len(headerMarker):], blanks))
}

// FindStartXRef verifies that the file ends with a %%EOF line, then scans
// backward from it for the nearest "startxref" line and returns its offset.
func (b *Buffer) FindStartXRef() (int64, error) {
	var (
		end   = len(b.data)
		limit = end - tailWindow
	)
	if limit < 0 {
		limit = 0
	}
	for end > limit && bytes.IndexByte([]byte(blanks), b.data[end-1]) >= 0 {
		end--
	}
	start := bytes.LastIndexAny(b.data[:end], "\r\n") + 1
	if !bytes.Equal(b.data[start:end], eofMarker) {
		return -1, malformed(int64(start), "expected %q at end of file, found %q", eofMarker, b.data[start:end])
	}
	pos := b.RFindLine(startXRefKW, int64(start))
	if pos < 0 {
		return -1, malformed(-1, "no %q found before %q", startXRefKW, eofMarker)
	}
	return pos, nil
}

// RFindLine scans backward from before for the nearest line consisting of
// token (optionally followed by spaces or tabs), and returns the offset of the
// start of that line.  It returns -1 if there is no such line.
func (b *Buffer) RFindLine(token []byte, before int64) int64 {
	if before > b.Len() {
		before = b.Len()
	}
	end := int(before)
	for end >= len(token) && len(token) != 0 {
		pos := bytes.LastIndex(b.data[:end], token)
		if pos < 0 {
			return -1
		}
		if b.isLineAt(pos, len(token)) {
			return int64(pos)
		}
		end = pos + len(token) - 1
	}
	return -1
}

// isLineAt reports whether the size bytes at pos form a line on their own,
// allowing trailing blanks.
func (b *Buffer) isLineAt(pos, size int) bool {
	if pos > 0 && b.data[pos-1] != '\r' && b.data[pos-1] != '\n' {
		return false
	}
	for _, c := range b.data[pos+size:] {
		switch c {
		case ' ', '\t':
			continue
		case '\r', '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// StartXRefs returns the offset of every "startxref" keyword in the file, in
// ascending order.  Incrementally updated files have one per revision.
func (b *Buffer) StartXRefs() []int64 {
	return b.FindAll(startXRefKW)
}
