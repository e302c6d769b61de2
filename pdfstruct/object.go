package pdfstruct

import (
	"bytes"
	"io"
	"strings"
)

var endobjKW = []byte("endobj")

// ReadObjectAt returns the raw bytes of the indirect object starting at the
// specified offset, through the end of the line holding its "endobj" keyword
// (terminator included).  The object is read a whole line at a time; it ends
// at the first line whose last token is "endobj".  The returned slice aliases
// the buffer.
func (b *Buffer) ReadObjectAt(offset int64) (obj []byte, err error) {
	var (
		line []byte
		addr = offset
	)
	if offset < 0 || offset >= b.Len() {
		return nil, malformed(offset, "object offset is outside file of %d bytes", b.Len())
	}
	for {
		if line, addr, err = b.ReadLineAt(addr); err == io.EOF {
			return nil, malformed(offset, "no %q found after object", endobjKW)
		} else if err != nil {
			return nil, err
		}
		if endsObject(line) {
			return b.data[offset:addr], nil
		}
	}
}

// endsObject reports whether the last token on the line is "endobj".
func endsObject(line []byte) bool {
	line = bytes.TrimRight(line, blanks)
	if !bytes.HasSuffix(line, endobjKW) {
		return false
	}
	before := len(line) - len(endobjKW)
	return before == 0 || !isRegularChar(line[before-1])
}

const nonRegularChars = "\x00\t\n\f\r ()<>[]{}/%"

func isRegularChar(b byte) bool {
	return strings.IndexByte(nonRegularChars, b) < 0
}
