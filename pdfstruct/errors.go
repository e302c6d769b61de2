package pdfstruct

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched (with errors.Is) by every MalformedError.
var ErrMalformed = errors.New("malformed PDF")

// A MalformedError reports a structural problem that prevents the file from
// being processed at all: a missing %%EOF or startxref, an unparsable xref
// offset, a missing xref keyword, a missing trailer, or an unterminated object.
type MalformedError struct {
	Offset int64 // where the problem was found, or -1 if not applicable
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("malformed PDF: %s", e.Reason)
	}
	return fmt.Sprintf("malformed PDF at offset %d: %s", e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformed.
func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func malformed(offset int64, format string, args ...any) error {
	return &MalformedError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// A LineAnomaly describes a line inside an xref section that could not be
// parsed as an entry.  It is not fatal:  the line is skipped and parsing
// continues with the next one.
type LineAnomaly struct {
	Offset int64
	Line   string
	Reason string
}

func (a *LineAnomaly) Error() string {
	return fmt.Sprintf("xref line at offset %d: %s in %q", a.Offset, a.Reason, a.Line)
}

// A CountMismatch reports that the number of entries declared in the
// subsection headers of an xref section differs from the number actually
// parsed.  It is informational only.
type CountMismatch struct {
	Offset   int64
	Declared int
	Parsed   int
}

func (m *CountMismatch) Error() string {
	return fmt.Sprintf("xref section at offset %d declares %d objects but has %d entries", m.Offset, m.Declared, m.Parsed)
}

// A RecordWidthError reports an xref entry whose record is too short to be
// overwritten by a free entry without disturbing the bytes after it.
type RecordWidthError struct {
	Record int64
	Length int
}

func (e *RecordWidthError) Error() string {
	return fmt.Sprintf("xref record at offset %d is %d bytes, too short to mark free in place", e.Record, e.Length)
}
