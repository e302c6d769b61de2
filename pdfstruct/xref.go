package pdfstruct

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

var (
	xrefKW    = []byte("xref")
	trailerKW = []byte("trailer")
	blanks    = " \t\r\n\f\x00"
)

// An XRefEntry is a single entry in a cross-reference table.  For in-use
// entries, Offset is the byte offset of the object; for free entries, it is
// the number of the next free object.
type XRefEntry struct {
	Number     int
	Offset     int64
	Generation int
	InUse      bool
	Record     int64 // offset of the entry's own record in the file
	Length     int   // length of the record, including its line terminator
}

// An XRefSection is one "xref ... trailer" block of the file, as reached from
// one "startxref" keyword.
type XRefSection struct {
	StartXRef int64 // offset of the "startxref" keyword
	Offset    int64 // offset of the "xref" keyword
	Declared  int   // total of the counts in the subsection headers
	Entries   []XRefEntry
	Anomalies []*LineAnomaly
}

// Mismatch returns a CountMismatch if the number of entries parsed differs
// from the number declared in the subsection headers, or nil otherwise.
func (s *XRefSection) Mismatch() *CountMismatch {
	if s.Declared == len(s.Entries) {
		return nil
	}
	return &CountMismatch{Offset: s.Offset, Declared: s.Declared, Parsed: len(s.Entries)}
}

// ReadXRef verifies the end of the file and then reads every cross-reference
// section reachable from any "startxref" keyword in it, in file order.
// Entries are not merged across sections.
func (b *Buffer) ReadXRef() (sections []*XRefSection, err error) {
	if _, err = b.FindStartXRef(); err != nil {
		return nil, err
	}
	for _, addr := range b.StartXRefs() {
		var sec *XRefSection
		if sec, err = b.ReadXRefSection(addr); err != nil {
			return sections, fmt.Errorf("reading xref section for startxref at offset %d: %w", addr, err)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// ReadXRefSection follows the "startxref" keyword at the specified address to
// the cross-reference table it names, and parses that table up to its
// "trailer" keyword.  Lines that cannot be parsed as entries are recorded as
// anomalies and skipped.
func (b *Buffer) ReadXRefSection(startxref int64) (sec *XRefSection, err error) {
	var (
		line   []byte
		addr   int64
		number int
	)
	sec = &XRefSection{StartXRef: startxref}
	// Skip the "startxref" line; the next line has the table offset.
	if _, addr, err = b.ReadLineAt(startxref); err != nil {
		return nil, malformed(startxref, "reading %q line: %s", startXRefKW, err)
	}
	if line, _, err = b.ReadLineAt(addr); err != nil {
		return nil, malformed(addr, "missing xref offset after %q", startXRefKW)
	}
	if sec.Offset, err = strconv.ParseInt(string(bytes.Trim(line, blanks)), 10, 64); err != nil {
		return nil, malformed(addr, "invalid xref offset %q", line)
	}
	if sec.Offset < 0 || sec.Offset >= b.Len() {
		return nil, malformed(addr, "xref offset %d is outside file of %d bytes", sec.Offset, b.Len())
	}
	// There are two different kinds of cross-reference section: tables and
	// streams.  Only tables, which start with the word "xref", are
	// supported.
	if line, addr, err = b.ReadLineAt(sec.Offset); err != nil || !bytes.Equal(bytes.TrimRight(line, blanks), xrefKW) {
		return nil, malformed(sec.Offset, "expected %q, found %q (cross-reference streams are not supported)", xrefKW, line)
	}
	// The first line of the table is a subsection header.
	if line, addr, err = b.ReadLineAt(addr); err == nil {
		if start, count, ok := parseSubsection(bytes.Fields(line)); ok {
			number, sec.Declared = start, count
		} else {
			err = fmt.Errorf("invalid header %q", line)
		}
	}
	if err != nil {
		return nil, malformed(sec.Offset, "reading cross-reference subsection header: %s", err)
	}
	// Read entries until we see "trailer".  The declared counts aren't
	// trusted to bound the table.
	for {
		var (
			record = addr
			entry  XRefEntry
			fields [][]byte
		)
		if line, addr, err = b.ReadLineAt(addr); err == io.EOF {
			return nil, malformed(sec.Offset, "no %q found after cross-reference table", trailerKW)
		} else if err != nil {
			return nil, err
		}
		if isTrailer(line) {
			break
		}
		fields = bytes.Fields(line)
		if start, count, ok := parseSubsection(fields); ok {
			number = start
			sec.Declared += count
			continue
		}
		if entry, err = parseEntry(record, line, fields); err != nil {
			sec.Anomalies = append(sec.Anomalies, err.(*LineAnomaly))
			continue
		}
		entry.Number, entry.Length = number, int(addr-record)
		number++
		sec.Entries = append(sec.Entries, entry)
	}
	return sec, nil
}

// ParseEntry parses a single cross-reference record located at the specified
// address.  The record need not include its line terminator.  Failures are
// reported as *LineAnomaly.
func ParseEntry(record int64, line []byte) (XRefEntry, error) {
	return parseEntry(record, line, bytes.Fields(line))
}

func parseEntry(record int64, line []byte, fields [][]byte) (entry XRefEntry, err error) {
	anomaly := func(format string, args ...any) error {
		return &LineAnomaly{Offset: record, Line: string(line), Reason: fmt.Sprintf(format, args...)}
	}
	if len(fields) != 3 {
		return entry, anomaly("expected offset, generation, and flag, found %d fields", len(fields))
	}
	entry.Record = record
	if entry.Offset, err = strconv.ParseInt(string(fields[0]), 10, 64); err != nil || entry.Offset < 0 {
		return entry, anomaly("invalid offset %q", fields[0])
	}
	if entry.Generation, err = strconv.Atoi(string(fields[1])); err != nil || entry.Generation < 0 {
		return entry, anomaly("invalid generation %q", fields[1])
	}
	switch string(fields[2]) {
	case "n":
		entry.InUse = true
	case "f":
		entry.InUse = false
	default:
		return entry, anomaly("invalid flag %q", fields[2])
	}
	return entry, nil
}

// parseSubsection recognizes a subsection header:  a starting object number
// and a count of objects starting at that number.
func parseSubsection(fields [][]byte) (start, count int, ok bool) {
	var err error
	if len(fields) != 2 {
		return 0, 0, false
	}
	if start, err = strconv.Atoi(string(fields[0])); err != nil || start < 0 {
		return 0, 0, false
	}
	if count, err = strconv.Atoi(string(fields[1])); err != nil || count < 0 {
		return 0, 0, false
	}
	return start, count, true
}

// isTrailer reports whether line starts with the "trailer" keyword.  Some
// writers put the trailer dictionary on the same line.
func isTrailer(line []byte) bool {
	line = bytes.TrimLeft(line, " \t")
	if !bytes.HasPrefix(line, trailerKW) {
		return false
	}
	rest := line[len(trailerKW):]
	return len(rest) == 0 || rest[0] == '<' || bytes.IndexByte([]byte(blanks), rest[0]) >= 0
}
