// Package pdftest builds small synthetic PDF files for tests.  Files are
// written byte by byte, so tests can know the exact offset of every object
// and cross-reference record.
package pdftest

import (
	"bytes"
	"fmt"
)

// A Builder accumulates a PDF file.
type Builder struct {
	buf     bytes.Buffer
	eol     string
	offsets map[int]int64

	// Records holds the offset of the most recently written
	// cross-reference record for each object number.
	Records map[int]int64
}

// New starts a file with the specified header version.  Cross-reference
// records are terminated with " \n".
func New(version string) *Builder {
	b := &Builder{eol: " \n", offsets: make(map[int]int64), Records: make(map[int]int64)}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

// EOL sets the two-byte terminator used for subsequent cross-reference
// records.
func (b *Builder) EOL(eol string) *Builder {
	b.eol = eol
	return b
}

// Object writes an indirect object with the specified body and returns its
// offset.
func (b *Builder) Object(num int, body string) int64 {
	off := int64(b.buf.Len())
	b.offsets[num] = off
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
	return off
}

// Raw appends arbitrary text to the file.
func (b *Builder) Raw(s string) *Builder {
	b.buf.WriteString(s)
	return b
}

// Len returns the current length of the file.
func (b *Builder) Len() int64 { return int64(b.buf.Len()) }

// XRef writes a cross-reference table listing the specified object numbers,
// which must be in ascending order, and returns its offset.  Runs of
// consecutive numbers share a subsection.  Object 0 is written as the head of
// the free list; numbers listed in free are written as free entries; all
// others must have been written with Object.
func (b *Builder) XRef(nums []int, free ...int) int64 {
	off := int64(b.buf.Len())
	isFree := make(map[int]bool)
	for _, n := range free {
		isFree[n] = true
	}
	b.buf.WriteString("xref\n")
	for i := 0; i < len(nums); {
		j := i + 1
		for j < len(nums) && nums[j] == nums[j-1]+1 {
			j++
		}
		fmt.Fprintf(&b.buf, "%d %d\n", nums[i], j-i)
		for _, n := range nums[i:j] {
			b.Records[n] = int64(b.buf.Len())
			switch {
			case n == 0:
				fmt.Fprintf(&b.buf, "%010d %05d f%s", 0, 65535, b.eol)
			case isFree[n]:
				fmt.Fprintf(&b.buf, "%010d %05d f%s", 0, 1, b.eol)
			default:
				at, ok := b.offsets[n]
				if !ok {
					panic(fmt.Sprintf("pdftest: object %d was never written", n))
				}
				fmt.Fprintf(&b.buf, "%010d %05d n%s", at, 0, b.eol)
			}
		}
		i = j
	}
	return off
}

// Trailer writes the trailer dictionary, the startxref pointer to xref, and
// the %%EOF marker.  If prev is positive it is written as /Prev.
func (b *Builder) Trailer(size int, xref, prev int64) *Builder {
	b.buf.WriteString("trailer\n<< /Size ")
	fmt.Fprintf(&b.buf, "%d /Root 1 0 R", size)
	if prev > 0 {
		fmt.Fprintf(&b.buf, " /Prev %d", prev)
	}
	fmt.Fprintf(&b.buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return b
}

// Bytes returns a copy of the file built so far.
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// Simple returns a complete single-revision file with objects 1 through n.
// Object 1 is the catalog; the others are dictionaries, and those whose
// numbers are listed in marked contain the text marker.
func Simple(n int, marker string, marked ...int) (pdf []byte, records map[int]int64) {
	b := New("1.4")
	has := make(map[int]bool)
	for _, m := range marked {
		has[m] = true
	}
	nums := []int{0}
	for i := 1; i <= n; i++ {
		switch {
		case i == 1:
			b.Object(i, "<< /Type /Catalog /Pages 2 0 R >>")
		case has[i]:
			b.Object(i, fmt.Sprintf("<< /Length 0 /Note (%s %d) >>", marker, i))
		default:
			b.Object(i, fmt.Sprintf("<< /Index %d >>", i))
		}
		nums = append(nums, i)
	}
	xref := b.XRef(nums)
	b.Trailer(n+1, xref, 0)
	return b.Bytes(), b.Records
}
