// pdfinspect dumps the cross-reference structure of a PDF file, or the raw
// bytes of objects listed in it.
//
//	usage: pdfinspect [-marker text] pdf-file [path]
//
// Without a path, every cross-reference section is listed with its entries.
// A path is a section index, optionally followed by a slash and an entry
// index, with sections and entries numbered from zero in file order.  A
// section path dumps the whole parsed section; an entry path dumps the bytes
// of the object that entry points to, and says whether the object contains
// the marker.  Either component may be "*" to select all of them.  The file
// is never modified.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/rothskeller/pdfunmark/pdfstruct"
	"github.com/rothskeller/pdfunmark/unmark"
)

func main() {
	var (
		fh       *os.File
		buf      *pdfstruct.Buffer
		sections []*pdfstruct.XRefSection
		path     []string
		marker   string
		err      error
	)
	flag.StringVar(&marker, "marker", unmark.DefaultMarker, "watermark text to search for in dumped objects")
	flag.Parse()
	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintf(os.Stderr, "usage: pdfinspect [-marker text] pdf-file [section[/entry]]\n")
		os.Exit(2)
	}
	if err = unmark.Locate(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
	if fh, err = os.Open(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
	defer fh.Close()
	if buf, err = pdfstruct.MapFile(fh, false); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", flag.Arg(0), err)
		os.Exit(1)
	}
	defer buf.Close()
	if sections, err = buf.ReadXRef(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", flag.Arg(0), err)
		os.Exit(1)
	}
	if flag.NArg() == 1 {
		list(buf, sections)
		return
	}
	path = strings.Split(flag.Arg(1), "/")
	if len(path) > 2 {
		fmt.Fprintf(os.Stderr, "ERROR: %q has too many components\n", flag.Arg(1))
		os.Exit(2)
	}
	for _, si := range indexes(path[0], len(sections), "section") {
		sec := sections[si]
		if len(path) == 1 {
			fmt.Printf("section[%d] = ", si)
			spew.Dump(sec)
			continue
		}
		for _, ei := range indexes(path[1], len(sec.Entries), fmt.Sprintf("section[%d] entry", si)) {
			dumpEntry(buf, si, ei, sec.Entries[ei], []byte(marker))
		}
	}
}

// indexes returns the indexes selected by a path component:  all of them for
// "*", or the single one named.
func indexes(comp string, count int, what string) (idx []int) {
	if comp == "*" {
		for i := 0; i < count; i++ {
			idx = append(idx, i)
		}
		return idx
	}
	i, err := strconv.Atoi(comp)
	if err != nil || i < 0 {
		fmt.Fprintf(os.Stderr, "ERROR: %q is not a valid %s index\n", comp, what)
		os.Exit(2)
	}
	if i >= count {
		fmt.Fprintf(os.Stderr, "ERROR: %s index %d is out of bounds (count %d)\n", what, i, count)
		os.Exit(1)
	}
	return []int{i}
}

func list(buf *pdfstruct.Buffer, sections []*pdfstruct.XRefSection) {
	if v := buf.Version(); v != "" {
		fmt.Printf("PDF version %s\n", v)
	}
	for si, sec := range sections {
		fmt.Printf("section[%d] startxref=%d xref=%d declared=%d entries=%d\n",
			si, sec.StartXRef, sec.Offset, sec.Declared, len(sec.Entries))
		for ei, e := range sec.Entries {
			state := "f"
			if e.InUse {
				state = "n"
			}
			fmt.Printf("    [%d] #%d offset=%d gen=%d %s record=%d\n", ei, e.Number, e.Offset, e.Generation, state, e.Record)
		}
		for _, a := range sec.Anomalies {
			fmt.Printf("    skipped: %s\n", a)
		}
		if m := sec.Mismatch(); m != nil {
			fmt.Printf("    warning: %s\n", m)
		}
	}
}

func dumpEntry(buf *pdfstruct.Buffer, si, ei int, e pdfstruct.XRefEntry, marker []byte) {
	fmt.Printf("section[%d]/%d = (#%d,%d) ", si, ei, e.Number, e.Generation)
	if !e.InUse {
		fmt.Println("free")
		return
	}
	obj, err := buf.ReadObjectAt(e.Offset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: section[%d]/%d: %s\n", si, ei, err)
		os.Exit(1)
	}
	fmt.Printf("-> offset %d, %d bytes, marker found: %v\n", e.Offset, len(obj), bytes.Contains(obj, marker))
	spew.Dump(obj)
}
