// pdfunmark removes watermarks from PDF files by marking the objects that
// contain them as deleted in the files' cross-reference tables.
//
//	usage: pdfunmark [flags] pdf-file...
//
// Each file is copied to a file of the same name with "_fixed" inserted before
// the extension, and the copy is patched; the original is left unchanged.
// The objects' bytes remain in the copy, so the file does not shrink.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/rothskeller/pdfunmark/observability"
	"github.com/rothskeller/pdfunmark/pdfstruct"
	"github.com/rothskeller/pdfunmark/unmark"
)

func main() {
	var (
		opts    unmark.Options
		verbose bool
		failed  bool
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: pdfunmark [flags] pdf-file...\n")
		flag.PrintDefaults()
	}
	flag.BoolVar(&opts.InPlace, "no-backup", false, "patch the files themselves instead of copies")
	flag.BoolVar(&verbose, "v", false, "report progress in detail")
	flag.StringVar(&opts.Marker, "marker", unmark.DefaultMarker, "watermark text to search for")
	flag.StringVar(&opts.Suffix, "suffix", unmark.DefaultSuffix, "suffix added to the names of the patched copies")
	flag.BoolVar(&opts.DryRun, "n", false, "report watermarked objects without changing anything")
	flag.IntVar(&opts.Workers, "j", 1, "number of files to process at once")
	flag.Parse()
	if flag.NArg() == 0 || opts.Marker == "" {
		flag.Usage()
		os.Exit(2)
	}
	opts.Logger = observability.NewTextLogger(os.Stderr, verbose)
	if verbose {
		opts.OnSection = sectionDumper(os.Stderr)
	}
	for _, r := range unmark.RunFiles(context.Background(), flag.Args(), opts) {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %s\n", r.Path, r.Err)
			failed = true
			continue
		}
		fmt.Printf("[*] %s: matching object count: %d\n", r.Path, r.Matched)
		fmt.Printf("[*] %s: potential saving of %d bytes\n", r.Path, r.Saved)
		if r.Unpatched != 0 {
			fmt.Printf("[*] %s: %d matching objects could not be marked free\n", r.Path, r.Unpatched)
		}
		if r.Output != "" {
			fmt.Printf("[*] %s: changes written to %s\n", r.Path, r.Output)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// sectionDumper returns a function that dumps each parsed cross-reference
// section to w.
func sectionDumper(w io.Writer) func(string, *pdfstruct.XRefSection) {
	var mu sync.Mutex
	cfg := spew.ConfigState{Indent: "    ", DisablePointerAddresses: true}
	return func(path string, sec *pdfstruct.XRefSection) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s: xref section at offset %d:\n", path, sec.Offset)
		cfg.Fdump(w, sec)
	}
}
