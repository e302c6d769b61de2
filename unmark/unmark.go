// Package unmark neutralizes watermarks in PDF files.  Every in-use object
// reachable from any cross-reference table in the file is scanned for a
// marker string; the table entries of the objects containing it are marked
// free, so that PDF readers treat those objects as deleted.  No bytes are
// removed from the file.
package unmark

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/rothskeller/pdfunmark/observability"
	"github.com/rothskeller/pdfunmark/pdfstruct"
)

const (
	// DefaultMarker is the watermark text searched for when none is given.
	DefaultMarker = "it-ebooks"
	// DefaultSuffix is inserted before the extension of the input file name
	// to make the name of the working copy.
	DefaultSuffix = "_fixed"
)

// Options controls a run.
type Options struct {
	// Marker is the text whose presence in an object marks it as part of
	// the watermark.  Matching is exact and case-sensitive.  Default
	// DefaultMarker.
	Marker string

	// Suffix names the working copy.  Default DefaultSuffix.
	Suffix string

	// InPlace patches the input file itself rather than a copy of it.
	InPlace bool

	// DryRun reports matches without copying or changing anything.
	DryRun bool

	// Workers is the number of files processed at once by RunFiles.
	// Default 1.
	Workers int

	// Logger receives progress and diagnostic messages.  Default
	// observability.NopLogger.
	Logger observability.Logger

	// OnSection, if set, is called with each cross-reference section as
	// soon as it has been parsed.
	OnSection func(path string, sec *pdfstruct.XRefSection)
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Suffix == "" {
		o.Suffix = DefaultSuffix
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	return o
}

// Result summarizes a run over one file.
type Result struct {
	Path      string // input file
	Output    string // file that was patched; empty for a dry run
	Version   string // from the %PDF- header
	Sections  int    // cross-reference sections read
	Scanned   int    // in-use objects read and tested
	Matched   int    // objects containing the marker
	Unpatched int    // matched objects whose records could not be rewritten
	Anomalies int    // xref lines skipped as unparsable
	Saved     int64  // total size of the matched objects
}

// Run scans buf and marks free every in-use entry whose object contains the
// marker.  Sections are processed in file order, and entries in the order
// they appear; nothing is deduplicated between sections.  Run stops at the
// first structural error, leaving any patches already made in place.  If
// opts.DryRun is set, matches are counted but buf is not modified.
func Run(buf *pdfstruct.Buffer, opts Options) (Result, error) {
	return run(buf, "", opts)
}

func run(buf *pdfstruct.Buffer, path string, opts Options) (res Result, err error) {
	var (
		log    observability.Logger
		marker []byte
		last   int64
	)
	opts = opts.withDefaults()
	log, marker, res.Path = opts.Logger, []byte(opts.Marker), path
	if res.Version = buf.Version(); res.Version != "" {
		log.Info("file has PDF version", observability.String("version", res.Version))
	}
	if last, err = buf.FindStartXRef(); err != nil {
		return res, err
	}
	log.Info("found %%EOF and startxref", observability.Int64("offset", last))
	for _, addr := range buf.StartXRefs() {
		var sec *pdfstruct.XRefSection

		log.Debug("found startxref", observability.Int64("offset", addr))
		if sec, err = buf.ReadXRefSection(addr); err != nil {
			return res, fmt.Errorf("reading xref section for startxref at offset %d: %w", addr, err)
		}
		res.Sections++
		log.Info("read xref table", observability.Int64("offset", sec.Offset),
			observability.Int("declared", sec.Declared), observability.Int("actual", len(sec.Entries)))
		for _, a := range sec.Anomalies {
			log.Warn("skipped xref line", observability.Error("err", a))
		}
		res.Anomalies += len(sec.Anomalies)
		if m := sec.Mismatch(); m != nil {
			log.Warn("xref object count mismatch", observability.Error("err", m))
		}
		if opts.OnSection != nil {
			opts.OnSection(res.Path, sec)
		}
		if err = scanSection(buf, sec, marker, opts, &res); err != nil {
			return res, err
		}
	}
	log.Info("finished", observability.Int("matched", res.Matched), observability.Int64("saving", res.Saved))
	return res, nil
}

// scanSection tests each in-use object in the section for the marker and
// frees the entries of those that contain it.
func scanSection(buf *pdfstruct.Buffer, sec *pdfstruct.XRefSection, marker []byte, opts Options, res *Result) error {
	log := opts.Logger
	for i := range sec.Entries {
		var (
			entry = &sec.Entries[i]
			obj   []byte
			err   error
			rwe   *pdfstruct.RecordWidthError
		)
		if !entry.InUse {
			log.Debug("object not in use, skipping", observability.Int("object", entry.Number))
			continue
		}
		if obj, err = buf.ReadObjectAt(entry.Offset); err != nil {
			return fmt.Errorf("reading object %d: %w", entry.Number, err)
		}
		res.Scanned++
		if !bytes.Contains(obj, marker) {
			continue
		}
		res.Matched++
		res.Saved += int64(len(obj))
		log.Debug("found marker", observability.Int("object", entry.Number),
			observability.Int64("offset", entry.Offset), observability.Int("size", len(obj)))
		if opts.DryRun {
			continue
		}
		if err = buf.FreeEntry(entry); errors.As(err, &rwe) {
			log.Warn("cannot mark object free", observability.Int("object", entry.Number), observability.Error("err", err))
			res.Unpatched++
		} else if err != nil {
			return fmt.Errorf("marking object %d free: %w", entry.Number, err)
		}
	}
	return nil
}
