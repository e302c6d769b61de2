package unmark

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rothskeller/pdfunmark/observability"
	"github.com/rothskeller/pdfunmark/pdfstruct"
)

// ErrNotFound is matched (with errors.Is) by every NotFoundError.
var ErrNotFound = errors.New("file not found")

// A NotFoundError reports an input path that is not a regular file.
type NotFoundError struct {
	Path string
	Err  error // from os.Stat, if any
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s does not exist: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("%s is not a regular file", e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) Unwrap() error        { return e.Err }

// Locate verifies that path names an existing regular file.
func Locate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &NotFoundError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &NotFoundError{Path: path}
	}
	return nil
}

// OutputPath returns the name of the working copy for path:  the same
// directory and name, with suffix inserted before the extension.
func OutputPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// A Document is a PDF file mapped into memory for patching.
type Document struct {
	*pdfstruct.Buffer
	Path string // the file the buffer is mapped from
	fh   *os.File
}

// Close flushes any changes to the file and closes it.
func (d *Document) Close() error {
	err := d.Buffer.Close()
	if cerr := d.fh.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open locates the input file and opens the file that will be patched.
// Normally that is a fresh copy of the input, named by OutputPath, and the
// input itself is never touched.  With opts.InPlace the input is opened for
// writing directly; with opts.DryRun it is opened read-only.
func Open(path string, opts Options) (doc *Document, err error) {
	opts = opts.withDefaults()
	if err = Locate(path); err != nil {
		return nil, err
	}
	doc = &Document{Path: path}
	switch {
	case opts.DryRun:
		doc.fh, err = os.Open(path)
	case opts.InPlace:
		doc.fh, err = os.OpenFile(path, os.O_RDWR, 0)
	default:
		doc.Path = OutputPath(path, opts.Suffix)
		opts.Logger.Info("making a copy", observability.String("from", path), observability.String("to", doc.Path))
		if err = copyFile(path, doc.Path); err != nil {
			return nil, err
		}
		doc.fh, err = os.OpenFile(doc.Path, os.O_RDWR, 0)
	}
	if err != nil {
		return nil, err
	}
	if doc.Buffer, err = pdfstruct.MapFile(doc.fh, !opts.DryRun); err != nil {
		doc.fh.Close()
		return nil, err
	}
	return doc, nil
}

// copyFile copies src to dst byte for byte, replacing dst if it exists.
func copyFile(src, dst string) (err error) {
	var (
		in   *os.File
		out  *os.File
		info os.FileInfo
	)
	if in, err = os.Open(src); err != nil {
		return err
	}
	defer in.Close()
	if info, err = in.Stat(); err != nil {
		return err
	}
	if out, err = os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()); err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// File runs the whole pipeline on one input file and returns the result.
// The working file is flushed and closed before File returns, even on error.
func File(path string, opts Options) (res Result, err error) {
	var doc *Document

	opts = opts.withDefaults()
	if doc, err = Open(path, opts); err != nil {
		return Result{Path: path}, err
	}
	if !opts.DryRun {
		opts.Logger.Info("making all changes", observability.String("file", doc.Path))
	}
	res, err = run(doc.Buffer, path, opts)
	if !opts.DryRun {
		res.Output = doc.Path
	}
	if cerr := doc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", doc.Path, cerr)
	}
	return res, err
}
