package unmark_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rothskeller/pdfunmark/internal/pdftest"
	"github.com/rothskeller/pdfunmark/pdfstruct"
	"github.com/rothskeller/pdfunmark/unmark"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("dir", "book_fixed.pdf"), unmark.OutputPath(filepath.Join("dir", "book.pdf"), "_fixed"))
	assert.Equal(t, filepath.Join("a.b", "c_clean.PDF"), unmark.OutputPath(filepath.Join("a.b", "c.PDF"), "_clean"))
	assert.Equal(t, "book_fixed", unmark.OutputPath("book", "_fixed"))
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.pdf")

	err := unmark.Locate(missing)
	assert.ErrorIs(t, err, unmark.ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var nfe *unmark.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, missing, nfe.Path)

	assert.ErrorIs(t, unmark.Locate(dir), unmark.ErrNotFound, "directories are not regular files")
	assert.NoError(t, unmark.Locate(writeFile(t, "x.pdf", []byte("x"))))
}

func TestFileCopiesAndPatches(t *testing.T) {
	pdf, records := pdftest.Simple(8, unmark.DefaultMarker, 2, 5, 7)
	path := writeFile(t, "book.pdf", pdf)

	res, err := unmark.File(path, unmark.Options{})
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, unmark.OutputPath(path, unmark.DefaultSuffix), res.Output)
	assert.Equal(t, 3, res.Matched)

	input, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdf, input, "the input must never be modified")
	output, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assertOnlyRecordsChanged(t, pdf, output, records, 2, 5, 7)

	// A second pass over the patched copy finds nothing left to do.
	res, err = unmark.File(res.Output, unmark.Options{InPlace: true})
	require.NoError(t, err)
	assert.Zero(t, res.Matched)
	again, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, output, again)
}

func TestFileNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.pdf")

	_, err := unmark.File(path, unmark.Options{})
	assert.ErrorIs(t, err, unmark.ErrNotFound)
	_, err = os.Stat(unmark.OutputPath(path, unmark.DefaultSuffix))
	assert.ErrorIs(t, err, os.ErrNotExist, "no copy is made for a missing input")
}

func TestFileInPlace(t *testing.T) {
	pdf, records := pdftest.Simple(8, unmark.DefaultMarker, 2, 5, 7)
	path := writeFile(t, "book.pdf", pdf)

	res, err := unmark.File(path, unmark.Options{InPlace: true})
	require.NoError(t, err)
	assert.Equal(t, path, res.Output)
	patched, err := os.ReadFile(path)
	require.NoError(t, err)
	assertOnlyRecordsChanged(t, pdf, patched, records, 2, 5, 7)
	_, err = os.Stat(unmark.OutputPath(path, unmark.DefaultSuffix))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileDryRun(t *testing.T) {
	pdf, _ := pdftest.Simple(8, unmark.DefaultMarker, 2, 5, 7)
	path := writeFile(t, "book.pdf", pdf)

	res, err := unmark.File(path, unmark.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Matched)
	assert.Empty(t, res.Output)
	input, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdf, input)
	_, err = os.Stat(unmark.OutputPath(path, unmark.DefaultSuffix))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileMalformedLeavesCopyUnchanged(t *testing.T) {
	pdf, _ := pdftest.Simple(8, unmark.DefaultMarker, 2, 5, 7)
	pdf = pdf[:len(pdf)-len("%%EOF\n")]
	path := writeFile(t, "book.pdf", pdf)

	res, err := unmark.File(path, unmark.Options{Suffix: "_clean"})
	assert.ErrorIs(t, err, pdfstruct.ErrMalformed)
	require.NotEmpty(t, res.Output)
	output, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, pdf, output)
}
