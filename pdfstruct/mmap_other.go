//go:build !unix

package pdfstruct

import (
	"io"
	"os"
)

// MapFile reads the contents of fh into memory and returns a Buffer over them.
// If writable is true, the contents are written back to fh on Sync or Close;
// fh must then be open for writing.  The caller still owns fh and should
// close it after closing the Buffer.
func MapFile(fh *os.File, writable bool) (b *Buffer, err error) {
	var data []byte

	if _, err = fh.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if data, err = io.ReadAll(fh); err != nil {
		return nil, err
	}
	b = NewBuffer(data)
	if writable {
		b.sync = func(data []byte) error {
			_, err := fh.WriteAt(data, 0)
			return err
		}
		b.close = b.sync
	}
	return b, nil
}
