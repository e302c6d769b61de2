//go:build unix

package pdfstruct

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapFile maps the contents of fh into memory and returns a Buffer over them.
// If writable is true, the mapping is shared and changes made through the
// Buffer reach the file on Sync or Close; fh must then be open for writing.
// The caller still owns fh and should close it after closing the Buffer.
func MapFile(fh *os.File, writable bool) (b *Buffer, err error) {
	var (
		info os.FileInfo
		data []byte
		prot = unix.PROT_READ
	)
	if info, err = fh.Stat(); err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		// mmap refuses zero-length mappings.
		return NewBuffer(nil), nil
	}
	if int64(int(info.Size())) != info.Size() {
		return nil, fmt.Errorf("%s: file too large to map (%d bytes)", fh.Name(), info.Size())
	}
	if writable {
		prot |= unix.PROT_WRITE
	}
	if data, err = unix.Mmap(int(fh.Fd()), 0, int(info.Size()), prot, unix.MAP_SHARED); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", fh.Name(), err)
	}
	b = &Buffer{data: data}
	if writable {
		b.sync = func(data []byte) error {
			return unix.Msync(data, unix.MS_SYNC)
		}
	}
	b.close = func(data []byte) (err error) {
		if writable {
			err = unix.Msync(data, unix.MS_SYNC)
		}
		if uerr := unix.Munmap(data); err == nil {
			err = uerr
		}
		return err
	}
	return b, nil
}
