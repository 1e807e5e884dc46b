package pager

import (
	"os"

	"github.com/go1cd/onecd/internal/onecderr"
)

// file wraps positioned, cursor-free reads over an opened OS file. All reads
// take an explicit offset; nothing here depends on (or mutates) a shared
// file cursor, so the same file can be read from arbitrary offsets without
// any seek bookkeeping.
type file struct {
	f    *os.File
	size int64
}

// openFile opens path for reading and stats its size.
func openFile(path string) (*file, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &file{f: f, size: info.Size()}, nil
}

func (fl *file) Size() int64 {
	return fl.size
}

// ReadAt reads exactly len(buf) bytes starting at pos, or returns an error.
func (fl *file) ReadAt(buf []byte, pos int64) error {
	n, err := fl.f.ReadAt(buf, pos)
	if err != nil {
		return onecderr.Wrap(onecderr.SystemIO, "read page data", err)
	}
	if n != len(buf) {
		return onecderr.Newf(onecderr.SystemIO, "short read: got %d of %d bytes", n, len(buf))
	}
	return nil
}

func (fl *file) Close() error {
	return fl.f.Close()
}
