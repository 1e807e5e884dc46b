package object

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go1cd/onecd/internal/pager"
)

// buildDatabase writes a complete database file with the given version and
// page size, where page bytes not otherwise specified are left zeroed.
// pages is keyed by page index (0 is the header, filled in automatically).
func buildDatabase(t *testing.T, version, pageSize uint32, pageCount uint32, data map[uint32][]byte) string {
	t.Helper()

	buf := make([]byte, int(pageSize)*int(pageCount))
	copy(buf[:8], pager.Signature[:])
	binary.LittleEndian.PutUint32(buf[8:12], version)
	binary.LittleEndian.PutUint32(buf[12:16], pageCount)
	binary.LittleEndian.PutUint32(buf[20:24], pageSize)

	for idx, content := range data {
		start := int(pageSize) * int(idx)
		copy(buf[start:start+len(content)], content)
	}

	path := filepath.Join(t.TempDir(), "test.1cd")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestOldObjectReadsAcrossPageBoundary(t *testing.T) {
	const pageSize = 4096

	// Object header page at index 1: type, length, 3 reserved words,
	// then blocks [2, 3].
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], pageSize+100) // spans two data pages
	copy(header[20:24], u32le(2))
	copy(header[24:28], u32le(3))

	page2 := make([]byte, pageSize)
	for i := range page2 {
		page2[i] = byte(i % 256)
	}
	page3 := make([]byte, pageSize)
	for i := range page3 {
		page3[i] = byte(200 + i%50)
	}

	path := buildDatabase(t, pager.VersionOld, pageSize, 4, map[uint32][]byte{
		1: header,
		2: page2,
		3: page3,
	})

	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	obj, oerr := Open(pages, 1)
	if oerr != nil {
		t.Fatalf("Open() error = %v", oerr)
	}
	if obj.Size() != pageSize+100 {
		t.Fatalf("Size() = %d, want %d", obj.Size(), pageSize+100)
	}

	dst := make([]byte, 200)
	if err := obj.Read(dst, pageSize-100); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	for i := 0; i < 100; i++ {
		want := byte((pageSize - 100 + i) % 256)
		if dst[i] != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want)
		}
	}
	for i := 0; i < 100; i++ {
		want := byte(200 + i%50)
		if dst[100+i] != want {
			t.Errorf("dst[%d] = %d, want %d", 100+i, dst[100+i], want)
		}
	}
}

func TestOldObjectRejectsBadMagic(t *testing.T) {
	const pageSize = 4096
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(header[0:4], 0x1234)

	path := buildDatabase(t, pager.VersionOld, pageSize, 2, map[uint32][]byte{1: header})
	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	if _, oerr := Open(pages, 1); oerr == nil {
		t.Fatal("Open() error = nil, want error for bad magic")
	}
}

func TestOldObjectReadOutOfBounds(t *testing.T) {
	const pageSize = 4096
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], 50)
	copy(header[20:24], u32le(2))

	path := buildDatabase(t, pager.VersionOld, pageSize, 3, map[uint32][]byte{1: header})
	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	obj, oerr := Open(pages, 1)
	if oerr != nil {
		t.Fatalf("Open() error = %v", oerr)
	}

	dst := make([]byte, 60)
	if err := obj.Read(dst, 0); err == nil {
		t.Error("Read() error = nil, want out-of-bounds error")
	}
}

func TestNewObjectDirectPlacement(t *testing.T) {
	const pageSize = 4096
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint16(header[0:2], magic)
	binary.LittleEndian.PutUint16(header[2:4], pmtDirect)
	binary.LittleEndian.PutUint64(header[16:24], 10)
	copy(header[24:28], u32le(2))

	page2 := make([]byte, pageSize)
	copy(page2, []byte("0123456789"))

	path := buildDatabase(t, pager.VersionNew, pageSize, 3, map[uint32][]byte{
		1: header,
		2: page2,
	})

	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	obj, oerr := Open(pages, 1)
	if oerr != nil {
		t.Fatalf("Open() error = %v", oerr)
	}
	if obj.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", obj.Size())
	}

	dst := make([]byte, 10)
	if err := obj.Read(dst, 0); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(dst) != "0123456789" {
		t.Errorf("Read() = %q, want %q", dst, "0123456789")
	}
}

func TestNewObjectTwoLevelPlacement(t *testing.T) {
	const pageSize = 4096
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint16(header[0:2], magic)
	binary.LittleEndian.PutUint16(header[2:4], pmtTwoLevel)
	binary.LittleEndian.PutUint64(header[16:24], pageSize+10)
	copy(header[24:28], u32le(2)) // PMT page index

	pmt := make([]byte, pageSize)
	copy(pmt[0:4], u32le(3))  // data page for pmt record 0
	copy(pmt[4:8], u32le(4))  // data page for pmt record 1

	data0 := make([]byte, pageSize)
	for i := range data0 {
		data0[i] = byte(i % 256)
	}
	data1 := make([]byte, pageSize)
	copy(data1, []byte("abcdefghij"))

	path := buildDatabase(t, pager.VersionNew, pageSize, 5, map[uint32][]byte{
		1: header,
		2: pmt,
		3: data0,
		4: data1,
	})

	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	obj, oerr := Open(pages, 1)
	if oerr != nil {
		t.Fatalf("Open() error = %v", oerr)
	}

	dst := make([]byte, 10)
	if err := obj.Read(dst, pageSize); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(dst) != "abcdefghij" {
		t.Errorf("Read() = %q, want %q", dst, "abcdefghij")
	}
}

func TestNewObjectRejectsBadPmtType(t *testing.T) {
	const pageSize = 4096
	header := make([]byte, pageSize)
	binary.LittleEndian.PutUint16(header[0:2], magic)
	binary.LittleEndian.PutUint16(header[2:4], 7)
	binary.LittleEndian.PutUint64(header[16:24], 1)

	path := buildDatabase(t, pager.VersionNew, pageSize, 2, map[uint32][]byte{1: header})
	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	defer pages.Close()

	if _, oerr := Open(pages, 1); oerr == nil {
		t.Fatal("Open() error = nil, want error for bad pmt_type")
	}
}
