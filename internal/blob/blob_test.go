package blob

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/go1cd/onecd/internal/pager"
)

const testPageSize = 4096

// blockSpec describes one blob block to bake into a data page.
type blockSpec struct {
	next   uint32
	length uint16
	data   []byte
}

// openBlobDatabase builds a complete database file with a single object
// (header page index 1, data page index 2) holding the given blocks, and
// opens it through the pager.
func openBlobDatabase(t *testing.T, numBlocks int, blocks []blockSpec) (*pager.Pages, func()) {
	t.Helper()

	header := make([]byte, testPageSize)
	binary.LittleEndian.PutUint16(header[0:2], 0xFD1C)
	binary.LittleEndian.PutUint16(header[2:4], 0)
	binary.LittleEndian.PutUint64(header[16:24], uint64(numBlocks)*blockSize)
	binary.LittleEndian.PutUint32(header[24:28], 2)

	dataPage := make([]byte, testPageSize)
	for i, b := range blocks {
		off := i * blockSize
		binary.LittleEndian.PutUint32(dataPage[off:off+4], b.next)
		binary.LittleEndian.PutUint16(dataPage[off+4:off+6], b.length)
		copy(dataPage[off+6:off+6+int(b.length)], b.data)
	}

	buf := make([]byte, testPageSize*3)
	copy(buf[:8], pager.Signature[:])
	binary.LittleEndian.PutUint32(buf[8:12], pager.VersionNew)
	binary.LittleEndian.PutUint32(buf[12:16], 3)
	binary.LittleEndian.PutUint32(buf[20:24], testPageSize)
	copy(buf[testPageSize:testPageSize*2], header)
	copy(buf[testPageSize*2:testPageSize*3], dataPage)

	path := filepath.Join(t.TempDir(), "test.1cd")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pages, err := pager.Open(path, 4)
	if err != nil {
		t.Fatalf("pager.Open() error = %v", err)
	}
	return pages, func() { pages.Close() }
}

func TestBlobGetSingleBlockChain(t *testing.T) {
	pages, closeFn := openBlobDatabase(t, 2, []blockSpec{
		{}, // block 0, the end-of-chain sentinel
		{next: 0, length: 5, data: []byte("hello")},
	})
	defer closeFn()

	b, err := Open(pages, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := b.Get(1, 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get() = %q, want %q", got, "hello")
	}
}

func TestBlobGetMultiBlockChain(t *testing.T) {
	pages, closeFn := openBlobDatabase(t, 3, []blockSpec{
		{},
		{next: 2, length: 3, data: []byte("abc")},
		{next: 0, length: 3, data: []byte("def")},
	})
	defer closeFn()

	b, err := Open(pages, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := b.Get(1, 6)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "abcdef" {
		t.Errorf("Get() = %q, want %q", got, "abcdef")
	}
}

func TestBlobGetRejectsZeroStartIndex(t *testing.T) {
	pages, closeFn := openBlobDatabase(t, 2, []blockSpec{
		{next: 0, length: 1, data: []byte("a")},
	})
	defer closeFn()

	b, err := Open(pages, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := b.Get(0, 0); err == nil {
		t.Error("Get(0, ...) error = nil, want error for zero start index")
	}
}

func TestBlobGetDetectsLoop(t *testing.T) {
	// Block 1 links to block 2, block 2 links back to block 1: neither
	// ever sets nextblock=0, so the chain never terminates.
	pages, closeFn := openBlobDatabase(t, 3, []blockSpec{
		{},
		{next: 2, length: 1, data: []byte("a")},
		{next: 1, length: 1, data: []byte("b")},
	})
	defer closeFn()

	b, err := Open(pages, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := b.Get(1, 0); err == nil {
		t.Error("Get() error = nil, want loop detection error")
	}
}

func TestBlobGetOversizeExpected(t *testing.T) {
	pages, closeFn := openBlobDatabase(t, 3, []blockSpec{
		{},
		{next: 2, length: 10, data: bytes.Repeat([]byte("x"), 10)},
		{next: 0, length: 10, data: bytes.Repeat([]byte("y"), 10)},
	})
	defer closeFn()

	b, err := Open(pages, 1)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := b.Get(1, 10); err == nil {
		t.Error("Get() error = nil, want CorruptStream for undersized expected_size")
	}
}

func TestDecompressRawDeflate(t *testing.T) {
	var compressed bytes.Buffer
	zw, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	want := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)
	if _, err := zw.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := Decompress(compressed.Bytes(), 1<<20)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Decompress() mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
}

func TestDecompressRejectsOversizeInput(t *testing.T) {
	if _, err := Decompress(make([]byte, 100), 10); err == nil {
		t.Error("Decompress() error = nil, want OversizeInput")
	}
}

func TestUtf8ToUtf16RequiresBOM(t *testing.T) {
	if _, err := Utf8ToUtf16([]byte("no bom here")); err == nil {
		t.Error("Utf8ToUtf16() error = nil, want error for missing BOM")
	}
}

func TestUtf8ToUtf16EmptyBody(t *testing.T) {
	got, err := Utf8ToUtf16([]byte{0xEF, 0xBB, 0xBF})
	if err != nil {
		t.Fatalf("Utf8ToUtf16() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Utf8ToUtf16() = %v, want empty", got)
	}
}

func TestUtf8ToUtf16ConvertsBody(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hi")...)
	got, err := Utf8ToUtf16(src)
	if err != nil {
		t.Fatalf("Utf8ToUtf16() error = %v", err)
	}
	want := []uint16{'h', 'i'}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Utf8ToUtf16() = %v, want %v", got, want)
	}
}
