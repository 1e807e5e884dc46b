// Package descriptor parses the database's table catalog: a distinguished
// BLOB object listing every table by name and a per-table textual
// descriptor parsed by regular expression into a schema.
package descriptor

import (
	"encoding/binary"

	"github.com/go1cd/onecd/internal/blob"
	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

// RootObjectIndex is the fixed page index of the database-wide catalog
// object.
const RootObjectIndex = 2

// rootPrefixSize is the 32-byte language tag plus the 32-bit table count
// that precede the table index array in the root BLOB's first block.
const rootPrefixSize = 36

// Root enumerates every table in the database as a reference into the
// catalog BLOB.
type Root struct {
	blob       *blob.Blob
	lang       [32]byte
	tableBlobs []uint32
}

// OpenRoot constructs a Root over the database's fixed catalog object.
func OpenRoot(pages *pager.Pages) (*Root, error) {
	b, err := blob.Open(pages, RootObjectIndex)
	if err != nil {
		return nil, err
	}

	hdr, err := b.Get(1, 0)
	if err != nil {
		return nil, err
	}

	if len(hdr) < rootPrefixSize {
		return nil, onecderr.New(onecderr.BadFormat, "descriptor: root header shorter than its fixed prefix")
	}

	tablesCount := (len(hdr) - rootPrefixSize) / 4
	declaredCount := binary.LittleEndian.Uint32(hdr[32:36])
	if uint32(tablesCount) != declaredCount {
		return nil, onecderr.New(onecderr.BadFormat, "descriptor: root table count disagrees with header length")
	}

	root := &Root{blob: b, tableBlobs: make([]uint32, tablesCount)}
	copy(root.lang[:], hdr[:32])
	for i := 0; i < tablesCount; i++ {
		off := rootPrefixSize + i*4
		root.tableBlobs[i] = binary.LittleEndian.Uint32(hdr[off : off+4])
	}

	return root, nil
}

// Size returns the number of tables catalogued in the database.
func (r *Root) Size() uint32 {
	return uint32(len(r.tableBlobs))
}

// Language returns the database's language tag, e.g. "ru_RU", NUL-padded
// to 32 bytes on disk.
func (r *Root) Language() string {
	n := 0
	for n < len(r.lang) && r.lang[n] != 0 {
		n++
	}
	return string(r.lang[:n])
}

// Read fetches the raw descriptor text for table num, widened byte-for-byte
// into UTF-16 code units without UTF-8 decoding — this mirrors a
// self-acknowledged bug in the original implementation. It is kept only
// for bug-compatible round-tripping; Get decodes the same descriptor
// properly and is what callers should use.
func (r *Root) Read(num uint32) ([]uint16, error) {
	if num >= r.Size() {
		return nil, onecderr.Newf(onecderr.OutOfBounds, "descriptor: table index %d exceeds table count %d", num, r.Size())
	}

	raw, err := r.blob.Get(r.tableBlobs[num], 0)
	if err != nil {
		return nil, err
	}

	widened := make([]uint16, len(raw))
	for i, b := range raw {
		widened[i] = uint16(b)
	}
	return widened, nil
}

// Get fetches and parses table num's descriptor into a schema, decoding
// the descriptor bytes as proper UTF-8 rather than widening them.
func (r *Root) Get(num uint32) (TableSchema, error) {
	if num >= r.Size() {
		return TableSchema{}, onecderr.Newf(onecderr.OutOfBounds, "descriptor: table index %d exceeds table count %d", num, r.Size())
	}

	raw, err := r.blob.Get(r.tableBlobs[num], 0)
	if err != nil {
		return TableSchema{}, err
	}

	return Parse(string(raw))
}
