package onecd

import (
	"unicode/utf16"

	"github.com/go1cd/onecd/internal/blob"
	"github.com/go1cd/onecd/internal/descriptor"
	"github.com/go1cd/onecd/internal/field"
	"github.com/go1cd/onecd/internal/pager"
	"github.com/go1cd/onecd/internal/record"
)

// Table is a row cursor over one catalogued table, plus the BLOB object
// backing any long-string or long-binary column it declares.
type Table struct {
	schema  descriptor.TableSchema
	records *record.Records
	blobs   *blobReader
}

// Name returns the table's declared name.
func (t *Table) Name() string {
	return t.schema.Name
}

// RecordLock reports whether the table declares record-level locking.
func (t *Table) RecordLock() bool {
	return t.schema.RecordLock
}

// Columns returns the table's column schema in declared order, for
// introspection (e.g. a CLI --describe mode) beyond the bare FieldIndex
// lookup.
func (t *Table) Columns() []field.Params {
	return t.records.Columns()
}

// Size returns the number of rows in the table.
func (t *Table) Size() uint32 {
	return t.records.Size()
}

// Seek loads row i into the cursor.
func (t *Table) Seek(i uint32) error {
	return wrap(t.records.Seek(i))
}

// IsDeleted reports whether the currently seeked row is a tombstone.
func (t *Table) IsDeleted() bool {
	return t.records.IsDeleted()
}

// FieldIndex maps a column name to its index for use with GetField.
func (t *Table) FieldIndex(name string) (int, error) {
	idx, err := t.records.FieldIndex(name)
	return idx, wrap(err)
}

// GetField decodes column index of the currently seeked row as T. The
// second return value is false when the column is null.
func GetField[T any](t *Table, index int) (T, bool, error) {
	v, ok, err := record.GetField[T](t.records, index)
	return v, ok, wrap(err)
}

// blobReader wraps the internal blob.Blob so Table.ReadLongString and
// Table.ReadLongBinary can resolve a StrBlobRef/BinBlobRef without handing
// the caller an internal type.
type blobReader struct {
	b *blob.Blob
}

func openBlobReader(pages *pager.Pages, index uint32) (*blobReader, error) {
	b, err := blob.Open(pages, index)
	if err != nil {
		return nil, err
	}
	return &blobReader{b: b}, nil
}

// ReadLongString resolves a StrBlobRef column's value into a string,
// decompressing if the stored size disagrees with the chain's raw length
// (the original format compresses long strings whenever doing so shrinks
// them). The text must start with a UTF-8 byte order mark, which is
// stripped; a body without it is an error.
func (t *Table) ReadLongString(ref field.StrBlobRef) (string, error) {
	if t.blobs == nil {
		return "", &Error{Kind: BadFormat, Msg: "onecd: table has no BLOB object for a long-string column"}
	}
	raw, err := t.blobs.b.Get(ref.Index, 0)
	if err != nil {
		return "", wrap(err)
	}
	body, derr := decodeLongText(raw, uint64(ref.Size))
	if derr != nil {
		return "", wrap(derr)
	}
	return body, nil
}

// ReadLongBinary resolves a BinBlobRef column's value into its raw bytes,
// decompressing when the chain's length differs from the declared size.
func (t *Table) ReadLongBinary(ref field.BinBlobRef) ([]byte, error) {
	if t.blobs == nil {
		return nil, &Error{Kind: BadFormat, Msg: "onecd: table has no BLOB object for a long-binary column"}
	}
	raw, err := t.blobs.b.Get(ref.Index, 0)
	if err != nil {
		return nil, wrap(err)
	}
	if uint64(len(raw)) == uint64(ref.Size) {
		return raw, nil
	}
	out, derr := blob.Decompress(raw, uint64(ref.Size))
	if derr != nil {
		return nil, wrap(derr)
	}
	return out, nil
}

func decodeLongText(raw []byte, declaredSize uint64) (string, error) {
	data := raw
	if uint64(len(raw)) != declaredSize {
		decompressed, err := blob.Decompress(raw, declaredSize)
		if err != nil {
			return "", err
		}
		data = decompressed
	}
	units, err := blob.Utf8ToUtf16(data)
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(units)), nil
}
