// Package record lays fixed-width typed fields over a record stride
// computed from a table schema, and provides the seek/is-deleted/get-field
// row cursor built on top of an Object.
package record

import (
	"github.com/go1cd/onecd/internal/field"
	"github.com/go1cd/onecd/internal/object"
	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

type column struct {
	params field.Params
	shift  int
	size   int
}

// Records is a row cursor over an Object given a field schema. It caches
// exactly the last successfully read row.
type Records struct {
	obj     object.Object
	columns []column
	byName  map[string]int
	stride  int
	count   uint32
	buffer  []byte
	seeked  bool
	lastIdx uint32
}

// minStride is the smallest stride a row can have: the tombstone byte
// plus enough room for a deleted-record free-list link.
const minStride = 5

// Open builds a Records cursor over the object at objectIndex, using
// columns (in declared order) to compute the record stride.
func Open(pages *pager.Pages, objectIndex uint32, columns []field.Params) (*Records, error) {
	obj, err := object.Open(pages, objectIndex)
	if err != nil {
		return nil, err
	}

	cols := make([]column, len(columns))
	byName := make(map[string]int, len(columns))
	shift := 1 // leading tombstone byte
	for i, p := range columns {
		w := p.SlotWidth()
		cols[i] = column{params: p, shift: shift, size: w}
		byName[p.Name] = i
		shift += w
	}

	stride := shift
	if stride < minStride {
		stride = minStride
	}

	size := obj.Size()
	if size%uint64(stride) != 0 {
		return nil, onecderr.New(onecderr.BadFormat, "records: object size is not a multiple of the record stride")
	}

	count := size / uint64(stride)
	if count > 0xFFFFFFFF {
		return nil, onecderr.New(onecderr.OutOfBounds, "records: record count exceeds 32 bits")
	}

	return &Records{
		obj:     obj,
		columns: cols,
		byName:  byName,
		stride:  stride,
		count:   uint32(count),
		buffer:  make([]byte, stride),
	}, nil
}

// Size returns the number of records in the table.
func (r *Records) Size() uint32 {
	return r.count
}

// Seek loads record i into the cursor's buffer. Re-seeking the
// already-loaded index is a no-op; any other seek clears the cursor
// before reading, so a failed read leaves it unseeked.
func (r *Records) Seek(i uint32) error {
	if i >= r.count {
		return onecderr.Newf(onecderr.OutOfBounds, "records: index %d exceeds record count %d", i, r.count)
	}
	if r.seeked && r.lastIdx == i {
		return nil
	}

	r.seeked = false
	if err := r.obj.Read(r.buffer, uint64(i)*uint64(r.stride)); err != nil {
		return err
	}
	r.lastIdx = i
	r.seeked = true
	return nil
}

func (r *Records) mustBeSeeked() {
	if !r.seeked {
		panic("record: field or deletion access before a successful seek")
	}
}

// IsDeleted reports whether the currently seeked row is a tombstone.
func (r *Records) IsDeleted() bool {
	r.mustBeSeeked()
	return r.buffer[0] == 1
}

// FieldIndex maps a column name to its index for use with GetField.
func (r *Records) FieldIndex(name string) (int, error) {
	idx, ok := r.byName[name]
	if !ok {
		return 0, onecderr.Newf(onecderr.OutOfBounds, "records: field %q not found", name)
	}
	return idx, nil
}

// Columns returns the schema's column parameters in declared order.
func (r *Records) Columns() []field.Params {
	out := make([]field.Params, len(r.columns))
	for i, c := range r.columns {
		out[i] = c.params
	}
	return out
}

// GetField decodes column index of the currently seeked, non-deleted row
// as T. The second return value is false when the column is null; the
// payload is then left undecoded, matching the on-disk contract that a
// null slot's bytes carry no meaning. A T that does not match the
// column's declared field type is reported as onecderr.TypeMismatch.
func GetField[T any](r *Records, index int) (T, bool, error) {
	var zero T
	r.mustBeSeeked()
	if r.IsDeleted() {
		panic("record: field access on a deleted row")
	}

	col := r.columns[index]
	slot := r.buffer[col.shift : col.shift+col.size]

	payload := slot
	if col.params.NullExists {
		if slot[0] == 0 {
			return zero, false, nil
		}
		payload = slot[1:]
	}

	v, err := field.Decode(col.params, payload)
	if err != nil {
		return zero, false, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false, onecderr.Newf(onecderr.TypeMismatch,
			"records: field %q is %s, not the requested type", col.params.Name, col.params.Type)
	}
	return typed, true, nil
}
