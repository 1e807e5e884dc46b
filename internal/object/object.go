// Package object reconstructs the logical byte streams ("objects") that
// sit on top of Pages. Two on-disk revisions exist side by side; both are
// exposed through the same Object capability so Blob and Records never
// need to know which one backs a given index.
package object

import (
	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

// magic is the fixed object-type tag every object header must carry.
const magic = 0xFD1C

// Object is a logically contiguous byte stream stitched together from
// scattered pages via a placement map. It is the only capability Blob and
// Records depend on; everything else about an object's layout is private
// to this package.
type Object interface {
	Size() uint64
	Read(dst []byte, pos uint64) error
}

// Open constructs the revision-appropriate Object for the header page at
// index, dispatching on the database's format version.
func Open(pages *pager.Pages, index uint32) (Object, error) {
	switch pages.Version() {
	case pager.VersionOld:
		return openOld(pages, index)
	case pager.VersionNew:
		return openNew(pages, index)
	default:
		return nil, onecderr.New(onecderr.UnsupportedVersion, "object: unrecognised database version")
	}
}

func pagesUsed(length, pageSize uint64) uint64 {
	n := length / pageSize
	if length%pageSize != 0 {
		n++
	}
	return n
}
