package object

import (
	"encoding/binary"

	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

// oldHeaderSize is the fixed prefix of the old-revision object header:
// type(4) + length(4) + three reserved 32-bit words(12).
const oldHeaderSize = 20

// oldObject is the older revision's object layout: a direct array of
// data-page indices filling the rest of the header page, and a 32-bit
// byte length.
type oldObject struct {
	pages  *pager.Pages
	header []byte
	length uint32
}

func openOld(pages *pager.Pages, index uint32) (*oldObject, error) {
	pageSize := pages.PageSize()
	if pageSize < oldHeaderSize {
		return nil, onecderr.New(onecderr.BadFormat, "object: page size smaller than header")
	}

	header := make([]byte, pageSize)
	if err := pages.Read(header, index, pageSize, 0); err != nil {
		return nil, err
	}

	if binary.LittleEndian.Uint32(header[0:4]) != magic {
		return nil, onecderr.New(onecderr.BadFormat, "object header corrupt: bad type magic")
	}

	length := binary.LittleEndian.Uint32(header[4:8])

	if pagesUsed(uint64(length), uint64(pageSize)) > uint64(pages.Size()) {
		return nil, onecderr.New(onecderr.OutOfBounds, "object size greater than database size")
	}

	return &oldObject{pages: pages, header: header, length: length}, nil
}

func (o *oldObject) Size() uint64 { return uint64(o.length) }

func (o *oldObject) pageIndex(pageNum uint32) (uint32, error) {
	recordsInHdr := (uint32(o.pages.PageSize()) - oldHeaderSize) / 4
	if pageNum >= recordsInHdr {
		return 0, onecderr.New(onecderr.OutOfBounds, "page number exceeds object placement table")
	}
	off := oldHeaderSize + int(pageNum)*4
	return binary.LittleEndian.Uint32(o.header[off : off+4]), nil
}

func (o *oldObject) Read(dst []byte, pos uint64) error {
	count := uint64(len(dst))
	if pos >= uint64(o.length) || pos+count > uint64(o.length) || pos+count < pos {
		return onecderr.New(onecderr.OutOfBounds, "requested interval exceeds object size")
	}

	pageSize := uint64(o.pages.PageSize())
	pageNum := uint32(pos / pageSize)
	posInPage := int(pos % pageSize)
	written := 0

	for count > 0 {
		toRead := int(pageSize) - posInPage
		if uint64(toRead) > count {
			toRead = int(count)
		}

		pageIdx, err := o.pageIndex(pageNum)
		if err != nil {
			return err
		}

		if err := o.pages.Read(dst[written:written+toRead], pageIdx, toRead, posInPage); err != nil {
			return err
		}

		count -= uint64(toRead)
		written += toRead
		posInPage = 0
		pageNum++
	}

	return nil
}
