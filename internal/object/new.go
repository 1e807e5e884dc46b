package object

import (
	"encoding/binary"

	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

// newHeaderSize is the fixed prefix of the new-revision object header:
// type(2) + pmt_type(2) + three reserved 32-bit words(12) + length(8).
const newHeaderSize = 24

// pmt direct/two-level discriminants.
const (
	pmtDirect   = 0
	pmtTwoLevel = 1
)

// newObject is the newer revision's object layout: either a direct
// data-page array (pmtDirect) or an array of Placement Map Table page
// indices, each holding page_size/4 data-page indices (pmtTwoLevel), and a
// 64-bit byte length.
type newObject struct {
	pages   *pager.Pages
	header  []byte
	pmtType uint16
	length  uint64
}

func openNew(pages *pager.Pages, index uint32) (*newObject, error) {
	pageSize := pages.PageSize()
	if pageSize < newHeaderSize {
		return nil, onecderr.New(onecderr.BadFormat, "object: page size smaller than header")
	}

	header := make([]byte, pageSize)
	if err := pages.Read(header, index, pageSize, 0); err != nil {
		return nil, err
	}

	typ := binary.LittleEndian.Uint16(header[0:2])
	pmtType := binary.LittleEndian.Uint16(header[2:4])
	if typ != magic || (pmtType != pmtDirect && pmtType != pmtTwoLevel) {
		return nil, onecderr.New(onecderr.BadFormat, "object header corrupt: bad type or placement mode")
	}

	length := binary.LittleEndian.Uint64(header[16:24])

	if pagesUsed(length, uint64(pageSize)) > uint64(pages.Size()) {
		return nil, onecderr.New(onecderr.OutOfBounds, "object size greater than database size")
	}

	return &newObject{pages: pages, header: header, pmtType: pmtType, length: length}, nil
}

func (o *newObject) Size() uint64 { return o.length }

// pageIndexDirect treats the header's trailing array as a direct
// data-page index list.
func (o *newObject) pageIndexDirect(pageNum uint32) (uint32, error) {
	recordsInHdr := (uint32(o.pages.PageSize()) - newHeaderSize) / 4
	if pageNum >= recordsInHdr {
		return 0, onecderr.New(onecderr.OutOfBounds, "page number exceeds object placement table")
	}
	off := newHeaderSize + int(pageNum)*4
	return binary.LittleEndian.Uint32(o.header[off : off+4]), nil
}

// pageIndexTwoLevel resolves pageNum through a PMT page looked up from
// the header's trailing array.
func (o *newObject) pageIndexTwoLevel(pageNum uint32) (uint32, error) {
	pageSize := uint32(o.pages.PageSize())
	recordsInHdr := (pageSize - newHeaderSize) / 4
	recordsInPMT := pageSize / 4

	pmtPageNum := pageNum / recordsInPMT
	if pmtPageNum >= recordsInHdr {
		return 0, onecderr.New(onecderr.OutOfBounds, "page number exceeds object placement table")
	}

	off := newHeaderSize + int(pmtPageNum)*4
	pmtPageIndex := binary.LittleEndian.Uint32(o.header[off : off+4])

	pmt, err := o.pages.View(pmtPageIndex, int(pageSize), 0)
	if err != nil {
		return 0, err
	}

	pmtRecordNum := pageNum % recordsInPMT
	recOff := int(pmtRecordNum) * 4
	return binary.LittleEndian.Uint32(pmt[recOff : recOff+4]), nil
}

func (o *newObject) pageIndex(pageNum uint32) (uint32, error) {
	if o.pmtType == pmtTwoLevel {
		return o.pageIndexTwoLevel(pageNum)
	}
	return o.pageIndexDirect(pageNum)
}

func (o *newObject) Read(dst []byte, pos uint64) error {
	count := uint64(len(dst))
	if pos >= o.length || pos+count > o.length || pos+count < pos {
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

		// pageIndex may itself call pages.View (two-level lookups); the
		// slice it returns is consumed inside pageIndex before the
		// read below touches pages again, so no lifetime conflict.
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
