// Package pager implements the paged block device over a .1CD file: header
// parsing, the page buffer pool, and page lookup through a 2Q cache. Every
// higher layer (object, blob, field, record, descriptor) reads through
// Pages.View/Read and nothing else touches the file.
package pager

import (
	"math"

	"github.com/go1cd/onecd/internal/cache"
	"github.com/go1cd/onecd/internal/logging"
	"github.com/go1cd/onecd/internal/onecderr"
)

// Pages owns the open database file, its header, and a cache_size+1 page
// buffer pool shared between the free list and the 2Q cache. It is
// immovable after construction: pointers returned by View reference slots
// inside pool, so Pages must outlive every Object/Blob/Records/Root built
// on it.
type Pages struct {
	file   *file
	header Header

	cacheSize int
	pool      [][]byte // cacheSize+1 slots, each header.PageSize bytes
	free      []int    // indices into pool currently unused by the cache
	queue     *cache.TwoQ[uint32, int]
}

// Open opens path, validates the .1CD header, and allocates a page cache
// holding cacheSize pages (plus one spare slot to absorb a load before
// eviction, per spec §4.3).
func Open(path string, cacheSize int) (*Pages, *OpenError) {
	if cacheSize < 1 {
		panic("pager: cache size must be at least 1 page")
	}

	f, err := openFile(path)
	if err != nil {
		return nil, &OpenError{Code: OpenErrFileSystem, Err: err}
	}

	hdrBuf := make([]byte, HeaderSize)
	if err := f.ReadAt(hdrBuf, 0); err != nil {
		f.Close()
		return nil, &OpenError{Code: OpenErrFileSystem, Err: err}
	}

	header, openErr := parseHeader(hdrBuf)
	if openErr != nil {
		f.Close()
		return nil, openErr
	}

	expectedSize := int64(header.Length) * int64(header.PageSize)
	if f.Size() != expectedSize {
		f.Close()
		return nil, &OpenError{Code: OpenErrBadFile}
	}

	slots := cacheSize + 1
	pool := make([][]byte, slots)
	free := make([]int, slots)
	for i := range pool {
		pool[i] = make([]byte, header.PageSize)
		free[i] = i
	}

	return &Pages{
		file:      f,
		header:    header,
		cacheSize: cacheSize,
		pool:      pool,
		free:      free,
		queue:     cache.NewTwoQ[uint32, int](cacheSize),
	}, nil
}

// Close releases the underlying file handle.
func (p *Pages) Close() error {
	return p.file.Close()
}

// Version returns the database format version tag.
func (p *Pages) Version() uint32 {
	return p.header.Version
}

// PageSize returns the page size in bytes.
func (p *Pages) PageSize() int {
	return int(p.header.PageSize)
}

// Size returns the number of pages in the database, including page 0 (the
// header page, which is not addressable through View).
func (p *Pages) Size() uint32 {
	return p.header.Length
}

// View returns a slice into a cache slot holding page index's data at
// offset, valid only until the next call to View or Read on this Pages.
// Callers that need the bytes to outlive that call must copy them.
func (p *Pages) View(index uint32, count, offset int) ([]byte, error) {
	if index == 0 || index >= p.header.Length {
		return nil, onecderr.Newf(onecderr.OutOfBounds, "page index %d out of range [1,%d)", index, p.header.Length)
	}

	pageSize := int(p.header.PageSize)
	if offset < 0 || count < 0 || offset > pageSize || count > pageSize-offset {
		return nil, onecderr.Newf(onecderr.OutOfBounds, "offset %d count %d exceed page size %d", offset, count, pageSize)
	}
	if offset+count < offset { // overflow, unreachable on 64-bit int but kept for fidelity
		return nil, onecderr.New(onecderr.OutOfBounds, "offset+count overflow")
	}

	if slot, ok := p.queue.Find(index); ok {
		logging.Debug("pager: cache hit", "page", index)
		return p.pool[slot][offset : offset+count], nil
	}

	logging.Debug("pager: cache miss", "page", index)

	if len(p.free) == 0 {
		return nil, onecderr.New(onecderr.OutOfBounds, "no free cache slot available")
	}

	// Peek, don't pop: the free pool must stay untouched until the read
	// below succeeds, so a failing read leaves cache state unchanged.
	slot := p.free[len(p.free)-1]

	pos := int64(p.header.PageSize) * int64(index)
	if err := p.file.ReadAt(p.pool[slot], pos); err != nil {
		return nil, err
	}

	p.free = p.free[:len(p.free)-1]

	evictedKey, evictedSlot, evicted := p.queue.Push(index, slot)
	if evicted {
		logging.Debug("pager: cache evicted page", "evicted_page", evictedKey, "admitted_page", index)
		p.free = append(p.free, evictedSlot)
	}

	return p.pool[slot][offset : offset+count], nil
}

// Read copies count bytes from page index at offset into dst.
func (p *Pages) Read(dst []byte, index uint32, count, offset int) error {
	src, err := p.View(index, count, offset)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// maxPageIndex is the largest page index a 32-bit page reference can
// hold. View bounds indices by the header's page count instead.
const maxPageIndex = math.MaxUint32
