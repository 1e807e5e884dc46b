// Package blob walks the singly-linked chains of fixed-capacity blocks
// that 1CD stores outside the table row layout: long strings and binary
// data. It sits on top of an Object and adds raw-DEFLATE decompression and
// UTF-8-to-UTF-16 conversion for the callers that need it.
package blob

import (
	"encoding/binary"

	"github.com/go1cd/onecd/internal/object"
	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

const (
	blockSize = 256
	dataSize  = 250
)

// Blob is a byte stream stored as a chain of blockSize-byte blocks inside
// an Object. Block 0 is the end-of-chain sentinel, never a real block
// index: Get rejects a start index of 0, treats a nextblock link of 0 as
// the end of the chain, and validates every other index against
// blockCount.
type Blob struct {
	obj        object.Object
	blockCount uint32
}

// Open constructs a Blob over the object at index, validating that the
// object's size is a non-zero multiple of the block size and that its
// block count fits in 32 bits.
func Open(pages *pager.Pages, index uint32) (*Blob, error) {
	obj, err := object.Open(pages, index)
	if err != nil {
		return nil, err
	}

	size := obj.Size()
	if size == 0 || size%blockSize != 0 {
		return nil, onecderr.New(onecderr.BadFormat, "blob: object size is not a non-zero multiple of the block size")
	}

	blocks := size / blockSize
	if blocks > 0xFFFFFFFF {
		return nil, onecderr.New(onecderr.OutOfBounds, "blob: block count exceeds 32 bits")
	}

	return &Blob{obj: obj, blockCount: uint32(blocks)}, nil
}

// Get follows the chain starting at startIndex and returns its assembled
// bytes. When expectedSize is nonzero, the accumulated size is checked
// against it both along the way (capacity) and at the end (exact match).
func (b *Blob) Get(startIndex uint32, expectedSize uint64) ([]byte, error) {
	if startIndex == 0 {
		return nil, onecderr.New(onecderr.OutOfBounds, "blob: start index must be non-zero")
	}

	var result []byte
	block := make([]byte, blockSize)
	index := startIndex

	for iter := uint32(0); iter < b.blockCount; iter++ {
		if index >= b.blockCount {
			return nil, onecderr.New(onecderr.OutOfBounds, "blob: block index exceeds block count")
		}

		if err := b.obj.Read(block, uint64(index)*blockSize); err != nil {
			return nil, err
		}

		next := binary.LittleEndian.Uint32(block[0:4])
		length := binary.LittleEndian.Uint16(block[4:6])

		if length > dataSize {
			return nil, onecderr.New(onecderr.CorruptStream, "blob: block length exceeds capacity")
		}
		if length == 0 && next != 0 {
			return nil, onecderr.New(onecderr.CorruptStream, "blob: empty block must terminate the chain")
		}

		if expectedSize > 0 && uint64(len(result))+uint64(length) > expectedSize {
			return nil, onecderr.New(onecderr.CorruptStream, "blob: chain data exceeds expected size")
		}

		result = append(result, block[6:6+length]...)

		if next == 0 {
			if expectedSize > 0 && uint64(len(result)) != expectedSize {
				return nil, onecderr.New(onecderr.CorruptStream, "blob: chain data size mismatch")
			}
			return result, nil
		}

		index = next
	}

	return nil, onecderr.New(onecderr.CorruptStream, "blob: loop detected in block chain")
}
