package pager

import (
	"bytes"
	"encoding/binary"
)

// HeaderSize is the fixed byte size of the database header.
const HeaderSize = 24

// Signature is the fixed magic string at the start of every .1CD file.
var Signature = [8]byte{'1', 'C', 'D', 'B', 'M', 'S', 'V', '8'}

// Format revisions this driver understands.
const (
	VersionOld = 0x000E0208 // fixed 4 KiB pages, 32-bit object sizes
	VersionNew = 0x00080308 // configurable page size, 64-bit object sizes
)

var validNewPageSizes = map[uint32]bool{
	4096:  true,
	8192:  true,
	16384: true,
	32768: true,
	65536: true,
}

// Header is the 24-byte database header at file offset 0.
type Header struct {
	Version  uint32
	Length   uint32 // page count
	Unused   uint32
	PageSize uint32
}

// parseHeader validates and decodes the header bytes, including the
// per-revision page-size rule from spec §3: the old revision is forced to
// 4096, the new revision must use one of the five supported sizes.
func parseHeader(data []byte) (Header, *OpenError) {
	if len(data) < HeaderSize {
		return Header{}, &OpenError{Code: OpenErrBadFile}
	}

	if !bytes.Equal(data[:8], Signature[:]) {
		return Header{}, &OpenError{Code: OpenErrBadFile}
	}

	h := Header{
		Version:  binary.LittleEndian.Uint32(data[8:12]),
		Length:   binary.LittleEndian.Uint32(data[12:16]),
		Unused:   binary.LittleEndian.Uint32(data[16:20]),
		PageSize: binary.LittleEndian.Uint32(data[20:24]),
	}

	switch h.Version {
	case VersionOld:
		h.PageSize = 4096
	case VersionNew:
		if !validNewPageSizes[h.PageSize] {
			return Header{}, &OpenError{Code: OpenErrBadFile}
		}
	default:
		return Header{}, &OpenError{Code: OpenErrVersion}
	}

	if h.Length == 0 {
		return Header{}, &OpenError{Code: OpenErrBadFile}
	}

	return h, nil
}
