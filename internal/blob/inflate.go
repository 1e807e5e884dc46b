package blob

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/go1cd/onecd/internal/onecderr"
)

// Decompress inflates a raw DEFLATE stream (no zlib or gzip wrapper) up to
// maxSize bytes of output. The output buffer grows the way the original
// driver's streaming ZLIB loop does: it starts at the input size and
// doubles, or grows by exactly the remaining headroom once that headroom
// is smaller than the current buffer.
func Decompress(src []byte, maxSize uint64) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	if uint64(len(src)) > maxSize {
		return nil, onecderr.New(onecderr.OversizeInput, "blob: compressed data too large to decompress")
	}

	zr := flate.NewReader(bytes.NewReader(src))
	defer zr.Close()

	dst := make([]byte, len(src))
	total := 0

	for {
		n, err := zr.Read(dst[total:])
		total += n

		if err == io.EOF {
			return dst[:total], nil
		}
		if err != nil {
			return nil, onecderr.Wrap(onecderr.CorruptStream, "blob: data stream ended before it was decompressed", err)
		}

		if total < len(dst) {
			continue
		}

		if uint64(len(dst)) >= maxSize {
			return nil, onecderr.New(onecderr.OversizeInput, "blob: decompressed data too large")
		}

		maxIncrement := maxSize - uint64(len(dst))
		var newSize uint64
		if maxIncrement < uint64(len(dst)) {
			newSize = uint64(len(dst)) + maxIncrement
		} else {
			newSize = uint64(len(dst)) * 2
		}

		grown := make([]byte, newSize)
		copy(grown, dst)
		dst = grown
	}
}
