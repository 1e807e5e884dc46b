package blob

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go1cd/onecd/internal/onecderr"
)

// bom is the UTF-8 byte order mark every BLOB string body is required to
// carry before its actual content.
var bom = [3]byte{0xEF, 0xBB, 0xBF}

// Utf8ToUtf16 converts a BOM-prefixed UTF-8 byte slice into UTF-16 code
// units. An empty body after the BOM yields a nil, not an error.
func Utf8ToUtf16(src []byte) ([]uint16, error) {
	if len(src) < 3 || src[0] != bom[0] || src[1] != bom[1] || src[2] != bom[2] {
		return nil, onecderr.New(onecderr.BadFormat, "blob: missing UTF-8 byte order mark")
	}

	body := src[3:]
	if len(body) == 0 {
		return nil, nil
	}

	if !utf8.Valid(body) {
		return nil, onecderr.New(onecderr.BadFormat, "blob: invalid UTF-8 data")
	}

	return utf16.Encode([]rune(string(body))), nil
}
