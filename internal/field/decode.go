package field

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/go1cd/onecd/internal/onecderr"
)

// Decode interprets payload (exactly params.PayloadSize() bytes, with any
// leading null-flag byte already stripped by the caller) according to
// params.Type and returns the matching value type from this package as an
// any. The record layer asserts the result against the caller's requested
// generic type.
func Decode(params Params, payload []byte) (any, error) {
	switch params.Type {
	case TypeBinary:
		return decodeBinary(payload), nil
	case TypeBoolean:
		return decodeBoolean(payload), nil
	case TypeDigit:
		return decodeDigit(payload), nil
	case TypeStrFix:
		return decodeStrFix(params, payload), nil
	case TypeStrVar:
		return decodeStrVar(params, payload)
	case TypeVersion:
		return decodeVersion(payload), nil
	case TypeStrBlob:
		return decodeStrBlobRef(payload), nil
	case TypeBinBlob:
		return decodeBinBlobRef(payload), nil
	case TypeDateTime:
		return decodeDateTime(payload), nil
	default:
		return nil, onecderr.Newf(onecderr.ParseError, "field: unknown field type code %d", params.Type)
	}
}

func decodeBinary(payload []byte) Binary {
	v := make([]byte, len(payload))
	copy(v, payload)
	return Binary(v)
}

func decodeBoolean(payload []byte) Boolean {
	return Boolean(payload[0] != 0)
}

func decodeDigit(payload []byte) Digit {
	v := make([]byte, len(payload))
	copy(v, payload)
	return Digit(v)
}

func decodeUTF16String(units []byte) string {
	n := len(units) / 2
	codes := make([]uint16, n)
	for i := 0; i < n; i++ {
		codes[i] = binary.LittleEndian.Uint16(units[i*2 : i*2+2])
	}
	return string(utf16.Decode(codes))
}

func decodeStrFix(params Params, payload []byte) StrFix {
	return StrFix(decodeUTF16String(payload[:params.Length*2]))
}

func decodeStrVar(params Params, payload []byte) (StrVar, error) {
	realLen := binary.LittleEndian.Uint16(payload[0:2])
	if int(realLen) > params.Length {
		return "", onecderr.New(onecderr.OutOfBounds, "field: string length stored in record exceeds field length")
	}
	return StrVar(decodeUTF16String(payload[2 : 2+int(realLen)*2])), nil
}

func decodeVersion(payload []byte) Version {
	return Version{
		V1: binary.LittleEndian.Uint32(payload[0:4]),
		V2: binary.LittleEndian.Uint32(payload[4:8]),
		V3: binary.LittleEndian.Uint32(payload[8:12]),
		V4: binary.LittleEndian.Uint32(payload[12:16]),
	}
}

func decodeStrBlobRef(payload []byte) StrBlobRef {
	return StrBlobRef{
		Index: binary.LittleEndian.Uint32(payload[0:4]),
		Size:  binary.LittleEndian.Uint32(payload[4:8]),
	}
}

func decodeBinBlobRef(payload []byte) BinBlobRef {
	return BinBlobRef{
		Index: binary.LittleEndian.Uint32(payload[0:4]),
		Size:  binary.LittleEndian.Uint32(payload[4:8]),
	}
}

func decodeDateTime(payload []byte) DateTime {
	return DateTime{
		Year:   binary.LittleEndian.Uint16(payload[0:2]),
		Month:  payload[2],
		Day:    payload[3],
		Hour:   payload[4],
		Minute: payload[5],
		Second: payload[6],
	}
}
