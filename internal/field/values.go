package field

// Binary is the raw payload of a binary column.
type Binary []byte

// Boolean is the decoded value of a boolean column.
type Boolean bool

// Digit is the raw packed-decimal payload of a digit column. Decoding the
// packed representation itself is out of scope; callers get the bytes as
// stored on disk.
type Digit []byte

// StrFix is a fixed-length string column, already converted from its
// on-disk UTF-16 code units.
type StrFix string

// StrVar is a variable-length string column, already converted from its
// on-disk UTF-16 code units.
type StrVar string

// Version is the four-word value of a version column.
type Version struct {
	V1, V2, V3, V4 uint32
}

// StrBlobRef points at a long string stored outside the row, in BLOB.
type StrBlobRef struct {
	Index uint32
	Size  uint32
}

// BinBlobRef points at long binary data stored outside the row, in BLOB.
type BinBlobRef struct {
	Index uint32
	Size  uint32
}

// DateTime is the decoded value of a datetime column. The source format
// does not validate ranges (month, day, hour, ...); neither does this
// type — whatever is on disk comes through unchanged.
type DateTime struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}
