package pager

import "fmt"

// OpenErrorCode is the closed set of failures Open can report, per spec §6
// channel (a): a typed open-time error distinct from the single exception
// kind every other API uses.
type OpenErrorCode int

const (
	// OpenErrNone is the zero value; never actually returned as an error.
	OpenErrNone OpenErrorCode = iota
	// OpenErrFileSystem wraps a filesystem-level failure (missing file,
	// permission denied, short read, ...).
	OpenErrFileSystem
	// OpenErrBadFile means the file does not look like a .1CD database:
	// bad signature, bad page size, or a size that disagrees with the
	// header.
	OpenErrBadFile
	// OpenErrVersion means the signature matched but the version field is
	// not one this driver understands.
	OpenErrVersion
)

// OpenError is returned by Pages.Open. Code lets the caller branch without
// string matching; Err, when Code is OpenErrFileSystem, carries the
// underlying system error.
type OpenError struct {
	Code OpenErrorCode
	Err  error
}

func (e *OpenError) Error() string {
	switch e.Code {
	case OpenErrFileSystem:
		return fmt.Sprintf("onecd: file system error: %v", e.Err)
	case OpenErrBadFile:
		return "onecd: not a recognised 1CD database file"
	case OpenErrVersion:
		return "onecd: unsupported database format version"
	default:
		return "onecd: unknown open error"
	}
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
