package onecd

import (
	"errors"
	"fmt"

	"github.com/go1cd/onecd/internal/onecderr"
	"github.com/go1cd/onecd/internal/pager"
)

// Kind is the closed set of error categories any Database operation other
// than Open can raise.
type Kind int

const (
	SystemIO Kind = iota
	BadFormat
	UnsupportedVersion
	OutOfBounds
	TypeMismatch
	ParseError
	CorruptStream
	OversizeInput
)

var kindNames = [...]string{
	"system I/O error", "bad format", "unsupported version", "out of bounds",
	"type mismatch", "parse error", "corrupt stream", "oversize input",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown error"
	}
	return kindNames[k]
}

// Error is the single exception type every Database operation past Open
// can raise. Kind lets a caller branch programmatically with errors.As;
// Unwrap exposes the underlying cause, if any (typically a file-system
// error), for inspection.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("onecd: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("onecd: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var internalToPublicKind = map[onecderr.Kind]Kind{
	onecderr.SystemIO:           SystemIO,
	onecderr.BadFormat:          BadFormat,
	onecderr.UnsupportedVersion: UnsupportedVersion,
	onecderr.OutOfBounds:        OutOfBounds,
	onecderr.TypeMismatch:       TypeMismatch,
	onecderr.ParseError:         ParseError,
	onecderr.CorruptStream:      CorruptStream,
	onecderr.OversizeInput:      OversizeInput,
}

// wrap converts an internal package error into a public *Error, preserving
// its kind and message. Errors that are not *onecderr.Error (e.g. a raw
// *os.PathError surfaced by a lower layer) come through as SystemIO.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var ie *onecderr.Error
	if errors.As(err, &ie) {
		kind, known := internalToPublicKind[ie.Kind]
		if !known {
			kind = SystemIO
		}
		return &Error{Kind: kind, Msg: ie.Msg, Err: ie.Err}
	}
	return &Error{Kind: SystemIO, Msg: err.Error()}
}

// OpenErrorCode is the closed set of failures Open can report: a typed
// open-time error distinct from the single exception kind every other
// operation uses, matching spec §6 channel (a).
type OpenErrorCode int

const (
	OpenErrNone OpenErrorCode = iota
	OpenErrFileSystem
	OpenErrBadFile
	OpenErrVersion
)

// OpenError is returned by Open.
type OpenError struct {
	Code OpenErrorCode
	Err  error
}

func (e *OpenError) Error() string {
	switch e.Code {
	case OpenErrFileSystem:
		return fmt.Sprintf("onecd: file system error: %v", e.Err)
	case OpenErrBadFile:
		if e.Err != nil {
			return fmt.Sprintf("onecd: not a recognised 1CD database file: %v", e.Err)
		}
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

func convertOpenError(err *pager.OpenError) *OpenError {
	switch err.Code {
	case pager.OpenErrFileSystem:
		return &OpenError{Code: OpenErrFileSystem, Err: err.Err}
	case pager.OpenErrBadFile:
		return &OpenError{Code: OpenErrBadFile}
	case pager.OpenErrVersion:
		return &OpenError{Code: OpenErrVersion}
	default:
		return &OpenError{Code: OpenErrNone}
	}
}
