package concat

import (
	"errors"
	"fmt"
)

// Sentinel errors for plan validation. All of them are detected before any
// I/O happens, so a failing configuration never touches the output file.
var (
	// ErrEmptyFileList is returned when a plan is built with no input files.
	ErrEmptyFileList = errors.New("no input files")

	// ErrInvalidRepeatAll is returned when the whole-sequence repeat count is below one.
	ErrInvalidRepeatAll = errors.New("repeat-all must be at least 1")

	// ErrInvalidRepeatEach is returned when a per-file repeat count is below one.
	ErrInvalidRepeatEach = errors.New("repeat-each must be at least 1")

	// ErrInvalidChunkCapacity is returned when the chunk capacity is not positive.
	ErrInvalidChunkCapacity = errors.New("chunk capacity must be positive")

	// ErrSourceClosed is returned when chunks are requested from a closed source.
	ErrSourceClosed = errors.New("source reader is closed")

	// ErrTruncatedSource is returned when a file shrinks below its open-time size mid-run.
	ErrTruncatedSource = errors.New("source file truncated during run")
)

// IOError describes a failed read or write, naming the operation, the file
// involved and the byte offset at which it failed. It wraps the underlying
// OS error for errors.Is/As checks.
type IOError struct {
	Op     string // "open", "read", "write" or "close"
	Path   string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(op, path string, offset int64, err error) *IOError {
	return &IOError{Op: op, Path: path, Offset: offset, Err: err}
}
