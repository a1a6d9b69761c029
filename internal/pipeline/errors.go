package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrEmptyTitle is returned when sanitization leaves nothing usable. The
// file is counted failed rather than renamed to a bare date.
var ErrEmptyTitle = errors.New("empty title after sanitization")

// ErrSuffixesExhausted is returned when every probed suffix variant up to
// the cap is taken.
var ErrSuffixesExhausted = errors.New("no free suffix variant found")

// RenameErrorKind is a coarse classification of filesystem rename failures.
type RenameErrorKind string

const (
	RenamePermission  RenameErrorKind = "permission"
	RenameNotFound    RenameErrorKind = "not-found"
	RenameCrossDevice RenameErrorKind = "cross-device"
	RenameIO          RenameErrorKind = "io"
)

// RenameError wraps a failed rename with its endpoints and classification.
type RenameError struct {
	Old  string
	New  string
	Kind RenameErrorKind
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %v", e.Old, e.New, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

func classifyRename(err error) RenameErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return RenamePermission
	case errors.Is(err, fs.ErrNotExist):
		return RenameNotFound
	case errors.Is(err, syscall.EXDEV):
		return RenameCrossDevice
	}
	return RenameIO
}

// LogWriteError reports that a rename succeeded but could not be recorded.
// It is surfaced as a warning and counted apart from per-file failures,
// because the file on disk did change.
type LogWriteError struct {
	Path string
	Err  error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("append rename log %s: %v", e.Path, e.Err)
}

func (e *LogWriteError) Unwrap() error { return e.Err }
