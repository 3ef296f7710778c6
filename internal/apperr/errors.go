// Package apperr defines the error taxonomy shared by the gateway components.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrNotDirectory        = errors.New("not a directory")
	ErrIsDirectory         = errors.New("is a directory")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrTerminalDisabled    = errors.New("terminal is disabled")
)

// ListingError reports that a directory could not be enumerated at all.
// Per-entry stat failures never produce one.
type ListingError struct {
	Path string
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Path, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// IOError reports a file read or write that failed in the OS. It is a server
// fault even when the cause is a missing path or a permission denial.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
