package dictionary

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a static dictionary that has no entry for a word.
	ErrNotFound = errors.New("word not found")
	// ErrEmptyResult means the lookup succeeded but nothing is displayable.
	ErrEmptyResult = errors.New("no explanation found")
	// ErrEmptyWord is returned for a query without any word.
	ErrEmptyWord = errors.New("empty word")
)

// NetworkError is a failed remote lookup: a timeout, a transport error, or a non-200 status.
type NetworkError struct {
	Word       string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("lookup %q: status code: %d", e.Word, e.StatusCode)
	}
	return fmt.Sprintf("lookup %q > %v", e.Word, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IOError is a cache artifact that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s > %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// DecodeError is a cache artifact that exists but cannot be decompressed or deserialized.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s > %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err came from a failed remote lookup.
func IsNetworkError(err error) bool {
	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}
