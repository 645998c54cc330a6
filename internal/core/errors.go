package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the dataset operations. Callers match them
// with errors.Is; messages are also keyed by MapError.
var (
	// ErrNotLoaded is returned by search and summary before a successful load.
	ErrNotLoaded = errors.New("dataset not loaded")

	// ErrInvalidFormat is returned for identifier queries that are not 13 digits.
	ErrInvalidFormat = errors.New("invalid identifier format")

	// ErrUnexpectedCategory is returned under GenderStrict when the data
	// holds gender values other than M and F.
	ErrUnexpectedCategory = errors.New("unexpected gender category")

	// ErrUnknownMode is returned for unrecognized search modes.
	ErrUnknownMode = errors.New("unknown search mode")

	// ErrUnknownDimension is returned for unrecognized chart dimensions.
	ErrUnknownDimension = errors.New("unknown chart dimension")
)

// LoadOp names the stage of a load that failed.
type LoadOp string

const (
	OpFetch LoadOp = "fetch"
	OpParse LoadOp = "parse"
)

// LoadError reports a failed dataset load. The session table is left empty.
type LoadError struct {
	Op  LoadOp
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
