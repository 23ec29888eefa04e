package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneratorNotFound means a topic path does not end on a catalog leaf.
	ErrGeneratorNotFound = errors.New("generator not found")
	// ErrInvalidShuffle means a request named an unknown shuffle mode.
	ErrInvalidShuffle = errors.New("invalid shuffle mode")
)

// GenerationError reports a failure while generating problems for a topic:
// unusable options, a generator error or a generator panic.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
