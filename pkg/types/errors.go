// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies build failures.
type ErrorKind string

const (
	KindDirectoryCreation ErrorKind = "DirectoryCreationError"
	KindPathFormat        ErrorKind = "PathFormatError"
	KindConversion        ErrorKind = "ConversionError"
	KindEnumeration       ErrorKind = "EnumerationError"
)

// Sentinels for errors.Is. A *BuildError matches the sentinel of its kind.
var (
	ErrDirectoryCreation = errors.New("directory creation failed")
	ErrPathFormat        = errors.New("malformed document path")
	ErrConversion        = errors.New("conversion failed")
	ErrEnumeration       = errors.New("directory enumeration failed")
)

var kindSentinels = map[ErrorKind]error{
	KindDirectoryCreation: ErrDirectoryCreation,
	KindPathFormat:        ErrPathFormat,
	KindConversion:        ErrConversion,
	KindEnumeration:       ErrEnumeration,
}

// BuildError is the error type returned by every build stage.
type BuildError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewBuildError wraps err with a kind and the path it concerns.
func NewBuildError(kind ErrorKind, path string, err error) *BuildError {
	return &BuildError{Kind: kind, Path: path, Err: err}
}

func (e *BuildError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Is matches the kind sentinel, so callers can test
// errors.Is(err, types.ErrPathFormat) without a type assertion.
func (e *BuildError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the kind of the first *BuildError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
