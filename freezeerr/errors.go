// Package freezeerr defines the error taxonomy shared by all freezemod stages.
package freezeerr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeSpecSyntax     ErrorType = "SpecSyntaxError"
	TypeConflict       ErrorType = "ConflictError"
	TypeResolution     ErrorType = "ResolutionError"
	TypeMarkerNotFound ErrorType = "MarkerNotFoundError"
	TypeMarkerOrder    ErrorType = "MarkerOrderError"
)

// FreezeError is the interface for all freezemod errors.
type FreezeError interface {
	error
	Type() ErrorType
}

// BaseError provides common fields for freezemod errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

// SpecSyntaxError reports a malformed spec: an invalid identifier, a file
// path that names a directory, or an unsupported match pattern.
type SpecSyntaxError struct {
	BaseError
	Spec   string
	Column int
}

func (e *SpecSyntaxError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("[%s] %q col %d: %s", e.ErrType, e.Spec, e.Column, e.Msg)
	}
	return fmt.Sprintf("[%s] %q: %s", e.ErrType, e.Spec, e.Msg)
}

// ConflictError reports an id that was redeclared with a different source.
type ConflictError struct {
	BaseError
	ID        string
	Spec      string
	Existing  string
	Requested string
}

func (e *ConflictError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.ErrType, e.Msg)
	if e.Spec != "" {
		fmt.Fprintf(&sb, " (spec %q)", e.Spec)
	}
	if e.Existing != "" || e.Requested != "" {
		fmt.Fprintf(&sb, ": have %s, got %s", e.Existing, e.Requested)
	}
	return sb.String()
}

// ResolutionError reports an inferred source path with no file behind it.
type ResolutionError struct {
	BaseError
	ID   string
	Path string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", e.ErrType, e.ID, e.Msg, e.Path)
}

// MarkerError reports a missing or misplaced marker in the target file.
type MarkerError struct {
	BaseError
	Marker string
	File   string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("[%s] %s: %q in file %s", e.ErrType, e.Msg, e.Marker, e.File)
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if fe, ok := m.Errors[0].(FreezeError); ok {
			return fe.Type()
		}
	}
	return "MultiError"
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// NewSpecSyntaxError creates a SpecSyntaxError for the given spec text.
func NewSpecSyntaxError(spec string, column int, msg string) *SpecSyntaxError {
	return &SpecSyntaxError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeSpecSyntax,
		},
		Spec:   spec,
		Column: column,
	}
}

// NewConflictError creates a ConflictError for an id declared twice.
func NewConflictError(id, spec, existing, requested string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("conflicting source for %s", id),
			ErrType: TypeConflict,
		},
		ID:        id,
		Spec:      spec,
		Existing:  existing,
		Requested: requested,
	}
}

// NewRedeclaredError creates a ConflictError for an id that is declared as a
// fresh entry after it is already known.
func NewRedeclaredError(id, spec string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("%s is already declared", id),
			ErrType: TypeConflict,
		},
		ID:   id,
		Spec: spec,
	}
}

// NewResolutionError creates a ResolutionError.
func NewResolutionError(id, path, msg string) *ResolutionError {
	return &ResolutionError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeResolution,
		},
		ID:   id,
		Path: path,
	}
}

// NewMarkerNotFoundError creates a MarkerError of type MarkerNotFoundError.
func NewMarkerNotFoundError(marker, file string) *MarkerError {
	return &MarkerError{
		BaseError: BaseError{
			Msg:     "can't find marker",
			ErrType: TypeMarkerNotFound,
		},
		Marker: marker,
		File:   file,
	}
}

// NewMarkerOrderError creates a MarkerError of type MarkerOrderError.
func NewMarkerOrderError(startMarker, endMarker, file string) *MarkerError {
	return &MarkerError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("end marker occurs before start marker %q", startMarker),
			ErrType: TypeMarkerOrder,
		},
		Marker: endMarker,
		File:   file,
	}
}
