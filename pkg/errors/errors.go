package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures applet definition validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RegistrationError indicates a malformed plugin descriptor discovered during
// registry scanning. It is non-fatal to discovery: the offending plugin is
// excluded and logged while the rest of the scan proceeds.
type RegistrationError struct {
	Plugin  string
	Message string
	Err     error
}

// NewRegistrationError constructs a RegistrationError for the given plugin.
func NewRegistrationError(plugin string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &RegistrationError{Plugin: plugin, Message: message, Err: err}
}

func (e *RegistrationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("registration error [%s]: %s", e.Plugin, e.Message)
	}
	return fmt.Sprintf("registration error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *RegistrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StageError represents a runtime failure while executing one applet stage.
type StageError struct {
	Stage  string
	Plugin string
	Err    error
}

// NewStageError constructs a StageError.
func NewStageError(stage, plugin string, err error) error {
	return &StageError{Stage: stage, Plugin: plugin, Err: err}
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin != "" {
		return fmt.Sprintf("stage error on %s stage [%s]: %v", e.Stage, e.Plugin, e.Err)
	}
	return fmt.Sprintf("stage error on %s stage: %v", e.Stage, e.Err)
}

// Unwrap exposes the root error.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
