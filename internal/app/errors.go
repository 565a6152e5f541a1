package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrLineUnavailable indicates a fold's start line could not be read.
	ErrLineUnavailable = errors.New("fold start line unavailable")

	// ErrNoDocument indicates no document is loaded.
	ErrNoDocument = errors.New("no document loaded")

	// ErrNoFoldingProvider indicates no source of fold regions is configured.
	ErrNoFoldingProvider = errors.New("no folding provider configured")
)

// OperationError represents an error during a named operation.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "fold", "render")
	Target string // Target of the operation (e.g., file path)
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates an operation error.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}
