// engine/errors.go
// Copyright(c) 2025 georoute contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import "fmt"

// LoadError wraps a failure to parse or validate a land mask or
// environment pack.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "engine: load error: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError wraps a request that is out of bounds before any solver
// ever runs: NaN coordinates, an empty grid, a negative time step.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "engine: validation error: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// InternalError wraps an invariant breach recovered at the Solve boundary:
// a bug, not a condition callers can work around.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "engine: internal error: " + e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

func loadErrorf(format string, args ...any) error {
	return &LoadError{Err: fmt.Errorf(format, args...)}
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}
