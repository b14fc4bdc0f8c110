// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Package errors for framegraph.
var (
	// ErrNilDevice is returned when a nil Device is passed to Compile.
	ErrNilDevice = errors.New("framegraph: nil device")

	// ErrNilDocument is returned when a nil Document is passed to Compile.
	ErrNilDocument = errors.New("framegraph: nil document")

	// ErrZeroExtent is returned when targets are resolved against an
	// extent with a zero dimension.
	ErrZeroExtent = errors.New("framegraph: viewport extent has zero dimension")

	// ErrPartialFrame indicates the frame completed but one or more
	// passes failed and were skipped. The frame is still presentable;
	// callers surface this as a warning, not an abort.
	ErrPartialFrame = errors.New("framegraph: frame completed with pass failures")

	// ErrReleased is returned when a Graph is used after Release.
	ErrReleased = errors.New("framegraph: graph released")
)

// ConfigError reports a structurally invalid pipeline document:
// duplicate names, unknown enum tokens, contradictory bindings, or an
// updater tag with no registered hook. A ConfigError rejects the whole
// document; nothing renders until it is fixed.
type ConfigError struct {
	// Reason describes what is wrong, including the offending names.
	Reason string
}

func (e *ConfigError) Error() string {
	return "framegraph: invalid pipeline document: " + e.Reason
}

// configErrorf builds a ConfigError with a formatted reason.
func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownResourceError reports a pass referencing a target name that is
// not in the registry and is not the reserved default surface. Detected
// at schedule-build time, before any GPU work is issued.
type UnknownResourceError struct {
	Pass   string
	Target string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("framegraph: pass %q references unknown target %q", e.Pass, e.Target)
}

// CyclicDependencyError reports a read/write cycle between passes.
// GPU passes cannot be reordered to satisfy a genuine cycle, so this is
// fatal for the document.
type CyclicDependencyError struct {
	// Passes are the names of the passes participating in the cycle,
	// in descriptor order.
	Passes []string
}

func (e *CyclicDependencyError) Error() string {
	return "framegraph: cyclic pass dependency involving " + strings.Join(e.Passes, ", ")
}

// CompileError reports a shader program that failed to load or compile.
// A single failure does not abort loading of other programs, but the
// program table as a whole is invalid until every program compiles.
type CompileError struct {
	Program string
	Stage   ShaderStage
	Err     error
}

func (e *CompileError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("framegraph: program %q: %s stage: %v", e.Program, e.Stage, e.Err)
	}
	return fmt.Sprintf("framegraph: program %q: %v", e.Program, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// AllocationError reports a target whose format/size combination the
// backend could not allocate. Carries the requested parameters for
// diagnosis.
type AllocationError struct {
	Target string
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Err    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("framegraph: target %q: cannot allocate %dx%d (format %v): %v",
		e.Target, e.Width, e.Height, e.Format, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }
