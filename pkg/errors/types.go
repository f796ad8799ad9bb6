package errors

import (
	"fmt"
	"strings"
)

// SourceError reports that one origin could not be queried for a package.
// It is non-fatal when another origin still answers the lookup.
type SourceError struct {
	Origin string // Origin identifier ("aur" or "repo")
	Name   string // Package name being looked up
	Err    error  // Underlying transport or tool failure
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s unavailable for %s: %v", e.Origin, e.Name, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Code returns ErrCodeSourceUnavailable.
func (e *SourceError) Code() Code { return ErrCodeSourceUnavailable }

// CycleError reports a dependency cycle. Path starts and ends with the same
// package name, e.g. [a b a].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// Code returns ErrCodeCyclicDependency.
func (e *CycleError) Code() Code { return ErrCodeCyclicDependency }

// ConflictError reports version constraints on one package that cannot be
// satisfied together, or that the only available version fails.
type ConflictError struct {
	Name        string   // Package the constraints apply to
	Constraints []string // Each constraint with the dependent that declared it
	Available   string   // Version offered by the selected origin (may be empty)
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("version conflict for %s: %s", e.Name, strings.Join(e.Constraints, ", "))
	if e.Available != "" {
		msg += fmt.Sprintf(" (available: %s)", e.Available)
	}
	return msg
}

// Code returns ErrCodeVersionConflict.
func (e *ConflictError) Code() Code { return ErrCodeVersionConflict }

// InUseError reports installed packages that still depend on a removal target.
type InUseError struct {
	Name       string
	Dependents []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is required by: %s", e.Name, strings.Join(e.Dependents, ", "))
}

// Code returns ErrCodeInUse.
func (e *InUseError) Code() Code { return ErrCodeInUse }

// StepError reports a failed external build, install or remove action.
// Output holds what the external tool reported.
type StepError struct {
	Name   string // Package the step operated on
	Op     Code   // ErrCodeBuildFailed, ErrCodeInstallFailed or ErrCodeRemoveFailed
	Output string // Combined tool output (may be empty)
	Err    error
}

func (e *StepError) Error() string {
	verb := "install"
	switch e.Op {
	case ErrCodeBuildFailed:
		verb = "build"
	case ErrCodeRemoveFailed:
		verb = "remove"
	}
	return fmt.Sprintf("%s %s failed: %v", verb, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Code returns the step's operation code.
func (e *StepError) Code() Code { return e.Op }
