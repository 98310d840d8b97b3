// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ferr defines the error kinds surfaced by the optimizer core, per
// spec.md §7. Construction errors are plain Go errors returned
// synchronously at the offending call (insert/add-factor time); iteration
// errors are returned by Evaluate/Linearize/Solve and carried into the
// optimizer's termination status.
package ferr

import "fmt"

// ConstructionError reports a symbol/variable-type mismatch, an arity
// mismatch, or a noise-dimension mismatch detected while building Values
// or Factors.
type ConstructionError struct {
	Op  string // e.g. "values.Insert", "graph.AddFactor"
	Msg string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// NewConstructionError builds a ConstructionError, formatting Msg the way
// gosl/chk.Err formats its messages.
func NewConstructionError(op, format string, args ...interface{}) *ConstructionError {
	return &ConstructionError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// EvaluationError reports that a residual produced a non-finite scalar or
// hit a manifold singularity (e.g. SO(3) log at angle π).
type EvaluationError struct {
	Factor int // index of the offending factor within the graph, or -1
	Msg    string
}

func (e *EvaluationError) Error() string {
	if e.Factor >= 0 {
		return fmt.Sprintf("evaluation error at factor %d: %s", e.Factor, e.Msg)
	}
	return fmt.Sprintf("evaluation error: %s", e.Msg)
}

// NewEvaluationError builds an EvaluationError.
func NewEvaluationError(factor int, format string, args ...interface{}) *EvaluationError {
	return &EvaluationError{Factor: factor, Msg: fmt.Sprintf(format, args...)}
}

// SingularSystem reports that J^T J + lambda*I failed to factor as
// positive-definite to working precision.
type SingularSystem struct {
	Msg string
}

func (e *SingularSystem) Error() string {
	return fmt.Sprintf("solver: singular system: %s", e.Msg)
}

// NewSingularSystem builds a SingularSystem error.
func NewSingularSystem(format string, args ...interface{}) *SingularSystem {
	return &SingularSystem{Msg: fmt.Sprintf(format, args...)}
}

// Diverged reports that Levenberg-Marquardt exceeded LambdaMax or its
// consecutive-rejection budget.
type Diverged struct {
	Iterations int
	Lambda     float64
}

func (e *Diverged) Error() string {
	return fmt.Sprintf("optimizer diverged after %d iterations (lambda=%g)", e.Iterations, e.Lambda)
}

// NewDiverged builds a Diverged error.
func NewDiverged(iterations int, lambda float64) *Diverged {
	return &Diverged{Iterations: iterations, Lambda: lambda}
}
