// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optimize implements the Gauss-Newton and Levenberg-Marquardt
// iterations of spec.md §4.8: linearize, solve, retract, test
// convergence, repeat. Configuration is a plain defaulted struct in the
// manner of the teacher's inp.SolverData, and the verbose sink follows
// Domain.SetStage's io.Pf-based diagnostics (fem/domain.go).
package optimize

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/linearize"
	"github.com/cpmech/fgraph/linsolve"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/values"
)

// Status is the optimizer's termination classification, per spec.md §4.8.
type Status int

const (
	// Converged means a convergence criterion was met.
	Converged Status = iota
	// MaxIterations means max_iter was reached without meeting tolerances.
	MaxIterations
	// Diverged means LM exceeded LambdaMax or its consecutive-rejection budget.
	Diverged
	// SolverFailure means the linear solver reported SingularSystem.
	SolverFailure
)

// String renders the status name.
func (s Status) String() string {
	switch s {
	case Converged:
		return "Converged"
	case MaxIterations:
		return "MaxIterations"
	case Diverged:
		return "Diverged"
	case SolverFailure:
		return "SolverFailure"
	default:
		return "Unknown"
	}
}

// IterationInfo is the per-iteration diagnostic record passed to
// Config.Verbose and Config.StopFn, per spec.md §5/§6.
type IterationInfo struct {
	Iteration int
	Error     scalar.Real
	StepNorm  scalar.Real
	Lambda    scalar.Real // 0 for Gauss-Newton
	Accepted  bool        // always true for Gauss-Newton
}

// IoSink is a ready-made Config.Verbose sink built on gosl/io, matching
// the teacher's ShowMsg/io.Pf diagnostic style.
func IoSink(info IterationInfo) {
	if info.Lambda != 0 {
		io.Pf(">> iter %3d: error=%.6e step=%.3e lambda=%.3e accepted=%v\n",
			info.Iteration, info.Error, info.StepNorm, info.Lambda, info.Accepted)
		return
	}
	io.Pf(">> iter %3d: error=%.6e step=%.3e\n", info.Iteration, info.Error, info.StepNorm)
}

// Step is the signal a Config.StopFn returns to request early
// termination, per spec.md §5's "callback... returning a stop signal".
type Step int

const (
	// Continue lets the optimizer proceed to the next iteration.
	Continue Step = iota
	// Stop requests the optimizer halt after the current iteration.
	Stop
)

// Config holds the optimizer knobs enumerated in spec.md §6.
type Config struct {
	MaxIter int // default 100
	EpsAbs  scalar.Real // default 1e-6
	EpsRel  scalar.Real // default 1e-6
	EpsStep scalar.Real // default 1e-6

	// LM only.
	LambdaInit scalar.Real // default 1e-4
	LambdaMax  scalar.Real // default 1e16
	NuInit     scalar.Real // default 2.0
	MaxFail    int         // default 10

	Solver linsolve.Solver // default linsolve.DenseCholesky{}

	Verbose func(IterationInfo)     // default nil (no logging, per spec.md §7)
	StopFn  func(IterationInfo) Step // default nil (never stops early)

	// KeepHistory retains LambdaHistory on the Result (LM only).
	KeepHistory bool
}

// DefaultConfig returns a Config with spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		MaxIter:    100,
		EpsAbs:     1e-6,
		EpsRel:     1e-6,
		EpsStep:    1e-6,
		LambdaInit: 1e-4,
		LambdaMax:  1e16,
		NuInit:     2.0,
		MaxFail:    10,
		Solver:     linsolve.DenseCholesky{},
	}
}

func (c *Config) solver() linsolve.Solver {
	if c.Solver != nil {
		return c.Solver
	}
	return linsolve.DenseCholesky{}
}

// Result is returned by GaussNewton and LevenbergMarquardt, per
// spec.md §4.8.
type Result struct {
	Values        *values.Values
	Error         scalar.Real
	Iterations    int
	Status        Status
	LambdaHistory []scalar.Real // set only when Config.KeepHistory

	// Err carries the classified ferr error behind a non-Converged,
	// non-MaxIterations Status: for SolverFailure, a *ferr.SingularSystem
	// from the linear solver or a *ferr.EvaluationError from residual
	// evaluation; for Diverged, a *ferr.Diverged.
	Err error
}

func stepNormInf(delta []scalar.Real) scalar.Real {
	var m scalar.Real
	for _, d := range delta {
		a := math.Abs(float64(d))
		if scalar.Real(a) > m {
			m = scalar.Real(a)
		}
	}
	return m
}

// GaussNewton runs unconstrained Gauss-Newton to convergence, per
// spec.md §4.8: linearize, solve with lambda=0, retract, test
// convergence.
func GaussNewton(g *graph.Graph, initial *values.Values, cfg Config) Result {
	vs := initial.Clone()
	prevError := scalar.Real(math.Inf(1))

	for it := 0; it < cfg.MaxIter; it++ {
		sys, err := linearize.Linearize(g, vs, g.ResidualDim()*4+vs.Dim())
		if err != nil {
			return Result{Values: vs, Error: prevError, Iterations: it, Status: SolverFailure, Err: err}
		}
		curError := sys.Error()

		delta, err := cfg.solver().Solve(sys, 0)
		if err != nil {
			return Result{Values: vs, Error: curError, Iterations: it, Status: SolverFailure, Err: err}
		}

		vs.Retract(delta)
		step := stepNormInf(delta)

		info := IterationInfo{Iteration: it, Error: curError, StepNorm: step}
		if cfg.Verbose != nil {
			cfg.Verbose(info)
		}
		stop := false
		if cfg.StopFn != nil && cfg.StopFn(info) == Stop {
			stop = true
		}

		relDecrease := scalar.Real(0)
		if prevError != 0 && !math.IsInf(float64(prevError), 1) {
			relDecrease = (prevError - curError) / prevError
		}
		converged := step < cfg.EpsStep || curError < cfg.EpsAbs ||
			(it > 0 && relDecrease < cfg.EpsRel && relDecrease >= 0)

		prevError = curError
		if stop || converged {
			finalErr, _ := linearize.TotalError(g, vs)
			return Result{Values: vs, Error: finalErr, Iterations: it + 1, Status: Converged}
		}
	}
	finalErr, _ := linearize.TotalError(g, vs)
	return Result{Values: vs, Error: finalErr, Iterations: cfg.MaxIter, Status: MaxIterations}
}

// LevenbergMarquardt runs damped Gauss-Newton with adaptive lambda, per
// spec.md §4.8.
func LevenbergMarquardt(g *graph.Graph, initial *values.Values, cfg Config) Result {
	vs := initial.Clone()
	lambda := cfg.LambdaInit
	nu := cfg.NuInit
	fails := 0

	var history []scalar.Real

	fOld, err := linearize.TotalError(g, vs)
	if err != nil {
		return Result{Values: vs, Error: 0, Iterations: 0, Status: SolverFailure, Err: err}
	}

	for it := 0; it < cfg.MaxIter; it++ {
		sys, err := linearize.Linearize(g, vs, g.ResidualDim()*4+vs.Dim())
		if err != nil {
			return Result{Values: vs, Error: fOld, Iterations: it, Status: SolverFailure, LambdaHistory: history, Err: err}
		}

		delta, err := cfg.solver().Solve(sys, lambda)
		if err != nil {
			fails++
			lambda *= nu
			nu *= 2
			if cfg.KeepHistory {
				history = append(history, lambda)
			}
			if lambda > cfg.LambdaMax || fails > cfg.MaxFail {
				return Result{Values: vs, Error: fOld, Iterations: it, Status: Diverged, LambdaHistory: history,
					Err: ferr.NewDiverged(it, float64(lambda))}
			}
			continue
		}

		trial := vs.Clone()
		trial.Retract(delta)
		fNew, err := linearize.TotalError(g, trial)
		if err != nil {
			return Result{Values: vs, Error: fOld, Iterations: it, Status: SolverFailure, LambdaHistory: history, Err: err}
		}

		// model decrease: 0.5*delta^T(lambda*delta - J^T r), the
		// standard LM gain-ratio denominator.
		modelDecrease := scalar.Real(0)
		for i, d := range delta {
			modelDecrease += d * (lambda*d - scalar.Real(sys.Jtr.AtVec(i)))
		}
		modelDecrease *= 0.5

		var gamma scalar.Real
		if modelDecrease > 0 {
			gamma = (fOld - fNew) / modelDecrease
		}

		step := stepNormInf(delta)
		accepted := gamma > 0

		info := IterationInfo{Iteration: it, Error: fNew, StepNorm: step, Lambda: lambda, Accepted: accepted}
		if cfg.Verbose != nil {
			cfg.Verbose(info)
		}
		stop := false
		if cfg.StopFn != nil && cfg.StopFn(info) == Stop {
			stop = true
		}

		if accepted {
			vs.CopyFrom(trial)
			factor := 1.0 - math.Pow(2*float64(gamma)-1, 3)
			if factor < 1.0/3.0 {
				factor = 1.0 / 3.0
			}
			lambda *= scalar.Real(factor)
			nu = cfg.NuInit
			fails = 0

			relDecrease := scalar.Real(0)
			if fOld != 0 {
				relDecrease = (fOld - fNew) / fOld
			}
			converged := step < cfg.EpsStep || fNew < cfg.EpsAbs || (relDecrease >= 0 && relDecrease < cfg.EpsRel)
			fOld = fNew

			if cfg.KeepHistory {
				history = append(history, lambda)
			}
			if stop || converged {
				return Result{Values: vs, Error: fOld, Iterations: it + 1, Status: Converged, LambdaHistory: history}
			}
		} else {
			lambda *= nu
			nu *= 2
			fails++
			if cfg.KeepHistory {
				history = append(history, lambda)
			}
			if lambda > cfg.LambdaMax || fails > cfg.MaxFail {
				return Result{Values: vs, Error: fOld, Iterations: it, Status: Diverged, LambdaHistory: history,
					Err: ferr.NewDiverged(it, float64(lambda))}
			}
			if stop {
				return Result{Values: vs, Error: fOld, Iterations: it + 1, Status: MaxIterations, LambdaHistory: history}
			}
		}
	}
	return Result{Values: vs, Error: fOld, Iterations: cfg.MaxIter, Status: MaxIterations, LambdaHistory: history}
}
