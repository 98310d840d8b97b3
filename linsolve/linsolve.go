// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsolve implements the linear-solver contract of spec.md
// §4.7: given the normal-equation system assembled by package
// linearize, solve (JᵀJ + λI) δ = −Jᵀr for a damping λ >= 0. Two
// implementations ship: Sparse (gosl/la.LinSol over the Triplet-
// assembled normal matrix, mirroring the teacher's
// Domain.LinSol/la.GetSolver usage in fem/domain.go) and DenseCholesky
// (gonum/mat, the pack's always-available fallback for small or
// test-scale graphs).
package linsolve

import (
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/linearize"
	"github.com/cpmech/fgraph/scalar"
)

// Solver satisfies spec.md §4.7's contract: Solve returns delta such
// that (JᵀJ + lambda*I) delta = -Jᵀr, or a SingularSystem error if the
// normal matrix is not positive-definite to working precision.
type Solver interface {
	Solve(sys *linearize.System, lambda scalar.Real) ([]scalar.Real, error)
}

// DenseCholesky solves the normal equations via gonum/mat's Cholesky
// factorization over the dense Hd/Jtr the linearize pass already
// accumulated; intended for small graphs and as this module's tests'
// reference solver (no external sparse-solver dependency required).
type DenseCholesky struct{}

// Solve implements Solver.
func (DenseCholesky) Solve(sys *linearize.System, lambda scalar.Real) ([]scalar.Real, error) {
	n := sys.Cols
	damped := mat.NewSymDense(n, nil)
	damped.CopySym(sys.Hd)
	for i := 0; i < n; i++ {
		damped.SetSym(i, i, damped.At(i, i)+float64(lambda))
	}
	negJtr := mat.NewVecDense(n, nil)
	negJtr.ScaleVec(-1, sys.Jtr)

	var chol mat.Cholesky
	if ok := chol.Factorize(damped); !ok {
		return nil, ferr.NewSingularSystem("dense Cholesky factorization failed (J^T J + lambda I not positive-definite)")
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, negJtr); err != nil {
		return nil, ferr.NewSingularSystem("%v", err)
	}
	out := make([]scalar.Real, n)
	for i := range out {
		out[i] = scalar.Real(x.AtVec(i))
	}
	return out, nil
}

// Sparse solves the normal equations through gosl/la's registered
// sparse-factorization backends (umfpack, mumps), the way the teacher's
// Domain wires o.LinSol = la.GetSolver(sim.LinSol.Name) over its
// tangent-stiffness triplet — here, over linearize.System.H with
// lambda added on the diagonal (gosl/la.Triplet sums duplicate (i,j)
// entries at factorization time, the same convention the teacher relies
// on when multiple Gauss points Put into a shared degree of freedom).
type Sparse struct {
	// Name selects the gosl/la backend ("umfpack", "mumps"); empty
	// defaults to "umfpack", matching inp.LinSolData's zero value.
	Name      string
	Symmetric bool
	Verbose   bool
}

// Solve implements Solver.
func (s Sparse) Solve(sys *linearize.System, lambda scalar.Real) ([]scalar.Real, error) {
	name := s.Name
	if name == "" {
		name = "umfpack"
	}
	n := sys.Cols
	damped := new(la.Triplet)
	damped.Init(n, n, len(sys.HEntries)+n)
	for _, e := range sys.HEntries {
		damped.Put(e.I, e.J, float64(e.X))
	}
	for i := 0; i < n; i++ {
		damped.Put(i, i, float64(lambda))
	}

	negJtr := make([]float64, n)
	for i := 0; i < n; i++ {
		negJtr[i] = -sys.Jtr.AtVec(i)
	}

	solver := la.GetSolver(name)
	defer solver.Free()
	if err := solver.InitR(damped, s.Symmetric, s.Verbose, false); err != nil {
		return nil, ferr.NewSingularSystem("sparse solver init: %v", err)
	}
	if err := solver.Fact(); err != nil {
		return nil, ferr.NewSingularSystem("sparse solver factorization: %v", err)
	}
	x := make([]float64, n)
	if err := solver.SolveR(x, negJtr, false); err != nil {
		return nil, ferr.NewSingularSystem("sparse solver solve: %v", err)
	}
	out := make([]scalar.Real, n)
	copy(out, x)
	return out, nil
}
