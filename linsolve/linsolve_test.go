// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolve

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/linearize"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/noise"
	"github.com/cpmech/fgraph/residual"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

func buildSinglePriorSystem(tst *testing.T) *linearize.System {
	x0 := symbol.New('x', 0)
	vs := values.New()
	if err := values.Insert(vs, x0, manifold.VectorOf[scalar.RealNum](0)); err != nil {
		tst.Fatalf("Insert failed: %v", err)
	}
	n, err := noise.NewIsotropic(1, 1.0)
	if err != nil {
		tst.Fatalf("NewIsotropic failed: %v", err)
	}
	f, err := graph.NewFactor(residual.PriorVector{Measured: manifold.VectorOf[scalar.RealNum](3)},
		[]symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Fatalf("NewFactor failed: %v", err)
	}
	g := graph.New()
	if err := g.AddFactor(f, vs); err != nil {
		tst.Fatalf("AddFactor failed: %v", err)
	}
	sys, err := linearize.Linearize(g, vs, 8)
	if err != nil {
		tst.Fatalf("Linearize failed: %v", err)
	}
	return sys
}

func Test_dense_cholesky_solve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linsolve: DenseCholesky solves a single-variable normal equation")

	sys := buildSinglePriorSystem(tst)
	delta, err := DenseCholesky{}.Solve(sys, 0)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	// H=1, Jtr=-3 (r=x-measured=-3, whitened unchanged) -> delta = -(-3)/1 = 3.
	chk.Scalar(tst, "delta[0]", 1e-9, float64(delta[0]), 3.0)
}

func Test_dense_cholesky_damping01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linsolve: DenseCholesky damping shrinks the step")

	sys := buildSinglePriorSystem(tst)
	undamped, err := DenseCholesky{}.Solve(sys, 0)
	if err != nil {
		tst.Errorf("Solve(0) failed: %v", err)
		return
	}
	damped, err := DenseCholesky{}.Solve(sys, 9.0)
	if err != nil {
		tst.Errorf("Solve(9) failed: %v", err)
		return
	}
	if float64(damped[0]) >= float64(undamped[0]) {
		tst.Errorf("expected a damped step to shrink: undamped=%g damped=%g", undamped[0], damped[0])
	}
	// H=1, lambda=9 -> delta = 3/(1+9) = 0.3
	chk.Scalar(tst, "damped delta[0]", 1e-9, float64(damped[0]), 0.3)
}

func Test_dense_cholesky_repeated_solve_is_pure01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linsolve: repeated Solve calls against one System do not accumulate lambda")

	sys := buildSinglePriorSystem(tst)
	first, err := DenseCholesky{}.Solve(sys, 5.0)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	second, err := DenseCholesky{}.Solve(sys, 5.0)
	if err != nil {
		tst.Errorf("Solve failed: %v", err)
		return
	}
	chk.Scalar(tst, "repeated solve", 1e-12, float64(second[0]), float64(first[0]))
}
