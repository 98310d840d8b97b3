// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fgraphdemo runs spec.md §8's first end-to-end scenario: a
// single SO(2) variable with one prior, solved by Gauss-Newton — a
// minimal, runnable sanity check of the Values/Graph/Factor wiring, in
// the spirit of the teacher's main.go driving a Domain/Solver from a
// simulation file.
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/noise"
	"github.com/cpmech/fgraph/optimize"
	"github.com/cpmech/fgraph/residual"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.Pfred("fgraphdemo: %v\n", err)
		}
	}()

	x0 := symbol.New('x', 0)

	vs := values.New()
	if err := values.Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		chk.Panic("%v", err)
	}

	measured := manifold.SO2Exp[scalar.RealNum]([]scalar.RealNum{1.0})
	n, err := noise.NewIsotropic(1, 1e-3)
	if err != nil {
		chk.Panic("%v", err)
	}
	f, err := graph.NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0}, n, nil)
	if err != nil {
		chk.Panic("%v", err)
	}

	g := graph.New()
	if err := g.AddFactor(f, vs); err != nil {
		chk.Panic("%v", err)
	}

	res := optimize.GaussNewton(g, vs, optimize.DefaultConfig())
	io.Pf(">> status=%v iterations=%d error=%.3e\n", res.Status, res.Iterations, res.Error)

	got, err := values.Get[manifold.SO2Real](res.Values, x0)
	if err != nil {
		chk.Panic("%v", err)
	}
	io.Pf(">> x0 = %s (theta=%.9f)\n", got.String(), got.Log()[0])
}
