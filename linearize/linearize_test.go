// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linearize

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/noise"
	"github.com/cpmech/fgraph/residual"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

func Test_linearize_single_prior01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linearize: single isotropic prior produces H=1/sigma^2, Jtr=r/sigma^2")

	x0 := symbol.New('x', 0)
	vs := values.New()
	if err := values.Insert(vs, x0, manifold.VectorOf[scalar.RealNum](3)); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	n, err := noise.NewIsotropic(1, 2.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	f, err := graph.NewFactor(residual.PriorVector{Measured: manifold.VectorOf[scalar.RealNum](5)},
		[]symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Errorf("NewFactor failed: %v", err)
		return
	}
	g := graph.New()
	if err := g.AddFactor(f, vs); err != nil {
		tst.Errorf("AddFactor failed: %v", err)
		return
	}

	sys, err := Linearize(g, vs, 8)
	if err != nil {
		tst.Errorf("Linearize failed: %v", err)
		return
	}
	// raw residual r(x) = measured.Ominus(x) = x - measured = 3 - 5 = -2,
	// whitened by 1/sigma = 0.5 -> -1; Jacobian dr/dx = 1, whitened 0.5.
	chk.Scalar(tst, "Hd[0][0]", 1e-12, sys.Hd.At(0, 0), 0.25)
	chk.Scalar(tst, "Jtr[0]", 1e-12, sys.Jtr.AtVec(0), -0.5)
	chk.Scalar(tst, "System.Error()", 1e-12, sys.Error(), 0.5*1.0)
}

func Test_linearize_total_error01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linearize: TotalError matches a hand-computed robust cost")

	x0 := symbol.New('x', 0)
	vs := values.New()
	if err := values.Insert(vs, x0, manifold.VectorOf[scalar.RealNum](0)); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	n, err := noise.NewIsotropic(1, 1.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	f, err := graph.NewFactor(residual.PriorVector{Measured: manifold.VectorOf[scalar.RealNum](4)},
		[]symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Errorf("NewFactor failed: %v", err)
		return
	}
	g := graph.New()
	if err := g.AddFactor(f, vs); err != nil {
		tst.Errorf("AddFactor failed: %v", err)
		return
	}

	got, err := TotalError(g, vs)
	if err != nil {
		tst.Errorf("TotalError failed: %v", err)
		return
	}
	// r = 0-4 = -4, whitened by 1/1 = -4, s=16, no robust kernel -> 0.5*16=8.
	chk.Scalar(tst, "TotalError", 1e-12, got, 8.0)
}

// Test_linearize_parallel_matches_serial01 checks that forcing the
// goroutine-pool evaluation path (normally only enabled by building
// with -tags parallel) produces the same accumulated system as the
// sequential path, over a graph with enough factors to actually spread
// across workers.
func Test_linearize_parallel_matches_serial01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linearize: Parallel evaluation matches sequential evaluation")

	vs := values.New()
	g := graph.New()
	var keys []symbol.Symbol
	for i := 0; i < 6; i++ {
		k := symbol.New('x', uint64(i))
		keys = append(keys, k)
		if err := values.Insert(vs, k, manifold.VectorOf[scalar.RealNum](scalar.RealNum(i))); err != nil {
			tst.Errorf("Insert failed: %v", err)
			return
		}
	}
	n, err := noise.NewIsotropic(1, 1.5)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	for i, k := range keys {
		f, err := graph.NewFactor(residual.PriorVector{Measured: manifold.VectorOf[scalar.RealNum](scalar.RealNum(i) + 0.5)},
			[]symbol.Symbol{k}, n, nil)
		if err != nil {
			tst.Errorf("NewFactor failed: %v", err)
			return
		}
		if err := g.AddFactor(f, vs); err != nil {
			tst.Errorf("AddFactor failed: %v", err)
			return
		}
	}

	serial, err := Linearize(g, vs, 16)
	if err != nil {
		tst.Errorf("Linearize (serial) failed: %v", err)
		return
	}

	Parallel = true
	defer func() { Parallel = false }()
	parallel, err := Linearize(g, vs, 16)
	if err != nil {
		tst.Errorf("Linearize (parallel) failed: %v", err)
		return
	}

	chk.Scalar(tst, "Error", 1e-12, parallel.Error(), serial.Error())
	for i := 0; i < serial.Cols; i++ {
		chk.Scalar(tst, "Jtr", 1e-12, parallel.Jtr.AtVec(i), serial.Jtr.AtVec(i))
		for j := 0; j < serial.Cols; j++ {
			chk.Scalar(tst, "Hd", 1e-12, parallel.Hd.At(i, j), serial.Hd.At(i, j))
		}
	}
}
