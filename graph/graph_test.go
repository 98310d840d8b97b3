// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/noise"
	"github.com/cpmech/fgraph/residual"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

func Test_graph_new_factor01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("graph: NewFactor validates arity and noise dimension")

	n, err := noise.NewIsotropic(1, 1.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	x0 := symbol.New('x', 0)
	measured := manifold.SO2Exp[scalar.RealNum]([]scalar.RealNum{0.0})

	if _, err := NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0, x0}, n, nil); err == nil {
		tst.Errorf("expected an arity-mismatch error (2 keys for a unary residual)")
	}

	n3, err := noise.NewIsotropic(3, 1.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	if _, err := NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0}, n3, nil); err == nil {
		tst.Errorf("expected a dimension-mismatch error (noise dim 3 vs residual dim 1)")
	}

	f, err := NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Errorf("NewFactor should have succeeded: %v", err)
	}
	if f.Residual.Dim() != 1 || len(f.Keys) != 1 {
		tst.Errorf("unexpected factor shape: dim=%d keys=%d", f.Residual.Dim(), len(f.Keys))
	}
}

func Test_graph_add_factor01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("graph: AddFactor rejects unbound keys, Len/ResidualDim track factors")

	vs := values.New()
	x0 := symbol.New('x', 0)
	measured := manifold.SO2Exp[scalar.RealNum]([]scalar.RealNum{0.0})
	n, err := noise.NewIsotropic(1, 1.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	f, err := NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Errorf("NewFactor failed: %v", err)
		return
	}

	g := New()
	if err := g.AddFactor(f, vs); err == nil {
		tst.Errorf("expected AddFactor to fail: x0 is not yet bound in vs")
	}

	if err := values.Insert(vs, x0, measured); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	if err := g.AddFactor(f, vs); err != nil {
		tst.Errorf("AddFactor should have succeeded: %v", err)
	}
	if g.Len() != 1 {
		tst.Errorf("Len: got %d, want 1", g.Len())
	}
	if g.ResidualDim() != 1 {
		tst.Errorf("ResidualDim: got %d, want 1", g.ResidualDim())
	}
}

func Test_graph_add_factor_type_mismatch01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("graph: AddFactor rejects a bound variable of the wrong manifold type as a ConstructionError")

	vs := values.New()
	x0 := symbol.New('x', 0)
	// x0 is bound to an SO3 variable, but the factor below is a PriorSO2.
	if err := values.Insert(vs, x0, manifold.SO3Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}

	measured := manifold.SO2Exp[scalar.RealNum]([]scalar.RealNum{0.0})
	n, err := noise.NewIsotropic(1, 1.0)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	f, err := NewFactor(residual.PriorSO2{Measured: measured}, []symbol.Symbol{x0}, n, nil)
	if err != nil {
		tst.Errorf("NewFactor failed: %v", err)
		return
	}

	g := New()
	err = g.AddFactor(f, vs)
	if err == nil {
		tst.Errorf("expected AddFactor to reject x0's SO3 binding against a PriorSO2 residual")
		return
	}
	var ce *ferr.ConstructionError
	if !errors.As(err, &ce) {
		tst.Errorf("expected a *ferr.ConstructionError, got %T: %v", err, err)
	}
}
