// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package values

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
)

func Test_values_insert_get01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("values: insert/get round trip")

	vs := New()
	x0 := symbol.New('x', 0)
	if err := Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	got, err := Get[manifold.SO2Real](vs, x0)
	if err != nil {
		tst.Errorf("Get failed: %v", err)
		return
	}
	chk.Scalar(tst, "theta", 1e-15, float64(got.Log()[0]), 0)
}

func Test_values_type_mismatch01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("values: rebinding a symbol to a different type errors")

	vs := New()
	x0 := symbol.New('x', 0)
	if err := Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	err := Insert(vs, x0, manifold.SE2Identity[scalar.RealNum]())
	if err == nil {
		tst.Errorf("expected a type-mismatch error rebinding x0 to SE2")
	}
	if _, err := Get[manifold.SE3Real](vs, x0); err == nil {
		tst.Errorf("expected a type-mismatch error fetching x0 as SE3")
	}
}

func Test_values_ordering_dim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("values: Dim/Ordering reflect insertion order and per-variable width")

	vs := New()
	x0 := symbol.New('x', 0)
	x1 := symbol.New('x', 1)
	if err := Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert x0 failed: %v", err)
		return
	}
	if err := Insert(vs, x1, manifold.SE3Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert x1 failed: %v", err)
		return
	}
	if vs.Dim() != 7 {
		tst.Errorf("Dim: got %d, want 7 (1 + 6)", vs.Dim())
	}
	off := vs.Ordering()
	if off[x0] != 0 {
		tst.Errorf("offset x0: got %d, want 0", off[x0])
	}
	if off[x1] != 1 {
		tst.Errorf("offset x1: got %d, want 1", off[x1])
	}
}

func Test_values_retract01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("values: Retract applies a stacked delta per variable")

	vs := New()
	x0 := symbol.New('x', 0)
	if err := Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	vs.Retract([]scalar.Real{0.25})
	got, err := Get[manifold.SO2Real](vs, x0)
	if err != nil {
		tst.Errorf("Get failed: %v", err)
		return
	}
	chk.Scalar(tst, "theta after retract", 1e-12, float64(got.Log()[0]), 0.25)
}

func Test_values_clone_independence01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("values: Clone is independent of the original")

	vs := New()
	x0 := symbol.New('x', 0)
	if err := Insert(vs, x0, manifold.SO2Identity[scalar.RealNum]()); err != nil {
		tst.Errorf("Insert failed: %v", err)
		return
	}
	clone := vs.Clone()
	clone.Retract([]scalar.Real{1.0})

	orig, _ := Get[manifold.SO2Real](vs, x0)
	cloned, _ := Get[manifold.SO2Real](clone, x0)
	chk.Scalar(tst, "original unchanged", 1e-12, float64(orig.Log()[0]), 0)
	chk.Scalar(tst, "clone updated", 1e-12, float64(cloned.Log()[0]), 1.0)
}
