// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package residual

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
)

func zero3x3() [][]scalar.Real {
	return [][]scalar.Real{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
}

func Test_imu_zero_motion01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("IMU preintegration: zero-motion deltas at identity poses vanish")

	f := IMUPreintegration{
		DeltaR:  manifold.SO3Identity[scalar.RealNum](),
		DeltaV:  manifold.VectorOf[scalar.RealNum](0, 0, 0),
		DeltaP:  manifold.VectorOf[scalar.RealNum](0, 0, 0),
		BiasRef: manifold.VectorOf[scalar.RealNum](0, 0, 0, 0, 0, 0),
		DRdBg:   zero3x3(),
		DVdBa:   zero3x3(),
		DVdBg:   zero3x3(),
		DPdBa:   zero3x3(),
		DPdBg:   zero3x3(),
		Dt:      0,
		Gravity: manifold.VectorOf[scalar.RealNum](0, 0, 0),
	}

	poseI := manifold.SE3Identity[scalar.RealNum]()
	poseJ := manifold.SE3Identity[scalar.RealNum]()
	velI := manifold.VectorOf[scalar.RealNum](0, 0, 0)
	velJ := manifold.VectorOf[scalar.RealNum](0, 0, 0)
	biasI := manifold.VectorOf[scalar.RealNum](0, 0, 0, 0, 0, 0)
	biasJ := manifold.VectorOf[scalar.RealNum](0, 0, 0, 0, 0, 0)

	r, err := f.EvaluateReal([]manifold.Variable{poseI, velI, biasI, poseJ, velJ, biasJ})
	if err != nil {
		tst.Errorf("EvaluateReal failed: %v", err)
		return
	}
	chk.Vector(tst, "r", 1e-12, r, make([]float64, 9))
}

func Test_imu_wrong_type01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("IMU preintegration: a mistyped variable slot errors")

	f := IMUPreintegration{
		DeltaR:  manifold.SO3Identity[scalar.RealNum](),
		DeltaV:  manifold.VectorOf[scalar.RealNum](0, 0, 0),
		DeltaP:  manifold.VectorOf[scalar.RealNum](0, 0, 0),
		BiasRef: manifold.VectorOf[scalar.RealNum](0, 0, 0, 0, 0, 0),
		DRdBg:   zero3x3(), DVdBa: zero3x3(), DVdBg: zero3x3(), DPdBa: zero3x3(), DPdBg: zero3x3(),
		Gravity: manifold.VectorOf[scalar.RealNum](0, 0, 0),
	}
	wrong := manifold.SO2Identity[scalar.RealNum]()
	_, err := f.EvaluateReal([]manifold.Variable{wrong, wrong, wrong, wrong, wrong, wrong})
	if err == nil {
		tst.Errorf("expected a type error for a mistyped pose slot")
	}
}

// Test_imu_jacobian01 checks IMUPreintegration's dual-number Jacobian
// against a central difference, with non-trivial deltas/biases/gravity
// so no term accidentally vanishes.
//
// IMUPreintegration has arity 6 (poseI, velI, biasI, poseJ, velJ, biasJ)
// with tangent dimensions summing to 30, which exceeds scalar.MaxWidth
// (24): a real factor over all six variables free at once cannot be
// linearized in a single dual pass and must be split, per
// scalar.MaxWidth's documented fallback. This test mirrors that split:
// each pass differentiates at most two "care" variables against distinct
// offsets and collapses the others onto one shared, non-overlapping
// offset so every pass's width stays within MaxWidth.
func Test_imu_jacobian01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("IMU preintegration: Jacobian matches central difference")

	drdbg := [][]scalar.Real{{0.01, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}}
	dvdba := [][]scalar.Real{{0.02, 0, 0}, {0, 0.02, 0}, {0, 0, 0.02}}
	dvdbg := [][]scalar.Real{{0.01, 0, 0}, {0, 0.01, 0}, {0, 0, 0.01}}
	dpdba := [][]scalar.Real{{0.005, 0, 0}, {0, 0.005, 0}, {0, 0, 0.005}}
	dpdbg := [][]scalar.Real{{0.002, 0, 0}, {0, 0.002, 0}, {0, 0, 0.002}}

	f := IMUPreintegration{
		DeltaR:  manifold.SO3Exp[scalar.RealNum](toRealVec([]float64{0.05, -0.02, 0.03})),
		DeltaV:  manifold.VectorOf[scalar.RealNum](0.2, -0.1, 0.05),
		DeltaP:  manifold.VectorOf[scalar.RealNum](0.3, 0.1, -0.05),
		BiasRef: manifold.VectorOf[scalar.RealNum](0.01, 0.01, 0.01, 0.001, 0.001, 0.001),
		DRdBg:   drdbg, DVdBa: dvdba, DVdBg: dvdbg, DPdBa: dpdba, DPdBg: dpdbg,
		Dt:      0.1,
		Gravity: manifold.VectorOf[scalar.RealNum](0, 0, -9.81),
	}

	poseI := manifold.SE3Exp[scalar.RealNum](toRealVec([]float64{0, 0, 0, 0.1, -0.05, 0.02}))
	poseJ := manifold.SE3Exp[scalar.RealNum](toRealVec([]float64{0.3, 0.1, -0.05, 0.15, -0.02, 0.04}))
	velI := manifold.VectorOf[scalar.RealNum](1.0, 0.2, -0.1)
	velJ := manifold.VectorOf[scalar.RealNum](1.2, 0.15, -0.15)
	biasI := manifold.VectorOf[scalar.RealNum](0.01, 0.01, 0.01, 0.001, 0.001, 0.001)
	biasJ := manifold.VectorOf[scalar.RealNum](0.01, 0.01, 0.01, 0.001, 0.001, 0.001)

	vars := []manifold.Variable{poseI, velI, biasI, poseJ, velJ, biasJ}
	dims := []int{6, 3, 6, 6, 3, 6}

	// checkSlot verifies every tangent column of a single "care" slot,
	// holding the rest of the variables (including the other care slot
	// of the pass, through its fixed offset) fixed.
	checkSlot := func(offsets []int, width int, slot int) {
		d := dims[slot]
		rd, err := f.EvaluateDual(vars, offsets, width)
		if err != nil {
			tst.Errorf("EvaluateDual failed: %v", err)
			return
		}
		h := 1e-6
		for col := 0; col < d; col++ {
			xi := make([]scalar.Real, d)
			xi[col] = h
			plusVars := append([]manifold.Variable{}, vars...)
			plusVars[slot] = vars[slot].OplusVec(xi)
			xi[col] = -h
			minusVars := append([]manifold.Variable{}, vars...)
			minusVars[slot] = vars[slot].OplusVec(xi)

			rp, err := f.EvaluateReal(plusVars)
			if err != nil {
				tst.Errorf("EvaluateReal(plus) failed: %v", err)
				return
			}
			rm, err := f.EvaluateReal(minusVars)
			if err != nil {
				tst.Errorf("EvaluateReal(minus) failed: %v", err)
				return
			}
			for row := 0; row < 9; row++ {
				num := (rp[row] - rm[row]) / (2 * h)
				ana := rd[row].Grad[offsets[slot]+col]
				chk.AnaNum(tst, "dr/dvar", 1e-4, ana, num, false)
			}
		}
	}

	// Pass 1: poseI (slot 0, @0) and velI (slot 1, @6); the remaining
	// four variables (max dim 6) share offset 9, width 15.
	checkSlot([]int{0, 6, 9, 9, 9, 9}, 15, 0)
	checkSlot([]int{0, 6, 9, 9, 9, 9}, 15, 1)

	// Pass 2: poseJ (slot 3, @0) and velJ (slot 4, @6); the remaining
	// four variables share offset 9, width 15.
	checkSlot([]int{9, 9, 9, 0, 6, 9}, 15, 3)
	checkSlot([]int{9, 9, 9, 0, 6, 9}, 15, 4)

	// Pass 3: biasI (slot 2, @0) alone; the rest share offset 6, width 12.
	checkSlot([]int{6, 6, 0, 6, 6, 6}, 12, 2)
}
