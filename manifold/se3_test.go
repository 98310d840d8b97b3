// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/fgraph/scalar"
)

func toRealVec(xi []float64) []scalar.RealNum {
	out := make([]scalar.RealNum, len(xi))
	for i, v := range xi {
		out[i] = scalar.RealNum(v)
	}
	return out
}

func fromRealVec(xi []scalar.RealNum) []float64 {
	out := make([]float64, len(xi))
	for i, v := range xi {
		out[i] = float64(v)
	}
	return out
}

func Test_se3_exp_log01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SE3: exp/log round trip")

	xis := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{1, 0, 0, 0.1, 0, 0},
		{0, 1, -1, 0, 0.2, -0.3},
		{0.5, -0.5, 1.0, 0.3, -0.4, 0.6},
	}
	for _, xi := range xis {
		p := SE3Exp[scalar.RealNum](toRealVec(xi))
		back := p.Log()
		chk.Vector(tst, "log(exp(xi))", 1e-8, fromRealVec(back), xi)
	}
}

func Test_se3_inverse01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SE3: p * p^-1 = identity")

	p := SE3Exp[scalar.RealNum](toRealVec([]float64{0.2, -0.3, 0.1, 0.4, -0.2, 0.3}))
	id := p.Compose(p.Inverse())
	chk.Vector(tst, "identity log", 1e-8, fromRealVec(id.Log()), []float64{0, 0, 0, 0, 0, 0})
}

func Test_se3_retract01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SE3: ominus(oplus(p,xi)) = xi")

	p := SE3Exp[scalar.RealNum](toRealVec([]float64{1, 2, 3, 0.1, 0.2, 0.3}))
	xi := toRealVec([]float64{0.05, -0.05, 0.02, 0.01, -0.02, 0.03})
	other := p.Oplus(xi)
	back := p.Ominus(other)
	chk.Vector(tst, "xi", 1e-8, fromRealVec(back), fromRealVec(xi))
}

func Test_se3_adjoint01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SE3: identity pose has identity adjoint")

	id := SE3Identity[scalar.RealNum]()
	ad := id.Adjoint()
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			chk.Scalar(tst, "Ad[i][j]", 1e-12, float64(ad[i][j]), want)
		}
	}
}
