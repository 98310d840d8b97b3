// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalar

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_dual01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dual: arithmetic derivatives")

	x := Var(3.0, 0, 1)
	y := Var(2.0, 0, 1) // same slot: dy/dx = 1 when y depends on x

	sum := x.Add(y)
	chk.Scalar(tst, "d(x+x)/dx", 1e-15, sum.Grad[0], 2)

	prod := x.Mul(x) // x^2, d/dx = 2x
	chk.Scalar(tst, "d(x^2)/dx", 1e-15, prod.Grad[0], 6)

	sq := Var(4.0, 0, 1).Sqrt() // d(sqrt(x))/dx = 1/(2 sqrt(x)) at x=4
	chk.Scalar(tst, "d(sqrt(x))/dx", 1e-12, sq.Grad[0], 1.0/4.0)
}

func Test_dual02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dual: sin/cos/atan2 central-difference check")

	h := 1e-6
	x0 := 0.7

	d := Var(x0, 0, 1).Sin()
	num := (math.Sin(x0+h) - math.Sin(x0-h)) / (2 * h)
	chk.Scalar(tst, "d(sin(x))/dx", 1e-6, d.Grad[0], num)

	d = Var(x0, 0, 1).Cos()
	num = (math.Cos(x0+h) - math.Cos(x0-h)) / (2 * h)
	chk.Scalar(tst, "d(cos(x))/dx", 1e-6, d.Grad[0], num)

	y0 := 1.3
	d = Var(x0, 0, 2).Atan2(Const(y0, 2))
	num = (math.Atan2(x0+h, y0) - math.Atan2(x0-h, y0)) / (2 * h)
	chk.Scalar(tst, "d(atan2(x,y))/dx", 1e-6, d.Grad[0], num)
}

func Test_dual03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dual: independent-variable gradient is not mixed across slots")

	x := Var(2.0, 0, 2)
	y := Var(5.0, 1, 2)
	z := x.Mul(x).Add(y) // z = x^2 + y

	chk.Scalar(tst, "dz/dx", 1e-15, z.Grad[0], 4)
	chk.Scalar(tst, "dz/dy", 1e-15, z.Grad[1], 1)
}
