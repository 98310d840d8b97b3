// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalar

import "math"

// MaxWidth bounds the tangent width W (sum of the tangent dimensions of a
// factor's variables) a Dual can carry without a heap allocation. SE(3)
// factors of up to four poses (24 = 4*6) fit comfortably; wider factors
// are rejected by linearize with a ferr.EvaluationError and must be split
// or handled by a reduced-arity residual.
const MaxWidth = 24

// Dual is a forward-mode dual number: a real part and a fixed-capacity
// gradient. Only the first Width entries of Grad are meaningful; the rest
// are always zero. Values are plain structs (no pointers) so they live on
// the stack through the AD inner loop, per spec.md §5's "no heap
// allocation beyond the linear solver's internal needs".
type Dual struct {
	Val  Real
	Grad [MaxWidth]Real
	W    int // active width, W <= MaxWidth
}

// Const returns a dual constant with a zero gradient of the given width.
func Const(v Real, w int) Dual {
	return Dual{Val: v, W: w}
}

// Var returns a dual variable: value v, with a 1 in gradient slot i (the
// i-th of w tangent directions).
func Var(v Real, i, w int) Dual {
	d := Dual{Val: v, W: w}
	d.Grad[i] = 1
	return d
}

func (a Dual) sameWidth(b Dual) int {
	if a.W >= b.W {
		return a.W
	}
	return b.W
}

// Add returns a+b.
func (a Dual) Add(b Dual) Dual {
	w := a.sameWidth(b)
	r := Dual{Val: a.Val + b.Val, W: w}
	for i := 0; i < w; i++ {
		r.Grad[i] = a.Grad[i] + b.Grad[i]
	}
	return r
}

// Sub returns a-b.
func (a Dual) Sub(b Dual) Dual {
	w := a.sameWidth(b)
	r := Dual{Val: a.Val - b.Val, W: w}
	for i := 0; i < w; i++ {
		r.Grad[i] = a.Grad[i] - b.Grad[i]
	}
	return r
}

// Mul returns a*b.
func (a Dual) Mul(b Dual) Dual {
	w := a.sameWidth(b)
	r := Dual{Val: a.Val * b.Val, W: w}
	for i := 0; i < w; i++ {
		r.Grad[i] = a.Grad[i]*b.Val + a.Val*b.Grad[i]
	}
	return r
}

// Div returns a/b.
func (a Dual) Div(b Dual) Dual {
	w := a.sameWidth(b)
	inv := 1 / b.Val
	r := Dual{Val: a.Val * inv, W: w}
	for i := 0; i < w; i++ {
		r.Grad[i] = (a.Grad[i] - r.Val*b.Grad[i]) * inv
	}
	return r
}

// Neg returns -a.
func (a Dual) Neg() Dual {
	r := Dual{Val: -a.Val, W: a.W}
	for i := 0; i < a.W; i++ {
		r.Grad[i] = -a.Grad[i]
	}
	return r
}

// Scale returns a*s for a plain-real scalar s.
func (a Dual) Scale(s Real) Dual {
	r := Dual{Val: a.Val * s, W: a.W}
	for i := 0; i < a.W; i++ {
		r.Grad[i] = a.Grad[i] * s
	}
	return r
}

// AddReal returns a+s.
func (a Dual) AddReal(s Real) Dual {
	r := a
	r.Val += s
	return r
}

func chain(a Dual, fv Real, dfdv Real) Dual {
	r := Dual{Val: fv, W: a.W}
	for i := 0; i < a.W; i++ {
		r.Grad[i] = dfdv * a.Grad[i]
	}
	return r
}

// Sqrt returns sqrt(a).
func (a Dual) Sqrt() Dual {
	s := Real(math.Sqrt(float64(a.Val)))
	if s == 0 {
		return chain(a, 0, 0)
	}
	return chain(a, s, 1/(2*s))
}

// Sin returns sin(a).
func (a Dual) Sin() Dual {
	return chain(a, Real(math.Sin(float64(a.Val))), Real(math.Cos(float64(a.Val))))
}

// Cos returns cos(a).
func (a Dual) Cos() Dual {
	return chain(a, Real(math.Cos(float64(a.Val))), -Real(math.Sin(float64(a.Val))))
}

// Atan2 returns atan2(a, b).
func (a Dual) Atan2(b Dual) Dual {
	w := a.sameWidth(b)
	v := Real(math.Atan2(float64(a.Val), float64(b.Val)))
	denom := a.Val*a.Val + b.Val*b.Val
	r := Dual{Val: v, W: w}
	for i := 0; i < w; i++ {
		r.Grad[i] = (b.Val*a.Grad[i] - a.Val*b.Grad[i]) / denom
	}
	return r
}

// Abs returns |a|.
func (a Dual) Abs() Dual {
	if a.Val < 0 {
		return a.Neg()
	}
	return a
}

// Value returns the plain-real value underlying a Dual (or of a Real,
// via the identity case), letting generic code accept either.
func (a Dual) Value() Real { return a.Val }
