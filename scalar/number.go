// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalar

import "math"

// Number is the arithmetic contract shared by RealNum and Dual. Manifold
// and residual code is written once against Number[T] and instantiated by
// the AD engine on both T=RealNum (to get r(x)) and T=Dual (to get the
// Jacobian alongside r(x)), per spec.md §4.1/§4.3: "implementors write the
// math once, generic over scalar; the engine instantiates it on both the
// active scalar and the matching dual type."
type Number[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	Sqrt() T
	Sin() T
	Cos() T
	Atan2(T) T
	Abs() T
	Scale(Real) T
	AddReal(Real) T
	Value() Real
}

// RealNum wraps Real so it can implement Number[RealNum]; Real itself is a
// bare alias of float64/float32 and cannot carry methods.
type RealNum Real

// Add returns a+b.
func (a RealNum) Add(b RealNum) RealNum { return a + b }

// Sub returns a-b.
func (a RealNum) Sub(b RealNum) RealNum { return a - b }

// Mul returns a*b.
func (a RealNum) Mul(b RealNum) RealNum { return a * b }

// Div returns a/b.
func (a RealNum) Div(b RealNum) RealNum { return a / b }

// Neg returns -a.
func (a RealNum) Neg() RealNum { return -a }

// Scale returns a*s.
func (a RealNum) Scale(s Real) RealNum { return RealNum(Real(a) * s) }

// AddReal returns a+s.
func (a RealNum) AddReal(s Real) RealNum { return a + RealNum(s) }

// Sqrt returns sqrt(a).
func (a RealNum) Sqrt() RealNum { return RealNum(math.Sqrt(float64(a))) }

// Sin returns sin(a).
func (a RealNum) Sin() RealNum { return RealNum(math.Sin(float64(a))) }

// Cos returns cos(a).
func (a RealNum) Cos() RealNum { return RealNum(math.Cos(float64(a))) }

// Atan2 returns atan2(a, b).
func (a RealNum) Atan2(b RealNum) RealNum { return RealNum(math.Atan2(float64(a), float64(b))) }

// Abs returns |a|.
func (a RealNum) Abs() RealNum {
	if a < 0 {
		return -a
	}
	return a
}

// Value returns the underlying Real.
func (a RealNum) Value() Real { return Real(a) }

// R converts a plain Real to a RealNum, for building constants.
func R(v Real) RealNum { return RealNum(v) }

// ConstOf builds a Number[T] constant out of a plain Real, working for
// both RealNum and Dual: a Dual constant starts with a zero gradient of
// width zero, which widens automatically the first time it combines
// (via Add/Mul/...) with a width-carrying Dual (see Dual.sameWidth).
func ConstOf[T Number[T]](v Real) T {
	var zero T
	return zero.AddReal(v)
}
