// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"fmt"

	"github.com/cpmech/fgraph/scalar"
)

// SO2 is a unit complex number (C,S) = (cos theta, sin theta); tangent
// dimension 1, per spec.md §3/§4.2.
type SO2[T scalar.Number[T]] struct {
	C, S T
}

// SO2Identity returns the identity rotation.
func SO2Identity[T scalar.Number[T]]() SO2[T] {
	return SO2[T]{C: scalar.ConstOf[T](1), S: scalar.ConstOf[T](0)}
}

// SO2Exp computes exp(theta) = (cos theta, sin theta).
func SO2Exp[T scalar.Number[T]](xi []T) SO2[T] {
	theta := xi[0]
	return SO2[T]{C: theta.Cos(), S: theta.Sin()}
}

// Log returns atan2(S, C).
func (r SO2[T]) Log() []T {
	return []T{r.S.Atan2(r.C)}
}

// Inverse returns the conjugate (C, -S).
func (r SO2[T]) Inverse() SO2[T] {
	return SO2[T]{C: r.C, S: r.S.Neg()}
}

// Compose returns the group product a*b.
func (a SO2[T]) Compose(b SO2[T]) SO2[T] {
	return SO2[T]{
		C: a.C.Mul(b.C).Sub(a.S.Mul(b.S)),
		S: a.C.Mul(b.S).Add(a.S.Mul(b.C)),
	}
}

// Oplus retracts by a 1-vector tangent perturbation, honoring the
// package-wide retract convention (manifold.LeftRetract).
func (r SO2[T]) Oplus(xi []T) SO2[T] {
	d := SO2Exp[T](xi)
	if LeftRetract {
		return d.Compose(r)
	}
	return r.Compose(d)
}

// Ominus returns local coordinates of other relative to r.
func (r SO2[T]) Ominus(other SO2[T]) []T {
	if LeftRetract {
		return other.Compose(r.Inverse()).Log()
	}
	return r.Inverse().Compose(other).Log()
}

// Adjoint for SO(2) is the scalar 1 (rotation is abelian in 1-D tangent).
func (r SO2[T]) Adjoint() [][]T {
	return [][]T{{scalar.ConstOf[T](1)}}
}

// SO2Real is the Values-storage instantiation.
type SO2Real = SO2[scalar.RealNum]

// Dim implements Variable.
func (r SO2Real) Dim() int { return 1 }

// OplusVec implements Variable.
func (r SO2Real) OplusVec(xi []scalar.Real) Variable {
	return r.Oplus(toRealNum(xi))
}

// OminusVec implements Variable.
func (r SO2Real) OminusVec(other Variable) []scalar.Real {
	o := other.(SO2Real)
	return fromRealNum(r.Ominus(o))
}

// TypeName implements Variable.
func (r SO2Real) TypeName() string { return "SO2" }

// String implements Variable/fmt.Stringer.
func (r SO2Real) String() string {
	return fmt.Sprintf("SO2(theta=%g)", r.Log()[0].Value())
}

// LiftSO2 converts a RealNum SO2 into the T-instantiation.
func LiftSO2[T scalar.Number[T]](r SO2Real) SO2[T] {
	return SO2[T]{C: scalar.ConstOf[T](r.C.Value()), S: scalar.ConstOf[T](r.S.Value())}
}
