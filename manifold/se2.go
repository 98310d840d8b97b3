// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"fmt"

	"github.com/cpmech/fgraph/scalar"
)

// SE2 is a planar rigid motion (rotation, translation); tangent dimension
// 3, tangent vector layout [rho0, rho1, omega] per spec.md §4.2.
type SE2[T scalar.Number[T]] struct {
	R SO2[T]
	X T
	Y T
}

// SE2Identity returns the identity pose.
func SE2Identity[T scalar.Number[T]]() SE2[T] {
	return SE2[T]{R: SO2Identity[T](), X: scalar.ConstOf[T](0), Y: scalar.ConstOf[T](0)}
}

// se2LeftJacobian returns V(theta), the left Jacobian of SO(2), honoring
// manifold.FakeExp (which substitutes the identity, decoupling rotation
// and translation).
func se2LeftJacobian[T scalar.Number[T]](theta T) [][]T {
	if FakeExp {
		return identityT[T](2)
	}
	th := theta.Value()
	if th < so3SmallAngle && th > -so3SmallAngle {
		return identityT[T](2)
	}
	s, c := theta.Sin(), theta.Cos()
	one := scalar.ConstOf[T](1)
	a := s.Div(theta)
	b := one.Sub(c).Div(theta)
	return [][]T{
		{a, b.Neg()},
		{b, a},
	}
}

// SE2Exp computes exp((rho, omega)): rotation from SO2.Exp(omega);
// translation = V(omega) . rho.
func SE2Exp[T scalar.Number[T]](xi []T) SE2[T] {
	rho := xi[0:2]
	omega := xi[2]
	r := SO2Exp[T]([]T{omega})
	v := se2LeftJacobian[T](omega)
	t := matVec(v, rho)
	return SE2[T]{R: r, X: t[0], Y: t[1]}
}

// Log is the inverse of Exp: recovers (rho, omega) such that
// SE2Exp(Log(p)) == p.
func (p SE2[T]) Log() []T {
	omega := p.R.Log()[0]
	v := se2LeftJacobian[T](omega)
	vinv := invert2[T](v)
	rho := matVec(vinv, []T{p.X, p.Y})
	return []T{rho[0], rho[1], omega}
}

func invert2[T scalar.Number[T]](m [][]T) [][]T {
	a, b, c, d := m[0][0], m[0][1], m[1][0], m[1][1]
	det := a.Mul(d).Sub(b.Mul(c))
	return [][]T{
		{d.Div(det), b.Neg().Div(det)},
		{c.Neg().Div(det), a.Div(det)},
	}
}

// Inverse returns the group inverse.
func (p SE2[T]) Inverse() SE2[T] {
	rinv := p.R.Inverse()
	t := matVec(rinv.RotMatrix2(), []T{p.X.Neg(), p.Y.Neg()})
	return SE2[T]{R: rinv, X: t[0], Y: t[1]}
}

// RotMatrix2 returns the 2x2 rotation matrix equivalent to r.
func (r SO2[T]) RotMatrix2() [][]T {
	return [][]T{{r.C, r.S.Neg()}, {r.S, r.C}}
}

// Compose returns the rigid-motion composition a*b.
func (a SE2[T]) Compose(b SE2[T]) SE2[T] {
	t := matVec(a.R.RotMatrix2(), []T{b.X, b.Y})
	return SE2[T]{R: a.R.Compose(b.R), X: a.X.Add(t[0]), Y: a.Y.Add(t[1])}
}

// Oplus retracts by a 3-vector tangent perturbation.
func (p SE2[T]) Oplus(xi []T) SE2[T] {
	d := SE2Exp[T](xi)
	if LeftRetract {
		return d.Compose(p)
	}
	return p.Compose(d)
}

// Ominus returns local coordinates of other relative to p.
func (p SE2[T]) Ominus(other SE2[T]) []T {
	if LeftRetract {
		return other.Compose(p.Inverse()).Log()
	}
	return p.Inverse().Compose(other).Log()
}

// SE2Real is the Values-storage instantiation.
type SE2Real = SE2[scalar.RealNum]

// Dim implements Variable.
func (p SE2Real) Dim() int { return 3 }

// OplusVec implements Variable.
func (p SE2Real) OplusVec(xi []scalar.Real) Variable {
	return p.Oplus(toRealNum(xi))
}

// OminusVec implements Variable.
func (p SE2Real) OminusVec(other Variable) []scalar.Real {
	o := other.(SE2Real)
	return fromRealNum(p.Ominus(o))
}

// TypeName implements Variable.
func (p SE2Real) TypeName() string { return "SE2" }

// String implements Variable/fmt.Stringer.
func (p SE2Real) String() string {
	return fmt.Sprintf("SE2(x=%g,y=%g,theta=%g)", p.X.Value(), p.Y.Value(), p.R.Log()[0].Value())
}

// LiftSE2 converts a RealNum SE2 into the T-instantiation.
func LiftSE2[T scalar.Number[T]](p SE2Real) SE2[T] {
	return SE2[T]{R: LiftSO2[T](p.R), X: scalar.ConstOf[T](p.X.Value()), Y: scalar.ConstOf[T](p.Y.Value())}
}
