// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"fmt"

	"github.com/cpmech/fgraph/scalar"
)

// SE3 is a rigid motion (rotation, translation); tangent dimension 6,
// tangent vector layout [rho0, rho1, rho2, omega0, omega1, omega2] per
// spec.md §4.2.
type SE3[T scalar.Number[T]] struct {
	R SO3[T]
	X T
	Y T
	Z T
}

// SE3Identity returns the identity pose.
func SE3Identity[T scalar.Number[T]]() SE3[T] {
	z := scalar.ConstOf[T](0)
	return SE3[T]{R: SO3Identity[T](), X: z, Y: z, Z: z}
}

func skew3[T scalar.Number[T]](w []T) [][]T {
	zero := scalar.ConstOf[T](0)
	return [][]T{
		{zero, w[2].Neg(), w[1]},
		{w[2], zero, w[0].Neg()},
		{w[1].Neg(), w[0], zero},
	}
}

func matMul3[T scalar.Number[T]](a, b [][]T) [][]T {
	r := make([][]T, 3)
	for i := 0; i < 3; i++ {
		r[i] = make([]T, 3)
		for j := 0; j < 3; j++ {
			acc := scalar.ConstOf[T](0)
			for k := 0; k < 3; k++ {
				acc = acc.Add(a[i][k].Mul(b[k][j]))
			}
			r[i][j] = acc
		}
	}
	return r
}

func matAdd3[T scalar.Number[T]](a, b [][]T) [][]T {
	r := make([][]T, 3)
	for i := 0; i < 3; i++ {
		r[i] = make([]T, 3)
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j].Add(b[i][j])
		}
	}
	return r
}

func matScale3[T scalar.Number[T]](a [][]T, s T) [][]T {
	r := make([][]T, 3)
	for i := 0; i < 3; i++ {
		r[i] = make([]T, 3)
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j].Mul(s)
		}
	}
	return r
}

func invert3[T scalar.Number[T]](m [][]T) [][]T {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	A := e.Mul(i).Sub(f.Mul(h))
	B := d.Mul(i).Sub(f.Mul(g)).Neg()
	C := d.Mul(h).Sub(e.Mul(g))

	det := a.Mul(A).Add(b.Mul(B)).Add(c.Mul(C))

	D := c.Mul(h).Sub(b.Mul(i)).Neg()
	E := a.Mul(i).Sub(c.Mul(g))
	F := b.Mul(g).Sub(a.Mul(h)).Neg()

	G := b.Mul(f).Sub(c.Mul(e))
	H := c.Mul(d).Sub(a.Mul(f)).Neg()
	I := a.Mul(e).Sub(b.Mul(d))

	adjT := [][]T{{A, D, G}, {B, E, H}, {C, F, I}}
	return matScale3(adjT, scalar.ConstOf[T](1).Div(det))
}

// se3LeftJacobian returns V(omega), the left Jacobian of SO(3), honoring
// manifold.FakeExp.
func se3LeftJacobian[T scalar.Number[T]](omega []T) [][]T {
	if FakeExp {
		return identityT[T](3)
	}
	phi := vNorm(omega)
	phiVal := phi.Value()
	skew := skew3(omega)
	skew2 := matMul3(skew, skew)
	var a, b T // (1-cos phi)/phi^2 , (phi-sin phi)/phi^3
	if phiVal < so3SmallAngle {
		phi2 := phi.Mul(phi)
		a = scalar.ConstOf[T](0.5).Sub(phi2.Scale(1.0 / 24.0))
		b = scalar.ConstOf[T](1.0 / 6.0).Sub(phi2.Scale(1.0 / 120.0))
	} else {
		one := scalar.ConstOf[T](1)
		phi2 := phi.Mul(phi)
		phi3 := phi2.Mul(phi)
		a = one.Sub(phi.Cos()).Div(phi2)
		b = phi.Sub(phi.Sin()).Div(phi3)
	}
	return matAdd3(matAdd3(identityT[T](3), matScale3(skew, a)), matScale3(skew2, b))
}

// SE3Exp computes exp((rho, omega)): rotation from SO3.Exp(omega);
// translation = V(omega) . rho.
func SE3Exp[T scalar.Number[T]](xi []T) SE3[T] {
	rho := xi[0:3]
	omega := xi[3:6]
	r := SO3Exp[T](omega)
	v := se3LeftJacobian[T](omega)
	t := matVec(v, rho)
	return SE3[T]{R: r, X: t[0], Y: t[1], Z: t[2]}
}

// Log is the inverse of Exp.
func (p SE3[T]) Log() []T {
	omega := p.R.Log()
	v := se3LeftJacobian[T](omega)
	vinv := invert3[T](v)
	rho := matVec(vinv, []T{p.X, p.Y, p.Z})
	return []T{rho[0], rho[1], rho[2], omega[0], omega[1], omega[2]}
}

// Inverse returns the group inverse.
func (p SE3[T]) Inverse() SE3[T] {
	rinv := p.R.Inverse()
	t := matVec(rinv.RotMatrix(), []T{p.X.Neg(), p.Y.Neg(), p.Z.Neg()})
	return SE3[T]{R: rinv, X: t[0], Y: t[1], Z: t[2]}
}

// Compose returns the rigid-motion composition a*b.
func (a SE3[T]) Compose(b SE3[T]) SE3[T] {
	t := matVec(a.R.RotMatrix(), []T{b.X, b.Y, b.Z})
	return SE3[T]{R: a.R.Compose(b.R), X: a.X.Add(t[0]), Y: a.Y.Add(t[1]), Z: a.Z.Add(t[2])}
}

// Oplus retracts by a 6-vector tangent perturbation.
func (p SE3[T]) Oplus(xi []T) SE3[T] {
	d := SE3Exp[T](xi)
	if LeftRetract {
		return d.Compose(p)
	}
	return p.Compose(d)
}

// Ominus returns local coordinates of other relative to p.
func (p SE3[T]) Ominus(other SE3[T]) []T {
	if LeftRetract {
		return other.Compose(p.Inverse()).Log()
	}
	return p.Inverse().Compose(other).Log()
}

// Adjoint returns the 6x6 Ad_X block matrix [[R, skew(t)R],[0, R]], the
// linear map from tangent-at-identity to tangent-at-X used for
// between-factor Jacobians when the analytic shortcut is taken
// (spec.md §4.2).
func (p SE3[T]) Adjoint() [][]T {
	R := p.R.RotMatrix()
	tR := matMul3(skew3([]T{p.X, p.Y, p.Z}), R)
	ad := make([][]T, 6)
	for i := 0; i < 6; i++ {
		ad[i] = make([]T, 6)
		for j := 0; j < 6; j++ {
			ad[i][j] = scalar.ConstOf[T](0)
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ad[i][j] = R[i][j]
			ad[i+3][j+3] = R[i][j]
			ad[i][j+3] = tR[i][j]
		}
	}
	return ad
}

// SE3Real is the Values-storage instantiation.
type SE3Real = SE3[scalar.RealNum]

// Dim implements Variable.
func (p SE3Real) Dim() int { return 6 }

// OplusVec implements Variable.
func (p SE3Real) OplusVec(xi []scalar.Real) Variable {
	return p.Oplus(toRealNum(xi))
}

// OminusVec implements Variable.
func (p SE3Real) OminusVec(other Variable) []scalar.Real {
	o := other.(SE3Real)
	return fromRealNum(p.Ominus(o))
}

// TypeName implements Variable.
func (p SE3Real) TypeName() string { return "SE3" }

// String implements Variable/fmt.Stringer.
func (p SE3Real) String() string {
	return fmt.Sprintf("SE3(x=%g,y=%g,z=%g,%s)", p.X.Value(), p.Y.Value(), p.Z.Value(), p.R.String())
}

// LiftSE3 converts a RealNum SE3 into the T-instantiation.
func LiftSE3[T scalar.Number[T]](p SE3Real) SE3[T] {
	return SE3[T]{
		R: LiftSO3[T](p.R),
		X: scalar.ConstOf[T](p.X.Value()), Y: scalar.ConstOf[T](p.Y.Value()), Z: scalar.ConstOf[T](p.Z.Value()),
	}
}
