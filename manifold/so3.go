// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"fmt"

	"github.com/cpmech/fgraph/scalar"
)

// so3SmallAngle is the threshold below which SO3Exp/Log switch to their
// Taylor-series branches instead of dividing by the rotation angle,
// per spec.md §4.2's "small-angle thresholds use Taylor expansions, not
// branches on exact zero".
const so3SmallAngle = 1e-8

// SO3 is a unit quaternion in scalar-last canonical form (X,Y,Z,W);
// tangent dimension 3. Exp is Rodrigues; quaternions are renormalized
// after every composition (spec.md §4.2's numerical policy).
type SO3[T scalar.Number[T]] struct {
	X, Y, Z, W T
}

// SO3Identity returns the identity rotation.
func SO3Identity[T scalar.Number[T]]() SO3[T] {
	return SO3[T]{
		X: scalar.ConstOf[T](0), Y: scalar.ConstOf[T](0), Z: scalar.ConstOf[T](0),
		W: scalar.ConstOf[T](1),
	}
}

// SO3Exp computes exp(omega) via Rodrigues; omega is a 3-vector. Angle
// phi = ||omega||; for phi < so3SmallAngle, the half-angle-over-angle
// factor sin(phi/2)/phi is evaluated via its order-4 Taylor series to
// avoid dividing by (near) zero.
func SO3Exp[T scalar.Number[T]](omega []T) SO3[T] {
	phi := vNorm(omega)
	phiVal := phi.Value()
	var halfOverAngle T // sin(phi/2)/phi
	if phiVal < so3SmallAngle {
		phi2 := phi.Mul(phi)
		phi4 := phi2.Mul(phi2)
		halfOverAngle = scalar.ConstOf[T](0.5).
			Sub(phi2.Scale(1.0 / 48.0)).
			Add(phi4.Scale(1.0 / 3840.0))
	} else {
		halfOverAngle = phi.Scale(0.5).Sin().Div(phi)
	}
	half := phi.Scale(0.5)
	cosHalf := half.Cos()
	if phiVal < so3SmallAngle {
		// cos(phi/2) Taylor to stay consistent near phi=0.
		phi2 := phi.Mul(phi)
		cosHalf = scalar.ConstOf[T](1).Sub(phi2.Scale(0.125))
	}
	return SO3[T]{
		X: omega[0].Mul(halfOverAngle),
		Y: omega[1].Mul(halfOverAngle),
		Z: omega[2].Mul(halfOverAngle),
		W: cosHalf,
	}
}

// Log returns the axis-angle vector with angle in [0, pi].
func (q SO3[T]) Log() []T {
	q = q.canonical()
	v := []T{q.X, q.Y, q.Z}
	vnorm := vNorm(v)
	phi := vnorm.Atan2(q.W).Scale(2)
	var scale T
	if vnorm.Value() < so3SmallAngle {
		// phi/||v|| -> 2 as phi -> 0; first-order correction phi^2/12.
		phi2 := phi.Mul(phi)
		scale = scalar.ConstOf[T](2).Add(phi2.Scale(1.0 / 12.0))
	} else {
		scale = phi.Div(vnorm)
	}
	return []T{v[0].Mul(scale), v[1].Mul(scale), v[2].Mul(scale)}
}

// canonical flips sign so W >= 0, keeping the logarithm's angle in [0,pi]
// (q and -q represent the same rotation).
func (q SO3[T]) canonical() SO3[T] {
	if q.W.Value() < 0 {
		return SO3[T]{X: q.X.Neg(), Y: q.Y.Neg(), Z: q.Z.Neg(), W: q.W.Neg()}
	}
	return q
}

// Inverse returns the conjugate quaternion.
func (q SO3[T]) Inverse() SO3[T] {
	return SO3[T]{X: q.X.Neg(), Y: q.Y.Neg(), Z: q.Z.Neg(), W: q.W}
}

// Compose returns the Hamilton product a*b, renormalized.
func (a SO3[T]) Compose(b SO3[T]) SO3[T] {
	r := SO3[T]{
		X: a.W.Mul(b.X).Add(b.W.Mul(a.X)).Add(a.Y.Mul(b.Z)).Sub(a.Z.Mul(b.Y)),
		Y: a.W.Mul(b.Y).Add(b.W.Mul(a.Y)).Add(a.Z.Mul(b.X)).Sub(a.X.Mul(b.Z)),
		Z: a.W.Mul(b.Z).Add(b.W.Mul(a.Z)).Add(a.X.Mul(b.Y)).Sub(a.Y.Mul(b.X)),
		W: a.W.Mul(b.W).Sub(a.X.Mul(b.X)).Sub(a.Y.Mul(b.Y)).Sub(a.Z.Mul(b.Z)),
	}
	return r.normalize()
}

func (q SO3[T]) normalize() SO3[T] {
	n := vNorm([]T{q.X, q.Y, q.Z, q.W})
	return SO3[T]{X: q.X.Div(n), Y: q.Y.Div(n), Z: q.Z.Div(n), W: q.W.Div(n)}
}

// Oplus retracts by a 3-vector tangent perturbation, honoring the
// package-wide retract convention.
func (q SO3[T]) Oplus(xi []T) SO3[T] {
	d := SO3Exp[T](xi)
	if LeftRetract {
		return d.Compose(q)
	}
	return q.Compose(d)
}

// Ominus returns local coordinates of other relative to q.
func (q SO3[T]) Ominus(other SO3[T]) []T {
	if LeftRetract {
		return other.Compose(q.Inverse()).Log()
	}
	return q.Inverse().Compose(other).Log()
}

// Adjoint returns the 3x3 rotation matrix (Ad_R = R for SO(3)).
func (q SO3[T]) Adjoint() [][]T {
	return q.RotMatrix()
}

// RotMatrix returns the 3x3 rotation matrix equivalent to q.
func (q SO3[T]) RotMatrix() [][]T {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	two := scalar.ConstOf[T](2)
	xx, yy, zz := x.Mul(x), y.Mul(y), z.Mul(z)
	xy, xz, yz := x.Mul(y), x.Mul(z), y.Mul(z)
	wx, wy, wz := w.Mul(x), w.Mul(y), w.Mul(z)
	one := scalar.ConstOf[T](1)
	return [][]T{
		{one.Sub(two.Mul(yy.Add(zz))), two.Mul(xy.Sub(wz)), two.Mul(xz.Add(wy))},
		{two.Mul(xy.Add(wz)), one.Sub(two.Mul(xx.Add(zz))), two.Mul(yz.Sub(wx))},
		{two.Mul(xz.Sub(wy)), two.Mul(yz.Add(wx)), one.Sub(two.Mul(xx.Add(yy)))},
	}
}

// SO3Real is the Values-storage instantiation.
type SO3Real = SO3[scalar.RealNum]

// Dim implements Variable.
func (q SO3Real) Dim() int { return 3 }

// OplusVec implements Variable.
func (q SO3Real) OplusVec(xi []scalar.Real) Variable {
	return q.Oplus(toRealNum(xi))
}

// OminusVec implements Variable.
func (q SO3Real) OminusVec(other Variable) []scalar.Real {
	o := other.(SO3Real)
	return fromRealNum(q.Ominus(o))
}

// TypeName implements Variable.
func (q SO3Real) TypeName() string { return "SO3" }

// String implements Variable/fmt.Stringer.
func (q SO3Real) String() string {
	return fmt.Sprintf("SO3(x=%g,y=%g,z=%g,w=%g)", q.X.Value(), q.Y.Value(), q.Z.Value(), q.W.Value())
}

// LiftSO3 converts a RealNum SO3 into the T-instantiation.
func LiftSO3[T scalar.Number[T]](q SO3Real) SO3[T] {
	return SO3[T]{
		X: scalar.ConstOf[T](q.X.Value()), Y: scalar.ConstOf[T](q.Y.Value()),
		Z: scalar.ConstOf[T](q.Z.Value()), W: scalar.ConstOf[T](q.W.Value()),
	}
}
