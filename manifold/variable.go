// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifold implements the variable algebra of spec.md §3/§4.2:
// identity, inverse, compose, exp, log and oplus/ominus for Euclidean
// vectors and the SO(2), SO(3), SE(2), SE(3) Lie groups, and the adjoint
// for SO(2), SO(3) and SE(3); Vector and SE(2) have no Adjoint method.
//
// Every concrete type is a generic struct parameterized over
// scalar.Number[T]; this is how spec.md §4.1's "write the math once,
// generic over scalar" is realized for the manifold layer, not just for
// residuals: the same Compose/Exp/Log/Oplus code serves both the plain
// evaluation path (T=scalar.RealNum) and the dual-number AD path
// (T=scalar.Dual). Values (the heterogeneous container, see package
// values) stores the RealNum instantiation boxed behind the non-generic
// Variable interface below, following the capability-set + tag-checked
// downcast pattern of spec.md §9's Design Notes: a single dispatch at
// gather time recovers the concrete type, after which linearize's hot
// loop runs monomorphic generic code.
package manifold

import "github.com/cpmech/fgraph/scalar"

// Variable is the boxed, storage-side capability set every concrete
// variable type exposes so that Values can hold heterogeneous variables
// behind one interface. All arithmetic here is in the active Real type;
// the AD-side Jacobian computation never goes through this interface,
// it works on the generic T=scalar.Dual instantiation directly.
type Variable interface {
	// Dim returns the tangent dimension D_v.
	Dim() int

	// OplusVec retracts by a tangent vector of length Dim(): x (+) xi.
	OplusVec(xi []scalar.Real) Variable

	// OminusVec returns the local coordinates of other relative to x:
	// ominus(other, x), satisfying ominus(oplus(x,xi), x) = xi.
	OminusVec(other Variable) []scalar.Real

	// TypeName identifies the concrete manifold type, used for
	// construction-time type-mismatch checks in package symbol/values.
	TypeName() string

	// String renders a short human-readable form (used by verbose sinks
	// and tests), in the same spirit as gosl/io.Sf-based messages.
	String() string
}
