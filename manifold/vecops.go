// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

import "github.com/cpmech/fgraph/scalar"

// small generic linear-algebra helpers shared by SE(2)/SE(3)'s left
// Jacobian and by the Euclidean Vector type. Kept free-standing (rather
// than methods) since they operate on plain []T slices, mirroring
// gosl/la's free-function style (la.VecAdd2, la.MatAlloc) rather than a
// method-heavy matrix type.

func vAdd[T scalar.Number[T]](a, b []T) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i].Add(b[i])
	}
	return r
}

func vSub[T scalar.Number[T]](a, b []T) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i].Sub(b[i])
	}
	return r
}

func vScale[T scalar.Number[T]](a []T, s scalar.Real) []T {
	r := make([]T, len(a))
	for i := range a {
		r[i] = a[i].Scale(s)
	}
	return r
}

func vDot[T scalar.Number[T]](a, b []T) T {
	var zero T
	r := zero.AddReal(0)
	for i := range a {
		r = r.Add(a[i].Mul(b[i]))
	}
	return r
}

func vNorm[T scalar.Number[T]](a []T) T {
	return vDot(a, a).Sqrt()
}

func matVec[T scalar.Number[T]](m [][]T, v []T) []T {
	r := make([]T, len(m))
	for i := range m {
		var acc T
		acc = acc.AddReal(0)
		for j := range v {
			acc = acc.Add(m[i][j].Mul(v[j]))
		}
		r[i] = acc
	}
	return r
}

func identityT[T scalar.Number[T]](n int) [][]T {
	m := make([][]T, n)
	for i := range m {
		m[i] = make([]T, n)
		for j := range m[i] {
			if i == j {
				m[i][j] = scalar.ConstOf[T](1)
			} else {
				m[i][j] = scalar.ConstOf[T](0)
			}
		}
	}
	return m
}
