// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package noise implements the whitening transforms of spec.md §3/§4.4:
// a linear operator W such that the whitened residual is W.r. Models are
// built from gosl/fun-style parameter records, following the
// allocators-map factory pattern of mreten/bc.go and msolid's model
// registries.
package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/scalar"
)

// Model whitens a raw residual and its Jacobian: r~ = W.r, J~ = W.J. Dim
// is the residual dimension D_r the model was built for. Whiten/
// WhitenJacobian operate on scalar.Real so a model built under one
// active precision (scalar_f32.go/scalar_f64.go) never mixes float32
// and float64 slices with the residual/linearize layers that feed it.
type Model interface {
	Dim() int
	Whiten(r []scalar.Real) []scalar.Real
	WhitenJacobian(J [][]scalar.Real) [][]scalar.Real
}

// Registry is the string-keyed factory of noise models, the noise-side
// analogue of robust.Registry, following gofem's mreten/bc.go
// "allocators" model-registry idiom.
type Registry struct {
	allocators map[string]func(spec Spec) (Model, error)
}

// Spec carries the construction parameters for every registered noise
// model; only the fields relevant to the requested Kind need be set.
// Built the gosl/fun.Prms way: one flat parameter record handed to a
// named allocator, rather than one constructor signature per model.
type Spec struct {
	Dim     int
	Sigma   float64     // Isotropic
	Sigmas  []float64   // Diagonal
	Lambda  [][]float64 // Full, from information matrix
	Sigma2D [][]float64 // Full, from covariance matrix (mutually exclusive with Lambda)
}

// NewRegistry builds the default noise.Registry with "isotropic",
// "diagonal", "full-information" and "full-covariance" registered.
func NewRegistry() *Registry {
	reg := &Registry{allocators: make(map[string]func(Spec) (Model, error))}
	reg.allocators["isotropic"] = func(s Spec) (Model, error) { return NewIsotropic(s.Dim, s.Sigma) }
	reg.allocators["diagonal"] = func(s Spec) (Model, error) { return NewDiagonal(s.Sigmas) }
	reg.allocators["full-information"] = func(s Spec) (Model, error) { return NewFullFromInformation(s.Lambda) }
	reg.allocators["full-covariance"] = func(s Spec) (Model, error) { return NewFullFromCovariance(s.Sigma2D) }
	return reg
}

// New builds a registered noise model by name.
func (reg *Registry) New(name string, s Spec) (Model, error) {
	alloc, ok := reg.allocators[name]
	if !ok {
		return nil, ferr.NewConstructionError("noise.Registry.New", "unknown noise model %q", name)
	}
	return alloc(s)
}

// NewFromPrms builds "isotropic" or "diagonal" from a gosl/fun.Prms
// record, following mdl/diffusion.M1.Init's prms.Connect idiom: each
// field is bound to a named parameter ("sigma" for isotropic, "sigma0",
// "sigma1", ... for diagonal) instead of being read off a pre-filled
// Go struct. "full-information"/"full-covariance" take a matrix, which
// fun.Prms (a flat list of named scalars) has no natural way to carry,
// so those two stay on the Spec-based New.
func (reg *Registry) NewFromPrms(name string, dim int, prms fun.Prms) (Model, error) {
	switch name {
	case "isotropic":
		var sigma float64
		prms.Connect(&sigma, "sigma", "noise.Isotropic")
		return NewIsotropic(dim, sigma)
	case "diagonal":
		sigmas := make([]float64, dim)
		for i := range sigmas {
			prms.Connect(&sigmas[i], fmt.Sprintf("sigma%d", i), "noise.Diagonal")
		}
		return NewDiagonal(sigmas)
	default:
		return nil, ferr.NewConstructionError("noise.Registry.NewFromPrms", "model %q does not support fun.Prms construction", name)
	}
}

// Isotropic implements W = (1/sigma) I.
type Isotropic struct {
	dim   int
	sigma scalar.Real
}

// NewIsotropic builds an isotropic noise model with standard deviation
// sigma over a residual of the given dimension.
func NewIsotropic(dim int, sigma float64) (*Isotropic, error) {
	if sigma <= 0 {
		return nil, ferr.NewConstructionError("noise.NewIsotropic", "sigma must be positive, got %g", sigma)
	}
	return &Isotropic{dim: dim, sigma: scalar.Real(sigma)}, nil
}

// Dim implements Model.
func (m *Isotropic) Dim() int { return m.dim }

// Whiten implements Model.
func (m *Isotropic) Whiten(r []scalar.Real) []scalar.Real {
	out := make([]scalar.Real, len(r))
	inv := 1 / m.sigma
	for i, v := range r {
		out[i] = v * inv
	}
	return out
}

// WhitenJacobian implements Model.
func (m *Isotropic) WhitenJacobian(J [][]scalar.Real) [][]scalar.Real {
	inv := 1 / m.sigma
	out := make([][]scalar.Real, len(J))
	for i, row := range J {
		out[i] = make([]scalar.Real, len(row))
		for j, v := range row {
			out[i][j] = v * inv
		}
	}
	return out
}

// Diagonal implements W = diag(1/sigma_i).
type Diagonal struct {
	sigmas []scalar.Real
}

// NewDiagonal builds a diagonal noise model from per-component standard
// deviations.
func NewDiagonal(sigmas []float64) (*Diagonal, error) {
	out := make([]scalar.Real, len(sigmas))
	for i, s := range sigmas {
		if s <= 0 {
			return nil, ferr.NewConstructionError("noise.NewDiagonal", "sigma[%d] must be positive, got %g", i, s)
		}
		out[i] = scalar.Real(s)
	}
	return &Diagonal{sigmas: out}, nil
}

// Dim implements Model.
func (m *Diagonal) Dim() int { return len(m.sigmas) }

// Whiten implements Model.
func (m *Diagonal) Whiten(r []scalar.Real) []scalar.Real {
	out := make([]scalar.Real, len(r))
	for i, v := range r {
		out[i] = v / m.sigmas[i]
	}
	return out
}

// WhitenJacobian implements Model.
func (m *Diagonal) WhitenJacobian(J [][]scalar.Real) [][]scalar.Real {
	out := make([][]scalar.Real, len(J))
	for i, row := range J {
		out[i] = make([]scalar.Real, len(row))
		for j, v := range row {
			out[i][j] = v / m.sigmas[i]
		}
	}
	return out
}

// Full whitens with W = L^T, where L is the lower-triangular Cholesky
// factor of an information matrix Lambda = Sigma^-1 (L L^T = Lambda), so
// that ||W r||^2 = r^T Lambda r. Factored with gonum/mat.Cholesky, the
// same backend linsolve.DenseCholesky uses for the analogous
// normal-equation solve.
type Full struct {
	dim int
	w   *mat.TriDense // lower-triangular Cholesky factor L, L L^T = Lambda; Whiten applies L^T
}

// NewFullFromInformation builds a Full noise model from an information
// (inverse-covariance) matrix, Cholesky-factored so that L L^T = Lambda.
func NewFullFromInformation(lambda [][]float64) (*Full, error) {
	n := len(lambda)
	for _, row := range lambda {
		if len(row) != n {
			return nil, ferr.NewConstructionError("noise.NewFullFromInformation", "information matrix must be square")
		}
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, lambda[i][j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ferr.NewConstructionError("noise.NewFullFromInformation", "information matrix is not positive-definite")
	}
	var L mat.TriDense
	chol.LTo(&L)
	return &Full{dim: n, w: &L}, nil
}

// NewFullFromCovariance builds a Full noise model from a covariance
// matrix Sigma by factoring its inverse.
func NewFullFromCovariance(sigma [][]float64) (*Full, error) {
	n := len(sigma)
	for _, row := range sigma {
		if len(row) != n {
			return nil, ferr.NewConstructionError("noise.NewFullFromCovariance", "covariance matrix must be square")
		}
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, sigma[i][j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ferr.NewConstructionError("noise.NewFullFromCovariance", "covariance matrix is not positive-definite")
	}
	var symInv mat.SymDense
	if err := chol.InverseTo(&symInv); err != nil {
		return nil, ferr.NewConstructionError("noise.NewFullFromCovariance", "%v", err)
	}
	lambda := make([][]float64, n)
	for i := range lambda {
		lambda[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			lambda[i][j] = symInv.At(i, j)
		}
	}
	return NewFullFromInformation(lambda)
}

// Dim implements Model.
func (m *Full) Dim() int { return m.dim }

// Whiten implements Model.
func (m *Full) Whiten(r []scalar.Real) []scalar.Real {
	v := mat.NewVecDense(m.dim, nil)
	for i, x := range r {
		v.SetVec(i, float64(x))
	}
	var out mat.VecDense
	out.MulVec(m.w.T(), v)
	res := make([]scalar.Real, m.dim)
	for i := 0; i < m.dim; i++ {
		res[i] = scalar.Real(out.AtVec(i))
	}
	return res
}

// WhitenJacobian implements Model.
func (m *Full) WhitenJacobian(J [][]scalar.Real) [][]scalar.Real {
	cols := 0
	if len(J) > 0 {
		cols = len(J[0])
	}
	jd := mat.NewDense(m.dim, cols, nil)
	for i := 0; i < m.dim; i++ {
		for c := 0; c < cols; c++ {
			jd.Set(i, c, float64(J[i][c]))
		}
	}
	var out mat.Dense
	out.Mul(m.w.T(), jd)
	res := make([][]scalar.Real, m.dim)
	for i := 0; i < m.dim; i++ {
		res[i] = make([]scalar.Real, cols)
		for c := 0; c < cols; c++ {
			res[i][c] = scalar.Real(out.At(i, c))
		}
	}
	return res
}
