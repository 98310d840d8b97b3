// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package residual implements the built-in residual functions of
// spec.md §3/§4.3: Prior and Between over each manifold family, plus the
// IMU preintegration residual (imu.go). Each family's math is written
// once, generic over scalar.Number[T] (evalPrior/evalBetween below); a
// thin, non-generic wrapper per family adapts that generic core to the
// boxed Residual interface, the same dual-dispatch split documented in
// manifold/variable.go: one type-assertion at gather time, then
// monomorphic generic code for the rest of the evaluation.
package residual

import (
	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
)

// Residual is the boxed capability set a factor's residual function
// exposes to package graph/linearize. EvaluateReal is used to compute
// the plain error (e.g. for LM's trial-step gain ratio); EvaluateDual is
// used by linearize's hot loop to obtain (r, J) in one pass, per
// spec.md §4.1.
type Residual interface {
	// Dim returns the fixed residual dimension D_r.
	Dim() int

	// Arity returns the number of variables this residual depends on.
	Arity() int

	// EvaluateReal computes r(x) at the current values, vars in the
	// residual's declared key order.
	EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error)

	// EvaluateDual computes r as a dual-number vector: vars[i] is
	// lifted to a perturbed dual variable occupying gradient slots
	// offsets[i]..offsets[i]+vars[i].Dim() of a width-wide gradient.
	EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error)

	// ExpectedTypes names the manifold.Variable.TypeName() this residual
	// requires at each argument slot ("Vector" matches any Vector<N>),
	// letting package graph validate a factor's bound variable types at
	// construction time instead of deferring to the first evaluation.
	ExpectedTypes() []string
}

// Group is the narrow generic contract evalPrior/evalBetween need from a
// manifold type instantiated at T: enough to express spec.md §4.3's
// log(x_bar^-1 . x) and log(z_bar^-1 . (x^-1 . y)) without depending on
// which concrete family G is.
type Group[T scalar.Number[T], G any] interface {
	Inverse() G
	Compose(G) G
	Ominus(G) []T
}

// evalPrior computes r(x) = log(measured^-1 . x) = measured.Ominus(x),
// per spec.md §4.3's right-convention Prior.
func evalPrior[T scalar.Number[T], G Group[T, G]](measured, x G) []T {
	return measured.Ominus(x)
}

// evalBetween computes r = log(measured^-1 . (x^-1 . y)) over (x, y).
func evalBetween[T scalar.Number[T], G Group[T, G]](measured, x, y G) []T {
	predicted := x.Inverse().Compose(y)
	return measured.Ominus(predicted)
}

// tangentEpsilon returns a width-wide dual tangent vector of the given
// dimension, with a unit gradient entry at offset+i for each component
// i: the epsilon lifted into oplus(x, epsilon) that the AD engine uses
// to read off the i-th Jacobian column, per spec.md §4.1.
func tangentEpsilon(offset, dim, width int) []scalar.Dual {
	eps := make([]scalar.Dual, dim)
	for i := 0; i < dim; i++ {
		eps[i] = scalar.Var(0, offset+i, width)
	}
	return eps
}

func wrongType(op string, idx int, want string, got manifold.Variable) error {
	return ferr.NewEvaluationError(-1, "%s: variable %d: expected %s, got %s", op, idx, want, got.TypeName())
}

// --- Vector ---

// PriorVector is r(x) = x - measured over a Euclidean Vector<N>.
type PriorVector struct{ Measured manifold.VectorReal }

// Dim implements Residual.
func (f PriorVector) Dim() int { return f.Measured.Dim() }

// Arity implements Residual.
func (f PriorVector) Arity() int { return 1 }

// ExpectedTypes implements Residual.
func (f PriorVector) ExpectedTypes() []string { return []string{"Vector"} }

// EvaluateReal implements Residual.
func (f PriorVector) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("PriorVector", 0, "Vector", vars[0])
	}
	return fromRealT(evalPrior[scalar.RealNum, manifold.Vector[scalar.RealNum]](f.Measured, x)), nil
}

// EvaluateDual implements Residual.
func (f PriorVector) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("PriorVector", 0, "Vector", vars[0])
	}
	x := manifold.LiftVector[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], xr.Dim(), width))
	measured := manifold.LiftVector[scalar.Dual](f.Measured)
	return evalPrior[scalar.Dual, manifold.Vector[scalar.Dual]](measured, x), nil
}

// BetweenVector is r = (y - x) - measured over two Vector<N> variables.
type BetweenVector struct{ Measured manifold.VectorReal }

// Dim implements Residual.
func (f BetweenVector) Dim() int { return f.Measured.Dim() }

// Arity implements Residual.
func (f BetweenVector) Arity() int { return 2 }

// ExpectedTypes implements Residual.
func (f BetweenVector) ExpectedTypes() []string { return []string{"Vector", "Vector"} }

// EvaluateReal implements Residual.
func (f BetweenVector) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("BetweenVector", 0, "Vector", vars[0])
	}
	y, ok := vars[1].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("BetweenVector", 1, "Vector", vars[1])
	}
	return fromRealT(evalBetween[scalar.RealNum, manifold.Vector[scalar.RealNum]](f.Measured, x, y)), nil
}

// EvaluateDual implements Residual.
func (f BetweenVector) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("BetweenVector", 0, "Vector", vars[0])
	}
	yr, ok := vars[1].(manifold.VectorReal)
	if !ok {
		return nil, wrongType("BetweenVector", 1, "Vector", vars[1])
	}
	x := manifold.LiftVector[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], xr.Dim(), width))
	y := manifold.LiftVector[scalar.Dual](yr).Oplus(tangentEpsilon(offsets[1], yr.Dim(), width))
	measured := manifold.LiftVector[scalar.Dual](f.Measured)
	return evalBetween[scalar.Dual, manifold.Vector[scalar.Dual]](measured, x, y), nil
}

func fromRealT(v []scalar.RealNum) []scalar.Real {
	out := make([]scalar.Real, len(v))
	for i, x := range v {
		out[i] = x.Value()
	}
	return out
}

// --- SO2 ---

// PriorSO2 is r(x) = log(measured^-1 . x) over an SO2 variable.
type PriorSO2 struct{ Measured manifold.SO2Real }

// Dim implements Residual.
func (f PriorSO2) Dim() int { return 1 }

// Arity implements Residual.
func (f PriorSO2) Arity() int { return 1 }

// ExpectedTypes implements Residual.
func (f PriorSO2) ExpectedTypes() []string { return []string{"SO2"} }

// EvaluateReal implements Residual.
func (f PriorSO2) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("PriorSO2", 0, "SO2", vars[0])
	}
	return fromRealT(evalPrior[scalar.RealNum, manifold.SO2[scalar.RealNum]](f.Measured, x)), nil
}

// EvaluateDual implements Residual.
func (f PriorSO2) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("PriorSO2", 0, "SO2", vars[0])
	}
	x := manifold.LiftSO2[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 1, width))
	measured := manifold.LiftSO2[scalar.Dual](f.Measured)
	return evalPrior[scalar.Dual, manifold.SO2[scalar.Dual]](measured, x), nil
}

// BetweenSO2 is r = log(measured^-1 . (x^-1 . y)) over two SO2 variables.
type BetweenSO2 struct{ Measured manifold.SO2Real }

// Dim implements Residual.
func (f BetweenSO2) Dim() int { return 1 }

// Arity implements Residual.
func (f BetweenSO2) Arity() int { return 2 }

// ExpectedTypes implements Residual.
func (f BetweenSO2) ExpectedTypes() []string { return []string{"SO2", "SO2"} }

// EvaluateReal implements Residual.
func (f BetweenSO2) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("BetweenSO2", 0, "SO2", vars[0])
	}
	y, ok := vars[1].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("BetweenSO2", 1, "SO2", vars[1])
	}
	return fromRealT(evalBetween[scalar.RealNum, manifold.SO2[scalar.RealNum]](f.Measured, x, y)), nil
}

// EvaluateDual implements Residual.
func (f BetweenSO2) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("BetweenSO2", 0, "SO2", vars[0])
	}
	yr, ok := vars[1].(manifold.SO2Real)
	if !ok {
		return nil, wrongType("BetweenSO2", 1, "SO2", vars[1])
	}
	x := manifold.LiftSO2[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 1, width))
	y := manifold.LiftSO2[scalar.Dual](yr).Oplus(tangentEpsilon(offsets[1], 1, width))
	measured := manifold.LiftSO2[scalar.Dual](f.Measured)
	return evalBetween[scalar.Dual, manifold.SO2[scalar.Dual]](measured, x, y), nil
}

// --- SO3 ---

// PriorSO3 is r(x) = log(measured^-1 . x) over an SO3 variable.
type PriorSO3 struct{ Measured manifold.SO3Real }

// Dim implements Residual.
func (f PriorSO3) Dim() int { return 3 }

// Arity implements Residual.
func (f PriorSO3) Arity() int { return 1 }

// ExpectedTypes implements Residual.
func (f PriorSO3) ExpectedTypes() []string { return []string{"SO3"} }

// EvaluateReal implements Residual.
func (f PriorSO3) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("PriorSO3", 0, "SO3", vars[0])
	}
	return fromRealT(evalPrior[scalar.RealNum, manifold.SO3[scalar.RealNum]](f.Measured, x)), nil
}

// EvaluateDual implements Residual.
func (f PriorSO3) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("PriorSO3", 0, "SO3", vars[0])
	}
	x := manifold.LiftSO3[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 3, width))
	measured := manifold.LiftSO3[scalar.Dual](f.Measured)
	return evalPrior[scalar.Dual, manifold.SO3[scalar.Dual]](measured, x), nil
}

// BetweenSO3 is r = log(measured^-1 . (x^-1 . y)) over two SO3 variables.
type BetweenSO3 struct{ Measured manifold.SO3Real }

// Dim implements Residual.
func (f BetweenSO3) Dim() int { return 3 }

// Arity implements Residual.
func (f BetweenSO3) Arity() int { return 2 }

// ExpectedTypes implements Residual.
func (f BetweenSO3) ExpectedTypes() []string { return []string{"SO3", "SO3"} }

// EvaluateReal implements Residual.
func (f BetweenSO3) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("BetweenSO3", 0, "SO3", vars[0])
	}
	y, ok := vars[1].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("BetweenSO3", 1, "SO3", vars[1])
	}
	return fromRealT(evalBetween[scalar.RealNum, manifold.SO3[scalar.RealNum]](f.Measured, x, y)), nil
}

// EvaluateDual implements Residual.
func (f BetweenSO3) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("BetweenSO3", 0, "SO3", vars[0])
	}
	yr, ok := vars[1].(manifold.SO3Real)
	if !ok {
		return nil, wrongType("BetweenSO3", 1, "SO3", vars[1])
	}
	x := manifold.LiftSO3[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 3, width))
	y := manifold.LiftSO3[scalar.Dual](yr).Oplus(tangentEpsilon(offsets[1], 3, width))
	measured := manifold.LiftSO3[scalar.Dual](f.Measured)
	return evalBetween[scalar.Dual, manifold.SO3[scalar.Dual]](measured, x, y), nil
}

// --- SE2 ---

// PriorSE2 is r(x) = log(measured^-1 . x) over an SE2 variable.
type PriorSE2 struct{ Measured manifold.SE2Real }

// Dim implements Residual.
func (f PriorSE2) Dim() int { return 3 }

// Arity implements Residual.
func (f PriorSE2) Arity() int { return 1 }

// ExpectedTypes implements Residual.
func (f PriorSE2) ExpectedTypes() []string { return []string{"SE2"} }

// EvaluateReal implements Residual.
func (f PriorSE2) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("PriorSE2", 0, "SE2", vars[0])
	}
	return fromRealT(evalPrior[scalar.RealNum, manifold.SE2[scalar.RealNum]](f.Measured, x)), nil
}

// EvaluateDual implements Residual.
func (f PriorSE2) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("PriorSE2", 0, "SE2", vars[0])
	}
	x := manifold.LiftSE2[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 3, width))
	measured := manifold.LiftSE2[scalar.Dual](f.Measured)
	return evalPrior[scalar.Dual, manifold.SE2[scalar.Dual]](measured, x), nil
}

// BetweenSE2 is r = log(measured^-1 . (x^-1 . y)) over two SE2 variables.
type BetweenSE2 struct{ Measured manifold.SE2Real }

// Dim implements Residual.
func (f BetweenSE2) Dim() int { return 3 }

// Arity implements Residual.
func (f BetweenSE2) Arity() int { return 2 }

// ExpectedTypes implements Residual.
func (f BetweenSE2) ExpectedTypes() []string { return []string{"SE2", "SE2"} }

// EvaluateReal implements Residual.
func (f BetweenSE2) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("BetweenSE2", 0, "SE2", vars[0])
	}
	y, ok := vars[1].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("BetweenSE2", 1, "SE2", vars[1])
	}
	return fromRealT(evalBetween[scalar.RealNum, manifold.SE2[scalar.RealNum]](f.Measured, x, y)), nil
}

// EvaluateDual implements Residual.
func (f BetweenSE2) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("BetweenSE2", 0, "SE2", vars[0])
	}
	yr, ok := vars[1].(manifold.SE2Real)
	if !ok {
		return nil, wrongType("BetweenSE2", 1, "SE2", vars[1])
	}
	x := manifold.LiftSE2[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 3, width))
	y := manifold.LiftSE2[scalar.Dual](yr).Oplus(tangentEpsilon(offsets[1], 3, width))
	measured := manifold.LiftSE2[scalar.Dual](f.Measured)
	return evalBetween[scalar.Dual, manifold.SE2[scalar.Dual]](measured, x, y), nil
}

// --- SE3 ---

// PriorSE3 is r(x) = log(measured^-1 . x) over an SE3 variable.
type PriorSE3 struct{ Measured manifold.SE3Real }

// Dim implements Residual.
func (f PriorSE3) Dim() int { return 6 }

// Arity implements Residual.
func (f PriorSE3) Arity() int { return 1 }

// ExpectedTypes implements Residual.
func (f PriorSE3) ExpectedTypes() []string { return []string{"SE3"} }

// EvaluateReal implements Residual.
func (f PriorSE3) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("PriorSE3", 0, "SE3", vars[0])
	}
	return fromRealT(evalPrior[scalar.RealNum, manifold.SE3[scalar.RealNum]](f.Measured, x)), nil
}

// EvaluateDual implements Residual.
func (f PriorSE3) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("PriorSE3", 0, "SE3", vars[0])
	}
	x := manifold.LiftSE3[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 6, width))
	measured := manifold.LiftSE3[scalar.Dual](f.Measured)
	return evalPrior[scalar.Dual, manifold.SE3[scalar.Dual]](measured, x), nil
}

// BetweenSE3 is r = log(measured^-1 . (x^-1 . y)) over two SE3 variables.
type BetweenSE3 struct{ Measured manifold.SE3Real }

// Dim implements Residual.
func (f BetweenSE3) Dim() int { return 6 }

// Arity implements Residual.
func (f BetweenSE3) Arity() int { return 2 }

// ExpectedTypes implements Residual.
func (f BetweenSE3) ExpectedTypes() []string { return []string{"SE3", "SE3"} }

// EvaluateReal implements Residual.
func (f BetweenSE3) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	x, ok := vars[0].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("BetweenSE3", 0, "SE3", vars[0])
	}
	y, ok := vars[1].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("BetweenSE3", 1, "SE3", vars[1])
	}
	return fromRealT(evalBetween[scalar.RealNum, manifold.SE3[scalar.RealNum]](f.Measured, x, y)), nil
}

// EvaluateDual implements Residual.
func (f BetweenSE3) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	xr, ok := vars[0].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("BetweenSE3", 0, "SE3", vars[0])
	}
	yr, ok := vars[1].(manifold.SE3Real)
	if !ok {
		return nil, wrongType("BetweenSE3", 1, "SE3", vars[1])
	}
	x := manifold.LiftSE3[scalar.Dual](xr).Oplus(tangentEpsilon(offsets[0], 6, width))
	y := manifold.LiftSE3[scalar.Dual](yr).Oplus(tangentEpsilon(offsets[1], 6, width))
	measured := manifold.LiftSE3[scalar.Dual](f.Measured)
	return evalBetween[scalar.Dual, manifold.SE3[scalar.Dual]](measured, x, y), nil
}
