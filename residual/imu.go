// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package residual

import (
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
)

// IMUPreintegration is the residual of spec.md §4.3: it consumes the
// pre-aggregated delta measurements (DeltaR, DeltaV, DeltaP) and their
// bias Jacobians that an external preintegration collaborator produces
// from raw IMU samples — the preintegration process itself is out of
// scope (spec.md §1) — and compares them against two pose/velocity
// states and two bias states, following Forster et al., "On-Manifold
// Preintegration for Real-Time Visual-Inertial Odometry" (2017), eq.
// (45): rotation/velocity/position residuals first-order corrected for
// bias deviation from the linearization point BiasRef.
//
// Variable order (arity 6): pose_i (SE3), vel_i (Vector<3>), bias_i
// (Vector<6>, [accel;gyro]), pose_j (SE3), vel_j (Vector<3>), bias_j
// (Vector<6>).
type IMUPreintegration struct {
	DeltaR manifold.SO3Real  // preintegrated rotation delta
	DeltaV manifold.VectorReal // preintegrated velocity delta (3)
	DeltaP manifold.VectorReal // preintegrated position delta (3)

	BiasRef manifold.VectorReal // [accel;gyro] bias used during preintegration

	// First-order correction Jacobians of the deltas w.r.t. bias
	// deviation from BiasRef, each a 3x3 matrix stored as rows
	// ([row][col]).
	DRdBg [][]scalar.Real // d(DeltaR)/d(gyro bias), via the tangent
	DVdBa [][]scalar.Real
	DVdBg [][]scalar.Real
	DPdBa [][]scalar.Real
	DPdBg [][]scalar.Real

	Dt      scalar.Real // integration interval
	Gravity manifold.VectorReal // gravity vector in the world frame (3)
}

// Dim implements Residual: 3 (rotation) + 3 (velocity) + 3 (position).
func (f IMUPreintegration) Dim() int { return 9 }

// Arity implements Residual.
func (f IMUPreintegration) Arity() int { return 6 }

// ExpectedTypes implements Residual.
func (f IMUPreintegration) ExpectedTypes() []string {
	return []string{"SE3", "Vector", "Vector", "SE3", "Vector", "Vector"}
}

// EvaluateReal implements Residual.
func (f IMUPreintegration) EvaluateReal(vars []manifold.Variable) ([]scalar.Real, error) {
	r, err := f.gather(vars)
	if err != nil {
		return nil, err
	}
	out := imuResidual[scalar.RealNum](
		liftIMUConsts[scalar.RealNum](f),
		r.poseI, r.velI, r.biasI, r.poseJ, r.velJ, r.biasJ,
	)
	return fromRealT(out), nil
}

// EvaluateDual implements Residual.
func (f IMUPreintegration) EvaluateDual(vars []manifold.Variable, offsets []int, width int) ([]scalar.Dual, error) {
	r, err := f.gather(vars)
	if err != nil {
		return nil, err
	}
	poseI := manifold.LiftSE3[scalar.Dual](r.poseI).Oplus(tangentEpsilon(offsets[0], 6, width))
	velI := manifold.LiftVector[scalar.Dual](r.velI).Oplus(tangentEpsilon(offsets[1], 3, width))
	biasI := manifold.LiftVector[scalar.Dual](r.biasI).Oplus(tangentEpsilon(offsets[2], 6, width))
	poseJ := manifold.LiftSE3[scalar.Dual](r.poseJ).Oplus(tangentEpsilon(offsets[3], 6, width))
	velJ := manifold.LiftVector[scalar.Dual](r.velJ).Oplus(tangentEpsilon(offsets[4], 3, width))
	biasJ := manifold.LiftVector[scalar.Dual](r.biasJ).Oplus(tangentEpsilon(offsets[5], 6, width))
	return imuResidual[scalar.Dual](liftIMUConsts[scalar.Dual](f), poseI, velI, biasI, poseJ, velJ, biasJ), nil
}

type imuVars struct {
	poseI manifold.SE3Real
	velI  manifold.VectorReal
	biasI manifold.VectorReal
	poseJ manifold.SE3Real
	velJ  manifold.VectorReal
	biasJ manifold.VectorReal
}

func (f IMUPreintegration) gather(vars []manifold.Variable) (imuVars, error) {
	var r imuVars
	var ok bool
	if r.poseI, ok = vars[0].(manifold.SE3Real); !ok {
		return r, wrongType("IMUPreintegration", 0, "SE3", vars[0])
	}
	if r.velI, ok = vars[1].(manifold.VectorReal); !ok {
		return r, wrongType("IMUPreintegration", 1, "Vector<3>", vars[1])
	}
	if r.biasI, ok = vars[2].(manifold.VectorReal); !ok {
		return r, wrongType("IMUPreintegration", 2, "Vector<6>", vars[2])
	}
	if r.poseJ, ok = vars[3].(manifold.SE3Real); !ok {
		return r, wrongType("IMUPreintegration", 3, "SE3", vars[3])
	}
	if r.velJ, ok = vars[4].(manifold.VectorReal); !ok {
		return r, wrongType("IMUPreintegration", 4, "Vector<3>", vars[4])
	}
	if r.biasJ, ok = vars[5].(manifold.VectorReal); !ok {
		return r, wrongType("IMUPreintegration", 5, "Vector<6>", vars[5])
	}
	return r, nil
}

// imuConsts carries IMUPreintegration's measured/constant fields lifted
// into a given scalar type T, so imuResidual can be written once,
// generic over T, per spec.md §4.3's "scalar-generic" requirement.
type imuConsts[T scalar.Number[T]] struct {
	deltaR  manifold.SO3[T]
	deltaV  manifold.Vector[T]
	deltaP  manifold.Vector[T]
	biasRef manifold.Vector[T]
	drdbg   [][]T
	dvdba   [][]T
	dvdbg   [][]T
	dpdba   [][]T
	dpdbg   [][]T
	dt      T
	gravity manifold.Vector[T]
}

func liftMat[T scalar.Number[T]](m [][]scalar.Real) [][]T {
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = make([]T, len(row))
		for j, v := range row {
			out[i][j] = scalar.ConstOf[T](v)
		}
	}
	return out
}

func liftIMUConsts[T scalar.Number[T]](f IMUPreintegration) imuConsts[T] {
	return imuConsts[T]{
		deltaR:  manifold.LiftSO3[T](f.DeltaR),
		deltaV:  manifold.LiftVector[T](f.DeltaV),
		deltaP:  manifold.LiftVector[T](f.DeltaP),
		biasRef: manifold.LiftVector[T](f.BiasRef),
		drdbg:   liftMat[T](f.DRdBg),
		dvdba:   liftMat[T](f.DVdBa),
		dvdbg:   liftMat[T](f.DVdBg),
		dpdba:   liftMat[T](f.DPdBa),
		dpdbg:   liftMat[T](f.DPdBg),
		dt:      scalar.ConstOf[T](f.Dt),
		gravity: manifold.LiftVector[T](f.Gravity),
	}
}

func matVecT[T scalar.Number[T]](m [][]T, v []T) []T {
	out := make([]T, len(m))
	for i := range m {
		acc := scalar.ConstOf[T](0)
		for j := range v {
			acc = acc.Add(m[i][j].Mul(v[j]))
		}
		out[i] = acc
	}
	return out
}

func vecAddT[T scalar.Number[T]](a, b []T) []T {
	out := make([]T, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out
}

func vecSubT[T scalar.Number[T]](a, b []T) []T {
	out := make([]T, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out
}

func vecScaleT[T scalar.Number[T]](a []T, s scalar.Real) []T {
	out := make([]T, len(a))
	for i := range a {
		out[i] = a[i].Scale(s)
	}
	return out
}

// imuResidual evaluates Forster et al. eq. (45), generic over T.
func imuResidual[T scalar.Number[T]](
	c imuConsts[T],
	poseI manifold.SE3[T], velI manifold.Vector[T], biasI manifold.Vector[T],
	poseJ manifold.SE3[T], velJ manifold.Vector[T], biasJ manifold.Vector[T],
) []T {
	dba := vecSubT(biasI.Data[0:3], c.biasRef.Data[0:3])
	dbg := vecSubT(biasI.Data[3:6], c.biasRef.Data[3:6])

	// Bias-corrected rotation delta: DeltaR . Exp(dR/dbg . dbg).
	corrOmega := matVecT(c.drdbg, dbg)
	deltaRCorrected := c.deltaR.Compose(manifold.SO3Exp[T](corrOmega))

	ri := poseI.R
	rj := poseJ.R
	riInv := ri.Inverse()

	// Rotation residual: Log(deltaRCorrected^-1 . R_i^T . R_j).
	relativeR := riInv.Compose(rj)
	rRot := deltaRCorrected.Ominus(relativeR)

	pi := []T{poseI.X, poseI.Y, poseI.Z}
	pj := []T{poseJ.X, poseJ.Y, poseJ.Z}
	riMat := ri.RotMatrix()
	riMatT := transposeT(riMat)

	// Velocity residual.
	dt := c.dt.Value()
	gDt := vecScaleT(c.gravity.Data, dt)
	rawDV := vecSubT(vecSubT(velJ.Data, velI.Data), gDt)
	predictedDV := matVecT(riMatT, rawDV)
	deltaVCorrected := vecAddT(vecAddT(c.deltaV.Data, matVecT(c.dvdba, dba)), matVecT(c.dvdbg, dbg))
	rVel := vecSubT(predictedDV, deltaVCorrected)

	// Position residual.
	halfGDt2 := vecScaleT(c.gravity.Data, 0.5*dt*dt)
	vIdt := vecScaleT(velI.Data, dt)
	rawDP := vecSubT(vecSubT(vecSubT(pj, pi), vIdt), halfGDt2)
	predictedDP := matVecT(riMatT, rawDP)
	deltaPCorrected := vecAddT(vecAddT(c.deltaP.Data, matVecT(c.dpdba, dba)), matVecT(c.dpdbg, dbg))
	rPos := vecSubT(predictedDP, deltaPCorrected)

	out := make([]T, 0, 9)
	out = append(out, rRot...)
	out = append(out, rVel...)
	out = append(out, rPos...)
	return out
}

func transposeT[T scalar.Number[T]](m [][]T) [][]T {
	n := len(m)
	out := make([][]T, n)
	for i := range out {
		out[i] = make([]T, n)
		for j := range out[i] {
			out[i][j] = m[j][i]
		}
	}
	return out
}
