// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linearize implements spec.md §4.6: for each factor, gather its
// variables, evaluate the residual on duals to get (r, J), whiten and
// robustly reweight, then accumulate its contribution into the global
// normal-equation system. The accumulation follows the teacher's element
// stiffness assembly exactly (fem/domain.go's Domain.Kb, built by
// repeated Kb.Put(I, J, value) calls at shared degrees of freedom, never
// read back): each factor's small dense JᵀJ/Jᵀr block is added at the
// column offsets of its variables, both into a sparse gosl/la.Triplet
// (H) for the Sparse linear-solver backend and into a dense gonum
// mat.SymDense/mat.VecDense (Hd/NegJtRd) for the DenseCholesky backend,
// so neither backend ever needs to read an entry back out of a Triplet.
package linearize

import (
	"math"
	"runtime"
	"sync"

	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/graph"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

// System is the assembled normal-equation system of one linearization
// pass, in both a sparse (H, for linsolve.Sparse) and dense (Hd/NegJtRd,
// for linsolve.DenseCholesky) form, plus the sparse Jacobian J itself
// (kept for diagnostics/tests) and the stacked whitened+reweighted
// residual R.
type System struct {
	J   *la.Triplet // D_total x Cols, per spec.md §4.6
	H   *la.Triplet // Cols x Cols, JᵀJ (pristine; lambda added into a fresh copy per solve)
	R   []scalar.Real
	Hd  *mat.SymDense
	Jtr *mat.VecDense // Jᵀr (not negated; solver negates when forming -Jᵀr)

	// HEntries records every (row, col, value) accumulated into H, so a
	// linear solver can replay them into a fresh per-call triplet
	// (adding lambda on the diagonal) without mutating the cached,
	// lambda-free H across repeated Levenberg-Marquardt trial solves
	// against the same linearization.
	HEntries []HEntry

	Cols int
}

// HEntry is one (row, col, value) contribution to the normal matrix H.
type HEntry struct {
	I, J int
	X    scalar.Real
}

// Error returns 0.5*sum(r_i^2) over the whitened, reweighted residual of
// the last linearization pass (the square-root-weighted approximation of
// spec.md §9's open question, kept throughout this module).
func (s *System) Error() scalar.Real {
	var sum scalar.Real
	for _, v := range s.R {
		sum += v * v
	}
	return 0.5 * sum
}

// factorResult is one factor's evaluated, whitened and robustly
// reweighted contribution, independent of every other factor's — the
// unit of work package linearize.Parallel distributes across goroutines.
type factorResult struct {
	rw           []scalar.Real
	jw           [][]scalar.Real
	colOffsets   []int
	localOffsets []int
	width        int
	dr           int
}

// linearizeFactor evaluates f's residual on duals, whitens and (if set)
// robustly reweights it, per spec.md §4.6. It touches no state shared
// with any other factor, so it is safe to call concurrently for
// distinct factors of the same graph.
func linearizeFactor(fi int, f *graph.Factor, vs *values.Values, ordering map[symbol.Symbol]int) (factorResult, error) {
	boxedVars := make([]manifold.Variable, len(f.Keys))
	colOffsets := make([]int, len(f.Keys))
	localOffsets := make([]int, len(f.Keys))
	width := 0
	for i, k := range f.Keys {
		bv, ok := vs.At(k)
		if !ok {
			return factorResult{}, ferr.NewEvaluationError(fi, "key %s not bound at linearization time", k)
		}
		boxedVars[i] = bv
		colOffsets[i] = ordering[k]
		localOffsets[i] = width
		width += bv.Dim()
	}
	if width > scalar.MaxWidth {
		return factorResult{}, ferr.NewEvaluationError(fi, "factor dual width %d exceeds MaxWidth %d", width, scalar.MaxWidth)
	}

	rd, err := f.Residual.EvaluateDual(boxedVars, localOffsets, width)
	if err != nil {
		return factorResult{}, ferr.NewEvaluationError(fi, "%v", err)
	}

	dr := f.Residual.Dim()
	raw := make([]scalar.Real, dr)
	jac := make([][]scalar.Real, dr)
	for i := 0; i < dr; i++ {
		raw[i] = rd[i].Value()
		jac[i] = make([]scalar.Real, width)
		for j := 0; j < width; j++ {
			jac[i][j] = rd[i].Grad[j]
		}
	}

	rw := f.Noise.Whiten(raw)
	jw := f.Noise.WhitenJacobian(jac)

	if f.Robust != nil {
		var s scalar.Real
		for _, v := range rw {
			s += v * v
		}
		w := f.Robust.RhoPrime(s)
		if w < 0 {
			w = 0
		}
		sw := scalar.Real(math.Sqrt(float64(w)))
		for i := range rw {
			rw[i] *= sw
		}
		for i := range jw {
			for j := range jw[i] {
				jw[i][j] *= sw
			}
		}
	}

	return factorResult{rw: rw, jw: jw, colOffsets: colOffsets, localOffsets: localOffsets, width: width, dr: dr}, nil
}

// evaluateFactors runs linearizeFactor over every factor in g, per
// spec.md §5/§6's optional local-parallelism mode: sequentially by
// default, or spread across a bounded goroutine pool when
// linearize.Parallel is set (built with -tags parallel). Either way the
// result slice is filled in factor order, so the caller's accumulation
// pass is oblivious to how it was produced.
func evaluateFactors(g *graph.Graph, vs *values.Values, ordering map[symbol.Symbol]int) ([]factorResult, error) {
	factors := g.Factors()
	results := make([]factorResult, len(factors))

	if !Parallel || len(factors) < 2 {
		for fi, f := range factors {
			res, err := linearizeFactor(fi, f, vs, ordering)
			if err != nil {
				return nil, err
			}
			results[fi] = res
		}
		return results, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(factors) {
		workers = len(factors)
	}
	jobs := make(chan int)
	errs := make([]error, len(factors))
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for fi := range jobs {
				res, err := linearizeFactor(fi, factors[fi], vs, ordering)
				results[fi] = res
				errs[fi] = err
			}
		}()
	}
	for fi := range factors {
		jobs <- fi
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Linearize evaluates every factor in g at vs, per spec.md §4.6.
// nnzEstimate sizes the triplets' backing storage; a loose
// over-estimate is always safe (gosl/la.Triplet grows past its Max at
// extra cost, never corrupts).
func Linearize(g *graph.Graph, vs *values.Values, nnzEstimate int) (*System, error) {
	ordering := vs.Ordering()
	ncols := vs.Dim()
	nrows := g.ResidualDim()

	jTri := new(la.Triplet)
	jTri.Init(nrows, ncols, nnzEstimate)
	hTri := new(la.Triplet)
	hTri.Init(ncols, ncols, nnzEstimate*ncols)

	hd := mat.NewSymDense(ncols, nil)
	jtr := mat.NewVecDense(ncols, nil)
	r := make([]scalar.Real, 0, nrows)
	hEntries := make([]HEntry, 0, nnzEstimate)

	results, err := evaluateFactors(g, vs, ordering)
	if err != nil {
		return nil, err
	}

	// Accumulation always runs on the calling goroutine, in factor
	// order, regardless of Parallel: the teacher's element-stiffness
	// assembly (fem/domain.go's Domain.Kb) never parallelizes the
	// Kb.Put calls themselves, only the per-element evaluation feeding
	// them, and the same split is kept here.
	row := 0
	for _, res := range results {
		rw, jw := res.rw, res.jw
		colOffsets, localOffsets, width, dr := res.colOffsets, res.localOffsets, res.width, res.dr

		// global column index for local column c (c spans 0..width-1,
		// resolved through the per-variable localOffsets/colOffsets).
		globalCol := func(c int) int {
			for vi := len(localOffsets) - 1; vi >= 0; vi-- {
				if c >= localOffsets[vi] {
					return colOffsets[vi] + (c - localOffsets[vi])
				}
			}
			return colOffsets[0] + c
		}

		for i := 0; i < dr; i++ {
			r = append(r, rw[i])
			for c := 0; c < width; c++ {
				val := jw[i][c]
				if val != 0 {
					jTri.Put(row+i, globalCol(c), float64(val))
				}
			}
		}

		// local JᵀJ (width x width) and Jᵀr (width), accumulated into
		// the global H/Hd/Jtr at this factor's column offsets — the
		// per-factor analogue of the teacher's element stiffness block.
		for a := 0; a < width; a++ {
			ga := globalCol(a)
			var jtrA scalar.Real
			for i := 0; i < dr; i++ {
				jtrA += jw[i][a] * rw[i]
			}
			jtr.SetVec(ga, jtr.AtVec(ga)+float64(jtrA))
			for b := a; b < width; b++ {
				gb := globalCol(b)
				var hab scalar.Real
				for i := 0; i < dr; i++ {
					hab += jw[i][a] * jw[i][b]
				}
				if hab != 0 {
					hTri.Put(ga, gb, float64(hab))
					hEntries = append(hEntries, HEntry{I: ga, J: gb, X: hab})
					if ga != gb {
						hTri.Put(gb, ga, float64(hab))
						hEntries = append(hEntries, HEntry{I: gb, J: ga, X: hab})
					}
				}
				lo, hi := ga, gb
				if lo > hi {
					lo, hi = hi, lo
				}
				hd.SetSym(lo, hi, hd.At(lo, hi)+float64(hab))
			}
		}

		row += dr
	}

	return &System{J: jTri, H: hTri, R: r, Hd: hd, Jtr: jtr, HEntries: hEntries, Cols: ncols}, nil
}

// TotalError evaluates the total robustly-weighted squared error at vs
// without linearizing, used by LM's trial-step gain ratio (spec.md
// §4.8) and by the optimizer's "optimal point fixed" check.
func TotalError(g *graph.Graph, vs *values.Values) (scalar.Real, error) {
	var sum scalar.Real
	for fi, f := range g.Factors() {
		vars := make([]manifold.Variable, len(f.Keys))
		for i, k := range f.Keys {
			v, ok := vs.At(k)
			if !ok {
				return 0, ferr.NewEvaluationError(fi, "key %s not bound at evaluation time", k)
			}
			vars[i] = v
		}
		raw, err := f.Residual.EvaluateReal(vars)
		if err != nil {
			return 0, ferr.NewEvaluationError(fi, "%v", err)
		}
		rw := f.Noise.Whiten(raw)
		var s scalar.Real
		for _, v := range rw {
			s += v * v
		}
		if f.Robust != nil {
			sum += f.Robust.Rho(s)
		} else {
			sum += s
		}
	}
	return 0.5 * sum, nil
}
