// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph implements the Factor/Graph containers of spec.md §3/§7:
// a factor bundles a residual with its variable keys, noise model and
// robust kernel, validated at construction; the graph is an unordered,
// append-ordered collection of factors, mirroring gofem's Domain holding
// an ordered []*Element slice (fem/domain.go).
package graph

import (
	"strings"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/noise"
	"github.com/cpmech/fgraph/residual"
	"github.com/cpmech/fgraph/robust"
	"github.com/cpmech/fgraph/symbol"
	"github.com/cpmech/fgraph/values"
)

// Factor is (residual, keys[N], noise model, robust kernel), per
// spec.md §3/§6. Construction validates that N matches the residual's
// arity and that the noise model's dimension matches the residual's.
type Factor struct {
	Residual residual.Residual
	Keys     []symbol.Symbol
	Noise    noise.Model
	Robust   robust.Kernel // nil means no robustification (pure L2 weighting of 1)
}

// NewFactor validates and builds a Factor. robustKernel may be nil, in
// which case the factor is not robustified (equivalent to L2 weight 1,
// but without paying for the Rho evaluation).
func NewFactor(r residual.Residual, keys []symbol.Symbol, n noise.Model, robustKernel robust.Kernel) (*Factor, error) {
	if len(keys) != r.Arity() {
		return nil, ferr.NewConstructionError("graph.NewFactor",
			"arity mismatch: residual expects %d keys, got %d", r.Arity(), len(keys))
	}
	if n.Dim() != r.Dim() {
		return nil, ferr.NewConstructionError("graph.NewFactor",
			"noise dimension %d does not match residual dimension %d", n.Dim(), r.Dim())
	}
	return &Factor{Residual: r, Keys: append([]symbol.Symbol{}, keys...), Noise: n, Robust: robustKernel}, nil
}

// checkTypes validates, given a Values container, that every key is
// bound and of the type the residual expects at that slot (spec.md §7:
// a symbol/variable-type mismatch is a ConstructionError, raised when
// building Factors, not deferred to the first evaluation). Called once
// per AddFactor, not on every linearization.
func (f *Factor) checkTypes(vs *values.Values) error {
	expected := f.Residual.ExpectedTypes()
	for i, k := range f.Keys {
		bv, ok := vs.At(k)
		if !ok {
			return ferr.NewConstructionError("graph.AddFactor", "key %s (slot %d) is not bound in values", k, i)
		}
		want := expected[i]
		got := bv.TypeName()
		if want == "Vector" {
			if !strings.HasPrefix(got, "Vector") {
				return ferr.NewConstructionError("graph.AddFactor",
					"key %s (slot %d): expected %s, got %s", k, i, want, got)
			}
			continue
		}
		if got != want {
			return ferr.NewConstructionError("graph.AddFactor",
				"key %s (slot %d): expected %s, got %s", k, i, want, got)
		}
	}
	return nil
}

// Graph is an unordered (append-ordered) collection of factors; ordering
// only influences Jacobian row-assembly tie-breaks (spec.md §3).
type Graph struct {
	factors []*Factor
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{}
}

// AddFactor appends f to the graph after validating its keys are bound
// in vs with the expected variable types.
func (g *Graph) AddFactor(f *Factor, vs *values.Values) error {
	if err := f.checkTypes(vs); err != nil {
		return err
	}
	g.factors = append(g.factors, f)
	return nil
}

// Factors returns the factors in append order.
func (g *Graph) Factors() []*Factor {
	return g.factors
}

// Len returns the number of factors.
func (g *Graph) Len() int { return len(g.factors) }

// ResidualDim returns the total stacked residual dimension (sum of
// Dim() over all factors), the row count of the assembled Jacobian.
func (g *Graph) ResidualDim() int {
	n := 0
	for _, f := range g.factors {
		n += f.Residual.Dim()
	}
	return n
}
