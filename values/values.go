// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package values implements the heterogeneous, insertion-order-preserving
// Symbol->Variable container of spec.md §3/§4.5/§9's Design Notes: boxed
// storage behind manifold.Variable, with a per-symbol type tag recorded
// at first insertion so a later attempt to bind a differently-typed
// variable to the same symbol is a construction-time ferr.ConstructionError
// rather than a silent miscast.
package values

import (
	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/manifold"
	"github.com/cpmech/fgraph/scalar"
	"github.com/cpmech/fgraph/symbol"
)

// Values is an ordered Symbol->Variable map, mirroring gofem's
// Domain.Nodes/Vid2node pairing of an insertion-ordered slice with an
// id-indexed lookup map.
type Values struct {
	order []symbol.Symbol
	vars  map[symbol.Symbol]manifold.Variable
	types map[symbol.Symbol]string
}

// New returns an empty Values container.
func New() *Values {
	return &Values{
		vars:  make(map[symbol.Symbol]manifold.Variable),
		types: make(map[symbol.Symbol]string),
	}
}

// Insert binds sym to v. Re-inserting an existing symbol with a
// differently-typed variable is a ConstructionError; re-inserting with
// the same type overwrites the value (matching gofem's Vid2node
// new-or-existent-node pattern in Domain.SetStage).
func Insert[V manifold.Variable](vs *Values, sym symbol.Symbol, v V) error {
	tn := v.TypeName()
	if existing, ok := vs.types[sym]; ok && existing != tn {
		return ferr.NewConstructionError("values.Insert",
			"symbol %s is already bound to type %q, cannot rebind to %q", sym, existing, tn)
	}
	if _, ok := vs.vars[sym]; !ok {
		vs.order = append(vs.order, sym)
	}
	vs.vars[sym] = v
	vs.types[sym] = tn
	return nil
}

// Get returns the typed variable bound to sym. It returns a
// ConstructionError if sym is absent or bound to a different type than V.
func Get[V manifold.Variable](vs *Values, sym symbol.Symbol) (V, error) {
	var zero V
	raw, ok := vs.vars[sym]
	if !ok {
		return zero, ferr.NewConstructionError("values.Get", "symbol %s is not present", sym)
	}
	typed, ok := raw.(V)
	if !ok {
		return zero, ferr.NewConstructionError("values.Get",
			"symbol %s is bound to type %q, requested %q", sym, vs.types[sym], zero.TypeName())
	}
	return typed, nil
}

// At returns the boxed variable bound to sym (used by the linearization
// hot path, which recovers the concrete type itself; see linearize).
func (vs *Values) At(sym symbol.Symbol) (manifold.Variable, bool) {
	v, ok := vs.vars[sym]
	return v, ok
}

// Has reports whether sym is bound.
func (vs *Values) Has(sym symbol.Symbol) bool {
	_, ok := vs.vars[sym]
	return ok
}

// Keys returns the bound symbols in insertion order.
func (vs *Values) Keys() []symbol.Symbol {
	return append([]symbol.Symbol{}, vs.order...)
}

// Len returns the number of bound symbols.
func (vs *Values) Len() int { return len(vs.order) }

// Dim returns the total tangent dimension: the sum of Dim() over all
// bound variables, in insertion order (the ordering used to lay out
// retract deltas and Jacobian column blocks, per spec.md §4.5/§4.6).
func (vs *Values) Dim() int {
	n := 0
	for _, s := range vs.order {
		n += vs.vars[s].Dim()
	}
	return n
}

// Ordering returns, for each bound symbol in insertion order, the column
// offset at which its tangent block starts in a stacked delta vector.
func (vs *Values) Ordering() map[symbol.Symbol]int {
	off := make(map[symbol.Symbol]int, len(vs.order))
	col := 0
	for _, s := range vs.order {
		off[s] = col
		col += vs.vars[s].Dim()
	}
	return off
}

// Retract applies a stacked tangent-space delta (laid out per Ordering)
// back onto every variable: x_i <- x_i (+) delta[offset_i:offset_i+D_i].
func (vs *Values) Retract(delta []scalar.Real) {
	col := 0
	for _, s := range vs.order {
		v := vs.vars[s]
		d := v.Dim()
		vs.vars[s] = v.OplusVec(delta[col : col+d])
		col += d
	}
}

// Clone returns a deep-enough copy for LM trial steps and rejection
// restores (spec.md §4 Lifecycle: "if it diverges (LM), it restores from
// the snapshot"), mirroring gofem's Domain.backup/Domain.restore.
// Variable values are immutable structs, so copying the maps/slice is
// sufficient; no per-variable deep copy is needed.
func (vs *Values) Clone() *Values {
	c := &Values{
		order: append([]symbol.Symbol{}, vs.order...),
		vars:  make(map[symbol.Symbol]manifold.Variable, len(vs.vars)),
		types: make(map[symbol.Symbol]string, len(vs.types)),
	}
	for k, v := range vs.vars {
		c.vars[k] = v
	}
	for k, v := range vs.types {
		c.types[k] = v
	}
	return c
}

// CopyFrom overwrites vs's bound values with other's (used by the
// optimizer to commit an accepted trial step without reallocating).
func (vs *Values) CopyFrom(other *Values) {
	vs.order = append([]symbol.Symbol{}, other.order...)
	for k, v := range other.vars {
		vs.vars[k] = v
	}
	for k, v := range other.types {
		vs.types[k] = v
	}
}
