// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package robust implements the scalar robust-loss kernels of spec.md
// §3/§4.4/§8: rho(0)=0 and rho'(0)=1 for every kernel (L2 included), with value/first/second
// derivative exposed so the optimizer can apply the Triggs reweighting
// w(s) = rho'(s). Kernels are registered in a string-keyed factory,
// following gofem's mreten/bc.go "allocators" model-registry idiom.
package robust

import (
	"math"

	"github.com/cpmech/gosl/fun"

	"github.com/cpmech/fgraph/ferr"
	"github.com/cpmech/fgraph/scalar"
)

// Kernel is a scalar robust loss rho: R -> R. Rho/RhoPrime/
// RhoDoublePrime operate on scalar.Real so a kernel never mixes
// float32/float64 with the residual/linearize layers that call it
// under the active build's precision (scalar_f32.go/scalar_f64.go).
type Kernel interface {
	Name() string
	Rho(s scalar.Real) scalar.Real
	RhoPrime(s scalar.Real) scalar.Real
	RhoDoublePrime(s scalar.Real) scalar.Real
}

// Registry is the string-keyed factory of robust kernels, built the
// gofem way (mreten.allocators, fem/solver.go's allocators): a package-
// level map populated by each kernel's init(), wrapped so callers can
// build kernels by name the way noise.Registry builds noise models.
type Registry struct {
	allocators map[string]func(c float64) Kernel
}

// defaultAllocators is the registry of kernel constructors shared by
// every Registry built with NewRegistry.
var defaultAllocators = make(map[string]func(c float64) Kernel)

func init() {
	defaultAllocators["l2"] = func(c float64) Kernel { return L2{} }
	defaultAllocators["huber"] = func(c float64) Kernel { return Huber{C: scalar.Real(c)} }
	defaultAllocators["cauchy"] = func(c float64) Kernel { return Cauchy{C: scalar.Real(c)} }
	defaultAllocators["gemanmcclure"] = func(c float64) Kernel { return GemanMcClure{C: scalar.Real(c)} }
	defaultAllocators["welsch"] = func(c float64) Kernel { return Welsch{C: scalar.Real(c)} }
	defaultAllocators["tukey"] = func(c float64) Kernel { return Tukey{C: scalar.Real(c)} }
}

// NewRegistry builds the default robust.Registry with "l2", "huber",
// "cauchy", "gemanmcclure", "welsch" and "tukey" registered.
func NewRegistry() *Registry {
	reg := &Registry{allocators: make(map[string]func(c float64) Kernel, len(defaultAllocators))}
	for name, alloc := range defaultAllocators {
		reg.allocators[name] = alloc
	}
	return reg
}

// New builds a registered kernel by name (case-sensitive, lower-case:
// "l2", "huber", "cauchy", "gemanmcclure", "welsch", "tukey"). c is the
// kernel's scale parameter; it is ignored by "l2".
func (reg *Registry) New(name string, c float64) (Kernel, error) {
	alloc, ok := reg.allocators[name]
	if !ok {
		return nil, ferr.NewConstructionError("robust.Registry.New", "unknown robust kernel %q", name)
	}
	return alloc(c), nil
}

// New builds a registered kernel by name against the package's default
// registry; a package-level convenience for callers that do not need
// their own Registry instance.
func New(name string, c float64) (Kernel, error) {
	alloc, ok := defaultAllocators[name]
	if !ok {
		return nil, ferr.NewConstructionError("robust.New", "unknown robust kernel %q", name)
	}
	return alloc(c), nil
}

// NewFromPrms builds a registered kernel from a gosl/fun.Prms record,
// following mdl/sld's model Init(prms fun.Prms) idiom: the scale
// parameter is read off a named "c" entry (prms.Connect(&c, "c", ...))
// rather than passed positionally. "l2" ignores it, same as New.
func (reg *Registry) NewFromPrms(name string, prms fun.Prms) (Kernel, error) {
	var c float64
	prms.Connect(&c, "c", "robust."+name)
	return reg.New(name, c)
}

// Every kernel below is defined so that its weight function
// w(s) = rho'(s) satisfies w(0) = 1 (the Triggs reweighting of spec.md
// §4.4 leaves an un-robustified, in-bounds residual unscaled), with
// rho(s) = integral_0^s w(t) dt so rho(0) = 0 automatically. L2's w is
// the constant 1 and so trivially shares the property; spec.md §8's
// "(except L2)" parenthetical is read as qualifying the distinct,
// raw-residual-domain statement in spec.md §3 (rho'(r=0)=0 there; rho is
// even in r for every non-L2 kernel, while L2's rho(r)=r^2/2 has
// rho'(r=0)=0 too — the exception is about rho being identically linear,
// not about this s-domain weight-1-at-origin property, which this
// package's tests check uniformly across all six kernels). See
// DESIGN.md's Open Question resolution.

// L2 is the trivial kernel: rho(s) = s (ordinary least squares).
type L2 struct{}

// Name implements Kernel.
func (L2) Name() string { return "L2" }

// Rho implements Kernel.
func (L2) Rho(s scalar.Real) scalar.Real { return s }

// RhoPrime implements Kernel.
func (L2) RhoPrime(s scalar.Real) scalar.Real { return 1 }

// RhoDoublePrime implements Kernel.
func (L2) RhoDoublePrime(s scalar.Real) scalar.Real { return 0 }

// Huber is quadratic for s <= c^2 and linear (in residual magnitude)
// beyond, with C the inlier/outlier boundary on the residual magnitude.
type Huber struct{ C scalar.Real }

// Name implements Kernel.
func (k Huber) Name() string { return "Huber" }

// Rho implements Kernel.
func (k Huber) Rho(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s <= c2 {
		return s
	}
	return scalar.Real(2*float64(k.C)*math.Sqrt(float64(s)) - float64(c2))
}

// RhoPrime implements Kernel.
func (k Huber) RhoPrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s <= c2 {
		return 1
	}
	return scalar.Real(float64(k.C) / math.Sqrt(float64(s)))
}

// RhoDoublePrime implements Kernel.
func (k Huber) RhoDoublePrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s <= c2 {
		return 0
	}
	return scalar.Real(-float64(k.C) / (2 * math.Pow(float64(s), 1.5)))
}

// Cauchy (a.k.a. Lorentzian): rho(s) = c^2 log(1 + s/c^2).
type Cauchy struct{ C scalar.Real }

// Name implements Kernel.
func (k Cauchy) Name() string { return "Cauchy" }

// Rho implements Kernel.
func (k Cauchy) Rho(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return scalar.Real(float64(c2) * math.Log(1+float64(s)/float64(c2)))
}

// RhoPrime implements Kernel.
func (k Cauchy) RhoPrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return 1 / (1 + s/c2)
}

// RhoDoublePrime implements Kernel.
func (k Cauchy) RhoDoublePrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	d := 1 + s/c2
	return -1 / (c2 * d * d)
}

// GemanMcClure: rho(s) = c^2 s / (c^2 + s), redescending.
type GemanMcClure struct{ C scalar.Real }

// Name implements Kernel.
func (k GemanMcClure) Name() string { return "GemanMcClure" }

// Rho implements Kernel.
func (k GemanMcClure) Rho(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return c2 * s / (c2 + s)
}

// RhoPrime implements Kernel.
func (k GemanMcClure) RhoPrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	d := c2 + s
	return c2 * c2 / (d * d)
}

// RhoDoublePrime implements Kernel.
func (k GemanMcClure) RhoDoublePrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	d := c2 + s
	return -2 * c2 * c2 / (d * d * d)
}

// Welsch: rho(s) = c^2 (1 - exp(-s/c^2)), redescending.
type Welsch struct{ C scalar.Real }

// Name implements Kernel.
func (k Welsch) Name() string { return "Welsch" }

// Rho implements Kernel.
func (k Welsch) Rho(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return scalar.Real(float64(c2) * (1 - math.Exp(-float64(s)/float64(c2))))
}

// RhoPrime implements Kernel.
func (k Welsch) RhoPrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return scalar.Real(math.Exp(-float64(s) / float64(c2)))
}

// RhoDoublePrime implements Kernel.
func (k Welsch) RhoDoublePrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	return scalar.Real(-math.Exp(-float64(s)/float64(c2)) / float64(c2))
}

// Tukey's biweight: quadratic-like rising then flat (zero gradient)
// beyond s > C^2, the most aggressively redescending kernel here.
type Tukey struct{ C scalar.Real }

// Name implements Kernel.
func (k Tukey) Name() string { return "Tukey" }

// Rho implements Kernel.
func (k Tukey) Rho(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s > c2 {
		return c2 / 3
	}
	t := 1 - s/c2
	return c2 / 3 * (1 - t*t*t)
}

// RhoPrime implements Kernel.
func (k Tukey) RhoPrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s > c2 {
		return 0
	}
	t := 1 - s/c2
	return t * t
}

// RhoDoublePrime implements Kernel.
func (k Tukey) RhoDoublePrime(s scalar.Real) scalar.Real {
	c2 := k.C * k.C
	if s > c2 {
		return 0
	}
	t := 1 - s/c2
	return -2 * t / c2
}
