// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

// LeftRetract selects the retract convention used by Oplus/Ominus across
// every variable type in this package, per spec.md §3:
//
//	oplus(x, xi) := compose(x, exp(xi))   -- right convention (default)
//	oplus(x, xi) := compose(exp(xi), x)   -- left convention (build tag "left")
//
// It is overridden to true by convention_left.go when built with -tags left.
var LeftRetract = false
