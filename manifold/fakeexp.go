// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifold

// FakeExp selects the decoupled SO(n)xR^n retraction for SE(n).Exp in
// place of the closed-form left-Jacobian translation, per spec.md §3/§4.2.
// Overridden to true by fakeexp_on.go when built with -tags fake_exp.
var FakeExp = false
