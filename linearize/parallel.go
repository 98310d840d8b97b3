// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linearize

// Parallel selects whether Linearize evaluates each factor's residual
// and Jacobian (the AD-heavy, per-factor-independent part of spec.md
// §4.6) on a pool of goroutines instead of sequentially. Per spec.md
// §5/§6's optional local-parallelism mode, this only parallelizes
// evaluation; the normal-equation accumulation that follows always
// runs on the calling goroutine, the same way gofem/fem serializes its
// element-stiffness Kb.Put calls even when its solver threads.
//
// Overridden to true by parallel_on.go when built with -tags parallel.
var Parallel = false
