// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build f32

package scalar

// Real is the active scalar type used throughout the module; this build
// uses single precision.
type Real = float32
