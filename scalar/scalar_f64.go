// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !f32

// Package scalar defines the active real type and the forward-mode dual
// number used by the automatic-differentiation engine. The active
// precision is selected at build time: this file is compiled by default
// (double precision); build with -tags f32 to select scalar_f32.go instead.
package scalar

// Real is the active scalar type used throughout the module.
type Real = float64
