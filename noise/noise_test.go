// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package noise

import (
	"fmt"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// invertSPD inverts a 2x2 symmetric positive-definite matrix in closed form.
func invertSPD(a [][]float64) ([][]float64, error) {
	det := a[0][0]*a[1][1] - a[0][1]*a[1][0]
	if a[0][0] <= 0 || det <= 0 {
		return nil, fmt.Errorf("matrix is not positive-definite")
	}
	return [][]float64{
		{a[1][1] / det, -a[0][1] / det},
		{-a[1][0] / det, a[0][0] / det},
	}, nil
}

func Test_noise_isotropic01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("noise: isotropic whitening")

	m, err := NewIsotropic(3, 0.5)
	if err != nil {
		tst.Errorf("NewIsotropic failed: %v", err)
		return
	}
	r := []float64{1, 2, 3}
	w := m.Whiten(r)
	chk.Vector(tst, "whitened", 1e-15, w, []float64{2, 4, 6})

	J := [][]float64{{1, 0}, {0, 1}, {1, 1}}
	Jw := m.WhitenJacobian(J)
	chk.Vector(tst, "Jw row0", 1e-15, Jw[0], []float64{2, 0})
	chk.Vector(tst, "Jw row2", 1e-15, Jw[2], []float64{2, 2})
}

func Test_noise_isotropic_invalid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("noise: isotropic rejects non-positive sigma")

	if _, err := NewIsotropic(1, 0); err == nil {
		tst.Errorf("expected an error for sigma=0")
	}
	if _, err := NewIsotropic(1, -1); err == nil {
		tst.Errorf("expected an error for negative sigma")
	}
}

func Test_noise_diagonal01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("noise: diagonal whitening")

	m, err := NewDiagonal([]float64{1, 2, 4})
	if err != nil {
		tst.Errorf("NewDiagonal failed: %v", err)
		return
	}
	w := m.Whiten([]float64{2, 4, 8})
	chk.Vector(tst, "whitened", 1e-15, w, []float64{2, 2, 2})
}

func Test_noise_full01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("noise: full whitening matches information-weighted norm")

	lambda := [][]float64{
		{4, 1},
		{1, 3},
	}
	m, err := NewFullFromInformation(lambda)
	if err != nil {
		tst.Errorf("NewFullFromInformation failed: %v", err)
		return
	}
	r := []float64{1.5, -0.7}
	w := m.Whiten(r)

	var got float64
	for _, v := range w {
		got += v * v
	}

	want := 0.0
	for i := range r {
		for j := range r {
			want += r[i] * lambda[i][j] * r[j]
		}
	}
	chk.Scalar(tst, "r^T Lambda r", 1e-9, got, want)
}

func Test_noise_full_roundtrip01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("noise: full from covariance matches full from its inverse")

	sigma := [][]float64{
		{2, 0.3},
		{0.3, 1},
	}
	fromCov, err := NewFullFromCovariance(sigma)
	if err != nil {
		tst.Errorf("NewFullFromCovariance failed: %v", err)
		return
	}
	lambda, err := invertSPD(sigma)
	if err != nil {
		tst.Errorf("invertSPD failed: %v", err)
		return
	}
	fromInfo, err := NewFullFromInformation(lambda)
	if err != nil {
		tst.Errorf("NewFullFromInformation failed: %v", err)
		return
	}
	r := []float64{1, 1}
	chk.Vector(tst, "whitened", 1e-8, fromCov.Whiten(r), fromInfo.Whiten(r))
}
