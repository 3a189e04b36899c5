// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const eigenRatioTol = 1e-12

// Dimension classifies pts as a point (0), a line (1), a plane (2) or a
// volume (3) from the eigenvalue ratios of their covariance matrix. It also
// returns the centroid and the eigenvector of the smallest eigenvalue, which
// is the plane normal when the result is 2.
func Dimension(pts []r3.Vector) (int, r3.Vector, r3.Vector) {
	n := len(pts)
	center := Centroid(pts)
	if n <= 2 {
		return max(n-1, 0), r3.Vector{}, center
	}

	var cov [9]float64
	for _, p := range pts {
		d := p.Sub(center)
		v := [3]float64{d.X, d.Y, d.Z}
		for i := range 3 {
			for j := range 3 {
				cov[i*3+j] += v[i] * v[j]
			}
		}
	}
	inv := 1 / float64(n)
	for i := range cov {
		cov[i] *= inv
	}

	var es mat.EigenSym
	if ok := es.Factorize(mat.NewSymDense(3, cov[:]), true); !ok {
		return 0, r3.Vector{}, center
	}
	// Ascending order.
	vals := es.Values(nil)
	if vals[2] <= 0 {
		return 0, r3.Vector{}, center
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	normal := r3.Vector{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}

	dim := 3
	if vals[0]/vals[2] < eigenRatioTol {
		dim--
	}
	if vals[1]/vals[2] < eigenRatioTol {
		dim--
	}
	return dim, normal, center
}
