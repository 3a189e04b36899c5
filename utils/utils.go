// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides seeded generators and canonical shapes for tests,
// benchmarks and examples.
package utils

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// GenerateRandomPoints generates points uniformly distributed in the unit
// cube. The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) []r3.Vector {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vector, cnt)

	for i := range cnt {
		pts[i] = randomVector(random)
	}

	return pts
}

// GenerateRandomTetrahedra generates cnt tetrahedra with a corner in the unit
// cube and edges no longer than size along each axis. Nearly flat
// tetrahedra are rejected.
func GenerateRandomTetrahedra(cnt int, size float64, seed int64) [][4]r3.Vector {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	tets := make([][4]r3.Vector, 0, cnt)

	minVolume := size * size * size * 1e-3
	for len(tets) < cnt {
		base := randomVector(random)
		var t [4]r3.Vector
		t[0] = base
		for j := 1; j < 4; j++ {
			t[j] = base.Add(randomVector(random).Mul(size))
		}
		e1, e2, e3 := t[1].Sub(t[0]), t[2].Sub(t[0]), t[3].Sub(t[0])
		vol := e1.Dot(e2.Cross(e3)) / 6
		if vol < 0 {
			t[1], t[2] = t[2], t[1]
			vol = -vol
		}
		if vol < minVolume {
			continue
		}
		tets = append(tets, t)
	}

	return tets
}

// GenerateRandomScalars generates cnt values uniformly distributed in
// [-1, 1).
func GenerateRandomScalars(cnt int, seed int64) []float64 {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	s := make([]float64, cnt)
	for i := range s {
		s[i] = random.Float64()*2 - 1
	}
	return s
}

func randomVector(random *rand.Rand) r3.Vector {
	return r3.Vector{X: random.Float64(), Y: random.Float64(), Z: random.Float64()}
}

// FaceStream encodes faces as [numFaces, len0, ids..., len1, ids...].
func FaceStream(faces [][]int) []int {
	stream := []int{len(faces)}
	for _, f := range faces {
		stream = append(stream, len(f))
		stream = append(stream, f...)
	}
	return stream
}

// Identity returns the ids 0..n-1.
func Identity(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// UnitCube returns the points and the outward-oriented face stream of
// [0,1]^3. Point ids equal indices.
func UnitCube() ([]r3.Vector, []int) {
	pts := []r3.Vector{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	faces := [][]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {3, 7, 6, 2},
		{0, 4, 7, 3}, {1, 2, 6, 5},
	}
	return pts, FaceStream(faces)
}

// UnitTetra returns the corner tetrahedron of the unit cube.
func UnitTetra() ([]r3.Vector, []int) {
	pts := []r3.Vector{{}, {X: 1}, {Y: 1}, {Z: 1}}
	faces := [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
	return pts, FaceStream(faces)
}

// Prism returns a right triangular prism of unit height over the triangle
// (0,0) (1,0) (0,1).
func Prism() ([]r3.Vector, []int) {
	pts := []r3.Vector{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	faces := [][]int{
		{0, 2, 1}, {3, 4, 5},
		{0, 1, 4, 3}, {0, 3, 5, 2}, {1, 2, 5, 4},
	}
	return pts, FaceStream(faces)
}

// LPrism returns a concave prism of unit height over an L-shaped hexagon
// of area 3.
func LPrism() ([]r3.Vector, []int) {
	base := []r3.Vector{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	n := len(base)
	pts := make([]r3.Vector, 0, 2*n)
	pts = append(pts, base...)
	for _, p := range base {
		pts = append(pts, r3.Vector{X: p.X, Y: p.Y, Z: 1})
	}

	bottom := make([]int, n)
	top := make([]int, n)
	for i := range n {
		bottom[i] = n - 1 - i
		top[i] = n + i
	}
	faces := [][]int{bottom, top}
	for i := range n {
		j := (i + 1) % n
		faces = append(faces, []int{i, j, j + n, i + n})
	}
	return pts, FaceStream(faces)
}
