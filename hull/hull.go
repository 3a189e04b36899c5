// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package hull computes the convex hull of a 3D point set and decomposes it
// into tetrahedra.
package hull

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

const (
	defaultEps = 1e-12
)

var (
	ErrInsufficientPoints = errors.New("hull: insufficient points for a hull (minimum 4 required)")
	ErrDegenerateHull     = errors.New("hull: points are coplanar")
)

type Hull struct {
	Points []r3.Vector
	// NOTE: Counter-clockwise when looking from outside.
	Triangles [][3]int
}

type Options struct {
	Eps float64
}

type Option func(*Options) error

func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 {
			return errors.New("WithEps: eps must be positive")
		}
		o.Eps = eps
		return nil
	}
}

// New computes the hull of points. Triangle indices refer to points.
func New(points []r3.Vector, setters ...Option) (*Hull, error) {
	opts := Options{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	if len(points) < 4 {
		return nil, ErrInsufficientPoints
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(points, true, true, opts.Eps)
	if len(ch.Indices) == 0 || len(ch.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: QuickHull returned %d indices", ErrDegenerateHull, len(ch.Indices))
	}

	h := &Hull{
		Points:    points,
		Triangles: make([][3]int, len(ch.Indices)/3),
	}
	for i := range h.Triangles {
		base := i * 3
		h.Triangles[i] = [3]int{ch.Indices[base], ch.Indices[base+1], ch.Indices[base+2]}
	}

	center := h.center()
	for i := range h.Triangles {
		orientTriangleOutward(&h.Triangles[i], points, center)
	}

	scale := boundsDiagonal(points)
	if h.Volume() <= opts.Eps*scale*scale*scale {
		return nil, ErrDegenerateHull
	}
	return h, nil
}

func (h *Hull) TriangleVertices(tIdx int) (r3.Vector, r3.Vector, r3.Vector) {
	if tIdx < 0 || tIdx >= len(h.Triangles) {
		panic("TriangleVertices: tIdx out of bounds")
	}
	t := h.Triangles[tIdx]
	return h.Points[t[0]], h.Points[t[1]], h.Points[t[2]]
}

// Vertices returns the sorted indices of the points on the hull.
func (h *Hull) Vertices() []int {
	on := make([]bool, len(h.Points))
	for _, t := range h.Triangles {
		on[t[0]], on[t[1]], on[t[2]] = true, true, true
	}
	var ids []int
	for i, ok := range on {
		if ok {
			ids = append(ids, i)
		}
	}
	return ids
}

func (h *Hull) Volume() float64 {
	vol := 0.0
	for i := range h.Triangles {
		a, b, c := h.TriangleVertices(i)
		vol += a.Dot(b.Cross(c))
	}
	return vol / 6
}

// Tetrahedra fans the hull from its first vertex. Every tetrahedron has
// positive volume; tetrahedra flat against the apex are skipped.
func (h *Hull) Tetrahedra() [][4]int {
	if len(h.Triangles) == 0 {
		return nil
	}
	apex := h.Triangles[0][0]
	p := h.Points[apex]
	scale := boundsDiagonal(h.Points)
	minVol := defaultEps * scale * scale * scale

	var tets [][4]int
	for i, t := range h.Triangles {
		if t[0] == apex || t[1] == apex || t[2] == apex {
			continue
		}
		a, b, c := h.TriangleVertices(i)
		if a.Sub(p).Dot(b.Sub(p).Cross(c.Sub(p))) <= minVol {
			continue
		}
		tets = append(tets, [4]int{apex, t[0], t[1], t[2]})
	}
	return tets
}

func (h *Hull) center() r3.Vector {
	ids := h.Vertices()
	var c r3.Vector
	for _, id := range ids {
		c = c.Add(h.Points[id])
	}
	return c.Mul(1 / float64(len(ids)))
}

func orientTriangleOutward(t *[3]int, v []r3.Vector, center r3.Vector) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	norm := p1.Sub(p0).Cross(p2.Sub(p0))
	if norm.Dot(p0.Sub(center)) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}

func boundsDiagonal(pts []r3.Vector) float64 {
	if len(pts) == 0 {
		return 0
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = r3.Vector{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vector{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return hi.Sub(lo).Norm()
}
