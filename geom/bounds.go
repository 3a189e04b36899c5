// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geom provides the small set of 3D geometry helpers shared by the
// cell, locator and primitive packages: axis-aligned bounds, ray/box tests,
// polygon normals and a covariance-based dimensionality test.
package geom

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"
)

// Bounds is an axis-aligned box stored as one closed interval per axis.
type Bounds struct {
	X, Y, Z r1.Interval
}

// EmptyBounds returns bounds that contain no point.
func EmptyBounds() Bounds {
	return Bounds{X: r1.EmptyInterval(), Y: r1.EmptyInterval(), Z: r1.EmptyInterval()}
}

// BoundsFromPoints returns the smallest bounds containing all pts.
func BoundsFromPoints(pts ...r3.Vector) Bounds {
	b := EmptyBounds()
	for _, p := range pts {
		b = b.AddPoint(p)
	}
	return b
}

// BoundsFromMinMax returns the bounds spanned by the two corners lo and hi.
func BoundsFromMinMax(lo, hi r3.Vector) Bounds {
	return Bounds{
		X: r1.Interval{Lo: lo.X, Hi: hi.X},
		Y: r1.Interval{Lo: lo.Y, Hi: hi.Y},
		Z: r1.Interval{Lo: lo.Z, Hi: hi.Z},
	}
}

func (b Bounds) AddPoint(p r3.Vector) Bounds {
	return Bounds{X: b.X.AddPoint(p.X), Y: b.Y.AddPoint(p.Y), Z: b.Z.AddPoint(p.Z)}
}

func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{X: b.X.Union(o.X), Y: b.Y.Union(o.Y), Z: b.Z.Union(o.Z)}
}

func (b Bounds) IsEmpty() bool {
	return b.X.IsEmpty() || b.Y.IsEmpty() || b.Z.IsEmpty()
}

// Axis returns the interval of axis i (0, 1 or 2).
func (b Bounds) Axis(i int) r1.Interval {
	switch i {
	case 0:
		return b.X
	case 1:
		return b.Y
	case 2:
		return b.Z
	}
	panic("Axis: axis out of range")
}

// WithAxis returns a copy of b with axis i replaced by iv.
func (b Bounds) WithAxis(i int, iv r1.Interval) Bounds {
	switch i {
	case 0:
		b.X = iv
	case 1:
		b.Y = iv
	case 2:
		b.Z = iv
	default:
		panic("WithAxis: axis out of range")
	}
	return b
}

func (b Bounds) Min() r3.Vector {
	return r3.Vector{X: b.X.Lo, Y: b.Y.Lo, Z: b.Z.Lo}
}

func (b Bounds) Max() r3.Vector {
	return r3.Vector{X: b.X.Hi, Y: b.Y.Hi, Z: b.Z.Hi}
}

func (b Bounds) Center() r3.Vector {
	return r3.Vector{X: b.X.Center(), Y: b.Y.Center(), Z: b.Z.Center()}
}

// Size returns the edge lengths of the box.
func (b Bounds) Size() r3.Vector {
	return r3.Vector{X: b.X.Length(), Y: b.Y.Length(), Z: b.Z.Length()}
}

// Diagonal returns the length of the box diagonal, or 0 for empty bounds.
func (b Bounds) Diagonal() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Size().Norm()
}

func (b Bounds) ContainsPoint(p r3.Vector) bool {
	return b.X.Contains(p.X) && b.Y.Contains(p.Y) && b.Z.Contains(p.Z)
}

func (b Bounds) Intersects(o Bounds) bool {
	return b.X.Intersects(o.X) && b.Y.Intersects(o.Y) && b.Z.Intersects(o.Z)
}

// Expanded grows every axis by margin on both sides.
func (b Bounds) Expanded(margin float64) Bounds {
	return Bounds{X: b.X.Expanded(margin), Y: b.Y.Expanded(margin), Z: b.Z.Expanded(margin)}
}

// Distance2 returns the squared distance from p to the box, 0 when p is inside.
func (b Bounds) Distance2(p r3.Vector) float64 {
	d := 0.0
	for i := range 3 {
		iv := b.Axis(i)
		c := Component(p, i)
		if c < iv.Lo {
			d += (iv.Lo - c) * (iv.Lo - c)
		} else if c > iv.Hi {
			d += (c - iv.Hi) * (c - iv.Hi)
		}
	}
	return d
}

// Parametric maps p into the unit cube spanned by b. Degenerate axes map to 0.
func (b Bounds) Parametric(p r3.Vector) r3.Vector {
	var pc r3.Vector
	for i := range 3 {
		iv := b.Axis(i)
		v := 0.0
		if l := iv.Length(); l > 0 {
			v = (Component(p, i) - iv.Lo) / l
		}
		pc = WithComponent(pc, i, v)
	}
	return pc
}

// FromParametric is the inverse of Parametric.
func (b Bounds) FromParametric(pc r3.Vector) r3.Vector {
	var p r3.Vector
	for i := range 3 {
		iv := b.Axis(i)
		p = WithComponent(p, i, iv.Lo+Component(pc, i)*iv.Length())
	}
	return p
}

// Component returns coordinate i of v.
func Component(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("Component: axis out of range")
}

// WithComponent returns v with coordinate i set to x.
func WithComponent(v r3.Vector, i int, x float64) r3.Vector {
	switch i {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	case 2:
		v.Z = x
	default:
		panic("WithComponent: axis out of range")
	}
	return v
}

// MaxComponent returns the largest coordinate of v.
func MaxComponent(v r3.Vector) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}
