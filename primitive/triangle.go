// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// Triangle is a planar three-point cell.
type Triangle struct {
	Points [3]r3.Vector
}

func (tr Triangle) NumberOfPoints() int {
	return 3
}

func (tr Triangle) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(tr.Points[:]...)
}

// EvaluatePosition returns the closest point of the triangle to x together
// with its barycentric weights. x is inside when its projection onto the
// triangle plane falls within the triangle.
func (tr Triangle) EvaluatePosition(x r3.Vector) (Evaluation, error) {
	a, b, c := tr.Points[0], tr.Points[1], tr.Points[2]
	n := b.Sub(a).Cross(c.Sub(a))
	area2 := n.Norm2()
	if area2 == 0 {
		return Evaluation{}, ErrDegenerate
	}

	proj := x.Sub(n.Mul(x.Sub(a).Dot(n) / area2))
	w := barycentric(proj, a, b, c, n, area2)
	inside := w[0] >= 0 && w[1] >= 0 && w[2] >= 0

	closest := proj
	if !inside {
		closest = closestOnSegment(x, a, b)
		best := x.Sub(closest).Norm2()
		for _, e := range [2][2]r3.Vector{{b, c}, {c, a}} {
			p := closestOnSegment(x, e[0], e[1])
			if d := x.Sub(p).Norm2(); d < best {
				closest, best = p, d
			}
		}
		w = barycentric(closest, a, b, c, n, area2)
	}

	return Evaluation{
		ClosestPoint: closest,
		PCoords:      r3.Vector{X: w[1], Y: w[2]},
		Dist2:        x.Sub(closest).Norm2(),
		Weights:      w[:],
		Inside:       inside,
	}, nil
}

// IntersectWithLine intersects the segment p0-p1 with the triangle. Hits
// up to tol outside the triangle are accepted and reported on the boundary.
func (tr Triangle) IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool) {
	t, x, w, ok := triangleHit(tr.Points[0], tr.Points[1], tr.Points[2], p0, p1, tol)
	if !ok {
		return Hit{}, false
	}
	return Hit{
		T:          t,
		X:          x,
		PCoords:    r3.Vector{X: w[1], Y: w[2]},
		OnBoundary: w[0] <= 0 || w[1] <= 0 || w[2] <= 0,
	}, true
}

func (tr Triangle) Contour(value float64, scalars []float64) [][]EdgePoint {
	checkScalars("Triangle.Contour", scalars, 3)
	return contourLoop([]int{0, 1, 2}, scalars, value)
}

func (tr Triangle) Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint {
	checkScalars("Triangle.Clip", scalars, 3)
	if loop := clipLoop([]int{0, 1, 2}, scalars, value, insideOut); loop != nil {
		return [][]EdgePoint{loop}
	}
	return nil
}

// barycentric returns the weights of the in-plane point p with respect to
// the triangle a, b, c whose unnormalized normal is n.
func barycentric(p, a, b, c, n r3.Vector, area2 float64) [3]float64 {
	wa := b.Sub(p).Cross(c.Sub(p)).Dot(n) / area2
	wb := c.Sub(p).Cross(a.Sub(p)).Dot(n) / area2
	return [3]float64{wa, wb, 1 - wa - wb}
}

// triangleHit intersects segment p0-p1 with triangle a, b, c. Weights are
// clamped to zero for hits accepted through the tolerance.
func triangleHit(a, b, c, p0, p1 r3.Vector, tol float64) (float64, r3.Vector, [3]float64, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	area2 := n.Norm2()
	d := p1.Sub(p0)
	den := n.Dot(d)
	if area2 == 0 || den == 0 {
		return 0, r3.Vector{}, [3]float64{}, false
	}

	t := n.Dot(a.Sub(p0)) / den
	if t < 0 || t > 1 {
		return 0, r3.Vector{}, [3]float64{}, false
	}
	x := p0.Add(d.Mul(t))
	w := barycentric(x, a, b, c, n, area2)
	if w[0] >= 0 && w[1] >= 0 && w[2] >= 0 {
		return t, x, w, true
	}
	if tol <= 0 {
		return 0, r3.Vector{}, [3]float64{}, false
	}

	closest := closestOnSegment(x, a, b)
	best := x.Sub(closest).Norm2()
	for _, e := range [2][2]r3.Vector{{b, c}, {c, a}} {
		p := closestOnSegment(x, e[0], e[1])
		if dd := x.Sub(p).Norm2(); dd < best {
			closest, best = p, dd
		}
	}
	if math.Sqrt(best) > tol {
		return 0, r3.Vector{}, [3]float64{}, false
	}
	for i := range w {
		w[i] = math.Max(0, w[i])
	}
	return t, x, w, true
}
