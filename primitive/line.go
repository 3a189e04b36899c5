// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// Line is a straight segment between two points.
type Line struct {
	Points [2]r3.Vector
}

func (l Line) NumberOfPoints() int {
	return 2
}

func (l Line) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(l.Points[:]...)
}

// EvaluatePosition projects x onto the segment. The point is inside when
// its projection parameter lies in [0, 1].
func (l Line) EvaluatePosition(x r3.Vector) (Evaluation, error) {
	p0, p1 := l.Points[0], l.Points[1]
	d := p1.Sub(p0)
	den := d.Norm2()
	if den == 0 {
		return Evaluation{}, ErrDegenerate
	}

	t := x.Sub(p0).Dot(d) / den
	tc := math.Max(0, math.Min(1, t))
	closest := p0.Add(d.Mul(tc))
	return Evaluation{
		ClosestPoint: closest,
		PCoords:      r3.Vector{X: t},
		Dist2:        x.Sub(closest).Norm2(),
		Weights:      []float64{1 - tc, tc},
		Inside:       t >= 0 && t <= 1,
	}, nil
}

// IntersectWithLine reports where the segment p0-p1 passes within tol of
// the line cell. T is measured along p0-p1.
func (l Line) IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool) {
	u, v, ok := closestParams(p0, p1, l.Points[0], l.Points[1])
	if !ok || u < 0 || u > 1 || v < 0 || v > 1 {
		return Hit{}, false
	}
	a := p0.Add(p1.Sub(p0).Mul(u))
	b := l.Points[0].Add(l.Points[1].Sub(l.Points[0]).Mul(v))
	if a.Sub(b).Norm2() > tol*tol {
		return Hit{}, false
	}
	return Hit{
		T:          u,
		X:          b,
		PCoords:    r3.Vector{X: v},
		OnBoundary: v == 0 || v == 1,
	}, true
}

func (l Line) Contour(value float64, scalars []float64) [][]EdgePoint {
	checkScalars("Line.Contour", scalars, 2)
	s0, s1 := scalars[0], scalars[1]
	if (s0 >= value) == (s1 >= value) {
		return nil
	}
	return [][]EdgePoint{{EdgeCrossing(0, 1, s0, s1, value)}}
}

func (l Line) Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint {
	checkScalars("Line.Clip", scalars, 2)
	s0, s1 := scalars[0], scalars[1]
	k0, k1 := kept(s0, value, insideOut), kept(s1, value, insideOut)
	switch {
	case k0 && k1:
		return [][]EdgePoint{{VertexPoint(0), VertexPoint(1)}}
	case !k0 && !k1:
		return nil
	}
	cross := EdgeCrossing(0, 1, s0, s1, value)
	if k0 {
		return [][]EdgePoint{{VertexPoint(0), cross}}
	}
	return [][]EdgePoint{{cross, VertexPoint(1)}}
}

// closestParams returns the parameters of the mutually closest points of
// the infinite lines a0-a1 and b0-b1. ok is false for parallel lines.
func closestParams(a0, a1, b0, b1 r3.Vector) (float64, float64, bool) {
	u := a1.Sub(a0)
	v := b1.Sub(b0)
	w := a0.Sub(b0)
	a, b, c := u.Dot(u), u.Dot(v), v.Dot(v)
	d, e := u.Dot(w), v.Dot(w)
	den := a*c - b*b
	if den <= 1e-12*a*c || a == 0 || c == 0 {
		return 0, 0, false
	}
	return (b*e - c*d) / den, (a*e - b*d) / den, true
}

// closestOnSegment returns the point of segment a-b closest to x.
func closestOnSegment(x, a, b r3.Vector) r3.Vector {
	d := b.Sub(a)
	den := d.Norm2()
	if den == 0 {
		return a
	}
	t := math.Max(0, math.Min(1, x.Sub(a).Dot(d)/den))
	return a.Add(d.Mul(t))
}
