// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// Polygon is a planar, simple polygon with any number of points. It is
// used for faces with more than four points.
type Polygon struct {
	Points []r3.Vector
}

func (p Polygon) NumberOfPoints() int {
	return len(p.Points)
}

func (p Polygon) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(p.Points...)
}

func (p Polygon) unitNormal() (r3.Vector, bool) {
	if len(p.Points) < 3 {
		return r3.Vector{}, false
	}
	n := geom.PolygonNormal(p.Points)
	l := n.Norm()
	if l == 0 {
		return r3.Vector{}, false
	}
	return n.Mul(1 / l), true
}

// EvaluatePosition projects x onto the polygon plane. Weights are inverse
// squared distances from the closest point to the vertices.
func (p Polygon) EvaluatePosition(x r3.Vector) (Evaluation, error) {
	n, ok := p.unitNormal()
	if !ok {
		return Evaluation{}, ErrDegenerate
	}

	proj := x.Sub(n.Mul(x.Sub(p.Points[0]).Dot(n)))
	inside := p.contains(proj, n)
	closest := proj
	if !inside {
		closest, _ = p.closestOnBoundary(proj)
	}

	return Evaluation{
		ClosestPoint: closest,
		PCoords:      p.Bounds().Parametric(closest),
		Dist2:        x.Sub(closest).Norm2(),
		Weights:      inverseDistanceWeights(closest, p.Points),
		Inside:       inside,
	}, nil
}

// IntersectWithLine intersects p0-p1 with the polygon plane and keeps the
// hit when it falls inside the polygon or within tol of its boundary.
func (p Polygon) IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool) {
	n, ok := p.unitNormal()
	if !ok {
		return Hit{}, false
	}
	d := p1.Sub(p0)
	den := n.Dot(d)
	if den == 0 {
		return Hit{}, false
	}
	t := n.Dot(p.Points[0].Sub(p0)) / den
	if t < 0 || t > 1 {
		return Hit{}, false
	}

	x := p0.Add(d.Mul(t))
	_, bd := p.closestOnBoundary(x)
	inside := p.contains(x, n)
	if !inside && bd > tol {
		return Hit{}, false
	}
	return Hit{
		T:          t,
		X:          x,
		PCoords:    p.Bounds().Parametric(x),
		OnBoundary: !inside || bd == 0,
	}, true
}

func (p Polygon) Contour(value float64, scalars []float64) [][]EdgePoint {
	checkScalars("Polygon.Contour", scalars, len(p.Points))
	return contourLoop(identity(len(p.Points)), scalars, value)
}

func (p Polygon) Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint {
	checkScalars("Polygon.Clip", scalars, len(p.Points))
	if loop := clipLoop(identity(len(p.Points)), scalars, value, insideOut); loop != nil {
		return [][]EdgePoint{loop}
	}
	return nil
}

// contains runs a crossing-number test on the projection that drops the
// dominant axis of n.
func (p Polygon) contains(x, n r3.Vector) bool {
	u, v := projectionAxes(n)
	px, py := geom.Component(x, u), geom.Component(x, v)
	in := false
	m := len(p.Points)
	for i, j := 0, m-1; i < m; j, i = i, i+1 {
		xi, yi := geom.Component(p.Points[i], u), geom.Component(p.Points[i], v)
		xj, yj := geom.Component(p.Points[j], u), geom.Component(p.Points[j], v)
		if (yi > py) != (yj > py) && px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}

func (p Polygon) closestOnBoundary(x r3.Vector) (r3.Vector, float64) {
	var (
		best  r3.Vector
		bestD = math.Inf(1)
	)
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		c := closestOnSegment(x, a, b)
		if d := x.Sub(c).Norm2(); d < bestD {
			best, bestD = c, d
		}
	}
	return best, math.Sqrt(bestD)
}

func projectionAxes(n r3.Vector) (int, int) {
	a := n.Abs()
	switch {
	case a.X >= a.Y && a.X >= a.Z:
		return 1, 2
	case a.Y >= a.Z:
		return 2, 0
	}
	return 0, 1
}

func inverseDistanceWeights(x r3.Vector, pts []r3.Vector) []float64 {
	w := make([]float64, len(pts))
	sum := 0.0
	for i, p := range pts {
		d := x.Sub(p).Norm2()
		if d == 0 {
			clear(w)
			w[i] = 1
			return w
		}
		w[i] = 1 / d
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func identity(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
