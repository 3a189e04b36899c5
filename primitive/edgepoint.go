// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import "github.com/golang/geo/r3"

// EdgePoint is a point on the edge (A, B) of a cell at parameter T measured
// from A. A vertex is encoded with A == B.
type EdgePoint struct {
	A, B int
	T    float64
}

// VertexPoint returns the EdgePoint of vertex id.
func VertexPoint(id int) EdgePoint {
	return EdgePoint{A: id, B: id}
}

// EdgeCrossing returns the point where the linear field crosses value on
// the edge (a, b). The result is normalized so that A < B.
func EdgeCrossing(a, b int, sa, sb, value float64) EdgePoint {
	t := (value - sa) / (sb - sa)
	if a > b {
		a, b, t = b, a, 1-t
	}
	switch {
	case t <= 0:
		return VertexPoint(a)
	case t >= 1:
		return VertexPoint(b)
	}
	return EdgePoint{A: a, B: b, T: t}
}

func (e EdgePoint) IsVertex() bool {
	return e.A == e.B
}

// Position interpolates the point from the cell coordinates pts.
func (e EdgePoint) Position(pts []r3.Vector) r3.Vector {
	if e.IsVertex() {
		return pts[e.A]
	}
	return pts[e.A].Add(pts[e.B].Sub(pts[e.A]).Mul(e.T))
}

// Interpolate interpolates a scalar attribute.
func (e EdgePoint) Interpolate(values []float64) float64 {
	if e.IsVertex() {
		return values[e.A]
	}
	return values[e.A] + e.T*(values[e.B]-values[e.A])
}
