// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// Quad is a four-point cell, evaluated as the triangles (0,1,2) and (0,2,3).
type Quad struct {
	Points [4]r3.Vector
}

var quadTriangles = [2][3]int{{0, 1, 2}, {0, 2, 3}}

func (q Quad) NumberOfPoints() int {
	return 4
}

func (q Quad) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(q.Points[:]...)
}

func (q Quad) triangle(i int) Triangle {
	t := quadTriangles[i]
	return Triangle{Points: [3]r3.Vector{q.Points[t[0]], q.Points[t[1]], q.Points[t[2]]}}
}

// EvaluatePosition evaluates both triangles and keeps the closer result.
// SubID names the triangle that produced it.
func (q Quad) EvaluatePosition(x r3.Vector) (Evaluation, error) {
	var (
		best  Evaluation
		found bool
	)
	for i := range quadTriangles {
		ev, err := q.triangle(i).EvaluatePosition(x)
		if err != nil {
			continue
		}
		if !found || ev.Dist2 < best.Dist2 || (ev.Inside && !best.Inside && ev.Dist2 == best.Dist2) {
			w := make([]float64, 4)
			for j, id := range quadTriangles[i] {
				w[id] = ev.Weights[j]
			}
			ev.Weights = w
			ev.SubID = i
			best, found = ev, true
		}
	}
	if !found {
		return Evaluation{}, ErrDegenerate
	}
	return best, nil
}

// IntersectWithLine returns the nearer hit of the two triangles. A hit on
// the shared diagonal is interior to the quad.
func (q Quad) IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for i, tri := range quadTriangles {
		t, x, w, ok := triangleHit(q.Points[tri[0]], q.Points[tri[1]], q.Points[tri[2]], p0, p1, tol)
		if !ok || (found && t >= best.T) {
			continue
		}
		// Weights 0 and 2 sit opposite the outer edges of each triangle.
		best = Hit{
			T:          t,
			X:          x,
			PCoords:    r3.Vector{X: w[1], Y: w[2]},
			SubID:      i,
			OnBoundary: w[0] <= 0 || w[2] <= 0,
		}
		if i == 1 {
			best.OnBoundary = w[0] <= 0 || w[1] <= 0
		}
		found = true
	}
	return best, found
}

func (q Quad) Contour(value float64, scalars []float64) [][]EdgePoint {
	checkScalars("Quad.Contour", scalars, 4)
	return contourLoop([]int{0, 1, 2, 3}, scalars, value)
}

func (q Quad) Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint {
	checkScalars("Quad.Clip", scalars, 4)
	if loop := clipLoop([]int{0, 1, 2, 3}, scalars, value, insideOut); loop != nil {
		return [][]EdgePoint{loop}
	}
	return nil
}
