// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Tetra is a four-point volumetric cell.
type Tetra struct {
	Points [4]r3.Vector
}

// Outward faces of a positively oriented tetrahedron.
var tetraFaces = [4][3]int{{1, 2, 3}, {0, 3, 2}, {0, 1, 3}, {0, 2, 1}}

var tetraEdges = [6][2]int{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}}

const tetraInsideTol = 1e-12

func (te Tetra) NumberOfPoints() int {
	return 4
}

func (te Tetra) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(te.Points[:]...)
}

// Volume returns the signed volume; it is positive when (1,2,3) faces away
// from point 0.
func (te Tetra) Volume() float64 {
	p0 := te.Points[0]
	return geom.Det3(te.Points[1].Sub(p0), te.Points[2].Sub(p0), te.Points[3].Sub(p0)) / 6
}

// Faces returns the four faces oriented outward.
func (te Tetra) Faces() [4][3]int {
	faces := tetraFaces
	if te.Volume() < 0 {
		for i := range faces {
			faces[i][1], faces[i][2] = faces[i][2], faces[i][1]
		}
	}
	return faces
}

func (te Tetra) EvaluatePosition(x r3.Vector) (Evaluation, error) {
	p0 := te.Points[0]
	m := mgl64.Mat3FromCols(
		geom.ToVec3(te.Points[1].Sub(p0)),
		geom.ToVec3(te.Points[2].Sub(p0)),
		geom.ToVec3(te.Points[3].Sub(p0)),
	)
	if m.Det() == 0 {
		return Evaluation{}, ErrDegenerate
	}
	pc := geom.FromVec3(m.Inv().Mul3x1(geom.ToVec3(x.Sub(p0))))
	w := []float64{1 - pc.X - pc.Y - pc.Z, pc.X, pc.Y, pc.Z}

	inside := true
	for _, wi := range w {
		if wi < -tetraInsideTol {
			inside = false
			break
		}
	}
	ev := Evaluation{ClosestPoint: x, PCoords: pc, Weights: w, Inside: inside}
	if inside {
		return ev, nil
	}

	ev.Dist2 = math.Inf(1)
	for i, f := range tetraFaces {
		tri := Triangle{Points: [3]r3.Vector{te.Points[f[0]], te.Points[f[1]], te.Points[f[2]]}}
		fe, err := tri.EvaluatePosition(x)
		if err != nil {
			continue
		}
		if fe.Dist2 < ev.Dist2 {
			ev.Dist2 = fe.Dist2
			ev.ClosestPoint = fe.ClosestPoint
			ev.SubID = i
		}
	}
	if math.IsInf(ev.Dist2, 1) {
		return Evaluation{}, ErrDegenerate
	}
	return ev, nil
}

// IntersectWithLine returns the first face hit along p0-p1.
func (te Tetra) IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for i, f := range tetraFaces {
		tri := Triangle{Points: [3]r3.Vector{te.Points[f[0]], te.Points[f[1]], te.Points[f[2]]}}
		h, ok := tri.IntersectWithLine(p0, p1, tol)
		if !ok || (found && h.T >= best.T) {
			continue
		}
		h.SubID = i
		best, found = h, true
	}
	if found {
		if ev, err := te.EvaluatePosition(best.X); err == nil {
			best.PCoords = ev.PCoords
		}
	}
	return best, found
}

// Contour returns the iso-surface of the linear field as a single triangle
// or quad whose normal points toward increasing scalar.
func (te Tetra) Contour(value float64, scalars []float64) [][]EdgePoint {
	checkScalars("Tetra.Contour", scalars, 4)
	loop := te.isoLoop(value, scalars)
	if loop == nil {
		return nil
	}
	orientLoop(loop, te.Points[:], te.gradient(scalars))
	return [][]EdgePoint{loop}
}

// Clip returns the closed, outward oriented face set of the kept region.
// The cut face is the last loop.
func (te Tetra) Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint {
	checkScalars("Tetra.Clip", scalars, 4)
	var faces [][]EdgePoint
	for _, f := range te.Faces() {
		if loop := clipLoop(f[:], scalars, value, insideOut); loop != nil {
			faces = append(faces, loop)
		}
	}
	if len(faces) == 0 {
		return nil
	}

	if lid := te.isoLoop(value, scalars); lid != nil {
		// The cut face looks away from the kept side.
		dir := te.gradient(scalars)
		if !insideOut {
			dir = dir.Mul(-1)
		}
		orientLoop(lid, te.Points[:], dir)
		faces = append(faces, lid)
	}
	return faces
}

// isoLoop orders the edge crossings of the field into a cycle.
func (te Tetra) isoLoop(value float64, scalars []float64) []EdgePoint {
	var pos, neg []int
	for i, s := range scalars {
		if s >= value {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	cross := func(a, b int) EdgePoint {
		return EdgeCrossing(a, b, scalars[a], scalars[b], value)
	}
	var loop []EdgePoint
	switch len(pos) {
	case 1:
		a := pos[0]
		loop = []EdgePoint{cross(a, neg[0]), cross(a, neg[1]), cross(a, neg[2])}
	case 3:
		d := neg[0]
		loop = []EdgePoint{cross(pos[0], d), cross(pos[1], d), cross(pos[2], d)}
	case 2:
		a, b := pos[0], pos[1]
		c, d := neg[0], neg[1]
		loop = []EdgePoint{cross(a, c), cross(b, c), cross(b, d), cross(a, d)}
	}
	return dedupeLoop(loop)
}

// gradient returns the gradient of the linear field. A flat tetrahedron
// falls back to the sum of edge slopes.
func (te Tetra) gradient(scalars []float64) r3.Vector {
	p0 := te.Points[0]
	m := mgl64.Mat3FromCols(
		geom.ToVec3(te.Points[1].Sub(p0)),
		geom.ToVec3(te.Points[2].Sub(p0)),
		geom.ToVec3(te.Points[3].Sub(p0)),
	)
	if m.Det() != 0 {
		ds := mgl64.Vec3{scalars[1] - scalars[0], scalars[2] - scalars[0], scalars[3] - scalars[0]}
		return geom.FromVec3(m.Transpose().Inv().Mul3x1(ds))
	}

	var g r3.Vector
	for _, e := range tetraEdges {
		a, b := e[0], e[1]
		d := te.Points[b].Sub(te.Points[a])
		l2 := d.Norm2()
		if l2 == 0 {
			continue
		}
		g = g.Add(d.Mul((scalars[b] - scalars[a]) / l2))
	}
	return g
}
