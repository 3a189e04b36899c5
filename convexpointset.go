// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"fmt"
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/hull"
	"github.com/2dChan/polycell/mesh"
	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// ConvexPointSet is a cell given by points alone: its volume is the convex
// hull of the points. Queries, contouring and clipping go through the
// tetrahedra of the hull.
type ConvexPointSet struct {
	points   []r3.Vector
	pointIDs []int
	hull     *hull.Hull
	// NOTE: Local point indices, positively oriented.
	tets [][4]int
}

var _ mesh.Cell = (*ConvexPointSet)(nil)

func NewConvexPointSet(points []r3.Vector, pointIDs []int) (*ConvexPointSet, error) {
	if len(points) != len(pointIDs) {
		return nil, fmt.Errorf("NewConvexPointSet: %d points but %d point ids: %w", len(points), len(pointIDs), ErrMalformedFaceStream)
	}
	h, err := hull.New(points)
	if err != nil {
		return nil, fmt.Errorf("NewConvexPointSet: %w: %w", ErrDegenerateGeometry, err)
	}
	return &ConvexPointSet{
		points:   append([]r3.Vector(nil), points...),
		pointIDs: append([]int(nil), pointIDs...),
		hull:     h,
		tets:     h.Tetrahedra(),
	}, nil
}

func (c *ConvexPointSet) NumberOfPoints() int {
	return len(c.points)
}

func (c *ConvexPointSet) Points() []r3.Vector {
	return c.points
}

func (c *ConvexPointSet) PointIDs() []int {
	return c.pointIDs
}

func (c *ConvexPointSet) Bounds() geom.Bounds {
	return geom.BoundsFromPoints(c.points...)
}

func (c *ConvexPointSet) Volume() float64 {
	return c.hull.Volume()
}

// Tetrahedra returns the tetrahedra of the hull as global point ids.
func (c *ConvexPointSet) Tetrahedra() [][4]int {
	out := make([][4]int, len(c.tets))
	for i, t := range c.tets {
		for j, id := range t {
			out[i][j] = c.pointIDs[id]
		}
	}
	return out
}

func (c *ConvexPointSet) tetra(i int) primitive.Tetra {
	t := c.tets[i]
	return primitive.Tetra{Points: [4]r3.Vector{c.points[t[0]], c.points[t[1]], c.points[t[2]], c.points[t[3]]}}
}

// EvaluatePosition evaluates x in the tetrahedron containing it, or in the
// closest one. SubID is the tetrahedron and the weights cover all points.
func (c *ConvexPointSet) EvaluatePosition(x r3.Vector) (primitive.Evaluation, error) {
	best := primitive.Evaluation{Dist2: math.Inf(1)}
	bestTet := -1
	for i := range c.tets {
		ev, err := c.tetra(i).EvaluatePosition(x)
		if err != nil || ev.Dist2 >= best.Dist2 {
			continue
		}
		best, bestTet = ev, i
		if ev.Inside {
			break
		}
	}
	if bestTet == -1 {
		return primitive.Evaluation{}, fmt.Errorf("EvaluatePosition: %w", ErrDegenerateGeometry)
	}

	weights := make([]float64, len(c.points))
	for j, id := range c.tets[bestTet] {
		weights[id] = best.Weights[j]
	}
	best.Weights = weights
	best.SubID = bestTet
	return best, nil
}

// IntersectWithLine returns the hull triangle hit closest to p0. SubID is
// the hull triangle.
func (c *ConvexPointSet) IntersectWithLine(p0, p1 r3.Vector, tol float64) (primitive.Hit, bool) {
	var (
		best  primitive.Hit
		found bool
	)
	for i := range c.hull.Triangles {
		a, b, d := c.hull.TriangleVertices(i)
		h, ok := primitive.Triangle{Points: [3]r3.Vector{a, b, d}}.IntersectWithLine(p0, p1, tol)
		if !ok || (found && h.T >= best.T) {
			continue
		}
		h.SubID = i
		best, found = h, true
	}
	return best, found
}

// Contour appends the iso-surface of every tetrahedron to target.Polys.
func (c *ConvexPointSet) Contour(value float64, scalars []float64, target *Target) ([][]int, error) {
	if err := c.checkCut(scalars, target); err != nil {
		return nil, fmt.Errorf("Contour: %w", err)
	}
	var polys [][]int
	for i, t := range c.tets {
		te := c.tetra(i)
		m := newEdgePointMap(target, te.Points[:], c.tetGlobal(t))
		for _, loop := range te.Contour(value, c.tetScalars(t, scalars)) {
			ids := m.loop(loop)
			target.copyCellData(target.polys().InsertNextCell(ids))
			polys = append(polys, ids)
		}
	}
	return polys, nil
}

// Clip clips every tetrahedron and appends each kept piece to target.Cells
// as a polyhedron face stream. It returns the face lists of the pieces.
func (c *ConvexPointSet) Clip(value float64, scalars []float64, target *Target, insideOut bool) ([][][]int, error) {
	if err := c.checkCut(scalars, target); err != nil {
		return nil, fmt.Errorf("Clip: %w", err)
	}
	var cells [][][]int
	for i, t := range c.tets {
		te := c.tetra(i)
		loops := te.Clip(value, c.tetScalars(t, scalars), insideOut)
		if len(loops) == 0 {
			continue
		}
		m := newEdgePointMap(target, te.Points[:], c.tetGlobal(t))
		faces := make([][]int, len(loops))
		for j, loop := range loops {
			faces[j] = m.loop(loop)
		}
		target.copyCellData(target.cells().InsertNextCell(encodePolyhedron(faces)))
		cells = append(cells, faces)
	}
	return cells, nil
}

func (c *ConvexPointSet) checkCut(scalars []float64, target *Target) error {
	if err := target.check(); err != nil {
		return err
	}
	if len(scalars) != len(c.points) {
		return fmt.Errorf("%d scalars for %d points: %w", len(scalars), len(c.points), ErrScalarsLength)
	}
	return nil
}

func (c *ConvexPointSet) tetScalars(t [4]int, scalars []float64) []float64 {
	return []float64{scalars[t[0]], scalars[t[1]], scalars[t[2]], scalars[t[3]]}
}

func (c *ConvexPointSet) tetGlobal(t [4]int) []int {
	return []int{c.pointIDs[t[0]], c.pointIDs[t[1]], c.pointIDs[t[2]], c.pointIDs[t[3]]}
}
