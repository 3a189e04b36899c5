// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package primitive implements the fixed-topology cells (line, triangle,
// quad, polygon and tetrahedron) that polyhedral cells delegate to.
//
// Contour and clip results are reported as EdgePoint descriptors over the
// cell's local vertex indices, so the caller decides how the new points are
// merged and how attributes are interpolated.
package primitive

import (
	"errors"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// ErrDegenerate is returned when a cell has no well-defined local frame,
// e.g. a zero-area triangle or a flat tetrahedron.
var ErrDegenerate = errors.New("primitive: degenerate cell")

// Evaluation is the result of projecting a point onto a cell.
type Evaluation struct {
	ClosestPoint r3.Vector
	SubID        int
	PCoords      r3.Vector
	Dist2        float64
	Weights      []float64
	Inside       bool
}

// Hit describes a line/cell intersection.
type Hit struct {
	T       float64
	X       r3.Vector
	PCoords r3.Vector
	SubID   int
	// OnBoundary is set when the hit lies on an edge or vertex of the cell
	// rather than strictly inside it.
	OnBoundary bool
}

// Cell is the capability set shared by all fixed-topology cells.
type Cell interface {
	NumberOfPoints() int
	Bounds() geom.Bounds
	EvaluatePosition(x r3.Vector) (Evaluation, error)
	IntersectWithLine(p0, p1 r3.Vector, tol float64) (Hit, bool)
	// Contour returns the iso-value pieces of the cell: points for a line,
	// segments for 2D cells and polygons for a tetrahedron.
	Contour(value float64, scalars []float64) [][]EdgePoint
	// Clip returns the part of the cell with scalars >= value, or
	// <= value when insideOut is set: a segment, a polygon, or the closed
	// face set of a polyhedron.
	Clip(value float64, scalars []float64, insideOut bool) [][]EdgePoint
}

var (
	_ Cell = Line{}
	_ Cell = Triangle{}
	_ Cell = Quad{}
	_ Cell = Polygon{}
	_ Cell = Tetra{}
)

// New returns the cell matching the number of points: a line, triangle,
// quad, or polygon for five or more points.
func New(pts []r3.Vector) (Cell, error) {
	switch n := len(pts); {
	case n == 2:
		return Line{Points: [2]r3.Vector{pts[0], pts[1]}}, nil
	case n == 3:
		return Triangle{Points: [3]r3.Vector{pts[0], pts[1], pts[2]}}, nil
	case n == 4:
		return Quad{Points: [4]r3.Vector{pts[0], pts[1], pts[2], pts[3]}}, nil
	case n > 4:
		return Polygon{Points: pts}, nil
	}
	return nil, ErrDegenerate
}

func checkScalars(fn string, scalars []float64, n int) {
	if len(scalars) != n {
		panic(fn + ": scalars length does not match number of points")
	}
}
