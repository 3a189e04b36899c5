// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"fmt"

	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// PointInserter merges output points. It returns the id of x and whether
// the point was newly inserted. pointmerge.Locator implements it.
type PointInserter interface {
	InsertUniquePoint(x r3.Vector) (int, bool)
}

// PointData carries point attributes from input ids to output ids.
type PointData interface {
	CopyData(src, dst int)
	// InterpolateEdge stores (1-t)*a + t*b in dst.
	InterpolateEdge(a, b int, t float64, dst int)
}

// CellData carries cell attributes from the input cell to output cells.
type CellData interface {
	CopyData(src, dst int)
}

// Target receives the output of Contour and Clip. Only Points is required;
// PointData and CellData may be nil. Contour appends to Polys and Clip to
// Cells, allocating the array when nil.
type Target struct {
	Points    PointInserter
	PointData PointData
	CellData  CellData
	// CellID is the id of the input cell for CellData.
	CellID int
	Polys  *CellArray
	Cells  *CellArray
}

func (t *Target) check() error {
	if t == nil || t.Points == nil {
		return fmt.Errorf("target has no point inserter: %w", ErrDegenerateGeometry)
	}
	return nil
}

func (t *Target) polys() *CellArray {
	if t.Polys == nil {
		t.Polys = NewCellArray()
	}
	return t.Polys
}

func (t *Target) cells() *CellArray {
	if t.Cells == nil {
		t.Cells = NewCellArray()
	}
	return t.Cells
}

// insertPoint merges x and copies the data of input point src when x is
// new.
func (t *Target) insertPoint(x r3.Vector, src int) int {
	id, isNew := t.Points.InsertUniquePoint(x)
	if isNew && t.PointData != nil {
		t.PointData.CopyData(src, id)
	}
	return id
}

// insertEdgePoint merges the point at t along the input edge (a, b).
func (t *Target) insertEdgePoint(x r3.Vector, a, b int, param float64) int {
	id, isNew := t.Points.InsertUniquePoint(x)
	if isNew && t.PointData != nil {
		t.PointData.InterpolateEdge(a, b, param, id)
	}
	return id
}

func (t *Target) copyCellData(dst int) {
	if t.CellData != nil {
		t.CellData.CopyData(t.CellID, dst)
	}
}

// edgePointMap resolves EdgePoints of a primitive cell to output ids.
// global maps the cell's local vertex indices to input point ids.
type edgePointMap struct {
	target *Target
	pts    []r3.Vector
	global []int
	ids    map[primitive.EdgePoint]int
}

func newEdgePointMap(target *Target, pts []r3.Vector, global []int) *edgePointMap {
	return &edgePointMap{target: target, pts: pts, global: global, ids: make(map[primitive.EdgePoint]int)}
}

func (m *edgePointMap) id(ep primitive.EdgePoint) int {
	if id, ok := m.ids[ep]; ok {
		return id
	}
	x := ep.Position(m.pts)
	var id int
	if ep.IsVertex() {
		id = m.target.insertPoint(x, m.global[ep.A])
	} else {
		id = m.target.insertEdgePoint(x, m.global[ep.A], m.global[ep.B], ep.T)
	}
	m.ids[ep] = id
	return id
}

func (m *edgePointMap) loop(eps []primitive.EdgePoint) []int {
	ids := make([]int, len(eps))
	for i, ep := range eps {
		ids[i] = m.id(ep)
	}
	return ids
}
