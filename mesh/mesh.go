// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package mesh provides a minimal cell container that can be indexed by a
// cell locator.
package mesh

import (
	"fmt"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// Cell is the part of a cell's behavior a mesh needs to answer locator
// queries. Primitive cells and polyhedra both satisfy it.
type Cell interface {
	Bounds() geom.Bounds
	EvaluatePosition(x r3.Vector) (primitive.Evaluation, error)
	IntersectWithLine(p0, p1 r3.Vector, tol float64) (primitive.Hit, bool)
}

// Mesh is an ordered list of cells. Version changes whenever the cell set
// does.
type Mesh struct {
	cells      []Cell
	cellBounds []geom.Bounds
	bounds     geom.Bounds
	version    uint64
}

func New(cells ...Cell) *Mesh {
	m := &Mesh{bounds: geom.EmptyBounds()}
	for _, c := range cells {
		m.AddCell(c)
	}
	return m
}

// FromPolygons builds a mesh of primitive cells, one per face of point
// indices into pts.
func FromPolygons(pts []r3.Vector, faces [][]int) (*Mesh, error) {
	m := New()
	buf := make([]r3.Vector, 0, 8)
	for i, f := range faces {
		buf = buf[:0]
		for _, id := range f {
			if id < 0 || id >= len(pts) {
				return nil, fmt.Errorf("FromPolygons: face %d point %d out of range [0 %d)", i, id, len(pts))
			}
			buf = append(buf, pts[id])
		}
		c, err := primitive.New(append([]r3.Vector(nil), buf...))
		if err != nil {
			return nil, fmt.Errorf("FromPolygons: face %d: %w", i, err)
		}
		m.AddCell(c)
	}
	return m, nil
}

// AddCell appends c and returns its id.
func (m *Mesh) AddCell(c Cell) int {
	b := c.Bounds()
	m.cells = append(m.cells, c)
	m.cellBounds = append(m.cellBounds, b)
	m.bounds = m.bounds.Union(b)
	m.version++
	return len(m.cells) - 1
}

// Modified must be called after a stored cell changed its geometry.
func (m *Mesh) Modified() {
	m.bounds = geom.EmptyBounds()
	for i, c := range m.cells {
		m.cellBounds[i] = c.Bounds()
		m.bounds = m.bounds.Union(m.cellBounds[i])
	}
	m.version++
}

func (m *Mesh) Version() uint64 {
	return m.version
}

func (m *Mesh) NumberOfCells() int {
	return len(m.cells)
}

func (m *Mesh) Cell(id int) Cell {
	return m.cells[id]
}

func (m *Mesh) Bounds() geom.Bounds {
	return m.bounds
}

func (m *Mesh) CellBounds(id int) geom.Bounds {
	return m.cellBounds[id]
}

func (m *Mesh) EvaluatePosition(id int, x r3.Vector) (primitive.Evaluation, error) {
	return m.cells[id].EvaluatePosition(x)
}

func (m *Mesh) IntersectWithLine(id int, p0, p1 r3.Vector, tol float64) (primitive.Hit, bool) {
	return m.cells[id].IntersectWithLine(p0, p1, tol)
}
