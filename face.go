// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"errors"
	"fmt"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// Face represents a face of a Polyhedron. It is a view structure for
// accessing a face in the cell's face stream.
type Face struct {
	idx int
	p   *Polyhedron
}

// Index returns the index of the face in the Polyhedron.
func (f Face) Index() int {
	return f.idx
}

func (f Face) NumPoints() int {
	return f.p.globalFaces[f.p.faceOffsets[f.idx]]
}

// PointIDs returns the global ids of the face points in stream order.
func (f Face) PointIDs() []int {
	off := f.p.faceOffsets[f.idx]
	return f.p.globalFaces[off+1 : off+1+f.p.globalFaces[off]]
}

// Point returns the coordinates of the face point at the specified index.
// It returns an error if the index is out of range.
func (f Face) Point(i int) (r3.Vector, error) {
	ids := f.PointIDs()
	if i < 0 || i >= len(ids) {
		return r3.Vector{}, fmt.Errorf("Point: index %d out of range [0 %d): %w", i, len(ids), ErrIndexOutOfRange)
	}
	return f.p.points[f.p.pointIDMap[ids[i]]], nil
}

func (f Face) Points() []r3.Vector {
	ids := f.PointIDs()
	pts := make([]r3.Vector, len(ids))
	for i, id := range ids {
		pts[i] = f.p.points[f.p.pointIDMap[id]]
	}
	return pts
}

// Normal returns the unit normal of the face by Newell's method, or the
// zero vector for a degenerate face.
func (f Face) Normal() r3.Vector {
	n := geom.PolygonNormal(f.Points())
	if n.Norm2() == 0 {
		return n
	}
	return n.Normalize()
}

func (f Face) Centroid() r3.Vector {
	return geom.Centroid(f.Points())
}

// Edge represents an edge of a Polyhedron.
type Edge struct {
	idx int
	p   *Polyhedron
}

func (e Edge) Index() int {
	return e.idx
}

// PointIDs returns the global ids of the edge end points.
func (e Edge) PointIDs() [2]int {
	ed := e.p.edges[e.idx]
	return [2]int{e.p.pointIDs[ed[0]], e.p.pointIDs[ed[1]]}
}

func (e Edge) Points() [2]r3.Vector {
	ed := e.p.edges[e.idx]
	return [2]r3.Vector{e.p.points[ed[0]], e.p.points[ed[1]]}
}

// Faces returns the first two faces using the edge. The second is -1 for
// an edge used by a single face.
func (e Edge) Faces() [2]int {
	return e.p.edgeFaces[e.idx]
}

// NumFaces returns the number of faces using the edge.
func (e Edge) NumFaces() int {
	return e.p.edgeUses[e.idx]
}

// faceIterator walks a face stream [numFaces, n0, ids..., n1, ids...].
type faceIterator struct {
	stream []int
	pos    int
	id     int
	num    int
	err    error
}

func newFaceIterator(stream []int) *faceIterator {
	it := &faceIterator{stream: stream, pos: 1}
	switch {
	case len(stream) == 0:
		it.err = errors.New("empty face stream")
	case stream[0] < 0:
		it.err = fmt.Errorf("negative face count %d", stream[0])
	default:
		it.num = stream[0]
	}
	return it
}

// next returns the point ids of the next face, aliasing the stream.
func (it *faceIterator) next() ([]int, bool) {
	if it.err != nil || it.id >= it.num {
		return nil, false
	}
	if it.pos >= len(it.stream) {
		it.err = fmt.Errorf("face %d: stream ends at %d", it.id, it.pos)
		return nil, false
	}
	n := it.stream[it.pos]
	if n < 0 || it.pos+1+n > len(it.stream) {
		it.err = fmt.Errorf("face %d: length %d overruns the stream", it.id, n)
		return nil, false
	}
	f := it.stream[it.pos+1 : it.pos+1+n]
	it.pos += n + 1
	it.id++
	return f, true
}

// done reports whether the stream was consumed exactly.
func (it *faceIterator) done() error {
	if it.err != nil {
		return it.err
	}
	if it.id != it.num {
		return fmt.Errorf("read %d of %d faces", it.id, it.num)
	}
	if it.pos != len(it.stream) {
		return fmt.Errorf("%d trailing entries after the last face", len(it.stream)-it.pos)
	}
	return nil
}
