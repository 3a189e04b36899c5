// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package polycell implements a polyhedral cell: a volume bounded by an
// arbitrary set of planar polygonal faces over a shared point set. The cell
// answers geometric queries (inside test, closest point, line intersection,
// interpolation) and extracts iso-surfaces and clipped sub-cells of a scalar
// field given at its points.
package polycell

import (
	"fmt"
	"math/rand"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/locator"
	"github.com/2dChan/polycell/mesh"
	"github.com/golang/geo/r3"
)

// Polyhedron is a polyhedral cell. Points are kept as local copies in input
// order; faces reference them by global id through the face stream
// [numFaces, n0, ids..., n1, ids...].
//
// A Polyhedron is not safe for concurrent use. Queries fill lazy caches.
type Polyhedron struct {
	opts Options
	rng  *rand.Rand

	points      []r3.Vector
	pointIDs    []int
	globalFaces []int
	// NOTE: Offset of each face's length entry in globalFaces.
	faceOffsets []int
	pointIDMap  map[int]int

	faces     [][]int
	edges     [][2]int
	edgeFaces [][2]int
	edgeUses  []int
	edgeTable map[[2]int]int

	bounds      geom.Bounds
	boundsValid bool

	faceMesh    *mesh.Mesh
	faceMeshErr error
	faceLoc     *locator.CellLocator
}

var _ mesh.Cell = (*Polyhedron)(nil)

// New returns an empty cell. Call Initialize to give it geometry.
func New(setters ...Option) (*Polyhedron, error) {
	opts := Options{
		MergeTolerance:       defaultMergeTolerance,
		RandomSeed:           defaultRandomSeed,
		MaxRays:              defaultMaxRays,
		VoteMargin:           defaultVoteMargin,
		LocatorFaceThreshold: defaultLocatorFaceThreshold,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	p := &Polyhedron{opts: opts}
	p.reset()
	return p, nil
}

// Initialize loads points, their global ids and the face stream, replacing
// any previous state. Faces with fewer than three points are accepted here
// and rejected by Contour and Clip.
func (p *Polyhedron) Initialize(points []r3.Vector, pointIDs []int, faces []int) error {
	if len(points) != len(pointIDs) {
		return fmt.Errorf("Initialize: %d points but %d point ids: %w", len(points), len(pointIDs), ErrMalformedFaceStream)
	}
	idMap := make(map[int]int, len(pointIDs))
	for i, id := range pointIDs {
		idMap[id] = i
	}

	it := newFaceIterator(faces)
	offsets := make([]int, 0, max(it.num, 0))
	for {
		off := it.pos
		f, ok := it.next()
		if !ok {
			break
		}
		for _, id := range f {
			if _, ok := idMap[id]; !ok {
				return fmt.Errorf("Initialize: face %d: unknown point id %d: %w", len(offsets), id, ErrMalformedFaceStream)
			}
		}
		offsets = append(offsets, off)
	}
	if err := it.done(); err != nil {
		return fmt.Errorf("Initialize: %w: %w", ErrMalformedFaceStream, err)
	}

	p.points = append([]r3.Vector(nil), points...)
	p.pointIDs = append([]int(nil), pointIDs...)
	p.globalFaces = append([]int(nil), faces...)
	p.faceOffsets = offsets
	p.pointIDMap = idMap
	p.reset()
	return nil
}

// reset drops every derived cache and restarts the ray stream.
func (p *Polyhedron) reset() {
	p.faces = nil
	p.edges = nil
	p.edgeFaces = nil
	p.edgeUses = nil
	p.edgeTable = nil
	p.boundsValid = false
	p.faceMesh = nil
	p.faceMeshErr = nil
	p.faceLoc = nil
	//nolint:gosec
	p.rng = rand.New(rand.NewSource(p.opts.RandomSeed))
}

func (p *Polyhedron) NumberOfPoints() int {
	return len(p.points)
}

// Points returns the local point copies in input order.
// NOTE: The slice aliases the cell's storage.
func (p *Polyhedron) Points() []r3.Vector {
	return p.points
}

func (p *Polyhedron) PointIDs() []int {
	return p.pointIDs
}

// GlobalFaces returns the face stream as given to Initialize.
func (p *Polyhedron) GlobalFaces() []int {
	return p.globalFaces
}

func (p *Polyhedron) NumberOfFaces() int {
	return len(p.faceOffsets)
}

// Face returns the face at index i.
// It returns an error if the index is out of range.
func (p *Polyhedron) Face(i int) (Face, error) {
	if i < 0 || i >= len(p.faceOffsets) {
		return Face{}, fmt.Errorf("Face: index %d out of range [0 %d): %w", i, len(p.faceOffsets), ErrIndexOutOfRange)
	}
	return Face{idx: i, p: p}, nil
}

func (p *Polyhedron) NumberOfEdges() int {
	p.generateEdges()
	return len(p.edges)
}

// Edge returns the edge at index i.
// It returns an error if the index is out of range.
func (p *Polyhedron) Edge(i int) (Edge, error) {
	p.generateEdges()
	if i < 0 || i >= len(p.edges) {
		return Edge{}, fmt.Errorf("Edge: index %d out of range [0 %d): %w", i, len(p.edges), ErrIndexOutOfRange)
	}
	return Edge{idx: i, p: p}, nil
}

// Bounds returns the bounds of all points of the cell.
func (p *Polyhedron) Bounds() geom.Bounds {
	if !p.boundsValid {
		p.bounds = geom.BoundsFromPoints(p.points...)
		p.boundsValid = true
	}
	return p.bounds
}

// localFaces returns the faces as local point indices.
func (p *Polyhedron) localFaces() [][]int {
	if p.faces != nil || len(p.faceOffsets) == 0 {
		return p.faces
	}
	p.faces = make([][]int, len(p.faceOffsets))
	for i := range p.faceOffsets {
		ids := Face{idx: i, p: p}.PointIDs()
		local := make([]int, len(ids))
		for j, id := range ids {
			local[j] = p.pointIDMap[id]
		}
		p.faces[i] = local
	}
	return p.faces
}

// generateEdges fills the edge table from the local faces. Edges are stored
// in order of first use; the first two faces using an edge are recorded.
func (p *Polyhedron) generateEdges() {
	if p.edgeTable != nil {
		return
	}
	faces := p.localFaces()
	p.edgeTable = make(map[[2]int]int)
	for fid, f := range faces {
		for i, a := range f {
			b := f[(i+1)%len(f)]
			if a == b {
				continue
			}
			key := [2]int{min(a, b), max(a, b)}
			eid, ok := p.edgeTable[key]
			if !ok {
				eid = len(p.edges)
				p.edgeTable[key] = eid
				p.edges = append(p.edges, [2]int{a, b})
				p.edgeFaces = append(p.edgeFaces, [2]int{fid, -1})
				p.edgeUses = append(p.edgeUses, 1)
				continue
			}
			if p.edgeUses[eid] == 1 {
				p.edgeFaces[eid][1] = fid
			}
			p.edgeUses[eid]++
		}
	}
}

// polyData returns the faces as a mesh of polygon cells over the local
// points.
func (p *Polyhedron) polyData() (*mesh.Mesh, error) {
	if p.faceMesh == nil && p.faceMeshErr == nil {
		if len(p.faceOffsets) == 0 {
			p.faceMeshErr = fmt.Errorf("polyData: cell has no faces: %w", ErrMalformedTopology)
		} else {
			p.faceMesh, p.faceMeshErr = mesh.FromPolygons(p.points, p.localFaces())
			if p.faceMeshErr != nil {
				p.faceMeshErr = fmt.Errorf("polyData: %w: %w", ErrMalformedTopology, p.faceMeshErr)
			}
		}
	}
	return p.faceMesh, p.faceMeshErr
}

// faceLocator returns the cell locator over the face mesh.
func (p *Polyhedron) faceLocator() (*locator.CellLocator, error) {
	if p.faceLoc != nil {
		return p.faceLoc, nil
	}
	m, err := p.polyData()
	if err != nil {
		return nil, err
	}
	loc, err := locator.New(m, locator.WithCacheCellBounds(true))
	if err != nil {
		return nil, err
	}
	if err := loc.BuildLocator(); err != nil {
		return nil, err
	}
	p.faceLoc = loc
	return loc, nil
}

func (p *Polyhedron) logf(format string, args ...any) {
	if p.opts.Logger != nil {
		p.opts.Logger.Printf(format, args...)
	}
}
