// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"fmt"
	"math"
	"slices"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/pointmerge"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

const (
	labelTol = 1e-6
	mergeTol = 1e-6
)

// cutResult tells what part of the cell survives a cut.
type cutResult int

const (
	cutNone cutResult = iota
	cutWhole
	cutPartial
)

// cutter holds the state of one Contour or Clip call. Point indices are
// local: the cell's points in input order followed by the contour points
// created on crossing edges.
type cutter struct {
	p      *Polyhedron
	value  float64
	target *Target

	points  []r3.Vector
	scalars []float64
	// global is the input id of each point, -1 for contour points.
	global []int
	// labels are +1 above, -1 below and 0 on the iso-value.
	labels []int

	faces         [][]int
	edges         [][2]int
	pointToFaces  [][]int
	faceToContour [][]int

	contourPts map[int]bool
	// edgeMap lists the contour points each contour point connects to.
	edgeMap map[int][]int
	outIDs  map[int]int
}

// newCutter validates the inputs of a cut and labels the points.
func (p *Polyhedron) newCutter(value float64, scalars []float64, target *Target) (*cutter, error) {
	if err := target.check(); err != nil {
		return nil, err
	}
	faces := p.localFaces()
	if len(faces) == 0 {
		return nil, fmt.Errorf("cell has no faces: %w", ErrMalformedTopology)
	}
	for i, f := range faces {
		if len(f) < 3 {
			return nil, fmt.Errorf("face %d has %d points: %w", i, len(f), ErrMalformedTopology)
		}
	}
	if len(scalars) != len(p.points) {
		return nil, fmt.Errorf("%d scalars for %d points: %w", len(scalars), len(p.points), ErrScalarsLength)
	}

	c := &cutter{
		p:          p,
		value:      value,
		target:     target,
		points:     append([]r3.Vector(nil), p.points...),
		scalars:    append([]float64(nil), scalars...),
		global:     append([]int(nil), p.pointIDs...),
		labels:     make([]int, len(scalars)),
		contourPts: make(map[int]bool),
		edgeMap:    make(map[int][]int),
		outIDs:     make(map[int]int),
	}
	tol := 0.0
	if len(scalars) > 0 {
		tol = math.Min(labelTol, labelTol*(floats.Max(scalars)-floats.Min(scalars)))
	}
	for i, v := range scalars {
		switch {
		case math.Abs(v-value) < tol:
			c.labels[i] = 0
		case v > value:
			c.labels[i] = 1
		default:
			c.labels[i] = -1
		}
	}
	return c, nil
}

// fastPath classifies the cell when no point lies strictly above, or every
// point lies strictly above, the iso-value.
func (c *cutter) fastPath(insideOut bool) cutResult {
	allPositive, allNegative := true, true
	for _, l := range c.labels {
		if l != 1 {
			allPositive = false
		} else {
			allNegative = false
		}
	}
	switch {
	case (allPositive && insideOut) || (allNegative && !insideOut):
		return cutNone
	case allPositive || allNegative:
		return cutWhole
	}
	return cutPartial
}

// split merges duplicate points, snaps near crossings and inserts the
// contour points into the faces.
func (c *cutter) split() error {
	if err := c.mergeDuplicates(); err != nil {
		return err
	}
	c.buildTopology()
	c.snap(c.p.opts.MergeTolerance)
	return c.insertContourPoints()
}

// cut inserts the contour points and connects them into closed loops
// oriented toward the positive side.
func (c *cutter) cut(insideOut bool) (cutResult, [][]int, error) {
	if err := c.split(); err != nil {
		return cutNone, nil, err
	}

	maxConn := c.connectContourPoints()
	if len(c.contourPts) < 3 || len(c.edgeMap) < 3 {
		// No cut through the cell: the first labelled point decides.
		for _, l := range c.labels {
			switch {
			case l == 1 && insideOut, l == -1 && !insideOut:
				return cutNone, nil, nil
			case l != 0:
				return cutWhole, nil, nil
			}
		}
		return cutNone, nil, fmt.Errorf("all points lie on the iso-value: %w", ErrDegenerateGeometry)
	}

	loops := c.contourLoops(maxConn)
	var above map[[2]int]int
	if frags, err := c.fragments(1); err == nil {
		above = netEdges(frags)
	}
	for _, loop := range loops {
		c.orientTowardPositive(loop, above)
	}
	return cutPartial, loops, nil
}

// mergeDuplicates collapses coincident points in the faces, drops the
// repeated ids this leaves and discards faces that degenerate.
func (c *cutter) mergeDuplicates() error {
	tol := math.Min(mergeTol, mergeTol*c.p.Bounds().Diagonal())
	loc, err := pointmerge.New(pointmerge.WithTolerance(tol))
	if err != nil {
		return err
	}
	rep := make([]int, len(c.points))
	first := make(map[int]int, len(c.points))
	for i, x := range c.points {
		id, _ := loc.InsertUniquePoint(x)
		if r, ok := first[id]; ok {
			rep[i] = r
			continue
		}
		first[id] = i
		rep[i] = i
	}

	for _, f := range c.p.localFaces() {
		merged := make([]int, 0, len(f))
		for _, id := range f {
			r := rep[id]
			if len(merged) > 0 && merged[len(merged)-1] == r {
				continue
			}
			merged = append(merged, r)
		}
		for len(merged) > 1 && merged[0] == merged[len(merged)-1] {
			merged = merged[:len(merged)-1]
		}
		if len(merged) >= 3 {
			c.faces = append(c.faces, merged)
		}
	}
	if len(c.faces) == 0 {
		return fmt.Errorf("no face survives duplicate point merging: %w", ErrMalformedTopology)
	}
	return nil
}

// buildTopology fills the edge table and the point to face map.
func (c *cutter) buildTopology() {
	c.pointToFaces = make([][]int, len(c.points))
	c.faceToContour = make([][]int, len(c.faces))
	seen := make(map[[2]int]bool)
	for fid, f := range c.faces {
		for i, a := range f {
			if !slices.Contains(c.pointToFaces[a], fid) {
				c.pointToFaces[a] = append(c.pointToFaces[a], fid)
			}
			b := f[(i+1)%len(f)]
			key := [2]int{min(a, b), max(a, b)}
			if !seen[key] {
				seen[key] = true
				c.edges = append(c.edges, [2]int{a, b})
			}
		}
	}
}

// snap relabels the end point of a crossing edge as a contour point when
// the crossing lies within tol of it, avoiding slivers.
func (c *cutter) snap(tol float64) {
	for _, e := range c.edges {
		a, b := e[0], e[1]
		if c.labels[a]*c.labels[b] != -1 {
			continue
		}
		t := (c.value - c.scalars[a]) / (c.scalars[b] - c.scalars[a])
		switch {
		case t < tol:
			c.labels[a] = 0
		case t > 1-tol:
			c.labels[b] = 0
		}
	}
}

// insertContourPoints registers every point on the iso-value: labelled
// vertices and new points on edges crossing it. New points are spliced into
// the loops of the two faces sharing the edge.
func (c *cutter) insertContourPoints() error {
	for _, e := range c.edges {
		a, b := e[0], e[1]
		la, lb := c.labels[a], c.labels[b]
		if la == lb && la != 0 {
			continue
		}
		if la == 0 || lb == 0 {
			if la == 0 {
				c.addVertexContourPoint(a)
			}
			if lb == 0 {
				c.addVertexContourPoint(b)
			}
			continue
		}

		var shared []int
		for _, fid := range c.pointToFaces[a] {
			if slices.Contains(c.pointToFaces[b], fid) {
				shared = append(shared, fid)
			}
		}
		if len(shared) != 2 {
			return fmt.Errorf("edge (%d %d) is shared by %d faces: %w", c.global[a], c.global[b], len(shared), ErrMalformedTopology)
		}

		t := (c.value - c.scalars[a]) / (c.scalars[b] - c.scalars[a])
		x := c.points[a].Add(c.points[b].Sub(c.points[a]).Mul(t))
		pid := len(c.points)
		c.points = append(c.points, x)
		c.scalars = append(c.scalars, c.value)
		c.global = append(c.global, -1)
		c.labels = append(c.labels, 0)
		c.pointToFaces = append(c.pointToFaces, shared)
		for _, fid := range shared {
			f, ok := insertBetween(c.faces[fid], a, b, pid)
			if !ok {
				return fmt.Errorf("edge (%d %d) is not an edge of face %d: %w", c.global[a], c.global[b], fid, ErrMalformedTopology)
			}
			c.faces[fid] = f
			c.faceToContour[fid] = append(c.faceToContour[fid], pid)
		}
		c.contourPts[pid] = true
		c.outIDs[pid] = c.target.insertEdgePoint(x, c.global[a], c.global[b], t)
	}
	return nil
}

func (c *cutter) addVertexContourPoint(v int) {
	if c.contourPts[v] {
		return
	}
	c.contourPts[v] = true
	c.outIDs[v] = c.target.insertPoint(c.points[v], c.global[v])
	for _, fid := range c.pointToFaces[v] {
		c.faceToContour[fid] = append(c.faceToContour[fid], v)
	}
}

// insertBetween inserts id between the adjacent entries a and b of the
// loop f.
func insertBetween(f []int, a, b, id int) ([]int, bool) {
	n := len(f)
	for i := range n {
		j := (i + 1) % n
		if (f[i] == a && f[j] == b) || (f[i] == b && f[j] == a) {
			return slices.Insert(f, i+1, id), true
		}
	}
	return f, false
}

// orientTowardPositive reverses loop when its normal points toward the
// points below the iso-value. The boundary of the part above the iso-value
// decides: a loop edge it runs along keeps its direction there. When no
// loop edge lies on that boundary, the side of the cell points relative to
// the loop plane decides.
func (c *cutter) orientTowardPositive(loop []int, above map[[2]int]int) {
	votes := 0
	for i, a := range loop {
		b := loop[(i+1)%len(loop)]
		votes += above[[2]int{a, b}] - above[[2]int{b, a}]
	}
	if votes != 0 {
		if votes < 0 {
			slices.Reverse(loop)
		}
		return
	}

	pts := c.positions(loop)
	n := geom.PolygonNormal(pts)
	center := geom.Centroid(pts)
	side := 0.0
	for i := range c.p.points {
		if c.labels[i] == 0 || len(c.pointToFaces[i]) == 0 {
			continue
		}
		side += float64(c.labels[i]) * n.Dot(c.points[i].Sub(center))
	}
	if side < 0 {
		slices.Reverse(loop)
	}
}

func (c *cutter) positions(ids []int) []r3.Vector {
	pts := make([]r3.Vector, len(ids))
	for i, id := range ids {
		pts[i] = c.points[id]
	}
	return pts
}

// polygons turns loops into output polygons. Collinear loops are dropped
// and non-planar loops are split into triangles.
func (c *cutter) polygons(loops [][]int) [][]int {
	var polys [][]int
	for _, loop := range loops {
		if len(loop) < 3 {
			continue
		}
		switch dim, _, _ := geom.Dimension(c.positions(loop)); {
		case dim < 2:
			continue
		case dim == 2:
			polys = append(polys, slices.Clone(loop))
		default:
			polys = append(polys, stripTriangles(loop)...)
		}
	}
	return polys
}

// stripTriangles splits a loop into triangles taken alternately from both
// ends, keeping its orientation.
func stripTriangles(loop []int) [][]int {
	var tris [][]int
	s, e := 0, len(loop)-1
	for e-s >= 2 {
		tris = append(tris, []int{loop[s], loop[s+1], loop[e]})
		s++
		if e-s < 2 {
			break
		}
		tris = append(tris, []int{loop[e], loop[s], loop[e-1]})
		e--
	}
	return tris
}

// outputIDs maps local ids to output ids, inserting cell points on first
// use.
func (c *cutter) outputIDs(ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		oid, ok := c.outIDs[id]
		if !ok {
			oid = c.target.insertPoint(c.points[id], c.global[id])
			c.outIDs[id] = oid
		}
		out[i] = oid
	}
	return out
}

// Contour appends the polygons where the scalar field crosses value to
// target.Polys and returns them as output point ids. Polygons face toward
// increasing scalar. A cell not crossed by the iso-value yields nothing.
func (p *Polyhedron) Contour(value float64, scalars []float64, target *Target) ([][]int, error) {
	c, err := p.newCutter(value, scalars, target)
	if err != nil {
		return nil, fmt.Errorf("Contour: %w", err)
	}
	if p.isTetra() {
		return p.contourTetra(value, scalars, target), nil
	}
	if c.fastPath(false) != cutPartial {
		return nil, nil
	}

	res, loops, err := c.cut(false)
	if err != nil {
		p.logf("Contour: aborted: %v", err)
		return nil, fmt.Errorf("Contour: %w", err)
	}
	if res != cutPartial {
		return nil, nil
	}

	var polys [][]int
	for _, poly := range c.polygons(loops) {
		ids := c.outputIDs(poly)
		target.copyCellData(target.polys().InsertNextCell(ids))
		polys = append(polys, ids)
	}
	return polys, nil
}

// isTetra reports whether the cell is a tetrahedron with four triangles.
func (p *Polyhedron) isTetra() bool {
	if len(p.points) != 4 || len(p.faceOffsets) != 4 {
		return false
	}
	for _, f := range p.localFaces() {
		if len(f) != 3 {
			return false
		}
	}
	return true
}
