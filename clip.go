// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// Clip keeps the part of the cell where the scalar field is at least value,
// or at most value when insideOut is set. The kept part is appended to
// target.Cells as one polyhedron face stream and returned as faces of
// output point ids: the cut faces first, then the trimmed cell faces. An
// empty result means nothing is kept.
//
// Both sides of a cut share the same cut faces with opposite orientation,
// so the two results of a pair of calls differing only in insideOut fill
// the cell exactly.
func (p *Polyhedron) Clip(value float64, scalars []float64, target *Target, insideOut bool) ([][]int, error) {
	c, err := p.newCutter(value, scalars, target)
	if err != nil {
		return nil, fmt.Errorf("Clip: %w", err)
	}
	if p.isTetra() {
		return p.clipTetra(value, scalars, target, insideOut), nil
	}

	switch c.fastPath(insideOut) {
	case cutNone:
		return nil, nil
	case cutWhole:
		return c.emitWhole(), nil
	}

	kept := 1
	if insideOut {
		kept = -1
	}
	faces, err := c.clipFaces(kept)
	if err != nil {
		p.logf("Clip: aborted: %v", err)
		return nil, fmt.Errorf("Clip: %w", err)
	}
	if len(faces) == 0 {
		return nil, nil
	}
	return c.emit(faces), nil
}

// clipFaces returns the cut faces and the trimmed cell faces of the kept
// side in local ids.
func (c *cutter) clipFaces(kept int) ([][]int, error) {
	if err := c.split(); err != nil {
		return nil, err
	}
	frags, err := c.fragments(kept)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, nil
	}
	lids, err := c.caps(frags, kept)
	if err != nil {
		return nil, err
	}
	faces := append(lids, frags...)
	for i, f := range faces {
		if len(f) < 3 {
			return nil, fmt.Errorf("output face %d has %d points: %w", i, len(f), ErrMalformedTopology)
		}
	}
	if e, ok := openEdge(faces); ok {
		return nil, fmt.Errorf("edge (%d %d) is not closed: %w", e[0], e[1], ErrMalformedTopology)
	}
	return faces, nil
}

// emitWhole copies the cell unchanged to the target.
func (c *cutter) emitWhole() [][]int {
	faces := make([][]int, 0, len(c.p.localFaces()))
	for _, f := range c.p.localFaces() {
		faces = append(faces, slices.Clone(f))
	}
	return c.emit(faces)
}

// emit maps faces of local ids to output ids and appends them as one cell.
func (c *cutter) emit(faces [][]int) [][]int {
	out := make([][]int, len(faces))
	for i, f := range faces {
		out[i] = c.outputIDs(f)
	}
	c.target.copyCellData(c.target.cells().InsertNextCell(encodePolyhedron(out)))
	return out
}

// crossing is a place where the boundary of a face passes between the two
// sides of the iso-value. At is the index in the face loop of the contour
// point the chords of the face attach to: the last point on the iso-value
// before the boundary enters the positive side, or the first one after it
// leaves.
type crossing struct {
	at    int
	enter bool
}

// faceCrossings returns the crossings of f in loop order. It returns none
// when f has points on at most one side.
func (c *cutter) faceCrossings(f []int) ([]crossing, error) {
	n := len(f)
	start := slices.IndexFunc(f, func(id int) bool { return c.labels[id] != 0 })
	if start < 0 {
		return nil, nil
	}
	var xs []crossing
	last, run := c.labels[f[start]], -1
	for k := 1; k <= n; k++ {
		i := (start + k) % n
		l := c.labels[f[i]]
		if l == 0 {
			if run < 0 {
				run = i
			}
			continue
		}
		if l != last {
			switch {
			case run < 0:
				return nil, fmt.Errorf("points %d and %d lie on opposite sides with no contour point between: %w",
					c.global[f[(i+n-1)%n]], c.global[f[i]], ErrMalformedTopology)
			case last == 1:
				xs = append(xs, crossing{at: run})
			default:
				xs = append(xs, crossing{at: (i + n - 1) % n, enter: true})
			}
		}
		last, run = l, -1
	}
	return xs, nil
}

// faceSide returns the label of the only side f has points on, or 0.
func (c *cutter) faceSide(f []int) int {
	for _, id := range f {
		if l := c.labels[id]; l != 0 {
			return l
		}
	}
	return 0
}

// pairCrossings matches every crossing leaving the positive side with one
// entering it. The chord between a pair is shared by the pieces on both
// sides. Crossings are paired in order along the line through them, which
// is exact when the field is linear over the face. When that order does
// not give non-crossing chords the face is a saddle, and the positive
// corners are cut off unless the face average lies above the iso-value.
func (c *cutter) pairCrossings(f []int, xs []crossing) []int {
	m := len(xs)
	partner := make([]int, m)
	if m == 2 {
		partner[0], partner[1] = 1, 0
		return partner
	}

	pts := make([]r3.Vector, m)
	far := 0
	for i, x := range xs {
		pts[i] = c.points[f[x.at]]
		if pts[i].Sub(pts[0]).Norm2() > pts[far].Sub(pts[0]).Norm2() {
			far = i
		}
	}
	dir := pts[far].Sub(pts[0])
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(dir.Dot(pts[a]), dir.Dot(pts[b]))
	})
	for i := 0; i+1 < m; i += 2 {
		partner[order[i]], partner[order[i+1]] = order[i+1], order[i]
	}
	if validPairing(xs, partner) {
		return partner
	}

	mean := 0.0
	for _, id := range f {
		mean += c.scalars[id]
	}
	positiveJoined := mean/float64(len(f)) > c.value
	for i, x := range xs {
		// Crossings alternate, so the neighbor has the other direction.
		if x.enter != positiveJoined {
			j := (i + 1) % m
			partner[i], partner[j] = j, i
		}
	}
	return partner
}

// validPairing reports whether every pair joins an entering and a leaving
// crossing and no two chords cross along the face loop.
func validPairing(xs []crossing, partner []int) bool {
	for a, b := range partner {
		if xs[a].enter == xs[b].enter {
			return false
		}
		lo, hi := min(a, b), max(a, b)
		for i, j := range partner {
			if (lo < i && i < hi) != (lo < j && j < hi) {
				return false
			}
		}
	}
	return true
}

// fragments traces the pieces of the faces on the kept side. A piece runs
// along its face from a crossing into the kept side to the next crossing
// and continues along the chord to the partner of that crossing.
func (c *cutter) fragments(kept int) ([][]int, error) {
	var frags [][]int
	for fid, f := range c.faces {
		xs, err := c.faceCrossings(f)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", fid, err)
		}
		if len(xs) == 0 {
			if c.faceSide(f) == kept {
				frags = append(frags, slices.Clone(f))
			}
			continue
		}

		partner := c.pairCrossings(f, xs)
		n, m := len(f), len(xs)
		done := make([]bool, m)
		for s, x := range xs {
			if done[s] || x.enter != (kept == 1) {
				continue
			}
			var piece []int
			for k := s; !done[k]; {
				done[k] = true
				next := (k + 1) % m
				for i := xs[k].at; ; i = (i + 1) % n {
					piece = append(piece, f[i])
					if i == xs[next].at {
						break
					}
				}
				k = partner[next]
			}
			if len(piece) < 3 {
				c.p.logf("dropping degenerate piece of face %d", fid)
				continue
			}
			frags = append(frags, piece)
		}
	}
	return frags, nil
}

// caps closes the pieces with the cut faces. The directed edges of the
// pieces without a reverse edge bound the cut. They are chained into loops
// in the orientation of the part above the iso-value, which makes the
// loops and their triangles identical for both sides, and flipped for the
// part below.
func (c *cutter) caps(frags [][]int, kept int) ([][]int, error) {
	var open [][2]int
	for e, n := range netEdges(frags) {
		if kept == 1 {
			e[0], e[1] = e[1], e[0]
		}
		for range n {
			open = append(open, e)
		}
	}
	slices.SortFunc(open, func(a, b [2]int) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})

	loops, err := chainEdges(open)
	if err != nil {
		return nil, err
	}
	var lids [][]int
	for _, loop := range loops {
		polys := [][]int{loop}
		if dim, _, _ := geom.Dimension(c.positions(loop)); dim == 3 {
			polys = stripTriangles(loop)
		}
		for _, poly := range polys {
			if kept == -1 {
				slices.Reverse(poly)
			}
			lids = append(lids, poly)
		}
	}
	return lids, nil
}

// netEdges counts, for every directed edge of faces, how many more times it
// is used than its reverse. Only edges with a positive count are kept.
func netEdges(faces [][]int) map[[2]int]int {
	net := make(map[[2]int]int)
	for _, f := range faces {
		for i, a := range f {
			b := f[(i+1)%len(f)]
			if a == b {
				continue
			}
			net[[2]int{a, b}]++
			net[[2]int{b, a}]--
		}
	}
	maps.DeleteFunc(net, func(_ [2]int, n int) bool { return n <= 0 })
	return net
}

// openEdge returns an edge of faces that is not matched by its reverse.
func openEdge(faces [][]int) ([2]int, bool) {
	for e := range netEdges(faces) {
		return e, true
	}
	return [2]int{}, false
}

// chainEdges links directed edges into closed loops, splitting a walk into
// simple loops where it revisits a point. Every point must have as many
// outgoing as incoming edges.
func chainEdges(edges [][2]int) ([][]int, error) {
	out := make(map[int][]int)
	for _, e := range edges {
		out[e[0]] = append(out[e[0]], e[1])
	}
	var loops [][]int
	for _, e := range edges {
		v := e[0]
		path, pos := []int{v}, map[int]int{v: 0}
		for len(path) > 1 || len(out[v]) > 0 {
			next := out[v]
			if len(next) == 0 {
				return nil, fmt.Errorf("cut boundary ends at point %d: %w", v, ErrMalformedTopology)
			}
			w := next[0]
			out[v] = next[1:]
			if i, ok := pos[w]; ok {
				loops = append(loops, slices.Clone(path[i:]))
				for _, u := range path[i+1:] {
					delete(pos, u)
				}
				path, v = path[:i+1], w
				continue
			}
			pos[w] = len(path)
			path = append(path, w)
			v = w
		}
	}
	return loops, nil
}

// tetraCell returns the cell as a primitive tetrahedron.
func (p *Polyhedron) tetraCell() primitive.Tetra {
	return primitive.Tetra{Points: [4]r3.Vector{p.points[0], p.points[1], p.points[2], p.points[3]}}
}

func (p *Polyhedron) contourTetra(value float64, scalars []float64, target *Target) [][]int {
	te := p.tetraCell()
	m := newEdgePointMap(target, te.Points[:], p.pointIDs)
	var polys [][]int
	for _, loop := range te.Contour(value, scalars) {
		ids := m.loop(loop)
		target.copyCellData(target.polys().InsertNextCell(ids))
		polys = append(polys, ids)
	}
	return polys
}

func (p *Polyhedron) clipTetra(value float64, scalars []float64, target *Target, insideOut bool) [][]int {
	te := p.tetraCell()
	loops := te.Clip(value, scalars, insideOut)
	if len(loops) == 0 {
		return nil
	}
	m := newEdgePointMap(target, te.Points[:], p.pointIDs)
	faces := make([][]int, len(loops))
	for i, loop := range loops {
		faces[i] = m.loop(loop)
	}
	target.copyCellData(target.cells().InsertNextCell(encodePolyhedron(faces)))
	return faces
}
