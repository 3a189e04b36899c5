// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"errors"
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

const angleTol = 1e-9

var errWalk = errors.New("contour walk failed")

// connectContourPoints links each contour point to the contour points it
// reaches along its faces without crossing a negative point, and returns
// the largest number of links of a point. Points that end up with fewer
// than two mutual links are dropped.
func (c *cutter) connectContourPoints() int {
	for _, pid := range slices.Sorted(maps.Keys(c.contourPts)) {
		connected := make(map[int]bool)
		unconnected := make(map[int]bool)
		for _, fid := range c.pointToFaces[pid] {
			if len(c.faceToContour[fid]) == 0 {
				continue
			}
			connectedOnFace(c.faces[fid], c.faceToContour[fid], pid, c.labels, connected, unconnected)
		}

		var branches []int
		for _, q := range slices.Sorted(maps.Keys(connected)) {
			if !unconnected[q] {
				branches = append(branches, q)
			}
		}
		if len(branches) >= 2 {
			c.edgeMap[pid] = branches
		} else {
			delete(c.contourPts, pid)
		}
	}
	c.pruneEdgeMap()

	maxConn := 0
	for _, edges := range c.edgeMap {
		maxConn = max(maxConn, len(edges))
	}
	return maxConn
}

// pruneEdgeMap keeps only links listed by both ends and removes dead ends
// until the graph is stable.
func (c *cutter) pruneEdgeMap() {
	for changed := true; changed; {
		changed = false
		for _, pid := range slices.Sorted(maps.Keys(c.edgeMap)) {
			edges := c.edgeMap[pid]
			kept := edges[:0]
			for _, q := range edges {
				if slices.Contains(c.edgeMap[q], pid) {
					kept = append(kept, q)
				}
			}
			if len(kept) != len(edges) {
				changed = true
			}
			if len(kept) < 2 {
				delete(c.edgeMap, pid)
				delete(c.contourPts, pid)
				changed = true
				continue
			}
			c.edgeMap[pid] = kept
		}
	}
}

// connectedOnFace walks the face loop both ways from the contour point
// curr. Walking continues over positive points and stops at a negative
// point or at a contour point, which is then connected to curr. The other
// contour points of the face are recorded as unconnected.
func connectedOnFace(face, faceContour []int, curr int, labels []int, connected, unconnected map[int]bool) {
	n := len(face)
	if n < 3 || len(faceContour) < 2 {
		return
	}
	start := slices.Index(face, curr)
	if start < 0 {
		return
	}

	leftIdx, rightIdx := -1, -1
	left, right := -1, -1
	leftPassPositive, rightPassPositive := false, false

	end := start - 1
	for ; end != start; end-- {
		if end < 0 {
			end = n - 1
			if end == start {
				break
			}
		}
		l := labels[face[end]]
		if l == -1 {
			break
		}
		if l == 0 {
			leftIdx, left = end, face[end]
			break
		}
		leftPassPositive = true
	}

	if end != start {
		prev := end
		for end = start + 1; end != prev; end++ {
			if end > n-1 {
				end = 0
				if end == prev || end == start {
					break
				}
			}
			l := labels[face[end]]
			if l == -1 {
				break
			}
			if l == 0 {
				rightIdx, right = end, face[end]
				break
			}
			rightPassPositive = true
		}
	}

	// When curr ends a strip of contour points running along the face
	// boundary, only the side reached over positive points is connected.
	if left >= 0 && right >= 0 && left != right && leftPassPositive != rightPassPositive {
		foundNonContour := false
		for end = leftIdx - 1; end != rightIdx; end-- {
			if end < 0 {
				end = n - 1
				if end == rightIdx {
					break
				}
			}
			if labels[face[end]] != 0 {
				foundNonContour = true
				break
			}
		}
		if !foundNonContour {
			if leftPassPositive {
				left = -1
			} else {
				right = -1
			}
		}
	}

	if left >= 0 {
		connected[left] = true
	}
	if right >= 0 {
		connected[right] = true
	}
	for _, q := range faceContour {
		if q != left && q != right && q != curr {
			unconnected[q] = true
		}
	}
}

// contourLoops extracts closed loops of contour points from the edge map.
func (c *cutter) contourLoops(maxConn int) [][]int {
	all := slices.Sorted(maps.Keys(c.contourPts))

	var (
		order map[int][]int
		err   error
	)
	multi := maxConn > 2
	if multi {
		if order, err = c.orderMultiConnected(); err != nil {
			c.p.logf("Contour: ordering branch points: %v", err)
			return c.angularLoop(all)
		}
	}
	loops, err := c.walk(order, multi)
	if err != nil {
		c.p.logf("Contour: %v", err)
		return c.angularLoop(all)
	}
	return loops
}

// walk follows the edge map from the lowest contour point until it returns
// to it, consuming the links it uses, and repeats while contour points
// remain. At a branch point the walk takes the link preceding the incoming
// one in the angular order. A purely two-connected graph removes every
// visited point whole.
func (c *cutter) walk(order map[int][]int, multi bool) ([][]int, error) {
	limit := len(c.points) + 1
	var loops [][]int
	for len(c.contourPts) > 0 {
		start := slices.Min(slices.Collect(maps.Keys(c.contourPts)))
		if _, ok := c.edgeMap[start]; !ok {
			delete(c.contourPts, start)
			continue
		}

		var loop []int
		prev, curr := -1, start
		for {
			edges := c.edgeMap[curr]
			if len(edges) == 0 || len(loop) > limit {
				return nil, errWalk
			}
			var next int
			switch {
			case prev == -1 || len(edges) == 1:
				next = edges[0]
			case len(edges) == 2:
				next = edges[0]
				if next == prev {
					next = edges[1]
				}
			default:
				around := order[curr]
				i := slices.Index(around, prev)
				if i < 0 {
					return nil, errWalk
				}
				next = around[(i-1+len(around))%len(around)]
			}

			loop = append(loop, curr)
			if multi {
				rest := slices.DeleteFunc(edges, func(q int) bool { return q == next })
				if len(rest) == len(edges) {
					return nil, errWalk
				}
				c.edgeMap[curr] = rest
				if len(rest) == 0 {
					delete(c.edgeMap, curr)
					delete(c.contourPts, curr)
				}
			} else {
				delete(c.edgeMap, curr)
				delete(c.contourPts, curr)
			}

			prev, curr = curr, next
			if curr == start {
				break
			}
		}
		loops = append(loops, loop)
	}
	return loops, nil
}

// orderMultiConnected sorts the links of branch points counter-clockwise
// around the contour normal and returns that order. It then removes the
// incoming link of every point on the outer boundary of the graph, so the
// walk leaves each point in a consistent direction.
func (c *cutter) orderMultiConnected() (map[int][]int, error) {
	keys := slices.Sorted(maps.Keys(c.edgeMap))
	dim, n, o := geom.Dimension(c.positions(keys))
	if dim < 2 {
		return nil, errors.New("contour points are collinear")
	}
	n = n.Normalize()

	nn := c.points[keys[0]].Sub(o).Cross(n)
	if nn.Norm2() == 0 {
		nn = c.points[keys[len(keys)-1]].Sub(o).Cross(n)
	}
	if nn.Norm2() == 0 {
		return nil, errors.New("no extreme contour point")
	}
	nn = nn.Normalize()
	extreme, best := -1, math.Inf(-1)
	for _, pid := range keys {
		if d := nn.Dot(c.points[pid].Sub(o)); d > best {
			extreme, best = pid, d
		}
	}

	var extremeAngles []float64
	for _, pid := range keys {
		edges := c.edgeMap[pid]
		if len(edges) < 3 && pid != extreme {
			continue
		}
		angles := c.sortAround(pid, edges, n)
		if pid == extreme {
			extremeAngles = angles
		}
	}

	order := make(map[int][]int, len(c.edgeMap))
	for pid, edges := range c.edgeMap {
		order[pid] = slices.Clone(edges)
	}

	// The outgoing link of the extreme point is the one all other links
	// follow within half a turn.
	edges := c.edgeMap[extreme]
	out := -1
	for i, a := range extremeAngles {
		ok := true
		for _, b := range extremeAngles {
			if d := normAngle(b - a); d > math.Pi+angleTol {
				ok = false
				break
			}
		}
		if ok {
			out = i
			break
		}
	}
	if out < 0 {
		return nil, errors.New("extreme contour point has no outer link")
	}
	in := (out - 1 + len(edges)) % len(edges)

	prev, curr := extreme, edges[out]
	c.edgeMap[extreme] = removeValue(edges, edges[in])
	for steps := 0; curr != extreme && steps <= len(c.points); steps++ {
		edges := c.edgeMap[curr]
		i := slices.Index(edges, prev)
		if i < 0 {
			break
		}
		next := edges[(i+1)%len(edges)]
		c.edgeMap[curr] = removeValue(edges, prev)
		prev, curr = curr, next
	}
	return order, nil
}

// sortAround orders edges[1:] counter-clockwise around n by their angle
// from edges[0] as seen from pid, and returns the sorted angles.
func (c *cutter) sortAround(pid int, edges []int, n r3.Vector) []float64 {
	origin := c.points[pid]
	ref := project(c.points[edges[0]].Sub(origin), n)
	angles := make([]float64, len(edges))
	for i := 1; i < len(edges); i++ {
		v := project(c.points[edges[i]].Sub(origin), n)
		angles[i] = normAngle(math.Atan2(n.Dot(ref.Cross(v)), ref.Dot(v)))
	}
	sort.Stable(byAngle{ids: edges[1:], angles: angles[1:]})
	return angles
}

type byAngle struct {
	ids    []int
	angles []float64
}

func (s byAngle) Len() int           { return len(s.ids) }
func (s byAngle) Less(i, j int) bool { return s.angles[i] < s.angles[j] }
func (s byAngle) Swap(i, j int) {
	s.ids[i], s.ids[j] = s.ids[j], s.ids[i]
	s.angles[i], s.angles[j] = s.angles[j], s.angles[i]
}

// angularLoop orders all contour points by angle around their centroid.
// It is the fallback when the edge map cannot be walked.
func (c *cutter) angularLoop(ids []int) [][]int {
	if len(ids) < 3 {
		return nil
	}
	dim, n, o := geom.Dimension(c.positions(ids))
	if dim < 2 {
		return nil
	}
	n = n.Normalize()
	var ref r3.Vector
	for _, id := range ids {
		if ref = project(c.points[id].Sub(o), n); ref.Norm2() > 0 {
			break
		}
	}
	loop := slices.Clone(ids)
	angles := make([]float64, len(loop))
	for i, id := range loop {
		v := project(c.points[id].Sub(o), n)
		angles[i] = normAngle(math.Atan2(n.Dot(ref.Cross(v)), ref.Dot(v)))
	}
	sort.Stable(byAngle{ids: loop, angles: angles})
	return [][]int{loop}
}

// project removes the component of v along the unit vector n.
func project(v, n r3.Vector) r3.Vector {
	return v.Sub(n.Mul(n.Dot(v)))
}

// normAngle maps a to [0, 2*pi).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func removeValue(s []int, v int) []int {
	return slices.DeleteFunc(slices.Clone(s), func(q int) bool { return q == v })
}
