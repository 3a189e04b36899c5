// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package locator

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// walkLine visits the leaves pierced by the segment p0-p1 in order along
// the segment until visit returns true.
func (l *CellLocator) walkLine(p0, p1 r3.Vector, visit func(ijk [3]int) bool) {
	dir1 := p1.Sub(p0)
	var origin, dir2 r3.Vector
	for a := range 3 {
		iv := l.bounds.Axis(a)
		origin = geom.WithComponent(origin, a, (geom.Component(p0, a)-iv.Lo)/iv.Length())
		dir2 = geom.WithComponent(dir2, a, geom.Component(dir1, a)/iv.Length())
	}

	tMax := dir2.Norm()
	if tMax == 0 {
		if l.bounds.ContainsPoint(p0) {
			visit(l.bucketOf(p0))
		}
		return
	}
	unit := geom.BoundsFromMinMax(r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1})
	hit, _, ok := geom.IntersectBox(unit, origin, dir2)
	if !ok {
		return
	}

	nd := float64(l.ndivs)
	stopDist := tMax * nd
	dir3 := dir2.Mul(1 / tMax)
	currDist := hit.Sub(origin).Norm() * nd

	// Positions are in octant units shifted by one so that a boundary at
	// index 0 stays positive.
	pos := hit.Mul(nd).Add(r3.Vector{X: 1, Y: 1, Z: 1})
	var ijk [3]int
	for a := range 3 {
		ijk[a] = min(int(geom.Component(pos, a)), l.ndivs)
	}

	for currDist < stopDist {
		if ijk[0] < 1 || ijk[0] > l.ndivs ||
			ijk[1] < 1 || ijk[1] > l.ndivs ||
			ijk[2] < 1 || ijk[2] > l.ndivs {
			return
		}
		if visit([3]int{ijk[0] - 1, ijk[1] - 1, ijk[2] - 1}) {
			return
		}

		step := math.MaxFloat64
		bestDir := 0
		for a := range 3 {
			d := geom.Component(dir3, a)
			p := geom.Component(pos, a)
			var dist float64
			switch {
			case d > 0:
				dist = (1 - p + float64(ijk[a])) / d
				if dist == 0 {
					dist = 1 / d
				}
			case d < 0:
				dist = (float64(ijk[a]) - p) / d
				if dist == 0 {
					dist = -0.01 / d
				}
			default:
				dist = math.MaxFloat64
			}
			dist = math.Max(dist, 0)
			if dist < step {
				step = dist
				bestDir = a
			}
		}

		pos = pos.Add(dir3.Mul(step))
		currDist += step
		if geom.Component(dir3, bestDir) > 0 {
			ijk[bestDir]++
		} else {
			ijk[bestDir]--
		}
	}
}

// IntersectWithLine returns the intersection of the segment p0-p1 with the
// indexed cells that is closest to p0.
func (l *CellLocator) IntersectWithLine(p0, p1 r3.Vector, tol float64) (LineHit, bool) {
	if err := l.BuildLocator(); err != nil {
		return LineHit{CellID: -1}, false
	}
	l.nextQuery()

	dir1 := p1.Sub(p0)
	maxLength := geom.MaxComponent(l.bounds.Size())
	tLimit := 1 + tol/maxLength

	best := LineHit{CellID: -1, T: math.MaxFloat64}
	l.walkLine(p0, p1, func(ijk [3]int) bool {
		ids := l.leaves[l.leafIndex(ijk[0], ijk[1], ijk[2])]
		if len(ids) == 0 {
			return false
		}
		ob := l.octantBounds(ijk)
		obTol := ob.Expanded(1e-9 * maxLength)
		for _, id := range ids {
			if !l.markVisited(id) {
				continue
			}
			if _, _, ok := geom.IntersectBox(l.boundsOf(id).Expanded(tol), p0, dir1); !ok {
				continue
			}
			hit, ok := l.ds.IntersectWithLine(id, p0, p1, tol)
			if !ok {
				continue
			}
			// A hit beyond this octant may be preceded by another cell's hit
			// in a later octant, so the cell is tested again there.
			if !obTol.ContainsPoint(hit.X) {
				l.visited[id] = 0
				continue
			}
			if hit.T < best.T && hit.T < tLimit {
				best = LineHit{T: hit.T, X: hit.X, PCoords: hit.PCoords, SubID: hit.SubID, CellID: id}
			}
		}
		return best.CellID != -1
	})

	if best.CellID == -1 {
		return LineHit{CellID: -1}, false
	}
	return best, true
}

// FindCellsAlongLine returns the unique ids of cells whose bounds are
// crossed by the segment p0-p1, in walk order.
func (l *CellLocator) FindCellsAlongLine(p0, p1 r3.Vector, tol float64) []int {
	if err := l.BuildLocator(); err != nil {
		return nil
	}
	l.nextQuery()

	dir1 := p1.Sub(p0)
	var out []int
	l.walkLine(p0, p1, func(ijk [3]int) bool {
		for _, id := range l.leaves[l.leafIndex(ijk[0], ijk[1], ijk[2])] {
			if !l.markVisited(id) {
				continue
			}
			if _, _, ok := geom.IntersectBox(l.boundsOf(id).Expanded(tol), p0, dir1); ok {
				out = append(out, id)
			}
		}
		return false
	})
	return out
}
