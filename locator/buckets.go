// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package locator

import (
	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

// bucketNeighbors returns the non-empty leaves at Chebyshev distance level
// from ijk.
func (l *CellLocator) bucketNeighbors(ijk [3]int, level int) [][3]int {
	if level == 0 {
		if len(l.leaves[l.leafIndex(ijk[0], ijk[1], ijk[2])]) == 0 {
			return nil
		}
		return [][3]int{ijk}
	}

	var lo, hi [3]int
	for a := range 3 {
		lo[a] = max(ijk[a]-level, 0)
		hi[a] = min(ijk[a]+level, l.ndivs-1)
	}
	var out [][3]int
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				if i != ijk[0]+level && i != ijk[0]-level &&
					j != ijk[1]+level && j != ijk[1]-level &&
					k != ijk[2]+level && k != ijk[2]-level {
					continue
				}
				if len(l.leaves[l.leafIndex(i, j, k)]) > 0 {
					out = append(out, [3]int{i, j, k})
				}
			}
		}
	}
	return out
}

// overlappingBuckets returns the non-empty leaves overlapping the cube of
// half width dist around x that lie outside the box [exMin, exMax]. The box
// is then replaced by the range just visited.
func (l *CellLocator) overlappingBuckets(x r3.Vector, dist float64, exMin, exMax *[3]int) [][3]int {
	var lo, hi [3]int
	for a := range 3 {
		base := l.bounds.Axis(a).Lo
		c := geom.Component(x, a)
		lo[a] = l.clampDiv(int((c - dist - base) / l.h[a]))
		hi[a] = l.clampDiv(int((c + dist - base) / l.h[a]))
	}

	var out [][3]int
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				if i >= exMin[0] && i <= exMax[0] &&
					j >= exMin[1] && j <= exMax[1] &&
					k >= exMin[2] && k <= exMax[2] {
					continue
				}
				if len(l.leaves[l.leafIndex(i, j, k)]) > 0 {
					out = append(out, [3]int{i, j, k})
				}
			}
		}
	}
	*exMin, *exMax = lo, hi
	return out
}

func (l *CellLocator) distance2ToBucket(x r3.Vector, ijk [3]int) float64 {
	return l.octantBounds(ijk).Distance2(x)
}

// GenerateRepresentation returns the boxes of the occupied octants of the
// given level, clamped to the built depth.
func (l *CellLocator) GenerateRepresentation(level int) []geom.Bounds {
	if err := l.BuildLocator(); err != nil {
		return nil
	}
	level = max(0, min(level, l.level))

	n := 1 << level
	off := levelOffset(level)
	lo, size := l.bounds.Min(), l.bounds.Size()
	var out []geom.Bounds
	for k := range n {
		for j := range n {
			for i := range n {
				if !l.occupied[off+i+j*n+k*n*n] {
					continue
				}
				ijk := [3]float64{float64(i), float64(j), float64(k)}
				var bmin, bmax r3.Vector
				for a := range 3 {
					w := geom.Component(size, a) / float64(n)
					base := geom.Component(lo, a)
					bmin = geom.WithComponent(bmin, a, base+ijk[a]*w)
					bmax = geom.WithComponent(bmax, a, base+(ijk[a]+1)*w)
				}
				out = append(out, geom.BoundsFromMinMax(bmin, bmax))
			}
		}
	}
	return out
}
