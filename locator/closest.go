// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package locator

import (
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// FindClosestPoint returns the point on the indexed cells closest to x.
// It reports false when the locator cannot be built or no cell could be
// evaluated.
func (l *CellLocator) FindClosestPoint(x r3.Vector) (Result, bool) {
	if err := l.BuildLocator(); err != nil {
		return Result{CellID: -1}, false
	}
	l.nextQuery()

	best := Result{CellID: -1}
	dist2 := math.MaxFloat64
	ijk := l.bucketOf(x)

	search := func(ids []int) {
		for _, id := range ids {
			if !l.markVisited(id) {
				continue
			}
			if l.boundsOf(id).Distance2(x) >= dist2 {
				continue
			}
			ev, err := l.ds.EvaluatePosition(id, x)
			if err != nil {
				continue
			}
			if ev.Dist2 < dist2 {
				dist2 = ev.Dist2
				best = Result{
					Point:  ev.ClosestPoint,
					CellID: id,
					SubID:  ev.SubID,
					Dist2:  ev.Dist2,
					Inside: ev.Inside,
				}
			}
		}
	}

	// Grow rings around the home bucket until some cell is found.
	level := 0
	for ; best.CellID == -1 && level < l.ndivs; level++ {
		for _, b := range l.bucketNeighbors(ijk, level) {
			search(l.leaves[l.leafIndex(b[0], b[1], b[2])])
		}
	}

	// The closest point may still lie in a bucket outside the searched rings
	// but within the current distance.
	if best.CellID != -1 && dist2 > 0 {
		level--
		exMin := [3]int{ijk[0] - level, ijk[1] - level, ijk[2] - level}
		exMax := [3]int{ijk[0] + level, ijk[1] + level, ijk[2] + level}
		for _, b := range l.overlappingBuckets(x, math.Sqrt(dist2), &exMin, &exMax) {
			if l.distance2ToBucket(x, b) >= dist2 {
				continue
			}
			search(l.leaves[l.leafIndex(b[0], b[1], b[2])])
		}
	}
	return best, best.CellID != -1
}

// FindClosestPointWithinRadius is FindClosestPoint restricted to cells
// within radius of x. The search radius shrinks as closer cells are found.
func (l *CellLocator) FindClosestPointWithinRadius(x r3.Vector, radius float64) (Result, bool) {
	if err := l.BuildLocator(); err != nil {
		return Result{CellID: -1}, false
	}
	l.nextQuery()

	best := Result{CellID: -1}
	radius2 := radius * radius
	minDist2 := 1.1 * radius2
	var refinedRadius, refinedRadius2 float64

	evaluate := func(id int, limit2 float64) {
		if !l.markVisited(id) {
			return
		}
		if l.boundsOf(id).Distance2(x) >= limit2 {
			return
		}
		ev, err := l.ds.EvaluatePosition(id, x)
		if err != nil || ev.Dist2 >= minDist2 {
			return
		}
		minDist2 = ev.Dist2
		refinedRadius = math.Sqrt(minDist2)
		refinedRadius2 = minDist2
		best = Result{
			Point:  ev.ClosestPoint,
			CellID: id,
			SubID:  ev.SubID,
			Dist2:  ev.Dist2,
			Inside: ev.Inside,
		}
	}

	ijk := l.bucketOf(x)
	for _, id := range l.leaves[l.leafIndex(ijk[0], ijk[1], ijk[2])] {
		evaluate(id, minDist2)
	}

	if minDist2 < radius2 {
		refinedRadius = math.Sqrt(minDist2)
	} else {
		refinedRadius = radius
	}
	maxDistance := math.Sqrt(l.bounds.Distance2(x)) + l.ds.Bounds().Diagonal()
	refinedRadius = math.Min(refinedRadius, maxDistance)
	refinedRadius2 = refinedRadius * refinedRadius

	radiusLevel := 0
	for a := range 3 {
		radiusLevel = max(radiusLevel, min(int(refinedRadius/l.h[a]), l.ndivs/2))
	}
	radiusLevel = max(radiusLevel, 1)

	prevMin, prevMax := ijk, ijk
	for ii := radiusLevel; ii >= 1; ii-- {
		currentRadius := refinedRadius
		for _, b := range l.overlappingBuckets(x, refinedRadius/float64(ii), &prevMin, &prevMax) {
			if l.distance2ToBucket(x, b) >= refinedRadius2 {
				continue
			}
			for _, id := range l.leaves[l.leafIndex(b[0], b[1], b[2])] {
				evaluate(id, refinedRadius2)
			}
		}
		// Avoid rechecking radii smaller than the one just searched.
		if refinedRadius < currentRadius && ii > 2 {
			ii = max(int(float64(ii)*(refinedRadius/currentRadius))+1, 2)
		}
	}

	if best.CellID == -1 || minDist2 > radius2 {
		return Result{CellID: -1}, false
	}
	return best, true
}

// FindCell returns the id of a cell containing x and the evaluation of x
// in it, or -1.
func (l *CellLocator) FindCell(x r3.Vector) (int, primitive.Evaluation) {
	if err := l.BuildLocator(); err != nil {
		return -1, primitive.Evaluation{}
	}
	if !l.bounds.ContainsPoint(x) {
		return -1, primitive.Evaluation{}
	}
	ijk := l.bucketOf(x)
	for _, id := range l.leaves[l.leafIndex(ijk[0], ijk[1], ijk[2])] {
		if !l.boundsOf(id).Expanded(l.opts.Tolerance).ContainsPoint(x) {
			continue
		}
		ev, err := l.ds.EvaluatePosition(id, x)
		if err == nil && (ev.Inside || ev.Dist2 <= l.opts.Tolerance*l.opts.Tolerance) {
			return id, ev
		}
	}
	return -1, primitive.Evaluation{}
}

// FindCellsWithinBounds returns the unique ids of cells stored in leaves
// overlapping b.
func (l *CellLocator) FindCellsWithinBounds(b geom.Bounds) []int {
	if err := l.BuildLocator(); err != nil || b.IsEmpty() {
		return nil
	}
	l.nextQuery()

	var ids []int
	lo, hi := l.bucketOf(b.Min()), l.bucketOf(b.Max())
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				for _, id := range l.leaves[l.leafIndex(i, j, k)] {
					if l.markVisited(id) {
						ids = append(ids, id)
					}
				}
			}
		}
	}
	return ids
}
