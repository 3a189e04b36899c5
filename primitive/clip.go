// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package primitive

import (
	"slices"

	"github.com/2dChan/polycell/geom"
	"github.com/golang/geo/r3"
)

func kept(s, value float64, insideOut bool) bool {
	if insideOut {
		return s <= value
	}
	return s >= value
}

func straddles(sa, sb, value float64) bool {
	return (sa-value)*(sb-value) < 0
}

// clipLoop clips the closed vertex loop ids against the scalar field. The
// returned loop keeps the orientation of ids.
func clipLoop(ids []int, scalars []float64, value float64, insideOut bool) []EdgePoint {
	var out []EdgePoint
	n := len(ids)
	for i := range n {
		a, b := ids[i], ids[(i+1)%n]
		sa, sb := scalars[a], scalars[b]
		if kept(sa, value, insideOut) {
			out = append(out, VertexPoint(a))
		}
		if straddles(sa, sb, value) {
			out = append(out, EdgeCrossing(a, b, sa, sb, value))
		}
	}
	return dedupeLoop(out)
}

// contourLoop returns the iso-segments of the closed vertex loop ids. The
// crossings are paired in boundary order starting at the first crossing that
// leaves the non-negative region.
func contourLoop(ids []int, scalars []float64, value float64) [][]EdgePoint {
	var (
		crossings []EdgePoint
		first     = -1
	)
	n := len(ids)
	for i := range n {
		a, b := ids[i], ids[(i+1)%n]
		sa, sb := scalars[a], scalars[b]
		if (sa >= value) == (sb >= value) {
			continue
		}
		if first < 0 && sa >= value {
			first = len(crossings)
		}
		crossings = append(crossings, EdgeCrossing(a, b, sa, sb, value))
	}
	if len(crossings) < 2 {
		return nil
	}
	if first > 0 {
		crossings = append(crossings[first:], crossings[:first]...)
	}

	segs := make([][]EdgePoint, 0, len(crossings)/2)
	for i := 0; i+1 < len(crossings); i += 2 {
		segs = append(segs, []EdgePoint{crossings[i], crossings[i+1]})
	}
	return segs
}

// orientLoop reverses loop in place when its normal does not point along
// dir.
func orientLoop(loop []EdgePoint, pts []r3.Vector, dir r3.Vector) {
	loopPts := make([]r3.Vector, len(loop))
	for i, ep := range loop {
		loopPts[i] = ep.Position(pts)
	}
	if geom.PolygonNormal(loopPts).Dot(dir) < 0 {
		slices.Reverse(loop)
	}
}

// dedupeLoop drops repeated consecutive points of a closed loop and returns
// nil when fewer than three remain.
func dedupeLoop(loop []EdgePoint) []EdgePoint {
	out := loop[:0]
	for i, ep := range loop {
		if i > 0 && ep == out[len(out)-1] {
			continue
		}
		out = append(out, ep)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return out
}
