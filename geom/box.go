// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import "github.com/golang/geo/r3"

const (
	quadrantRight = iota
	quadrantLeft
	quadrantMiddle
)

// IntersectBox intersects the segment origin + t*dir, t in [0,1], with b.
// It returns the entry point and its parameter. An origin inside b is its
// own entry point at t = 0.
func IntersectBox(b Bounds, origin, dir r3.Vector) (r3.Vector, float64, bool) {
	inside := true
	var (
		quadrant  [3]int
		candidate [3]float64
		maxT      [3]float64
	)

	for i := range 3 {
		iv := b.Axis(i)
		o := Component(origin, i)
		switch {
		case o < iv.Lo:
			quadrant[i] = quadrantLeft
			candidate[i] = iv.Lo
			inside = false
		case o > iv.Hi:
			quadrant[i] = quadrantRight
			candidate[i] = iv.Hi
			inside = false
		default:
			quadrant[i] = quadrantMiddle
		}
	}
	if inside {
		return origin, 0, true
	}

	for i := range 3 {
		d := Component(dir, i)
		if quadrant[i] != quadrantMiddle && d != 0 {
			maxT[i] = (candidate[i] - Component(origin, i)) / d
		} else {
			maxT[i] = -1
		}
	}

	plane := 0
	for i := 1; i < 3; i++ {
		if maxT[plane] < maxT[i] {
			plane = i
		}
	}
	t := maxT[plane]
	if t > 1 || t < 0 {
		return r3.Vector{}, 0, false
	}

	var coord r3.Vector
	for i := range 3 {
		if i == plane {
			coord = WithComponent(coord, i, candidate[i])
			continue
		}
		c := Component(origin, i) + t*Component(dir, i)
		iv := b.Axis(i)
		if c < iv.Lo || c > iv.Hi {
			return r3.Vector{}, 0, false
		}
		coord = WithComponent(coord, i, c)
	}
	return coord, t, true
}
