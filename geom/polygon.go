// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// PolygonNormal returns the Newell normal of the loop pts. Its length is
// twice the polygon area; a degenerate loop yields the zero vector.
func PolygonNormal(pts []r3.Vector) r3.Vector {
	var n r3.Vector
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// Centroid returns the arithmetic mean of pts.
func Centroid(pts []r3.Vector) r3.Vector {
	var c r3.Vector
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

// ToVec3 converts an r3 vector to its mathgl counterpart.
func ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 converts a mathgl vector to r3.
func FromVec3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Det3 returns the determinant of the matrix with columns a, b and c.
func Det3(a, b, c r3.Vector) float64 {
	return mgl64.Mat3FromCols(ToVec3(a), ToVec3(b), ToVec3(c)).Det()
}
