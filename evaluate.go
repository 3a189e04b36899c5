// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"fmt"
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/primitive"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

const (
	mvcEps          = 1e-12
	derivativeDelta = 0.01
	convexityTol    = 1e-6
)

// EvaluatePosition projects x onto the cell boundary and computes its
// interpolation weights. A point inside the cell has Dist2 0 and is its own
// closest point. SubID is the closest face.
func (p *Polyhedron) EvaluatePosition(x r3.Vector) (primitive.Evaluation, error) {
	loc, err := p.faceLocator()
	if err != nil {
		return primitive.Evaluation{}, fmt.Errorf("EvaluatePosition: %w", err)
	}
	res, ok := loc.FindClosestPoint(x)
	if !ok {
		return primitive.Evaluation{}, fmt.Errorf("EvaluatePosition: no face could be evaluated: %w", ErrDegenerateGeometry)
	}
	w, err := p.InterpolateFunctions(x)
	if err != nil {
		return primitive.Evaluation{}, fmt.Errorf("EvaluatePosition: %w", err)
	}

	ev := primitive.Evaluation{
		ClosestPoint: res.Point,
		SubID:        res.CellID,
		PCoords:      p.ParametricCoords(x),
		Dist2:        res.Dist2,
		Weights:      w,
	}
	if p.IsInside(x, 0) {
		ev.Inside = true
		ev.ClosestPoint = x
		ev.Dist2 = 0
	}
	return ev, nil
}

// ParametricCoords maps x into the unit cube spanned by the cell bounds.
func (p *Polyhedron) ParametricCoords(x r3.Vector) r3.Vector {
	return p.Bounds().Parametric(x)
}

func (p *Polyhedron) PositionFromParametric(pc r3.Vector) r3.Vector {
	return p.Bounds().FromParametric(pc)
}

// InterpolateFunctions returns the mean value coordinates of x with respect
// to the fan-triangulated boundary, one weight per point. Points on no face
// get zero weight.
func (p *Polyhedron) InterpolateFunctions(x r3.Vector) ([]float64, error) {
	faces := p.localFaces()
	if len(faces) == 0 {
		return nil, fmt.Errorf("InterpolateFunctions: cell has no faces: %w", ErrMalformedTopology)
	}

	n := len(p.points)
	weights := make([]float64, n)
	u := make([]r3.Vector, n)
	dist := make([]float64, n)
	for i, pt := range p.points {
		d := pt.Sub(x)
		dist[i] = d.Norm()
		if dist[i] < mvcEps {
			weights[i] = 1
			return weights, nil
		}
		u[i] = d.Mul(1 / dist[i])
	}

	for _, f := range faces {
		for k := 1; k+1 < len(f); k++ {
			tri := [3]int{f[0], f[k], f[k+1]}
			if onTriangle := mvcTriangle(tri, u, dist, weights); onTriangle {
				return weights, nil
			}
		}
	}

	sum := floats.Sum(weights)
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("InterpolateFunctions: weights do not normalize: %w", ErrDegenerateGeometry)
	}
	floats.Scale(1/sum, weights)
	return weights, nil
}

// mvcTriangle accumulates the contribution of one boundary triangle. When x
// lies on the triangle it overwrites weights with the normalized
// barycentric weights and reports true.
func mvcTriangle(tri [3]int, u []r3.Vector, dist, weights []float64) bool {
	var theta, c, s [3]float64
	h := 0.0
	for i := range 3 {
		l := u[tri[(i+1)%3]].Sub(u[tri[(i+2)%3]]).Norm()
		theta[i] = 2 * math.Asin(math.Min(l/2, 1))
		h += theta[i]
	}
	h /= 2

	if math.Pi-h < mvcEps {
		clear(weights)
		for i := range 3 {
			weights[tri[i]] = math.Sin(theta[i]) * dist[tri[(i+1)%3]] * dist[tri[(i+2)%3]]
		}
		if sum := floats.Sum(weights); sum > 0 {
			floats.Scale(1/sum, weights)
		}
		return true
	}

	m := mgl64.Mat3FromCols(geom.ToVec3(u[tri[0]]), geom.ToVec3(u[tri[1]]), geom.ToVec3(u[tri[2]]))
	sign := 1.0
	if m.Det() < 0 {
		sign = -1
	}
	for i := range 3 {
		c[i] = 2*math.Sin(h)*math.Sin(h-theta[i])/(math.Sin(theta[(i+1)%3])*math.Sin(theta[(i+2)%3])) - 1
		c[i] = math.Max(-1, math.Min(c[i], 1))
		s[i] = sign * math.Sqrt(1-c[i]*c[i])
		if math.Abs(s[i]) <= mvcEps {
			// x is on the triangle's plane but outside it.
			return false
		}
	}
	for i := range 3 {
		j, k := (i+1)%3, (i+2)%3
		w := (theta[i] - c[j]*theta[k] - c[k]*theta[j]) / (dist[tri[i]] * math.Sin(theta[j]) * s[k])
		weights[tri[i]] += w
	}
	return false
}

// Derivatives returns the gradient of each of the dim components of values
// at the parametric point pc, as dim consecutive (d/dx, d/dy, d/dz)
// triples. values holds dim components per point.
func (p *Polyhedron) Derivatives(pc r3.Vector, values []float64, dim int) ([]float64, error) {
	n := len(p.points)
	if dim < 1 || len(values) != dim*n {
		return nil, fmt.Errorf("Derivatives: %d values for %d points of dimension %d: %w", len(values), n, dim, ErrScalarsLength)
	}

	sample := func(pc r3.Vector) (r3.Vector, []float64, error) {
		x := p.PositionFromParametric(pc)
		w, err := p.InterpolateFunctions(x)
		if err != nil {
			return r3.Vector{}, nil, err
		}
		f := make([]float64, dim)
		for i, wi := range w {
			floats.AddScaled(f, wi, values[i*dim:(i+1)*dim])
		}
		return x, f, nil
	}

	x0, f0, err := sample(pc)
	if err != nil {
		return nil, fmt.Errorf("Derivatives: %w", err)
	}
	var (
		rows [3]mgl64.Vec3
		df   [3][]float64
	)
	for a := range 3 {
		xa, fa, err := sample(geom.WithComponent(pc, a, geom.Component(pc, a)+derivativeDelta))
		if err != nil {
			return nil, fmt.Errorf("Derivatives: %w", err)
		}
		rows[a] = geom.ToVec3(xa.Sub(x0))
		floats.Sub(fa, f0)
		df[a] = fa
	}

	jac := mgl64.Mat3FromRows(rows[0], rows[1], rows[2])
	if jac.Det() == 0 {
		return nil, fmt.Errorf("Derivatives: flat cell bounds: %w", ErrDegenerateGeometry)
	}
	inv := jac.Inv()
	derivs := make([]float64, 3*dim)
	for j := range dim {
		g := inv.Mul3x1(mgl64.Vec3{df[0][j], df[1][j], df[2][j]})
		copy(derivs[3*j:3*j+3], g[:])
	}
	return derivs, nil
}

// CellBoundary returns the global point ids of the face whose plane is
// closest to the parametric point pc, and whether pc lies inside the cell.
func (p *Polyhedron) CellBoundary(pc r3.Vector) ([]int, bool) {
	x := p.PositionFromParametric(pc)
	best, bestDist := -1, math.MaxFloat64
	for i := range p.faceOffsets {
		f := Face{idx: i, p: p}
		n := f.Normal()
		if n.Norm2() == 0 {
			continue
		}
		if d := math.Abs(n.Dot(x.Sub(f.Centroid()))); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return nil, false
	}

	inside := pc.X >= 0 && pc.X <= 1 &&
		pc.Y >= 0 && pc.Y <= 1 &&
		pc.Z >= 0 && pc.Z <= 1 &&
		p.IsInside(x, 0)
	return append([]int(nil), Face{idx: best, p: p}.PointIDs()...), inside
}

// IsConvex reports whether the cell is a closed convex solid: every edge is
// shared by exactly two faces and all face points lie on one side of every
// face plane.
func (p *Polyhedron) IsConvex() bool {
	faces := p.localFaces()
	if len(faces) < 4 {
		return false
	}
	p.generateEdges()
	for _, uses := range p.edgeUses {
		if uses != 2 {
			return false
		}
	}

	var used []int
	seen := make([]bool, len(p.points))
	for _, f := range faces {
		for _, id := range f {
			if !seen[id] {
				seen[id] = true
				used = append(used, id)
			}
		}
	}

	tol := convexityTol * p.Bounds().Diagonal()
	for i := range faces {
		f := Face{idx: i, p: p}
		n := f.Normal()
		if n.Norm2() == 0 {
			return false
		}
		c := f.Centroid()
		above, below := false, false
		for _, id := range used {
			d := n.Dot(p.points[id].Sub(c))
			above = above || d > tol
			below = below || d < -tol
		}
		if above && below {
			return false
		}
	}
	return true
}
