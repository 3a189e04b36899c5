// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"slices"

	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

// IsInside reports whether x lies inside the cell. Random rays of the
// cell's diagonal length are cast from x; an odd number of strictly
// interior face crossings votes in, an even number votes out. Casting stops
// once one side leads by VoteMargin votes or after MaxRays rays, and a tie
// is outside. tol is a fraction of the diagonal accepted around each face.
func (p *Polyhedron) IsInside(x r3.Vector, tol float64) bool {
	b := p.Bounds()
	if b.IsEmpty() || !b.ContainsPoint(x) {
		return false
	}
	m, err := p.polyData()
	if err != nil {
		p.logf("IsInside: %v", err)
		return false
	}

	length := b.Diagonal()
	if length == 0 {
		return false
	}
	useLocator := m.NumberOfCells() > p.opts.LocatorFaceThreshold
	all := make([]int, m.NumberOfCells())
	for i := range all {
		all[i] = i
	}

	votes := 0
	for iter := 0; iter < p.opts.MaxRays && abs(votes) < p.opts.VoteMargin; iter++ {
		ray := p.randomDirection()
		end := x.Add(ray.Mul(length / ray.Norm()))

		candidates := all
		if useLocator {
			loc, err := p.faceLocator()
			if err != nil {
				p.logf("IsInside: %v", err)
				return false
			}
			candidates = loc.FindCellsAlongLine(x, end, tol*length)
		}

		hits := 0
		for _, id := range candidates {
			h, ok := m.IntersectWithLine(id, x, end, tol*length)
			if ok && !h.OnBoundary {
				hits++
			}
		}
		if hits%2 == 1 {
			votes++
		} else {
			votes--
		}
	}
	return votes > 0
}

// randomDirection returns a non-zero vector with components in [-1, 1).
func (p *Polyhedron) randomDirection() r3.Vector {
	for {
		v := r3.Vector{
			X: 2*p.rng.Float64() - 1,
			Y: 2*p.rng.Float64() - 1,
			Z: 2*p.rng.Float64() - 1,
		}
		if v.Norm2() > 0 {
			return v
		}
	}
}

// IntersectWithLine returns the face hit along p0-p1 closest to p0. SubID is
// the face index and PCoords are relative to the cell bounds.
func (p *Polyhedron) IntersectWithLine(p0, p1 r3.Vector, tol float64) (primitive.Hit, bool) {
	hits := p.IntersectWithLineAll(p0, p1, tol)
	if len(hits) == 0 {
		return primitive.Hit{}, false
	}
	return hits[0], true
}

// IntersectWithLineAll returns every face hit along p0-p1 sorted by T.
func (p *Polyhedron) IntersectWithLineAll(p0, p1 r3.Vector, tol float64) []primitive.Hit {
	m, err := p.polyData()
	if err != nil {
		return nil
	}
	b := p.Bounds()
	var hits []primitive.Hit
	for id := range m.NumberOfCells() {
		h, ok := m.IntersectWithLine(id, p0, p1, tol)
		if !ok {
			continue
		}
		h.SubID = id
		h.PCoords = b.Parametric(h.X)
		hits = append(hits, h)
	}
	slices.SortStableFunc(hits, func(a, b primitive.Hit) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		}
		return 0
	})
	return hits
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
