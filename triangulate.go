// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"fmt"

	"github.com/2dChan/polycell/hull"
)

// Triangulate decomposes the convex hull of the cell points into positively
// oriented tetrahedra given as global point ids. The result covers the
// cell exactly only when the cell is convex. Only hull vertices appear in
// the tetrahedra: boundary points lying inside a hull facet or edge, such
// as the midpoint of a cube face, are left out.
func (p *Polyhedron) Triangulate() ([][4]int, error) {
	h, err := hull.New(p.points)
	if err != nil {
		return nil, fmt.Errorf("Triangulate: %w: %w", ErrDegenerateGeometry, err)
	}
	local := h.Tetrahedra()
	tets := make([][4]int, len(local))
	for i, t := range local {
		for j, id := range t {
			tets[i][j] = p.pointIDs[id]
		}
	}
	return tets, nil
}
