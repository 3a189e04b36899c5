// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"errors"
	"math"
	"testing"

	"github.com/2dChan/polycell/attrib"
	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"
)

type shape struct {
	name string
	gen  func() ([]r3.Vector, []int)
}

var (
	cubeShape   = shape{"cube", utils.UnitCube}
	tetraShape  = shape{"tetra", utils.UnitTetra}
	prismShape  = shape{"prism", utils.Prism}
	lPrismShape = shape{"L prism", utils.LPrism}
)

func TestLabels_Sweep(t *testing.T) {
	pts, stream := utils.LPrism()
	p := mustPolyhedron(t, pts, stream)
	scalars := utils.GenerateRandomScalars(len(pts), 5)
	lo, hi := floats.Min(scalars), floats.Max(scalars)
	p.generateEdges()

	const steps = 20
	for i := 0; i <= steps; i++ {
		value := lo - 0.5 + (hi-lo+1)*float64(i)/steps
		target, _ := newTarget(t)
		c, err := p.newCutter(value, scalars, target)
		if err != nil {
			t.Fatalf("newCutter(%v) error = %v, want nil", value, err)
		}

		onContour := 0
		for j, l := range c.labels {
			switch {
			case l == 0:
				onContour++
			case l == 1 && scalars[j] <= value, l == -1 && scalars[j] >= value:
				t.Errorf("value %v: point %d with scalar %v labelled %d", value, j, scalars[j], l)
			case l != 1 && l != -1:
				t.Errorf("value %v: point %d labelled %d, want one of -1, 0, 1", value, j, l)
			}
		}
		for _, e := range p.edges {
			if c.labels[e[0]]*c.labels[e[1]] == -1 {
				onContour++
			}
		}
		if (i == 0 || i == steps) && onContour != 0 {
			t.Errorf("value %v beyond the scalar range has %d contour points, want 0", value, onContour)
		}
	}
}

func TestLabels_Band(t *testing.T) {
	pts, stream := utils.UnitTetra()
	p := mustPolyhedron(t, pts, stream)
	target, _ := newTarget(t)

	c, err := p.newCutter(0.5, []float64{0, 1, 0.5 + 1e-8, 0.5 - 1e-3}, target)
	if err != nil {
		t.Fatalf("newCutter() error = %v, want nil", err)
	}
	if diff := cmp.Diff([]int{-1, 1, 0, -1}, c.labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestContour(t *testing.T) {
	tests := []struct {
		name      string
		shape     shape
		n         r3.Vector
		value     float64
		wantSizes []int
		wantArea  float64
	}{
		{"cube axis plane", cubeShape, r3.Vector{X: 1}, 0.5, []int{4}, 1},
		{"cube hexagon", cubeShape, r3.Vector{X: 1, Y: 1, Z: 1}, 1.5, []int{6}, 3 * math.Sqrt(3) / 4},
		{"cube pentagon", cubeShape, r3.Vector{X: 1, Y: 2, Z: 0.5}, 1.2, []int{5}, 0},
		{"cube through vertices", cubeShape, r3.Vector{X: 1, Y: 1}, 1, []int{4}, math.Sqrt2},
		{"tetra", tetraShape, r3.Vector{X: 1}, 0.25, []int{3}, 0.28125},
		{"prism", prismShape, r3.Vector{Z: 1}, 0.3, []int{3}, 0.5},
		{"L prism arm", lPrismShape, r3.Vector{X: 1}, 1.5, []int{4}, 1},
		{"L prism across", lPrismShape, r3.Vector{Y: 1}, 0.5, []int{4}, 2},
		{"L prism concave section", lPrismShape, r3.Vector{Z: 1}, 0.5, []int{6}, 3},
		{"L prism two loops", lPrismShape, r3.Vector{X: 1, Y: 1}, 2.5, []int{4, 4}, math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, stream := tt.shape.gen()
			p := mustPolyhedron(t, pts, stream)
			target, loc := newTarget(t)

			polys, err := p.Contour(tt.value, linearScalars(pts, tt.n, 0), target)
			if err != nil {
				t.Fatalf("Contour() error = %v, want nil", err)
			}
			sizes := make([]int, len(polys))
			for i, poly := range polys {
				sizes[i] = len(poly)
			}
			if diff := cmp.Diff(tt.wantSizes, sizes); diff != "" {
				t.Fatalf("polygon sizes mismatch (-want +got):\n%s", diff)
			}
			if got := target.Polys.NumberOfCells(); got != len(polys) {
				t.Errorf("target.Polys has %d cells, want %d", got, len(polys))
			}

			unit := tt.n.Normalize()
			area := 0.0
			for i, poly := range polys {
				cell, err := target.Polys.Cell(i)
				if err != nil {
					t.Fatalf("Polys.Cell(%d) error = %v, want nil", i, err)
				}
				if diff := cmp.Diff(poly, cell); diff != "" {
					t.Errorf("Polys.Cell(%d) mismatch (-want +got):\n%s", i, diff)
				}

				loop := make([]r3.Vector, len(poly))
				for j, id := range poly {
					loop[j] = loc.Point(id)
					if d := tt.n.Dot(loop[j]) - tt.value; math.Abs(d) > 1e-9 {
						t.Errorf("polygon %d point %v is %v off the iso-surface", i, loop[j], d)
					}
				}
				n := geom.PolygonNormal(loop)
				if n.Dot(unit) <= 0 {
					t.Errorf("polygon %d normal %v does not face increasing scalar %v", i, n, tt.n)
				}
				area += n.Norm() / 2
			}
			if tt.wantArea > 0 {
				if diff := cmp.Diff(tt.wantArea, area, approx(1e-9)); diff != "" {
					t.Errorf("contour area mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestContour_Attributes(t *testing.T) {
	pts, stream := utils.UnitCube()
	p := mustPolyhedron(t, pts, stream)
	scalars := linearScalars(pts, r3.Vector{X: 1, Y: 2, Z: 0.5}, 0)

	target, _ := newTarget(t)
	pd := attrib.NewInterpolator(attrib.NewScalars("s", scalars))
	cd := attrib.NewInterpolator(attrib.NewScalars("cell", []float64{7, 42}))
	target.PointData, target.CellData, target.CellID = pd, cd, 1

	polys, err := p.Contour(1.2, scalars, target)
	if err != nil {
		t.Fatalf("Contour() error = %v, want nil", err)
	}
	if len(polys) != 1 {
		t.Fatalf("Contour() returned %d polygons, want 1", len(polys))
	}
	for _, id := range polys[0] {
		if diff := cmp.Diff(1.2, pd.Out[0].Tuple(id)[0], approx(1e-12)); diff != "" {
			t.Errorf("scalar at output point %d mismatch (-want +got):\n%s", id, diff)
		}
	}
	if diff := cmp.Diff([]float64{42}, cd.Out[0].Data); diff != "" {
		t.Errorf("cell data mismatch (-want +got):\n%s", diff)
	}
}

func TestContour_FastPath(t *testing.T) {
	for _, sh := range []shape{cubeShape, tetraShape, lPrismShape} {
		t.Run(sh.name, func(t *testing.T) {
			pts, stream := sh.gen()
			p := mustPolyhedron(t, pts, stream)
			scalars := linearScalars(pts, r3.Vector{X: 1}, 0)

			for _, value := range []float64{-1, 3} {
				target, loc := newTarget(t)
				polys, err := p.Contour(value, scalars, target)
				if err != nil {
					t.Fatalf("Contour(%v) error = %v, want nil", value, err)
				}
				if len(polys) != 0 || target.Polys != nil || loc.NumberOfPoints() != 0 {
					t.Errorf("Contour(%v) = %v with %d points, want empty", value, polys, loc.NumberOfPoints())
				}
			}
		})
	}
}

func TestContour_Errors(t *testing.T) {
	cubePts, cubeStream := utils.UnitCube()
	cubeFaces, _ := DecodePolyhedron(cubeStream)
	scalars := linearScalars(cubePts, r3.Vector{Z: 1}, 0)

	twoPointFace := append([][]int{{0, 1}}, cubeFaces...)
	// Drop the x = 1 face so the edge (1, 5) borders a single face.
	openCube := append([][]int(nil), cubeFaces[:5]...)

	tests := []struct {
		name    string
		stream  []int
		scalars []float64
		target  *Target
		wantErr error
	}{
		{"two point face", encodePolyhedron(twoPointFace), scalars, nil, ErrMalformedTopology},
		{"edge with one face", encodePolyhedron(openCube), scalars, nil, ErrMalformedTopology},
		{"short scalars", cubeStream, scalars[:7], nil, ErrScalarsLength},
		{"no point inserter", cubeStream, scalars, &Target{}, ErrDegenerateGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolyhedron(t, cubePts, tt.stream)
			target := tt.target
			if target == nil {
				target, _ = newTarget(t)
			}
			if _, err := p.Contour(0.5, tt.scalars, target); !errors.Is(err, tt.wantErr) {
				t.Errorf("Contour() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("no faces", func(t *testing.T) {
		target, _ := newTarget(t)
		if _, err := mustNew(t).Contour(0, nil, target); !errors.Is(err, ErrMalformedTopology) {
			t.Errorf("Contour() error = %v, want %v", err, ErrMalformedTopology)
		}
	})
}

func TestContour_DuplicatePoints(t *testing.T) {
	pts, stream := utils.UnitCube()
	faces, _ := DecodePolyhedron(stream)
	// Point 8 repeats point 6 and takes its place on the top face.
	pts = append(pts, pts[6])
	faces[1] = []int{4, 5, 6, 8, 7}

	p := mustPolyhedron(t, pts, encodePolyhedron(faces))
	target, _ := newTarget(t)
	polys, err := p.Contour(0.5, linearScalars(pts, r3.Vector{X: 1}, 0), target)
	if err != nil {
		t.Fatalf("Contour() error = %v, want nil", err)
	}
	if len(polys) != 1 || len(polys[0]) != 4 {
		t.Errorf("Contour() = %v, want one quad", polys)
	}
}

func TestContour_RandomPlanes(t *testing.T) {
	for _, sh := range []shape{cubeShape, prismShape, lPrismShape} {
		t.Run(sh.name, func(t *testing.T) {
			pts, stream := sh.gen()
			p := mustPolyhedron(t, pts, stream, WithMergeTolerance(1e-4))
			p.generateEdges()

			for seed := int64(1); seed <= 300; seed++ {
				n, value, scalars := randomPlane(pts, seed)
				if nearCrossing(p.edges, scalars, value, 1e-3) {
					continue
				}
				target, loc := newTarget(t)
				polys, err := p.Contour(value, scalars, target)
				if err != nil {
					t.Errorf("Contour(%v, %v) error = %v, want nil", value, scalars, err)
					continue
				}
				if len(polys) == 0 {
					t.Errorf("Contour(%v, %v) returned no polygons", value, scalars)
				}
				if sh.name != lPrismShape.name && len(polys) != 1 {
					t.Errorf("Contour(%v, %v) returned %d polygons, want 1", value, scalars, len(polys))
				}
				for i, poly := range polys {
					loop := make([]r3.Vector, len(poly))
					for j, id := range poly {
						loop[j] = loc.Point(id)
						if d := n.Dot(loop[j]) - value; math.Abs(d) > 1e-9 {
							t.Errorf("Contour(%v, %v) polygon %d point %v is %v off the iso-surface", value, scalars, i, loop[j], d)
						}
					}
					if geom.PolygonNormal(loop).Dot(n) <= 0 {
						t.Errorf("Contour(%v, %v) polygon %d does not face increasing scalar", value, scalars, i)
					}
				}
			}
		})
	}
}

func TestContour_MergeTolerance(t *testing.T) {
	pts, stream := utils.UnitCube()
	scalars := linearScalars(pts, r3.Vector{X: 0.689, Y: 0.246, Z: 0.558}, 0)

	tests := []struct {
		name      string
		opts      []Option
		wantSizes []int
	}{
		// The crossing next to point 4 snaps onto it, lifting the loop off
		// its plane.
		{"default", nil, []int{3, 3}},
		{"no snap", []Option{WithMergeTolerance(1e-4)}, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolyhedron(t, pts, stream, tt.opts...)
			target, _ := newTarget(t)
			polys, err := p.Contour(0.55603, scalars, target)
			if err != nil {
				t.Fatalf("Contour() error = %v, want nil", err)
			}
			sizes := make([]int, len(polys))
			for i, poly := range polys {
				sizes[i] = len(poly)
			}
			if diff := cmp.Diff(tt.wantSizes, sizes); diff != "" {
				t.Errorf("polygon sizes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStripTriangles(t *testing.T) {
	want := [][]int{{0, 1, 5}, {5, 1, 4}, {1, 2, 4}, {4, 2, 3}}
	if diff := cmp.Diff(want, stripTriangles([]int{0, 1, 2, 3, 4, 5})); diff != "" {
		t.Errorf("stripTriangles() mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertBetween(t *testing.T) {
	tests := []struct {
		name   string
		a, b   int
		want   []int
		wantOk bool
	}{
		{"inner edge", 1, 2, []int{0, 1, 9, 2, 3}, true},
		{"reversed edge", 2, 1, []int{0, 1, 9, 2, 3}, true},
		{"closing edge", 3, 0, []int{0, 1, 2, 3, 9}, true},
		{"not an edge", 0, 2, []int{0, 1, 2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := insertBetween([]int{0, 1, 2, 3}, tt.a, tt.b, 9)
			if ok != tt.wantOk {
				t.Errorf("insertBetween() ok = %v, want %v", ok, tt.wantOk)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("insertBetween() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Benchmarks

func BenchmarkContour(b *testing.B) {
	pts, stream := utils.LPrism()
	p, err := New()
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	if err := p.Initialize(pts, utils.Identity(len(pts)), stream); err != nil {
		b.Fatalf("Initialize() error = %v", err)
	}
	scalars := linearScalars(pts, r3.Vector{X: 1, Y: 1}, 0)
	target := &Target{Points: &sink{}}

	for b.Loop() {
		if _, err := p.Contour(2.5, scalars, target); err != nil {
			b.Fatalf("Contour() error = %v", err)
		}
	}
}

// Helpers

// sink numbers points without merging them.
type sink struct {
	n int
}

func (s *sink) InsertUniquePoint(r3.Vector) (int, bool) {
	s.n++
	return s.n - 1, true
}

// nearCrossing reports whether value crosses an edge within frac of one of
// its ends, where crossings snap to the cell points.
func nearCrossing(edges [][2]int, scalars []float64, value, frac float64) bool {
	for _, e := range edges {
		a, b := scalars[e[0]], scalars[e[1]]
		if (a-value)*(b-value) > 0 {
			continue
		}
		if a == b {
			return true
		}
		if t := (value - a) / (b - a); t < frac || t > 1-frac {
			return true
		}
	}
	return false
}
