// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"errors"
	"math"
	"testing"

	"github.com/2dChan/polycell/primitive"
	"github.com/2dChan/polycell/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"
)

func TestInterpolateFunctions(t *testing.T) {
	cubePts, cubeStream := utils.UnitCube()
	lPts, lStream := utils.LPrism()
	prismPts, prismStream := utils.Prism()

	tests := []struct {
		name   string
		pts    []r3.Vector
		stream []int
		xs     []r3.Vector
	}{
		{"cube", cubePts, cubeStream, []r3.Vector{
			{X: 0.5, Y: 0.5, Z: 0.5}, {X: 0.1, Y: 0.2, Z: 0.7}, {X: 0.9, Y: 0.9, Z: 0.05},
		}},
		{"prism", prismPts, prismStream, []r3.Vector{
			{X: 0.2, Y: 0.2, Z: 0.5}, {X: 0.6, Y: 0.1, Z: 0.9},
		}},
		{"L prism", lPts, lStream, []r3.Vector{
			{X: 0.5, Y: 1.5, Z: 0.5}, {X: 1.5, Y: 0.5, Z: 0.3}, {X: 0.3, Y: 0.3, Z: 0.3},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolyhedron(t, tt.pts, tt.stream)
			for _, x := range tt.xs {
				w, err := p.InterpolateFunctions(x)
				if err != nil {
					t.Fatalf("InterpolateFunctions(%v) error = %v, want nil", x, err)
				}
				if len(w) != len(tt.pts) {
					t.Fatalf("InterpolateFunctions(%v) returned %d weights, want %d", x, len(w), len(tt.pts))
				}
				if diff := cmp.Diff(1.0, floats.Sum(w), approx(1e-12)); diff != "" {
					t.Errorf("sum of weights at %v mismatch (-want +got):\n%s", x, diff)
				}
				if diff := cmp.Diff(x, weighted(tt.pts, w), approx(1e-9)); diff != "" {
					t.Errorf("weighted points at %v mismatch (-want +got):\n%s", x, diff)
				}
			}
		})
	}
}

func TestInterpolateFunctions_Vertex(t *testing.T) {
	p := mustCube(t)
	w, err := p.InterpolateFunctions(r3.Vector{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("InterpolateFunctions() error = %v, want nil", err)
	}
	want := []float64{0, 0, 1, 0, 0, 0, 0, 0}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Errorf("InterpolateFunctions() mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolateFunctions_NoFaces(t *testing.T) {
	p := mustNew(t)
	if _, err := p.InterpolateFunctions(r3.Vector{}); !errors.Is(err, ErrMalformedTopology) {
		t.Errorf("InterpolateFunctions() error = %v, want %v", err, ErrMalformedTopology)
	}
}

func TestEvaluatePosition(t *testing.T) {
	p := mustCube(t)

	tests := []struct {
		name string
		x    r3.Vector
		want primitive.Evaluation
	}{
		{
			"inside",
			r3.Vector{X: 0.25, Y: 0.5, Z: 0.75},
			primitive.Evaluation{
				ClosestPoint: r3.Vector{X: 0.25, Y: 0.5, Z: 0.75},
				PCoords:      r3.Vector{X: 0.25, Y: 0.5, Z: 0.75},
				Inside:       true,
			},
		},
		{
			"outside",
			r3.Vector{X: 2, Y: 0.5, Z: 0.5},
			primitive.Evaluation{
				ClosestPoint: r3.Vector{X: 1, Y: 0.5, Z: 0.5},
				PCoords:      r3.Vector{X: 2, Y: 0.5, Z: 0.5},
				Dist2:        1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.EvaluatePosition(tt.x)
			if err != nil {
				t.Fatalf("EvaluatePosition(%v) error = %v, want nil", tt.x, err)
			}
			got := primitive.Evaluation{
				ClosestPoint: ev.ClosestPoint,
				PCoords:      ev.PCoords,
				Dist2:        ev.Dist2,
				Inside:       ev.Inside,
			}
			if diff := cmp.Diff(tt.want, got, approx(1e-9)); diff != "" {
				t.Errorf("EvaluatePosition(%v) mismatch (-want +got):\n%s", tt.x, diff)
			}
			if diff := cmp.Diff(1.0, floats.Sum(ev.Weights), approx(1e-12)); diff != "" {
				t.Errorf("sum of weights mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParametricCoords(t *testing.T) {
	pts, stream := utils.LPrism()
	p := mustPolyhedron(t, pts, stream)

	x := r3.Vector{X: 1, Y: 0.5, Z: 0.25}
	pc := p.ParametricCoords(x)
	if diff := cmp.Diff(r3.Vector{X: 0.5, Y: 0.25, Z: 0.25}, pc, approx(1e-12)); diff != "" {
		t.Errorf("ParametricCoords() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(x, p.PositionFromParametric(pc), approx(1e-12)); diff != "" {
		t.Errorf("PositionFromParametric() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerivatives(t *testing.T) {
	pts, stream := utils.UnitCube()
	p := mustPolyhedron(t, pts, stream)

	// Two components: a linear field and a constant one.
	values := make([]float64, 0, 2*len(pts))
	for _, x := range pts {
		values = append(values, 2*x.X-x.Y+3*x.Z, 5)
	}
	got, err := p.Derivatives(r3.Vector{X: 0.4, Y: 0.5, Z: 0.6}, values, 2)
	if err != nil {
		t.Fatalf("Derivatives() error = %v, want nil", err)
	}
	want := []float64{2, -1, 3, 0, 0, 0}
	if diff := cmp.Diff(want, got, approx(1e-6)); diff != "" {
		t.Errorf("Derivatives() mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.Derivatives(r3.Vector{}, values[:3], 1); !errors.Is(err, ErrScalarsLength) {
		t.Errorf("Derivatives(short values) error = %v, want %v", err, ErrScalarsLength)
	}
}

func TestCellBoundary(t *testing.T) {
	p := mustCube(t)

	tests := []struct {
		name       string
		pc         r3.Vector
		wantIDs    []int
		wantInside bool
	}{
		{"near bottom", r3.Vector{X: 0.5, Y: 0.5, Z: 0.1}, []int{0, 3, 2, 1}, true},
		{"near right", r3.Vector{X: 0.95, Y: 0.4, Z: 0.5}, []int{1, 2, 6, 5}, true},
		{"above top", r3.Vector{X: 0.5, Y: 0.5, Z: 1.2}, []int{4, 5, 6, 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, inside := p.CellBoundary(tt.pc)
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("CellBoundary(%v) ids mismatch (-want +got):\n%s", tt.pc, diff)
			}
			if inside != tt.wantInside {
				t.Errorf("CellBoundary(%v) inside = %v, want %v", tt.pc, inside, tt.wantInside)
			}
		})
	}
}

func TestIsConvex(t *testing.T) {
	cubePts, cubeStream := utils.UnitCube()
	tetPts, tetStream := utils.UnitTetra()
	prismPts, prismStream := utils.Prism()
	lPts, lStream := utils.LPrism()
	openFaces, _ := DecodePolyhedron(cubeStream)

	tests := []struct {
		name   string
		pts    []r3.Vector
		stream []int
		want   bool
	}{
		{"cube", cubePts, cubeStream, true},
		{"tetra", tetPts, tetStream, true},
		{"prism", prismPts, prismStream, true},
		{"L prism", lPts, lStream, false},
		{"open cube", cubePts, encodePolyhedron(openFaces[1:]), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPolyhedron(t, tt.pts, tt.stream)
			if got := p.IsConvex(); got != tt.want {
				t.Errorf("IsConvex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangulate(t *testing.T) {
	pts, stream := utils.Prism()
	ids := make([]int, len(pts))
	for i := range ids {
		ids[i] = 100 + i
	}
	faces, _ := DecodePolyhedron(stream)
	for _, f := range faces {
		for i := range f {
			f[i] += 100
		}
	}
	p := mustNew(t)
	if err := p.Initialize(pts, ids, encodePolyhedron(faces)); err != nil {
		t.Fatalf("Initialize() error = %v, want nil", err)
	}

	tets, err := p.Triangulate()
	if err != nil {
		t.Fatalf("Triangulate() error = %v, want nil", err)
	}
	vol := 0.0
	for _, tet := range tets {
		var te primitive.Tetra
		for j, id := range tet {
			if id < 100 || id >= 100+len(pts) {
				t.Fatalf("tetrahedron %v has id %d outside the cell", tet, id)
			}
			te.Points[j] = pts[id-100]
		}
		vol += math.Abs(te.Volume())
	}
	if diff := cmp.Diff(0.5, vol, approx(1e-12)); diff != "" {
		t.Errorf("Triangulate() volume mismatch (-want +got):\n%s", diff)
	}
}

func TestTriangulate_FacePoint(t *testing.T) {
	pts, stream := utils.UnitCube()
	faces := mustDecode(t, stream)
	// Split the bottom face around its center.
	pts = append(pts, r3.Vector{X: 0.5, Y: 0.5})
	faces = append(faces[1:], []int{8, 0, 3}, []int{8, 3, 2}, []int{8, 2, 1}, []int{8, 1, 0})
	p := mustPolyhedron(t, pts, encodePolyhedron(faces))

	tets, err := p.Triangulate()
	if err != nil {
		t.Fatalf("Triangulate() error = %v, want nil", err)
	}
	vol := 0.0
	for _, tet := range tets {
		var te primitive.Tetra
		for j, id := range tet {
			te.Points[j] = pts[id]
		}
		if v := te.Volume(); v <= 0 {
			t.Errorf("tetrahedron %v volume = %v, want positive", tet, v)
		}
		vol += te.Volume()
	}
	if diff := cmp.Diff(1.0, vol, approx(1e-12)); diff != "" {
		t.Errorf("Triangulate() volume mismatch (-want +got):\n%s", diff)
	}
}

// Benchmarks

func BenchmarkInterpolateFunctions(b *testing.B) {
	pts, stream := utils.LPrism()
	p, err := New()
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	if err := p.Initialize(pts, utils.Identity(len(pts)), stream); err != nil {
		b.Fatalf("Initialize() error = %v", err)
	}
	x := r3.Vector{X: 0.5, Y: 1.5, Z: 0.5}

	for b.Loop() {
		if _, err := p.InterpolateFunctions(x); err != nil {
			b.Fatalf("InterpolateFunctions() error = %v", err)
		}
	}
}

// Helpers

func weighted(pts []r3.Vector, w []float64) r3.Vector {
	var x r3.Vector
	for i, p := range pts {
		x = x.Add(p.Mul(w[i]))
	}
	return x
}
