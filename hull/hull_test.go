// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/2dChan/polycell/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/markus-wa/quickhull-go/v2"
)

// Options

func TestWithEps(t *testing.T) {
	tests := []struct {
		name    string
		eps     float64
		wantErr bool
	}{
		{"eps positive", 0.5, false},
		{"eps zero", 0, true},
		{"eps negative", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{Eps: defaultEps}
			err := WithEps(tt.eps)(opts)
			if (err != nil) != tt.wantErr {
				errValMsg := "nil"
				if tt.wantErr {
					errValMsg = "non-nil"
				}
				t.Errorf("WithEps(%v) error = %v, want %v", tt.eps, err, errValMsg)
			}
			if err == nil && opts.Eps != tt.eps {
				t.Errorf("WithEps(%v) opts.Eps = %v, want %v", tt.eps, opts.Eps, tt.eps)
			}
		})
	}
}

// Hull

func TestNew_InsufficientPoints(t *testing.T) {
	pts := []r3.Vector{{}, {X: 1}, {Y: 1}}
	if _, err := New(pts); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("New(3 points) error = %v, want %v", err, ErrInsufficientPoints)
	}
}

func TestNew_Coplanar(t *testing.T) {
	pts := []r3.Vector{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {X: 0.5, Y: 0.5}}
	if _, err := New(pts); err == nil {
		t.Errorf("New(coplanar) error = nil, want non-nil")
	}
}

func TestNew_CubeVolume(t *testing.T) {
	pts, _ := utils.UnitCube()
	pts = append(pts, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
	h := mustNew(t, pts)

	if diff := cmp.Diff(1.0, h.Volume(), approx(1e-12)); diff != "" {
		t.Errorf("h.Volume() mismatch (-want +got):\n%s", diff)
	}
	want := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if diff := cmp.Diff(want, h.Vertices()); diff != "" {
		t.Errorf("h.Vertices() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_TrianglesOutward(t *testing.T) {
	h := mustNew(t, utils.GenerateRandomPoints(100, 0))
	center := r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}

	for i := range h.Triangles {
		a, b, c := h.TriangleVertices(i)
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Sub(center)) < 0 {
			t.Errorf("h.Triangles[%d] = %v is oriented inward", i, h.Triangles[i])
		}
	}
}

func TestHull_Tetrahedra(t *testing.T) {
	h := mustNew(t, utils.GenerateRandomPoints(50, 1))

	sum := 0.0
	for i, tet := range h.Tetrahedra() {
		p := [4]r3.Vector{}
		for j, id := range tet {
			p[j] = h.Points[id]
		}
		v := p[1].Sub(p[0]).Dot(p[2].Sub(p[0]).Cross(p[3].Sub(p[0]))) / 6
		if v <= 0 {
			t.Errorf("tetrahedron %d = %v volume = %v, want > 0", i, tet, v)
		}
		sum += v
	}
	if diff := cmp.Diff(h.Volume(), sum, approx(1e-9)); diff != "" {
		t.Errorf("sum of tetrahedra volumes mismatch (-want +got):\n%s", diff)
	}
}

func TestHull_TriangleVertices(t *testing.T) {
	assertPanic := func(h *Hull, in int) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("h.TriangleVertices(%d) did not panic, want panic", in)
			}
		}()
		h.TriangleVertices(in)
	}

	pts := utils.GenerateRandomPoints(3, 0)
	h := &Hull{Points: pts, Triangles: [][3]int{{0, 1, 2}}}

	want := [3]r3.Vector{pts[0], pts[1], pts[2]}
	a, b, c := h.TriangleVertices(0)
	if diff := cmp.Diff(want, [3]r3.Vector{a, b, c}); diff != "" {
		t.Errorf("h.TriangleVertices(0) mismatch (-want +got):\n%s", diff)
	}

	assertPanic(h, -1)
	assertPanic(h, len(h.Triangles))
}

// Benchmarks

func BenchmarkConvexHull(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4}
	for _, pointsCnt := range sizes {
		b.Run(fmt.Sprintf("N%d", pointsCnt), func(b *testing.B) {
			points := utils.GenerateRandomPoints(pointsCnt, 0)
			qh := new(quickhull.QuickHull)

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				qh.ConvexHull(points, true, true, 0)
			}
		})
	}
}

func BenchmarkTetrahedra(b *testing.B) {
	h, err := New(utils.GenerateRandomPoints(1000, 0))
	if err != nil {
		b.Fatalf("New(...) error = %v, want nil", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		h.Tetrahedra()
	}
}

// Helpers

func mustNew(t *testing.T, pts []r3.Vector) *Hull {
	t.Helper()
	h, err := New(pts)
	if err != nil {
		t.Fatalf("New(...) error = %v, want nil", err)
	}
	return h
}

func approx(tol float64) cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		return math.Abs(a-b) <= tol
	})
}
