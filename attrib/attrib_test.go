// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package attrib

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestArray_SetTuple_Grows(t *testing.T) {
	a := NewArray("v", 3)
	a.SetTuple(2, []float64{7, 8, 9})

	if got, want := a.Len(), 3; got != want {
		t.Errorf("a.Len() = %v, want %v", got, want)
	}
	want := []float64{0, 0, 0, 0, 0, 0, 7, 8, 9}
	if diff := cmp.Diff(want, a.Data); diff != "" {
		t.Errorf("a.Data mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolator(t *testing.T) {
	s := NewScalars("s", []float64{0, 10, 20})
	v := &Array{Name: "v", NumComponents: 2, Data: []float64{0, 0, 2, 4, 4, 8}}
	p := NewInterpolator(s, v)

	p.CopyData(2, 0)
	p.InterpolateEdge(0, 1, 0.25, 1)
	p.InterpolateWeights([]int{0, 1, 2}, []float64{0.5, 0.25, 0.25}, 2)

	approx := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff([]float64{20, 2.5, 7.5}, p.Out[0].Data, approx); diff != "" {
		t.Errorf("scalars mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{4, 8, 0.5, 1, 1.5, 3}, p.Out[1].Data, approx); diff != "" {
		t.Errorf("vectors mismatch (-want +got):\n%s", diff)
	}
	if p.Out[1].Name != "v" {
		t.Errorf("p.Out[1].Name = %q, want %q", p.Out[1].Name, "v")
	}
}

func TestArray_SetTuple_WrongWidth(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("a.SetTuple(...) did not panic, want panic")
		}
	}()
	NewArray("v", 2).SetTuple(0, []float64{1})
}
