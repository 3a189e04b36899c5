// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package attrib holds per-point and per-cell attribute arrays and the
// interpolator that copies or blends them while cells are cut.
package attrib

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Array is a growable array of fixed-width tuples.
type Array struct {
	Name          string
	NumComponents int
	Data          []float64
}

// NewArray returns an empty array with n components per tuple.
func NewArray(name string, n int) *Array {
	if n <= 0 {
		panic("NewArray: number of components must be positive")
	}
	return &Array{Name: name, NumComponents: n}
}

// NewScalars wraps values as a one-component array.
func NewScalars(name string, values []float64) *Array {
	return &Array{Name: name, NumComponents: 1, Data: values}
}

func (a *Array) Len() int {
	return len(a.Data) / a.NumComponents
}

// Tuple returns the i-th tuple, aliasing the array storage.
func (a *Array) Tuple(i int) []float64 {
	n := a.NumComponents
	return a.Data[i*n : (i+1)*n]
}

// SetTuple stores v at i, growing the array with zero tuples as needed.
func (a *Array) SetTuple(i int, v []float64) {
	if len(v) != a.NumComponents {
		panic(fmt.Sprintf("SetTuple: tuple has %d components, want %d", len(v), a.NumComponents))
	}
	if need := (i + 1) * a.NumComponents; need > len(a.Data) {
		a.Data = append(a.Data, make([]float64, need-len(a.Data))...)
	}
	copy(a.Tuple(i), v)
}

// Interpolator maps tuples from input arrays to the output arrays with the
// same index. It serves as both point and cell data collaborator.
type Interpolator struct {
	In  []*Array
	Out []*Array

	buf []float64
}

// NewInterpolator creates an output array for every input array.
func NewInterpolator(in ...*Array) *Interpolator {
	out := make([]*Array, len(in))
	for i, a := range in {
		out[i] = NewArray(a.Name, a.NumComponents)
	}
	return &Interpolator{In: in, Out: out}
}

// CopyData copies input tuple src to output tuple dst.
func (p *Interpolator) CopyData(src, dst int) {
	for i, in := range p.In {
		p.Out[i].SetTuple(dst, in.Tuple(src))
	}
}

// InterpolateEdge stores (1-t)*a + t*b in output tuple dst.
func (p *Interpolator) InterpolateEdge(a, b int, t float64, dst int) {
	for i, in := range p.In {
		p.buf = append(p.buf[:0], in.Tuple(b)...)
		floats.Sub(p.buf, in.Tuple(a))
		floats.Scale(t, p.buf)
		floats.Add(p.buf, in.Tuple(a))
		p.Out[i].SetTuple(dst, p.buf)
	}
}

// InterpolateWeights stores the weighted sum of input tuples ids in output
// tuple dst.
func (p *Interpolator) InterpolateWeights(ids []int, weights []float64, dst int) {
	if len(ids) != len(weights) {
		panic("InterpolateWeights: ids and weights differ in length")
	}
	for i, in := range p.In {
		p.buf = append(p.buf[:0], make([]float64, in.NumComponents)...)
		for j, id := range ids {
			floats.AddScaled(p.buf, weights[j], in.Tuple(id))
		}
		p.Out[i].SetTuple(dst, p.buf)
	}
}
