// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import "fmt"

// CellArray stores cells in the legacy layout [n, ids..., n, ids...]. A
// polyhedron cell is stored as its face stream, so its entry reads
// [len, numFaces, n0, ids..., n1, ids...].
type CellArray struct {
	Data []int
	// NOTE: Offset of each cell's length entry in Data.
	Offsets []int
}

func NewCellArray() *CellArray {
	return &CellArray{}
}

// InsertNextCell appends a cell and returns its id.
func (ca *CellArray) InsertNextCell(ids []int) int {
	ca.Offsets = append(ca.Offsets, len(ca.Data))
	ca.Data = append(ca.Data, len(ids))
	ca.Data = append(ca.Data, ids...)
	return len(ca.Offsets) - 1
}

func (ca *CellArray) NumberOfCells() int {
	return len(ca.Offsets)
}

// Cell returns the entries of the cell at index i, aliasing Data.
// It returns an error if the index is out of range.
func (ca *CellArray) Cell(i int) ([]int, error) {
	if i < 0 || i >= len(ca.Offsets) {
		return nil, fmt.Errorf("Cell: index %d out of range [0 %d): %w", i, len(ca.Offsets), ErrIndexOutOfRange)
	}
	off := ca.Offsets[i]
	return ca.Data[off+1 : off+1+ca.Data[off]], nil
}

// DecodePolyhedron splits a face stream [numFaces, n0, ids..., ...] into
// faces.
func DecodePolyhedron(cell []int) ([][]int, error) {
	it := newFaceIterator(cell)
	var faces [][]int
	for {
		f, ok := it.next()
		if !ok {
			break
		}
		faces = append(faces, append([]int(nil), f...))
	}
	if err := it.done(); err != nil {
		return nil, fmt.Errorf("DecodePolyhedron: %w: %w", ErrMalformedFaceStream, err)
	}
	return faces, nil
}

// encodePolyhedron builds the face stream of faces.
func encodePolyhedron(faces [][]int) []int {
	n := 1
	for _, f := range faces {
		n += len(f) + 1
	}
	stream := make([]int, 0, n)
	stream = append(stream, len(faces))
	for _, f := range faces {
		stream = append(stream, len(f))
		stream = append(stream, f...)
	}
	return stream
}
