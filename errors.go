// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import "errors"

var (
	// ErrMalformedTopology is returned when the faces do not describe a
	// closed cell the contour walk can follow, e.g. a face with fewer than
	// three points or a crossing edge not shared by exactly two faces.
	ErrMalformedTopology = errors.New("polycell: malformed topology")
	// ErrMalformedFaceStream is returned by Initialize for a face stream
	// that overruns, references an unknown point id or does not match the
	// point arrays.
	ErrMalformedFaceStream = errors.New("polycell: malformed face stream")
	ErrIndexOutOfRange     = errors.New("polycell: index out of range")
	ErrScalarsLength       = errors.New("polycell: scalars length does not match number of points")
	ErrDegenerateGeometry  = errors.New("polycell: degenerate geometry")
)
