// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package polycell

import (
	"errors"
	"log"
	"math"
)

const (
	defaultMergeTolerance       = 0.01
	minMergeTolerance           = 1e-4
	maxMergeTolerance           = 0.25
	defaultRandomSeed           = 1
	defaultMaxRays              = 10
	defaultVoteMargin           = 3
	defaultLocatorFaceThreshold = 25
)

type Options struct {
	// MergeTolerance snaps an edge crossing to the nearer endpoint when its
	// parameter lies within this fraction of the edge ends.
	MergeTolerance float64
	RandomSeed     int64
	// MaxRays and VoteMargin bound the ray casting of IsInside.
	MaxRays    int
	VoteMargin int
	// LocatorFaceThreshold is the face count above which ray casting goes
	// through a cell locator over the faces.
	LocatorFaceThreshold int
	// Logger receives diagnostics for aborted contour and clip calls. Nil
	// means silent.
	Logger *log.Logger
}

type Option func(*Options) error

// WithMergeTolerance sets the crossing snap fraction. Values are clamped to
// [1e-4, 0.25].
//
// A snapped crossing moves to a cell point that is generally off the
// iso-surface. The cut loop through it then fails the planarity test of
// Contour, whose eigenvalue ratio threshold is 1e-12, and is emitted as
// triangles rather than one polygon. Lower the tolerance when single
// polygons matter more than avoiding slivers.
func WithMergeTolerance(tol float64) Option {
	return func(o *Options) error {
		if math.IsNaN(tol) {
			return errors.New("WithMergeTolerance: tolerance is NaN")
		}
		o.MergeTolerance = max(minMergeTolerance, min(tol, maxMergeTolerance))
		return nil
	}
}

func WithRandomSeed(seed int64) Option {
	return func(o *Options) error {
		o.RandomSeed = seed
		return nil
	}
}

func WithMaxRays(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return errors.New("WithMaxRays: number of rays must be positive")
		}
		o.MaxRays = n
		return nil
	}
}

func WithVoteMargin(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return errors.New("WithVoteMargin: margin must be positive")
		}
		o.VoteMargin = n
		return nil
	}
}

func WithLocatorFaceThreshold(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return errors.New("WithLocatorFaceThreshold: threshold must be non-negative")
		}
		o.LocatorFaceThreshold = n
		return nil
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}
