// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package pointmerge implements an incremental point locator that merges
// points closer than a tolerance. Points are bucketed in a hashed uniform
// grid whose cell size equals the tolerance.
package pointmerge

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
)

const (
	defaultNumBuckets = 1024
)

type cellKey struct {
	X, Y, Z int
}

// Locator assigns consecutive ids to inserted points and returns the id of
// an existing point when a new one falls within Tolerance of it.
type Locator struct {
	tol      float64
	cellSize float64
	buckets  [][]int
	mask     int
	points   []r3.Vector
}

type Options struct {
	Tolerance  float64
	NumBuckets int
}

type Option func(*Options) error

// WithTolerance sets the merge distance. Zero merges exact duplicates only.
func WithTolerance(tol float64) Option {
	return func(o *Options) error {
		if tol < 0 || math.IsNaN(tol) {
			return errors.New("pointmerge: tolerance must be non-negative")
		}
		o.Tolerance = tol
		return nil
	}
}

// WithNumBuckets sets the hash table size; it is rounded up to a power of
// two.
func WithNumBuckets(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return errors.New("pointmerge: number of buckets must be positive")
		}
		o.NumBuckets = n
		return nil
	}
}

func New(setters ...Option) (*Locator, error) {
	opts := Options{
		NumBuckets: defaultNumBuckets,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	n := nextPowerOfTwo(opts.NumBuckets)
	l := &Locator{
		tol:      opts.Tolerance,
		cellSize: opts.Tolerance,
		buckets:  make([][]int, n),
		mask:     n - 1,
	}
	if l.cellSize == 0 {
		l.cellSize = 1
	}
	return l, nil
}

func (l *Locator) Tolerance() float64 {
	return l.tol
}

func (l *Locator) NumberOfPoints() int {
	return len(l.points)
}

// Points returns the inserted points indexed by id. The slice is owned by
// the locator.
func (l *Locator) Points() []r3.Vector {
	return l.points
}

func (l *Locator) Point(id int) r3.Vector {
	return l.points[id]
}

// InsertUniquePoint returns the id of a previously inserted point within
// the tolerance of x, or inserts x and reports isNew.
func (l *Locator) InsertUniquePoint(x r3.Vector) (int, bool) {
	if id := l.IsInsertedPoint(x); id >= 0 {
		return id, false
	}
	return l.InsertNextPoint(x), true
}

// InsertNextPoint inserts x without looking for duplicates.
func (l *Locator) InsertNextPoint(x r3.Vector) int {
	id := len(l.points)
	l.points = append(l.points, x)
	h := l.hashCell(l.worldToCell(x))
	l.buckets[h] = append(l.buckets[h], id)
	return id
}

// IsInsertedPoint returns the id of the closest inserted point within the
// tolerance of x, or -1.
func (l *Locator) IsInsertedPoint(x r3.Vector) int {
	key := l.worldToCell(x)
	if l.tol == 0 {
		for _, id := range l.buckets[l.hashCell(key)] {
			if l.points[id] == x {
				return id
			}
		}
		return -1
	}

	tol2 := l.tol * l.tol
	best, bestD := -1, math.Inf(1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				h := l.hashCell(cellKey{key.X + dx, key.Y + dy, key.Z + dz})
				for _, id := range l.buckets[h] {
					d := l.points[id].Sub(x).Norm2()
					if d <= tol2 && (d < bestD || (d == bestD && id < best)) {
						best, bestD = id, d
					}
				}
			}
		}
	}
	return best
}

func (l *Locator) worldToCell(p r3.Vector) cellKey {
	return cellKey{
		X: int(math.Floor(p.X / l.cellSize)),
		Y: int(math.Floor(p.Y / l.cellSize)),
		Z: int(math.Floor(p.Z / l.cellSize)),
	}
}

func (l *Locator) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & l.mask
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
