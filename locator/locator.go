// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package locator implements an octree cell locator: a uniform subdivision
// of a dataset's bounds into 8^level leaf octants, each holding the ids of
// the cells whose bounds overlap it. Interior octants only record whether
// any leaf below them is occupied.
package locator

import (
	"errors"
	"fmt"
	"math"

	"github.com/2dChan/polycell/geom"
	"github.com/2dChan/polycell/primitive"
	"github.com/golang/geo/r3"
)

const (
	defaultCellsPerBucket = 25
	defaultMaxLevel       = 8
	maxLevelLimit         = 10
)

var (
	ErrNoCells    = errors.New("locator: dataset has no cells")
	ErrNilDataset = errors.New("locator: dataset is nil")
)

// Dataset is the cell container a locator indexes. Version must change
// whenever the cell set or its geometry changes.
type Dataset interface {
	NumberOfCells() int
	Bounds() geom.Bounds
	CellBounds(id int) geom.Bounds
	EvaluatePosition(id int, x r3.Vector) (primitive.Evaluation, error)
	IntersectWithLine(id int, p0, p1 r3.Vector, tol float64) (primitive.Hit, bool)
	Version() uint64
}

type Options struct {
	CellsPerBucket  int
	MaxLevel        int
	Level           int
	Automatic       bool
	Tolerance       float64
	CacheCellBounds bool
}

type Option func(*Options) error

// WithCellsPerBucket sets the target average number of cells per leaf used
// to pick the depth automatically.
func WithCellsPerBucket(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return errors.New("locator: cells per bucket must be positive")
		}
		o.CellsPerBucket = n
		return nil
	}
}

func WithMaxLevel(level int) Option {
	return func(o *Options) error {
		if level < 0 || level > maxLevelLimit {
			return fmt.Errorf("locator: max level %d out of range [0 %d]", level, maxLevelLimit)
		}
		o.MaxLevel = level
		return nil
	}
}

// WithLevel fixes the octree depth and disables automatic depth selection.
// The level is still clamped to MaxLevel at build time.
func WithLevel(level int) Option {
	return func(o *Options) error {
		if level < 0 || level > maxLevelLimit {
			return fmt.Errorf("locator: level %d out of range [0 %d]", level, maxLevelLimit)
		}
		o.Level = level
		o.Automatic = false
		return nil
	}
}

// WithTolerance sets the distance within which FindCell accepts a point
// lying just outside a cell.
func WithTolerance(tol float64) Option {
	return func(o *Options) error {
		if tol < 0 || math.IsNaN(tol) {
			return errors.New("locator: tolerance must be non-negative")
		}
		o.Tolerance = tol
		return nil
	}
}

// WithCacheCellBounds keeps a copy of every cell's bounds after the build
// instead of asking the dataset on each query.
func WithCacheCellBounds(cache bool) Option {
	return func(o *Options) error {
		o.CacheCellBounds = cache
		return nil
	}
}

// Result is the outcome of a closest point query.
type Result struct {
	Point  r3.Vector
	CellID int
	SubID  int
	Dist2  float64
	Inside bool
}

// LineHit is the first intersection of a segment with the indexed cells.
type LineHit struct {
	T       float64
	X       r3.Vector
	PCoords r3.Vector
	SubID   int
	CellID  int
}

type CellLocator struct {
	opts Options
	ds   Dataset

	built        bool
	builtVersion uint64
	builtCells   int

	level      int
	ndivs      int
	numOctants int
	leafStart  int
	bounds     geom.Bounds
	h          [3]float64

	occupied   []bool
	leaves     [][]int
	cellBounds []geom.Bounds

	visited     []uint8
	queryNumber uint8
}

func New(ds Dataset, setters ...Option) (*CellLocator, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	opts := Options{
		CellsPerBucket: defaultCellsPerBucket,
		MaxLevel:       defaultMaxLevel,
		Automatic:      true,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	return &CellLocator{opts: opts, ds: ds}, nil
}

// Dataset returns the indexed dataset.
func (l *CellLocator) Dataset() Dataset {
	return l.ds
}

// Level returns the depth of the built octree.
func (l *CellLocator) Level() int {
	return l.level
}

// NumberOfDivisions returns the number of leaf octants along each axis.
func (l *CellLocator) NumberOfDivisions() int {
	return l.ndivs
}

// NumberOfBuckets returns the total number of octants on all levels.
func (l *CellLocator) NumberOfBuckets() int {
	return l.numOctants
}

// Cells returns the cell ids stored in octant id, or nil when id is not a
// non-empty leaf.
func (l *CellLocator) Cells(id int) []int {
	if id < l.leafStart || id >= l.numOctants {
		return nil
	}
	return l.leaves[id-l.leafStart]
}

// Bounds returns the padded bounds covered by the octree.
func (l *CellLocator) Bounds() geom.Bounds {
	return l.bounds
}

// Invalidate drops the built structure; the next query rebuilds it.
func (l *CellLocator) Invalidate() {
	l.built = false
}

// BuildLocator subdivides the dataset bounds and distributes the cells over
// the leaf octants. It is a no-op when the dataset did not change since the
// last build.
func (l *CellLocator) BuildLocator() error {
	n := l.ds.NumberOfCells()
	if l.built && l.builtVersion == l.ds.Version() && l.builtCells == n {
		return nil
	}
	if n < 1 {
		return ErrNoCells
	}

	l.bounds = paddedBounds(l.ds.Bounds())

	level := l.opts.Level
	if l.opts.Automatic {
		level = int(math.Ceil(math.Log(float64(n)/float64(l.opts.CellsPerBucket)) / math.Log(8)))
	}
	level = max(0, min(level, l.opts.MaxLevel))

	l.level = level
	l.ndivs = 1 << level
	l.numOctants = 0
	for m, p := 0, 1; m <= level; m, p = m+1, p*8 {
		l.numOctants += p
	}
	numLeaves := l.ndivs * l.ndivs * l.ndivs
	l.leafStart = l.numOctants - numLeaves
	l.occupied = make([]bool, l.numOctants)
	l.leaves = make([][]int, numLeaves)
	for i := range 3 {
		l.h[i] = l.bounds.Axis(i).Length() / float64(l.ndivs)
	}

	if l.opts.CacheCellBounds {
		l.cellBounds = make([]geom.Bounds, n)
	} else {
		l.cellBounds = nil
	}

	for id := range n {
		cb := l.ds.CellBounds(id)
		if l.cellBounds != nil {
			l.cellBounds[id] = cb
		}
		lo, hi := l.octantRange(cb)
		for k := lo[2]; k <= hi[2]; k++ {
			for j := lo[1]; j <= hi[1]; j++ {
				for i := lo[0]; i <= hi[0]; i++ {
					leaf := l.leafIndex(i, j, k)
					l.leaves[leaf] = append(l.leaves[leaf], id)
					l.markParents(i, j, k)
				}
			}
		}
	}

	l.visited = make([]uint8, n)
	l.queryNumber = 0
	l.built = true
	l.builtVersion = l.ds.Version()
	l.builtCells = n
	return nil
}

// markParents flags the leaf (i, j, k) and its ancestors as occupied.
func (l *CellLocator) markParents(i, j, k int) {
	l.occupied[l.leafStart+l.leafIndex(i, j, k)] = true
	n := l.ndivs
	for m := l.level - 1; m >= 0; m-- {
		i, j, k = i>>1, j>>1, k>>1
		n >>= 1
		idx := levelOffset(m) + i + j*n + k*n*n
		if l.occupied[idx] {
			return
		}
		l.occupied[idx] = true
	}
}

// levelOffset returns the index of the first octant of level m.
func levelOffset(m int) int {
	off := 0
	for q, p := 0, 1; q < m; q, p = q+1, p*8 {
		off += p
	}
	return off
}

func (l *CellLocator) leafIndex(i, j, k int) int {
	return i + j*l.ndivs + k*l.ndivs*l.ndivs
}

// octantRange returns the leaf index range overlapped by b, widened by one
// hundredth of an octant.
func (l *CellLocator) octantRange(b geom.Bounds) ([3]int, [3]int) {
	var lo, hi [3]int
	for a := range 3 {
		iv := b.Axis(a)
		base := l.bounds.Axis(a).Lo
		hTol := l.h[a] / 100
		lo[a] = l.clampDiv(int((iv.Lo - base - hTol) / l.h[a]))
		hi[a] = l.clampDiv(int((iv.Hi - base + hTol) / l.h[a]))
	}
	return lo, hi
}

// bucketOf returns the leaf coordinates of x, clamped to the grid.
func (l *CellLocator) bucketOf(x r3.Vector) [3]int {
	var ijk [3]int
	for a := range 3 {
		ijk[a] = l.clampDiv(int((geom.Component(x, a) - l.bounds.Axis(a).Lo) / l.h[a]))
	}
	return ijk
}

func (l *CellLocator) clampDiv(i int) int {
	return max(0, min(i, l.ndivs-1))
}

// octantBounds returns the box of leaf (i, j, k).
func (l *CellLocator) octantBounds(ijk [3]int) geom.Bounds {
	lo := l.bounds.Min()
	var bmin, bmax r3.Vector
	for a := range 3 {
		base := geom.Component(lo, a)
		bmin = geom.WithComponent(bmin, a, base+float64(ijk[a])*l.h[a])
		bmax = geom.WithComponent(bmax, a, base+float64(ijk[a]+1)*l.h[a])
	}
	return geom.BoundsFromMinMax(bmin, bmax)
}

func (l *CellLocator) boundsOf(id int) geom.Bounds {
	if l.cellBounds != nil {
		return l.cellBounds[id]
	}
	return l.ds.CellBounds(id)
}

// nextQuery starts a new visitation stamp, clearing the marks when the
// counter wraps.
func (l *CellLocator) nextQuery() {
	l.queryNumber++
	if l.queryNumber == 0 {
		clear(l.visited)
		l.queryNumber = 1
	}
}

func (l *CellLocator) markVisited(id int) bool {
	if l.visited[id] == l.queryNumber {
		return false
	}
	l.visited[id] = l.queryNumber
	return true
}

// paddedBounds widens flat axes so every octant has a positive width.
func paddedBounds(b geom.Bounds) geom.Bounds {
	length := b.Diagonal()
	for a := range 3 {
		iv := b.Axis(a)
		switch {
		case length == 0:
			iv = iv.Expanded(1)
		case iv.Length() <= length/1000:
			iv = iv.Expanded(length / 100)
		}
		b = b.WithAxis(a, iv)
	}
	return b
}
