package spatial

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// gridPoint is one projected grid point with its flat array index, satisfying
// kdtree.Comparable in the unit-sphere XYZ embedding.
type gridPoint struct {
	xyz [3]float64
	idx int
}

func (p gridPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(gridPoint)
	return p.xyz[d] - q.xyz[d]
}

func (p gridPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance; monotone in true distance,
// which is all nearest-neighbor comparison needs.
func (p gridPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(gridPoint)
	var s float64
	for i := range p.xyz {
		d := p.xyz[i] - q.xyz[i]
		s += d * d
	}
	return s
}

// gridPoints adapts a slice of gridPoint to kdtree.Interface.
type gridPoints []gridPoint

func (p gridPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p gridPoints) Len() int                              { return len(p) }
func (p gridPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p gridPoints) Pivot(d kdtree.Dim) int {
	return plane{gridPoints: p, Dim: d}.pivot()
}

// plane sorts gridPoints along a single dimension for tree construction.
type plane struct {
	gridPoints
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.gridPoints[i].xyz[p.Dim] < p.gridPoints[j].xyz[p.Dim]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.gridPoints = p.gridPoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.gridPoints[i], p.gridPoints[j] = p.gridPoints[j], p.gridPoints[i]
}
func (p plane) pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
