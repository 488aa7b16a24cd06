package search

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/phil-mansfield/nblist/lib/neighbours"
)

// KDTree finds pairs by building a k-d tree over the periodic images of every
// site and running one radius query per site. Building costs
// O(M log M) for M images and each query is roughly O(log M + neighbours).
type KDTree struct{}

// Enumerate implements neighbours.Enumerator.
func (KDTree) Enumerate(
	cfg neighbours.Configuration, cutoff float64, quantities string,
) (neighbours.Raw, error) {
	return enumerate(cfg, cutoff, quantities, kdSearch)
}

func kdSearch(sys *system) []hit {
	if len(sys.images) == 0 {
		return nil
	}

	// kdtree.New reorders the slice it's given.
	imgs := make(images, len(sys.images))
	copy(imgs, sys.images)
	tree := kdtree.New(imgs, false)

	hits := []hit{}
	r2 := sys.cutoff * sys.cutoff
	for i := range sys.wrapped {
		keep := kdtree.NewDistKeeper(r2)
		tree.NearestSet(keep, image{x: sys.wrapped[i], site: i})

		for _, c := range keep.Heap {
			// The keeper's heap starts with a sentinel at the maximum
			// distance.
			if c.Comparable == nil {
				continue
			}
			if h, ok := sys.match(i, c.Comparable.(image)); ok {
				hits = append(hits, h)
			}
		}
	}

	return hits
}

// Compare, Dims and Distance make image a kdtree.Comparable.

func (p image) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.x[d] - c.(image).x[d]
}

func (p image) Dims() int { return 3 }

// Distance returns the squared distance between p and c.
func (p image) Distance(c kdtree.Comparable) float64 {
	q := c.(image)
	r2 := 0.0
	for dim := 0; dim < 3; dim++ {
		dx := p.x[dim] - q.x[dim]
		r2 += dx * dx
	}
	return r2
}

// images is a collection of images that satisfies kdtree.Interface.
type images []image

func (p images) Index(i int) kdtree.Comparable         { return p[i] }
func (p images) Len() int                              { return len(p) }
func (p images) Pivot(d kdtree.Dim) int                { return plane{images: p, Dim: d}.Pivot() }
func (p images) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts images along a single dimension for kdtree.Partition.
type plane struct {
	kdtree.Dim
	images
}

func (p plane) Less(i, j int) bool {
	return p.images[i].x[p.Dim] < p.images[j].x[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.images = p.images[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.images[i], p.images[j] = p.images[j], p.images[i]
}
