package search

import (
	"github.com/phil-mansfield/nblist/lib/neighbours"
)

// BruteForce finds pairs by checking every site against every periodic
// image. It costs O(N M) for N sites and M images and is only meant for small
// systems and for checking KDTree.
type BruteForce struct{}

// Enumerate implements neighbours.Enumerator.
func (BruteForce) Enumerate(
	cfg neighbours.Configuration, cutoff float64, quantities string,
) (neighbours.Raw, error) {
	return enumerate(cfg, cutoff, quantities, bruteSearch)
}

func bruteSearch(sys *system) []hit {
	hits := []hit{}
	for i := range sys.wrapped {
		for _, img := range sys.images {
			if h, ok := sys.match(i, img); ok {
				hits = append(hits, h)
			}
		}
	}
	return hits
}
