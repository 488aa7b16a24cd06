/*package search contains pair enumerators for neighbour lists: KDTree, which
queries a gonum k-d tree built over the periodic images of every site, and
BruteForce, which checks every site against every image. Both satisfy
neighbours.Enumerator and return identical output.

Both return full lists. If (i, j, S) is a pair then so is (j, i, -S), and a
site is never paired with itself at zero shift, though it can be its own
neighbour through a periodic image when the cutoff is larger than the cell.
Pairs come back sorted by i, then j, then S.
*/
package search

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/nblist/lib/atoms"
	"github.com/phil-mansfield/nblist/lib/neighbours"
)

var (
	// ErrCutoff is returned for non-positive (or NaN) cutoffs.
	ErrCutoff = errors.New("cutoff must be positive")
	// ErrQuantity is returned when a quantity letter isn't one of "ijdDS".
	ErrQuantity = errors.New("unsupported quantity")
	// ErrGeometry is returned when a configuration doesn't expose the
	// geometry the enumerators need, or the geometry is unusable.
	ErrGeometry = errors.New("configuration has no usable geometry")
)

// Geometry is what the enumerators need to know about a configuration.
// *atoms.Atoms implements it.
type Geometry interface {
	Size() int
	Positions() [][3]float64
	// Cell returns the 3 x 3 cell matrix with one cell vector per row.
	Cell() *mat.Dense
	PBC() [3]bool
}

// Type assertions
var (
	_ Geometry              = &atoms.Atoms{}
	_ neighbours.Enumerator = KDTree{}
	_ neighbours.Enumerator = BruteForce{}
)

// hit is a single pair found by a search.
type hit struct {
	i, j  int
	shift [3]int
	d     [3]float64
}

// image is a periodic copy of a site.
type image struct {
	x     [3]float64
	site  int
	shift [3]int
}

// system is a configuration prepared for searching: positions wrapped into
// the cell and every periodic image that could be within the cutoff of a
// wrapped position.
type system struct {
	wrapped [][3]float64
	wraps   [][3]int // position = wrapped + wraps·cell
	images  []image
	cutoff  float64
}

// New returns the Enumerator registered under name: "kdtree" or "brute".
func New(name string) (neighbours.Enumerator, error) {
	switch strings.ToLower(name) {
	case "kdtree", "kd-tree", "":
		return KDTree{}, nil
	case "brute", "bruteforce", "brute-force":
		return BruteForce{}, nil
	}
	return nil, fmt.Errorf("unknown pair search method '%s'; valid "+
		"methods are 'kdtree' and 'brute'", name)
}

// enumerate does the work shared by every enumerator: argument checks,
// wrapping, image generation and output packing. find does the search.
func enumerate(
	cfg neighbours.Configuration, cutoff float64, quantities string,
	find func(sys *system) []hit,
) (neighbours.Raw, error) {
	if !(cutoff > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrCutoff, cutoff)
	}
	for k := 0; k < len(quantities); k++ {
		if strings.IndexByte(neighbours.Letters, quantities[k]) < 0 {
			return nil, fmt.Errorf("%w: '%c' in '%s'",
				ErrQuantity, quantities[k], quantities)
		}
	}

	g, ok := cfg.(Geometry)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no positions or cell", ErrGeometry, cfg)
	}
	sys, err := newSystem(g, cutoff)
	if err != nil {
		return nil, err
	}

	hits := find(sys)
	slices.SortFunc(hits, compareHits)
	return pack(hits, quantities), nil
}

func newSystem(g Geometry, cutoff float64) (*system, error) {
	cell, pbc := g.Cell(), g.PBC()
	wrapped, wraps, err := atoms.Wrap(g.Positions(), cell, pbc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGeometry, err.Error())
	}

	// A wrapped site's image with shift s can only be within the cutoff if
	// |s_k| <= floor(cutoff/h_k) + 1, where h_k is the face spacing.
	nMax := [3]int{}
	if pbc[0] || pbc[1] || pbc[2] {
		h, err := atoms.FaceSpacings(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrGeometry, err.Error())
		}
		for k := 0; k < 3; k++ {
			if pbc[k] {
				nMax[k] = int(math.Floor(cutoff/h[k])) + 1
			}
		}
	}

	sys := &system{wrapped: wrapped, wraps: wraps, cutoff: cutoff}
	for j := range wrapped {
		for s0 := -nMax[0]; s0 <= nMax[0]; s0++ {
			for s1 := -nMax[1]; s1 <= nMax[1]; s1++ {
				for s2 := -nMax[2]; s2 <= nMax[2]; s2++ {
					s := [3]int{s0, s1, s2}
					sys.images = append(sys.images, image{
						x: translate(wrapped[j], s, cell), site: j, shift: s,
					})
				}
			}
		}
	}

	return sys, nil
}

// translate returns x + s·cell.
func translate(x [3]float64, s [3]int, cell mat.Matrix) [3]float64 {
	for dim := 0; dim < 3; dim++ {
		for k := 0; k < 3; k++ {
			if s[k] != 0 {
				x[dim] += float64(s[k]) * cell.At(k, dim)
			}
		}
	}
	return x
}

// match returns the hit between site i and img, and whether it is within
// the cutoff. A site's zero-shift image never matches itself.
func (sys *system) match(i int, img image) (hit, bool) {
	if img.site == i && img.shift == [3]int{} {
		return hit{}, false
	}

	xi := sys.wrapped[i]
	d := [3]float64{}
	r2 := 0.0
	for dim := 0; dim < 3; dim++ {
		d[dim] = img.x[dim] - xi[dim]
		r2 += d[dim] * d[dim]
	}
	if r2 > sys.cutoff*sys.cutoff {
		return hit{}, false
	}

	// Shift in terms of the caller's (unwrapped) positions:
	// x_j + S·cell - x_i = wrapped_j + s·cell - wrapped_i.
	wi, wj := sys.wraps[i], sys.wraps[img.site]
	shift := [3]int{}
	for k := 0; k < 3; k++ {
		shift[k] = img.shift[k] - wj[k] + wi[k]
	}
	return hit{i: i, j: img.site, shift: shift, d: d}, true
}

func compareHits(a, b hit) int {
	if a.i != b.i {
		return a.i - b.i
	}
	if a.j != b.j {
		return a.j - b.j
	}
	for k := 0; k < 3; k++ {
		if a.shift[k] != b.shift[k] {
			return a.shift[k] - b.shift[k]
		}
	}
	return 0
}

// pack converts hits into enumerator output with 0-based indices and
// pair-major vector rows.
func pack(hits []hit, quantities string) neighbours.Raw {
	n := len(hits)
	raw := make(neighbours.Raw, len(quantities))
	for q := 0; q < len(quantities); q++ {
		switch quantities[q] {
		case 'i':
			x := make([]int, n)
			for k := range hits {
				x[k] = hits[k].i
			}
			raw[q] = x
		case 'j':
			x := make([]int, n)
			for k := range hits {
				x[k] = hits[k].j
			}
			raw[q] = x
		case 'd':
			x := make([]float64, n)
			for k := range hits {
				d := hits[k].d
				x[k] = math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
			}
			raw[q] = x
		case 'D':
			x := make([]float64, 3*n)
			for k := range hits {
				copy(x[3*k:3*k+3], hits[k].d[:])
			}
			raw[q] = x
		case 'S':
			x := make([]int, 3*n)
			for k := range hits {
				copy(x[3*k:3*k+3], hits[k].shift[:])
			}
			raw[q] = x
		}
	}
	return raw
}
