/*package neighbours contains the neighbour list representation used by
pairwise summation loops: a flat, pair-indexed set of arrays (i, j, r, D, S)
for every ordered pair of sites closer than a cutoff, and a single-pass scan
that groups those arrays into per-site views.

Pairs are discovered by an Enumerator, which this package treats as a black
box. A Builder calls the Enumerator once, converts its 0-based indices to
1-based site indices, optionally re-lays the vector quantities, sorts the pairs
by source site and copies everything into a List that it owns. Lists are
immutable, so any number of Sites iterators can walk the same List at once.

Quantity letters:

   i - source site index
   j - neighbour site index
   d - scalar distance |D|
   D - displacement vector, x_j - x_i + S·cell
   S - integer periodic shift vector

A request string must start with "ij". The order of the letters is the order
of the arrays an Enumerator returns.
*/
package neighbours

import (
	"errors"
)

const (
	// DefaultQuantities requests every quantity the package knows about.
	DefaultQuantities = "ijdDS"
	// Letters lists the supported quantity letters.
	Letters = "ijdDS"
)

var (
	// ErrQuantities is returned when a quantity request does not begin with
	// "ij".
	ErrQuantities = errors.New("quantity request must begin with \"ij\"")
	// ErrMalformed is returned when an Enumerator's output cannot be
	// interpreted: wrong number of arrays, wrong element types or arrays of
	// different lengths.
	ErrMalformed = errors.New("malformed enumerator output")
	// ErrUnsorted is returned by NewList when the source indices are not
	// non-decreasing.
	ErrUnsorted = errors.New("source site indices are not sorted")
	// ErrIndexRange is returned by NewList when a site index falls outside
	// [1, siteCount].
	ErrIndexRange = errors.New("site index out of range")
	// ErrCutoff is returned by NewList for a non-positive cutoff.
	ErrCutoff = errors.New("cutoff must be positive")
	// ErrLayout is returned by NewList for an unknown Layout.
	ErrLayout = errors.New("unknown layout")
)

// Configuration is the part of a particle configuration that the neighbour
// list itself needs. Everything else (positions, cell, species) is only
// interesting to the Enumerator.
type Configuration interface {
	// Size returns the number of sites. Sites without any neighbours still
	// count.
	Size() int
}

// Raw is the output of an Enumerator: one array per requested quantity
// letter, in request order. The element types are
//
//   'i', 'j' - []int, 0-based
//   'd'      - []float64
//   'D'      - []float64, pair-major rows with 3 columns (len = 3*pairs)
//   'S'      - []int, pair-major rows with 3 columns (len = 3*pairs)
type Raw []interface{}

// Enumerator finds every ordered pair of sites within cutoff of one another.
// Implementations may return pairs in any order. Errors (non-positive
// cutoffs, unusable configurations, unsupported letters) are reported by the
// Enumerator and passed through the Builder untouched.
type Enumerator interface {
	Enumerate(cfg Configuration, cutoff float64, quantities string) (Raw, error)
}

// EnumeratorFunc lets an ordinary function act as an Enumerator.
type EnumeratorFunc func(
	cfg Configuration, cutoff float64, quantities string,
) (Raw, error)

func (f EnumeratorFunc) Enumerate(
	cfg Configuration, cutoff float64, quantities string,
) (Raw, error) {
	return f(cfg, cutoff, quantities)
}

// Type assertion
var _ Enumerator = EnumeratorFunc(nil)
