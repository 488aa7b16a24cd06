package neighbours

/* layout.go handles the two memory layouts used for the vector quantities,
D and S. */

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Layout describes how the 3-vector quantities of a List are stored.
type Layout int

const (
	// PairMajor stores one row of three values per pair in a single flat
	// array. This is the layout Enumerators produce.
	PairMajor Layout = iota
	// VectorPerPair stores one [3]T value per pair.
	VectorPerPair
)

func (l Layout) String() string {
	switch l {
	case PairMajor:
		return "pair-major"
	case VectorPerPair:
		return "vector-per-pair"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Triples is a read-only array with one 3-vector per pair. It remembers which
// Layout it was built with, but At, Rows and Vectors all work regardless.
// Slices returned by Rows and Vectors are copies.
type Triples[T int | float64] struct {
	layout Layout
	rows   []T
	vecs   [][3]T
}

// Vec3s holds displacement vectors.
type Vec3s = Triples[float64]

// Shifts holds periodic shift vectors.
type Shifts = Triples[int]

// newTriples builds a Triples from pair-major rows. The rows are taken, not
// copied.
func newTriples[T int | float64](rows []T, layout Layout) Triples[T] {
	if layout == VectorPerPair {
		return Triples[T]{layout: layout, vecs: rowsToVectors(rows)}
	}
	return Triples[T]{layout: PairMajor, rows: rows}
}

// Len returns the number of vectors.
func (t Triples[T]) Len() int {
	if t.layout == VectorPerPair {
		return len(t.vecs)
	}
	return len(t.rows) / 3
}

// Layout returns the layout the vectors are stored in.
func (t Triples[T]) Layout() Layout { return t.layout }

// At returns vector k.
func (t Triples[T]) At(k int) [3]T {
	if t.layout == VectorPerPair {
		return t.vecs[k]
	}
	return [3]T{t.rows[3*k], t.rows[3*k+1], t.rows[3*k+2]}
}

// Slice returns the vectors in [lo, hi) without copying.
func (t Triples[T]) Slice(lo, hi int) Triples[T] {
	if t.Len() == 0 {
		return Triples[T]{layout: t.layout}
	}
	if t.layout == VectorPerPair {
		return Triples[T]{layout: t.layout, vecs: t.vecs[lo:hi:hi]}
	}
	return Triples[T]{layout: t.layout, rows: t.rows[3*lo : 3*hi : 3*hi]}
}

// Rows returns a copy of the vectors as pair-major rows.
func (t Triples[T]) Rows() []T {
	if t.layout == VectorPerPair {
		return vectorsToRows(t.vecs)
	}
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// Vectors returns a copy of the vectors with one [3]T per pair.
func (t Triples[T]) Vectors() [][3]T {
	if t.layout == VectorPerPair {
		out := make([][3]T, len(t.vecs))
		copy(out, t.vecs)
		return out
	}
	return rowsToVectors(t.rows)
}

func rowsToVectors[T int | float64](rows []T) [][3]T {
	vecs := make([][3]T, len(rows)/3)
	for k := range vecs {
		vecs[k] = [3]T{rows[3*k], rows[3*k+1], rows[3*k+2]}
	}
	return vecs
}

func vectorsToRows[T int | float64](vecs [][3]T) []T {
	rows := make([]T, 3*len(vecs))
	for k := range vecs {
		copy(rows[3*k:3*k+3], vecs[k][:])
	}
	return rows
}

// PairMatrix returns the vectors as a pairs x 3 matrix (one row per pair).
// It returns nil when there are no vectors, since gonum does not allow
// empty matrices.
func PairMatrix(v Vec3s) *mat.Dense {
	if v.Len() == 0 {
		return nil
	}
	return mat.NewDense(v.Len(), 3, v.Rows())
}
