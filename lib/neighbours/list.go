package neighbours

import (
	"fmt"
	"iter"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// List is an immutable neighbour list. It stores parallel arrays with one
// entry per ordered pair, sorted by source site, along with the total number
// of sites. Site indices are 1-based. Quantities which weren't requested have
// zero-length arrays.
type List struct {
	cutoff     float64
	siteCount  int
	quantities string
	layout     Layout

	i, j []int
	r    []float64
	d    Vec3s
	s    Shifts
}

// Pair is a single entry of a List.
type Pair struct {
	I, J int
	R    float64
	D    [3]float64
	S    [3]int
}

// Columns is the flat form of a List: 1-based indices and pair-major vector
// rows. It is what List.Columns returns and what NewList accepts. Fields for
// quantities that aren't in Quantities are ignored.
type Columns struct {
	Quantities string
	I, J       []int
	R          []float64
	D          []float64
	S          []int
}

// Len returns the number of pairs in the columns.
func (c *Columns) Len() int { return len(c.I) }

// check returns an error if any requested column has the wrong length.
func (c *Columns) check() error {
	n := len(c.I)
	if len(c.J) != n {
		return fmt.Errorf("%w: 'j' has %d entries, but 'i' has %d",
			ErrMalformed, len(c.J), n)
	}
	if strings.ContainsRune(c.Quantities, 'd') && len(c.R) != n {
		return fmt.Errorf("%w: 'd' has %d entries, but 'i' has %d",
			ErrMalformed, len(c.R), n)
	}
	if strings.ContainsRune(c.Quantities, 'D') && len(c.D) != 3*n {
		return fmt.Errorf("%w: 'D' has %d values, expected %d",
			ErrMalformed, len(c.D), 3*n)
	}
	if strings.ContainsRune(c.Quantities, 'S') && len(c.S) != 3*n {
		return fmt.Errorf("%w: 'S' has %d values, expected %d",
			ErrMalformed, len(c.S), 3*n)
	}
	return nil
}

// NewList creates a List from 1-based columns, e.g. ones read back from a
// file. Unlike Builder.Build, it doesn't sort: unsorted source indices are
// reported as ErrUnsorted, indices outside [1, siteCount] as ErrIndexRange
// and layouts other than PairMajor and VectorPerPair as ErrLayout. The
// columns are copied.
func NewList(
	cutoff float64, siteCount int, cols Columns, layout Layout,
) (*List, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrCutoff, cutoff)
	}
	if !strings.HasPrefix(cols.Quantities, "ij") {
		return nil, fmt.Errorf("%w: got %q", ErrQuantities, cols.Quantities)
	}
	if layout != PairMajor && layout != VectorPerPair {
		return nil, fmt.Errorf("%w: %s", ErrLayout, layout)
	}
	if err := cols.check(); err != nil {
		return nil, err
	}

	for k := range cols.I {
		if cols.I[k] < 1 || cols.I[k] > siteCount ||
			cols.J[k] < 1 || cols.J[k] > siteCount {
			return nil, fmt.Errorf("%w: pair %d is (%d, %d), but there are "+
				"%d sites", ErrIndexRange, k, cols.I[k], cols.J[k], siteCount)
		}
	}
	if k := firstUnsorted(cols.I); k >= 0 {
		return nil, fmt.Errorf("%w: i[%d] = %d follows i[%d] = %d",
			ErrUnsorted, k, cols.I[k], k-1, cols.I[k-1])
	}

	return assemble(cutoff, siteCount, cols, nil, 0, layout), nil
}

// assemble copies cols into a new List. If perm is non-nil, pair k of the
// List is pair perm[k] of cols. offset is added to every site index.
func assemble(
	cutoff float64, siteCount int, cols Columns,
	perm []int, offset int, layout Layout,
) *List {
	n := cols.Len()
	q := cols.Quantities
	l := &List{
		cutoff: cutoff, siteCount: siteCount,
		quantities: q, layout: layout,
		i: make([]int, n), j: make([]int, n),
	}

	src := func(k int) int {
		if perm == nil {
			return k
		}
		return perm[k]
	}

	for k := 0; k < n; k++ {
		l.i[k] = cols.I[src(k)] + offset
		l.j[k] = cols.J[src(k)] + offset
	}

	if strings.ContainsRune(q, 'd') {
		l.r = make([]float64, n)
		for k := range l.r {
			l.r[k] = cols.R[src(k)]
		}
	}

	var dRows []float64
	if strings.ContainsRune(q, 'D') {
		dRows = make([]float64, 3*n)
		for k := 0; k < n; k++ {
			copy(dRows[3*k:3*k+3], cols.D[3*src(k):3*src(k)+3])
		}
	}
	l.d = newTriples(dRows, layout)

	var sRows []int
	if strings.ContainsRune(q, 'S') {
		sRows = make([]int, 3*n)
		for k := 0; k < n; k++ {
			copy(sRows[3*k:3*k+3], cols.S[3*src(k):3*src(k)+3])
		}
	}
	l.s = newTriples(sRows, layout)

	return l
}

// firstUnsorted returns the first index k with x[k] < x[k-1], or -1 if x is
// non-decreasing.
func firstUnsorted(x []int) int {
	for k := 1; k < len(x); k++ {
		if x[k] < x[k-1] {
			return k
		}
	}
	return -1
}

// PairCount returns the number of stored pairs.
func (l *List) PairCount() int { return len(l.i) }

// SiteCount returns the number of sites in the configuration the List was
// built from, including sites without neighbours.
func (l *List) SiteCount() int { return l.siteCount }

// Cutoff returns the cutoff radius the List was built with.
func (l *List) Cutoff() float64 { return l.cutoff }

// Quantities returns the quantity letters stored in the List.
func (l *List) Quantities() string { return l.quantities }

// Layout returns the layout of the vector quantities, D and S.
func (l *List) Layout() Layout { return l.layout }

// Has returns true if the quantity with the given letter was requested when
// the List was built.
func (l *List) Has(letter byte) bool {
	return strings.IndexByte(l.quantities, letter) >= 0
}

// I returns a copy of the 1-based source site indices.
func (l *List) I() []int { return copyInts(l.i) }

// J returns a copy of the 1-based neighbour site indices.
func (l *List) J() []int { return copyInts(l.j) }

// R returns a copy of the pair distances. It is empty if 'd' wasn't
// requested.
func (l *List) R() []float64 {
	out := make([]float64, len(l.r))
	copy(out, l.r)
	return out
}

// D returns the displacement vectors. They are empty if 'D' wasn't
// requested.
func (l *List) D() Vec3s { return l.d }

// S returns the periodic shift vectors. They are empty if 'S' wasn't
// requested.
func (l *List) S() Shifts { return l.s }

// DisplacementMatrix returns the displacement vectors as a pairs x 3 matrix.
// It is nil if there are no pairs or 'D' wasn't requested.
func (l *List) DisplacementMatrix() *mat.Dense { return PairMatrix(l.d) }

// Pair returns pair k.
func (l *List) Pair(k int) Pair {
	p := Pair{I: l.i[k], J: l.j[k]}
	if len(l.r) > 0 {
		p.R = l.r[k]
	}
	if l.d.Len() > 0 {
		p.D = l.d.At(k)
	}
	if l.s.Len() > 0 {
		p.S = l.s.At(k)
	}
	return p
}

// Pairs returns every pair in storage order. The sequence is lazy and can be
// ranged over any number of times.
func (l *List) Pairs() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for k := range l.i {
			if !yield(l.Pair(k)) {
				return
			}
		}
	}
}

// Columns returns a copy of the List in flat, pair-major form.
func (l *List) Columns() Columns {
	cols := Columns{Quantities: l.quantities, I: l.I(), J: l.J()}
	if l.Has('d') {
		cols.R = l.R()
	}
	if l.Has('D') {
		cols.D = l.d.Rows()
	}
	if l.Has('S') {
		cols.S = l.s.Rows()
	}
	return cols
}

func copyInts(x []int) []int {
	out := make([]int, len(x))
	copy(out, x)
	return out
}
