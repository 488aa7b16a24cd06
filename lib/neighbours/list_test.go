package neighbours

import (
	"errors"
	"testing"

	"github.com/phil-mansfield/nblist/lib/eq"
)

func TestNewListErrors(t *testing.T) {
	tests := []struct {
		cutoff    float64
		siteCount int
		cols      Columns
		err       error
	}{
		{0, 2, Columns{Quantities: "ij", I: []int{1}, J: []int{2}}, ErrCutoff},
		{-1, 2, Columns{Quantities: "ij", I: []int{1}, J: []int{2}}, ErrCutoff},
		{1, 2, Columns{Quantities: "ji", I: []int{1}, J: []int{2}}, ErrQuantities},
		{1, 2, Columns{Quantities: "ij", I: []int{1}, J: []int{3}}, ErrIndexRange},
		{1, 2, Columns{Quantities: "ij", I: []int{0}, J: []int{1}}, ErrIndexRange},
		{1, 2, Columns{Quantities: "ij", I: []int{2, 1}, J: []int{1, 2}}, ErrUnsorted},
		{1, 2, Columns{Quantities: "ij", I: []int{1, 1}, J: []int{2}}, ErrMalformed},
		{1, 2, Columns{Quantities: "ijd", I: []int{1}, J: []int{2}}, ErrMalformed},
		{1, 2, Columns{Quantities: "ijS", I: []int{1}, J: []int{2},
			S: []int{0, 0}}, ErrMalformed},
	}

	for i := range tests {
		_, err := NewList(tests[i].cutoff, tests[i].siteCount,
			tests[i].cols, PairMajor)
		if !errors.Is(err, tests[i].err) {
			t.Errorf("%d) Expected error %v, got %v.", i, tests[i].err, err)
		}
	}

	cols := Columns{Quantities: "ijS", I: []int{1}, J: []int{2}, S: []int{0, 1, 0}}
	for _, layout := range []Layout{-1, 2, 7} {
		_, err := NewList(1, 2, cols, layout)
		if !errors.Is(err, ErrLayout) {
			t.Errorf("Expected ErrLayout for %s, got %v.", layout, err)
		}
	}
}

func TestListInvariants(t *testing.T) {
	raw := rawPairs([]int{3, 0, 2, 0, 1}, []int{0, 1, 3, 2, 2})
	l, err := NewBuilder(&fakeEnumerator{raw: raw}).
		BuildDefault(fakeConfig(6), 1.0)
	if err != nil {
		t.Fatalf("Expected successful build, got error '%s'.", err.Error())
	}

	n := l.PairCount()
	lengths := []int{len(l.I()), len(l.J()), len(l.R()), l.D().Len(), l.S().Len()}
	for k, length := range lengths {
		if length != n {
			t.Errorf("Quantity %c has length %d, expected %d.",
				DefaultQuantities[k], length, n)
		}
	}

	i, j := l.I(), l.J()
	for k := range i {
		if i[k] < 1 || i[k] > l.SiteCount() || j[k] < 1 || j[k] > l.SiteCount() {
			t.Errorf("Pair %d, (%d, %d), is out of range [1, %d].",
				k, i[k], j[k], l.SiteCount())
		}
		if k > 0 && i[k] < i[k-1] {
			t.Errorf("Pair %d has i = %d after i = %d.", k, i[k], i[k-1])
		}
	}
}

func TestListColumnsRoundTrip(t *testing.T) {
	raw := rawPairs([]int{1, 0, 1}, []int{0, 1, 2})
	for _, convert := range []bool{true, false} {
		l1, err := NewBuilder(&fakeEnumerator{raw: raw}).
			Build(fakeConfig(3), 1.5, "ijdDS", convert)
		if err != nil {
			t.Fatalf("Expected successful build, got error '%s'.", err.Error())
		}

		l2, err := NewList(l1.Cutoff(), l1.SiteCount(), l1.Columns(), l1.Layout())
		if err != nil {
			t.Fatalf("Expected columns to be valid, got error '%s'.",
				err.Error())
		}

		c1, c2 := l1.Columns(), l2.Columns()
		if !eq.Slices(c1.I, c2.I) || !eq.Slices(c1.J, c2.J) ||
			!eq.Slices(c1.R, c2.R) || !eq.Slices(c1.D, c2.D) ||
			!eq.Slices(c1.S, c2.S) || c1.Quantities != c2.Quantities {
			t.Errorf("convert = %t: expected %+v, got %+v", convert, c1, c2)
		}
		if l2.Layout() != l1.Layout() || l2.Cutoff() != 1.5 {
			t.Errorf("convert = %t: expected layout %s and cutoff 1.5, got "+
				"%s and %g.", convert, l1.Layout(), l2.Layout(), l2.Cutoff())
		}
	}
}

func TestListPairs(t *testing.T) {
	raw := rawPairs([]int{0, 0, 1}, []int{1, 2, 0})
	l, err := NewBuilder(&fakeEnumerator{raw: raw}).
		BuildDefault(fakeConfig(3), 1.0)
	if err != nil {
		t.Fatalf("Expected successful build, got error '%s'.", err.Error())
	}

	for pass := 0; pass < 2; pass++ {
		k := 0
		for p := range l.Pairs() {
			if p != l.Pair(k) {
				t.Errorf("%d) Expected pair %+v, got %+v.", k, l.Pair(k), p)
			}
			if p.D != l.D().At(k) || p.R != l.R()[k] {
				t.Errorf("%d) Pair doesn't match stored arrays: %+v.", k, p)
			}
			k++
		}
		if k != l.PairCount() {
			t.Errorf("Pass %d: expected %d pairs, got %d.",
				pass, l.PairCount(), k)
		}
	}
}

func TestDisplacementMatrix(t *testing.T) {
	raw := rawPairs([]int{0, 1}, []int{1, 0})
	l, err := NewBuilder(&fakeEnumerator{raw: raw}).
		BuildDefault(fakeConfig(2), 1.0)
	if err != nil {
		t.Fatalf("Expected successful build, got error '%s'.", err.Error())
	}

	m := l.DisplacementMatrix()
	if r, c := m.Dims(); r != 2 || c != 3 {
		t.Fatalf("Expected a 2 x 3 matrix, got %d x %d.", r, c)
	}
	for k := 0; k < 2; k++ {
		for dim := 0; dim < 3; dim++ {
			if m.At(k, dim) != l.D().At(k)[dim] {
				t.Errorf("Expected M[%d][%d] = %g, got %g.",
					k, dim, l.D().At(k)[dim], m.At(k, dim))
			}
		}
	}
}
