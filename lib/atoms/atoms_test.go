package atoms

import (
	"errors"
	"math"
	"testing"

	"github.com/phil-mansfield/nblist/lib/eq"
)

var (
	cubic10 = [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}}
	skewed  = [3][3]float64{{4, 0, 0}, {2, 3, 0}, {1, 1, 5}}
	allPBC  = [3]bool{true, true, true}
)

func TestNewErrors(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		species   []string
		positions [][3]float64
		cell      [3][3]float64
		pbc       [3]bool
		err       error
	}{
		{[]string{"H"}, [][3]float64{{0, 0, 0}, {1, 1, 1}}, cubic10, allPBC,
			ErrSpecies},
		{nil, [][3]float64{{0, math.NaN(), 0}}, cubic10, allPBC, ErrPosition},
		{nil, [][3]float64{{0, 0, inf}}, cubic10, allPBC, ErrPosition},
		{nil, [][3]float64{{0, 0, 0}}, [3][3]float64{}, allPBC, ErrSingularCell},
		{nil, [][3]float64{{0, 0, 0}},
			[3][3]float64{{1, 0, 0}, {2, 0, 0}, {0, 0, 1}},
			[3]bool{true, false, false}, ErrSingularCell},
	}

	for i := range tests {
		_, err := New(tests[i].species, tests[i].positions,
			tests[i].cell, tests[i].pbc)
		if !errors.Is(err, tests[i].err) {
			t.Errorf("%d) Expected error %v, got %v.", i, tests[i].err, err)
		}
	}

	// Open systems don't need a cell.
	a, err := New(nil, [][3]float64{{0, 0, 0}}, [3][3]float64{}, [3]bool{})
	if err != nil {
		t.Fatalf("Expected open system with no cell to be valid, got '%s'.",
			err.Error())
	}
	if s := a.Species(); !eq.Slices(s, []string{DefaultSpecies}) {
		t.Errorf("Expected default species, got %s.", s)
	}
}

func TestAtomsCopies(t *testing.T) {
	x := [][3]float64{{1, 2, 3}}
	s := []string{"Si"}
	a, err := New(s, x, cubic10, allPBC)
	if err != nil {
		t.Fatalf("Expected valid Atoms, got error '%s'.", err.Error())
	}

	x[0][0], s[0] = 100, "C"
	if a.Positions()[0][0] != 1 || a.Species()[0] != "Si" {
		t.Errorf("Expected Atoms to own copies of its arrays.")
	}

	a.Positions()[0][1] = -1
	a.Cell().Set(0, 0, -1)
	if a.Positions()[0][1] != 2 || a.CellVectors()[0][0] != 10 {
		t.Errorf("Expected accessors to return copies.")
	}
	if a.Size() != 1 || a.PBC() != allPBC {
		t.Errorf("Expected 1 periodic site, got %d, %t.", a.Size(), a.PBC())
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		cell [3][3]float64
		vol  float64
	}{
		{cubic10, 1000},
		{skewed, 60},
		{[3][3]float64{{0, 0, 2}, {0, 3, 0}, {4, 0, 0}}, 24},
	}

	for i := range tests {
		a, err := New(nil, nil, tests[i].cell, allPBC)
		if err != nil {
			t.Fatalf("%d) Expected valid Atoms, got error '%s'.",
				i, err.Error())
		}
		if v := a.Volume(); !eq.Close(v, tests[i].vol, 1e-9) {
			t.Errorf("%d) Expected volume %g, got %g.", i, tests[i].vol, v)
		}
	}
}

func TestFractional(t *testing.T) {
	x := [][3]float64{{0, 0, 0}, {4, 0, 0}, {2, 3, 0}, {7, 4, 5}, {3.5, 2, 2.5}}
	fExp := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 1},
		{0.5, 0.5, 0.5}}

	a, err := New(nil, x, skewed, allPBC)
	if err != nil {
		t.Fatalf("Expected valid Atoms, got error '%s'.", err.Error())
	}
	f, err := a.Fractional()
	if err != nil {
		t.Fatalf("Expected fractional coordinates, got error '%s'.",
			err.Error())
	}
	if !eq.Vec64sClose(f, fExp, 1e-12) {
		t.Errorf("Expected fractional coordinates %.3f, got %.3f.", fExp, f)
	}
}

func TestWrap(t *testing.T) {
	x := [][3]float64{{1, 2, 3}, {11, -2, 25}, {-0.5, 10, 5}}
	tests := []struct {
		pbc     [3]bool
		wrapped [][3]float64
		shifts  [][3]int
	}{
		{allPBC,
			[][3]float64{{1, 2, 3}, {1, 8, 5}, {9.5, 0, 5}},
			[][3]int{{0, 0, 0}, {1, -1, 2}, {-1, 1, 0}}},
		{[3]bool{true, false, false},
			[][3]float64{{1, 2, 3}, {1, -2, 25}, {9.5, 10, 5}},
			[][3]int{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}}},
		{[3]bool{},
			[][3]float64{{1, 2, 3}, {11, -2, 25}, {-0.5, 10, 5}},
			[][3]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}},
	}

	for i := range tests {
		a, err := New(nil, x, cubic10, tests[i].pbc)
		if err != nil {
			t.Fatalf("%d) Expected valid Atoms, got error '%s'.",
				i, err.Error())
		}
		wrapped, shifts, err := a.Wrap()
		if err != nil {
			t.Fatalf("%d) Expected successful wrap, got error '%s'.",
				i, err.Error())
		}

		if !eq.Vec64sClose(wrapped, tests[i].wrapped, 1e-12) {
			t.Errorf("%d) Expected wrapped positions %.2f, got %.2f.",
				i, tests[i].wrapped, wrapped)
		}
		if !eq.Slices(shifts, tests[i].shifts) {
			t.Errorf("%d) Expected shifts %d, got %d.",
				i, tests[i].shifts, shifts)
		}
	}
}

func TestWrapSkewedRoundTrip(t *testing.T) {
	x := [][3]float64{{-3, 7, 12}, {40, -1, 0.5}, {1, 1, 1}}
	a, err := New(nil, x, skewed, allPBC)
	if err != nil {
		t.Fatalf("Expected valid Atoms, got error '%s'.", err.Error())
	}

	wrapped, shifts, err := a.Wrap()
	if err != nil {
		t.Fatalf("Expected successful wrap, got error '%s'.", err.Error())
	}
	f, err := Fractional(wrapped, a.Cell())
	if err != nil {
		t.Fatalf("Expected fractional coordinates, got '%s'.", err.Error())
	}

	for i := range x {
		for dim := 0; dim < 3; dim++ {
			if f[i][dim] < -1e-12 || f[i][dim] >= 1+1e-12 {
				t.Errorf("%d) Wrapped fractional coordinate %g is outside "+
					"[0, 1).", i, f[i][dim])
			}
		}

		back := wrapped[i]
		for dim := 0; dim < 3; dim++ {
			for k := 0; k < 3; k++ {
				back[dim] += float64(shifts[i][k]) * skewed[k][dim]
			}
		}
		if !eq.Vec64Close(back, x[i], 1e-9) {
			t.Errorf("%d) Expected wrapped + shift·cell = %.3f, got %.3f.",
				i, x[i], back)
		}
	}
}

func TestFaceSpacings(t *testing.T) {
	tests := []struct {
		cell [3][3]float64
		h    [3]float64
	}{
		{cubic10, [3]float64{10, 10, 10}},
		{[3][3]float64{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}, [3]float64{2, 3, 4}},
		// Sheared in the a-b plane: the a faces are 2.4 apart, not 4.
		{[3][3]float64{{4, 0, 0}, {4, 3, 0}, {0, 0, 1}}, [3]float64{2.4, 3, 1}},
	}

	for i := range tests {
		h, err := FaceSpacings(CellMatrix(tests[i].cell))
		if err != nil {
			t.Fatalf("%d) Expected face spacings, got error '%s'.",
				i, err.Error())
		}
		if !eq.Vec64Close(h, tests[i].h, 1e-12) {
			t.Errorf("%d) Expected face spacings %g, got %g.", i, tests[i].h, h)
		}
	}

	if _, err := FaceSpacings(CellMatrix([3][3]float64{})); err == nil {
		t.Errorf("Expected an error for a singular cell.")
	}
}
