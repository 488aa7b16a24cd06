/*package atoms contains the particle configuration that neighbour lists are
built from: species, Cartesian positions and a (possibly periodic) cell.

The cell is a 3 x 3 matrix whose rows are the cell vectors a, b and c. A
position x has fractional coordinates f with x = f·cell. Periodic directions
are given per cell vector; positions are free to lie outside the cell.
*/
package atoms

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultSpecies is given to sites created without a species.
	DefaultSpecies = "X"
	// singularVolume is the smallest cell volume that isn't treated as zero.
	singularVolume = 1e-12
)

var (
	// ErrSingularCell is returned when a periodic configuration has a cell
	// with (numerically) zero volume.
	ErrSingularCell = errors.New("periodic configuration has a singular cell")
	// ErrSpecies is returned when the number of species doesn't match the
	// number of positions.
	ErrSpecies = errors.New("species and positions have different lengths")
	// ErrPosition is returned for NaN or infinite coordinates.
	ErrPosition = errors.New("position is not finite")
)

// Atoms is an immutable particle configuration.
type Atoms struct {
	species   []string
	positions [][3]float64
	cell      [3][3]float64
	pbc       [3]bool
}

// New creates an Atoms. species may be nil, in which case every site is given
// DefaultSpecies. The cell only needs to be invertible if at least one
// direction is periodic. All arrays are copied.
func New(
	species []string, positions [][3]float64,
	cell [3][3]float64, pbc [3]bool,
) (*Atoms, error) {
	if species == nil {
		species = make([]string, len(positions))
		for i := range species {
			species[i] = DefaultSpecies
		}
	} else if len(species) != len(positions) {
		return nil, fmt.Errorf("%w: %d species, %d positions",
			ErrSpecies, len(species), len(positions))
	}

	for i, x := range positions {
		for dim := 0; dim < 3; dim++ {
			if math.IsNaN(x[dim]) || math.IsInf(x[dim], 0) {
				return nil, fmt.Errorf("%w: site %d is at %g", ErrPosition, i, x)
			}
		}
	}

	if anyPeriodic(pbc) {
		if v := math.Abs(cellVolume(cell)); v < singularVolume {
			return nil, fmt.Errorf("%w: volume is %g", ErrSingularCell, v)
		}
	}

	a := &Atoms{
		species:   append([]string{}, species...),
		positions: append([][3]float64{}, positions...),
		cell:      cell,
		pbc:       pbc,
	}
	return a, nil
}

// Size returns the number of sites.
func (a *Atoms) Size() int { return len(a.positions) }

// Species returns a copy of the species names.
func (a *Atoms) Species() []string { return append([]string{}, a.species...) }

// Positions returns a copy of the Cartesian positions.
func (a *Atoms) Positions() [][3]float64 {
	return append([][3]float64{}, a.positions...)
}

// Cell returns a copy of the cell as a 3 x 3 matrix with the cell vectors as
// rows.
func (a *Atoms) Cell() *mat.Dense { return CellMatrix(a.cell) }

// CellVectors returns the cell vectors.
func (a *Atoms) CellVectors() [3][3]float64 { return a.cell }

// PBC returns which cell vectors are periodic.
func (a *Atoms) PBC() [3]bool { return a.pbc }

// Volume returns the (unsigned) volume of the cell.
func (a *Atoms) Volume() float64 { return math.Abs(cellVolume(a.cell)) }

// Fractional returns the fractional coordinates of every site. It fails for
// singular cells.
func (a *Atoms) Fractional() ([][3]float64, error) {
	return Fractional(a.positions, a.Cell())
}

// Wrap returns every position moved into the cell along periodic directions,
// along with the integer shifts that undo the move:
// position = wrapped + shift·cell.
func (a *Atoms) Wrap() (wrapped [][3]float64, shifts [][3]int, err error) {
	return Wrap(a.positions, a.Cell(), a.pbc)
}

// CellMatrix converts cell vectors into a 3 x 3 matrix with one vector per
// row.
func CellMatrix(cell [3][3]float64) *mat.Dense {
	data := make([]float64, 0, 9)
	for i := range cell {
		data = append(data, cell[i][:]...)
	}
	return mat.NewDense(3, 3, data)
}

// Fractional converts Cartesian positions to fractional coordinates of cell.
func Fractional(positions [][3]float64, cell mat.Matrix) ([][3]float64, error) {
	inv := &mat.Dense{}
	if err := inv.Inverse(cell); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSingularCell, err.Error())
	}

	frac := make([][3]float64, len(positions))
	if len(positions) == 0 {
		return frac, nil
	}

	x := mat.NewDense(len(positions), 3, flatten(positions))
	f := &mat.Dense{}
	f.Mul(x, inv)
	for i := range frac {
		frac[i] = [3]float64{f.At(i, 0), f.At(i, 1), f.At(i, 2)}
	}
	return frac, nil
}

// Wrap moves positions into cell along periodic directions. It returns the
// wrapped positions and the shifts with position = wrapped + shift·cell.
// Non-periodic directions are left alone, and the cell is not inverted if
// nothing is periodic.
func Wrap(
	positions [][3]float64, cell mat.Matrix, pbc [3]bool,
) (wrapped [][3]float64, shifts [][3]int, err error) {
	wrapped = append([][3]float64{}, positions...)
	shifts = make([][3]int, len(positions))
	if !anyPeriodic(pbc) {
		return wrapped, shifts, nil
	}

	frac, err := Fractional(positions, cell)
	if err != nil {
		return nil, nil, err
	}

	for i := range frac {
		for dim := 0; dim < 3; dim++ {
			if !pbc[dim] {
				continue
			}
			shifts[i][dim] = int(math.Floor(frac[i][dim]))
		}

		// x - shift·cell
		for dim := 0; dim < 3; dim++ {
			for k := 0; k < 3; k++ {
				wrapped[i][dim] -= float64(shifts[i][k]) * cell.At(k, dim)
			}
		}
	}

	return wrapped, shifts, nil
}

// FaceSpacings returns the distance between opposite faces of the cell for
// each cell vector, i.e. 1/|b_k| for the reciprocal vectors b_k (the columns
// of the inverse cell).
func FaceSpacings(cell mat.Matrix) ([3]float64, error) {
	inv := &mat.Dense{}
	if err := inv.Inverse(cell); err != nil {
		return [3]float64{}, fmt.Errorf("%w: %s", ErrSingularCell, err.Error())
	}

	out := [3]float64{}
	for k := 0; k < 3; k++ {
		out[k] = 1 / mat.Norm(inv.ColView(k), 2)
	}
	return out, nil
}

func cellVolume(cell [3][3]float64) float64 {
	return mat.Det(CellMatrix(cell))
}

func anyPeriodic(pbc [3]bool) bool { return pbc[0] || pbc[1] || pbc[2] }

func flatten(x [][3]float64) []float64 {
	out := make([]float64, 0, 3*len(x))
	for i := range x {
		out = append(out, x[i][:]...)
	}
	return out
}
