/*package eq is a simple package for telling whether two arrays are equal to
one another, either exactly or to within a tolerance.*/
package eq

import (
	"math"
)

// Slices returns true if two arrays have the same length and the same values
// and false otherwise.
func Slices[T comparable](x, y []T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Close returns true if |a - b| <= eps.
func Close(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// Vec64Close returns true if every component of two 3-vectors differs by at
// most eps.
func Vec64Close(x, y [3]float64, eps float64) bool {
	for dim := 0; dim < 3; dim++ {
		if !Close(x[dim], y[dim], eps) {
			return false
		}
	}
	return true
}

// Vec64sClose returns true if two [][3]float64 arrays have the same length and
// every pair of vectors agrees to within eps in each component.
func Vec64sClose(x, y [][3]float64, eps float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !Vec64Close(x[i], y[i], eps) {
			return false
		}
	}
	return true
}
