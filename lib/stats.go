package lib

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/nblist/lib/neighbours"
)

// Stats summarises the coordination numbers of a neighbour list.
type Stats struct {
	Frame        int
	Sites, Pairs int
	// Min, Max, Mean and StdDev describe the number of neighbours per site.
	Min, Max     int
	Mean, StdDev float64
	// Isolated is the number of sites without neighbours.
	Isolated int
	// MeanDistance is the mean neighbour distance, or NaN if the list has
	// neither distances nor displacements, or no pairs.
	MeanDistance float64
}

// SiteStats computes Stats for l by walking its sites.
func SiteStats(frame int, l *neighbours.List) Stats {
	s := Stats{
		Frame: frame, Sites: l.SiteCount(), Pairs: l.PairCount(),
		MeanDistance: math.NaN(),
	}
	if s.Sites == 0 {
		return s
	}

	counts := make([]float64, 0, s.Sites)
	s.Min = math.MaxInt
	for site := range l.All() {
		n := site.Len()
		counts = append(counts, float64(n))
		s.Min, s.Max = min(s.Min, n), max(s.Max, n)
		if n == 0 {
			s.Isolated++
		}
	}
	s.Mean, s.StdDev = stat.MeanStdDev(counts, nil)
	if len(counts) == 1 {
		s.StdDev = 0
	}

	switch {
	case s.Pairs == 0:
	case l.Has('d'):
		s.MeanDistance = stat.Mean(l.R(), nil)
	case l.Has('D'):
		s.MeanDistance = stat.Mean(rowNorms(l.DisplacementMatrix()), nil)
	}
	return s
}

// rowNorms returns the Euclidean length of every row of m.
func rowNorms(m *mat.Dense) []float64 {
	n, _ := m.Dims()
	out := make([]float64, n)
	for k := range out {
		out[k] = mat.Norm(m.RowView(k), 2)
	}
	return out
}

// PrintStats writes one line per Stats to w.
func PrintStats(w io.Writer, stats []Stats) {
	fmt.Fprintf(w, "# %6s %8s %10s %5s %5s %8s %8s %8s %10s\n", "frame",
		"sites", "pairs", "min", "max", "mean", "stddev", "isolated", "<d>")
	for _, s := range stats {
		fmt.Fprintf(w, "  %6d %8d %10d %5d %5d %8.3f %8.3f %8d %10.4g\n",
			s.Frame, s.Sites, s.Pairs, s.Min, s.Max, s.Mean, s.StdDev,
			s.Isolated, s.MeanDistance)
	}
}
