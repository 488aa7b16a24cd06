package lib

/* confirm.go contains the core functions of nblist's "confirm" mode. */

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/phil-mansfield/nblist/lib/neighbours"
)

// ErrMismatch is returned by Confirm when two lists disagree.
var ErrMismatch = errors.New("neighbour lists disagree")

// Confirm checks that two lists for the same frame hold the same pairs. The
// order of pairs within a site doesn't matter. Distances and displacements
// may differ by eps.
func Confirm(got, want *neighbours.List, eps float64) error {
	if got.SiteCount() != want.SiteCount() {
		return fmt.Errorf("%w: %d sites vs. %d", ErrMismatch,
			got.SiteCount(), want.SiteCount())
	}
	if got.Quantities() != want.Quantities() {
		return fmt.Errorf("%w: quantities '%s' vs. '%s'", ErrMismatch,
			got.Quantities(), want.Quantities())
	}
	if got.PairCount() != want.PairCount() {
		return fmt.Errorf("%w: %d pairs vs. %d", ErrMismatch,
			got.PairCount(), want.PairCount())
	}

	g, w := got.Sites(), want.Sites()
	for {
		gs, ok := g.Next()
		if !ok {
			return nil
		}
		ws, _ := w.Next()

		if gs.Len() != ws.Len() {
			return fmt.Errorf("%w: site %d has %d neighbours vs. %d",
				ErrMismatch, gs.Index, gs.Len(), ws.Len())
		}
		gp, wp := sitePairs(gs), sitePairs(ws)
		for k := range gp {
			if err := comparePairs(gs.Index, gp[k], wp[k], eps); err != nil {
				return err
			}
		}
	}
}

// sitePairs returns the neighbours of a site sorted by (j, S).
func sitePairs(s neighbours.Site) []neighbours.Pair {
	out := make([]neighbours.Pair, s.Len())
	for k := range out {
		out[k] = neighbours.Pair{I: s.Index, J: s.J[k]}
		if len(s.R) > 0 {
			out[k].R = s.R[k]
		}
		if s.D.Len() > 0 {
			out[k].D = s.D.At(k)
		}
		if s.S.Len() > 0 {
			out[k].S = s.S.At(k)
		}
	}

	slices.SortFunc(out, func(a, b neighbours.Pair) int {
		if c := cmp.Compare(a.J, b.J); c != 0 {
			return c
		}
		for dim := 0; dim < 3; dim++ {
			if c := cmp.Compare(a.S[dim], b.S[dim]); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func comparePairs(site int, a, b neighbours.Pair, eps float64) error {
	if a.J != b.J || a.S != b.S {
		return fmt.Errorf("%w: site %d has neighbour (%d, %d) vs. (%d, %d)",
			ErrMismatch, site, a.J, a.S, b.J, b.S)
	}
	if math.Abs(a.R-b.R) > eps {
		return fmt.Errorf("%w: site %d, neighbour %d is at %g vs. %g",
			ErrMismatch, site, a.J, a.R, b.R)
	}
	for dim := 0; dim < 3; dim++ {
		if math.Abs(a.D[dim]-b.D[dim]) > eps {
			return fmt.Errorf("%w: site %d, neighbour %d has D = %g vs. %g",
				ErrMismatch, site, a.J, a.D, b.D)
		}
	}
	return nil
}
