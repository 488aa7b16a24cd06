package neighbours

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phil-mansfield/nblist/lib/metrics"
)

// Builder turns a single Enumerator call into a List. A Builder holds no
// per-build state and can be shared.
type Builder struct {
	enum Enumerator
	log  *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger makes the Builder log build summaries to log at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder creates a Builder which discovers pairs with enum.
func NewBuilder(enum Enumerator, opts ...Option) *Builder {
	b := &Builder{enum: enum, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildDefault builds a List with every quantity and vector-per-pair
// layouts.
func (b *Builder) BuildDefault(cfg Configuration, cutoff float64) (*List, error) {
	return b.Build(cfg, cutoff, DefaultQuantities, true)
}

// Build calls the Enumerator once and assembles its output into a List.
// Indices are shifted from 0-based to 1-based and pairs are stably sorted by
// source site. If convertArrays is true, D and S are stored with one vector
// per pair, otherwise they keep the Enumerator's pair-major rows.
//
// Errors returned by the Enumerator are returned unchanged.
func (b *Builder) Build(
	cfg Configuration, cutoff float64, quantities string, convertArrays bool,
) (*List, error) {
	if !strings.HasPrefix(quantities, "ij") {
		metrics.BuildErrorsTotal.Inc()
		return nil, fmt.Errorf("%w: got %q", ErrQuantities, quantities)
	}

	start := time.Now()
	raw, err := b.enum.Enumerate(cfg, cutoff, quantities)
	if err != nil {
		metrics.BuildErrorsTotal.Inc()
		return nil, err
	}

	cols, err := unpack(raw, quantities)
	if err != nil {
		metrics.BuildErrorsTotal.Inc()
		return nil, err
	}

	// The Enumerator makes no ordering promises, but Sites needs pairs
	// grouped by ascending source site.
	var perm []int
	if firstUnsorted(cols.I) >= 0 {
		perm = stableOrder(cols.I)
		metrics.SortedBuildsTotal.Inc()
	}

	layout := PairMajor
	if convertArrays {
		layout = VectorPerPair
	}
	l := assemble(cutoff, cfg.Size(), cols, perm, 1, layout)

	elapsed := time.Since(start)
	metrics.BuildsTotal.Inc()
	metrics.PairsPerBuild.Observe(float64(l.PairCount()))
	metrics.BuildDuration.Observe(elapsed.Seconds())

	b.log.Debug("built neighbour list",
		zap.Int("sites", l.SiteCount()),
		zap.Int("pairs", l.PairCount()),
		zap.Float64("cutoff", cutoff),
		zap.String("quantities", quantities),
		zap.Stringer("layout", layout),
		zap.Bool("sorted", perm != nil),
		zap.Duration("elapsed", elapsed),
	)

	return l, nil
}

// unpack checks the types and lengths of an Enumerator's arrays and
// collects them into Columns. Nothing is copied.
func unpack(raw Raw, quantities string) (Columns, error) {
	if len(raw) != len(quantities) {
		return Columns{}, fmt.Errorf("%w: requested %d quantities (%q), "+
			"but got %d arrays", ErrMalformed, len(quantities), quantities,
			len(raw))
	}

	cols := Columns{Quantities: quantities}
	for k := 0; k < len(quantities); k++ {
		var ok bool
		switch quantities[k] {
		case 'i':
			cols.I, ok = raw[k].([]int)
		case 'j':
			cols.J, ok = raw[k].([]int)
		case 'd':
			cols.R, ok = raw[k].([]float64)
		case 'D':
			cols.D, ok = raw[k].([]float64)
		case 'S':
			cols.S, ok = raw[k].([]int)
		default:
			return Columns{}, fmt.Errorf("%w: no array type is known for "+
				"quantity '%c'", ErrMalformed, quantities[k])
		}
		if !ok {
			return Columns{}, fmt.Errorf("%w: quantity '%c' has type %T",
				ErrMalformed, quantities[k], raw[k])
		}
	}

	if err := cols.check(); err != nil {
		return Columns{}, err
	}
	return cols, nil
}

// stableOrder returns the permutation that stably sorts x.
func stableOrder(x []int) []int {
	perm := make([]int, len(x))
	for k := range perm {
		perm[k] = k
	}
	slices.SortStableFunc(perm, func(a, b int) int { return x[a] - x[b] })
	return perm
}
