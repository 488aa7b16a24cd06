package neighbours

import (
	"iter"
)

// Site is the neighbourhood of a single site: the slices of a List's arrays
// whose source index is Index. The slices share memory with the List and
// must not be modified. Quantities which weren't requested are empty.
type Site struct {
	Index int
	J     []int
	R     []float64
	D     Vec3s
	S     Shifts
}

// Len returns the number of neighbours of the site.
func (s Site) Len() int { return len(s.J) }

// Sites walks a List one site at a time, in increasing site order. It is
// created with List.Sites and keeps all of its state to itself, so any number
// of Sites can walk the same List concurrently. A Sites can't be rewound;
// create a new one instead.
type Sites struct {
	list *List
	s    int // last site returned, 1-based
	b    int // number of pairs consumed
}

// Sites returns an iterator over every site of the List.
func (l *List) Sites() *Sites { return &Sites{list: l} }

// Next returns the next site and true, or a zero Site and false once all
// SiteCount() sites have been returned. Every site is returned, including
// sites with no neighbours and sites past the last source index in the List.
func (it *Sites) Next() (Site, bool) {
	l := it.list
	if it.s >= l.siteCount {
		return Site{}, false
	}

	it.s++
	m0 := it.b
	for it.b < len(l.i) && l.i[it.b] <= it.s {
		it.b++
	}
	m1 := it.b

	site := Site{
		Index: it.s,
		J:     l.j[m0:m1:m1],
		D:     l.d.Slice(m0, m1),
		S:     l.s.Slice(m0, m1),
	}
	if len(l.r) > 0 {
		site.R = l.r[m0:m1:m1]
	}
	return site, true
}

// Done returns true if every site has been returned.
func (it *Sites) Done() bool { return it.s >= it.list.siteCount }

// All returns every site of the List in increasing order. Each range over
// the sequence starts a fresh scan.
func (l *List) All() iter.Seq[Site] {
	return func(yield func(Site) bool) {
		it := l.Sites()
		for site, ok := it.Next(); ok; site, ok = it.Next() {
			if !yield(site) {
				return
			}
		}
	}
}
