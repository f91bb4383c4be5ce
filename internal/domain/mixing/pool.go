// Package mixing buffers recent events in vertex/multiplicity classes so
// trigger jets can be paired with tracks from other events of the same class.
package mixing

import (
	"sort"

	"github.com/hepkit/jetcorr/internal/domain/model"
	"github.com/hepkit/jetcorr/pkg/metrics"
)

// Key identifies one mixing class: a z-vertex bin crossed with a
// multiplicity bin.
type Key struct {
	ZBin    int
	MultBin int
}

// Snapshot is the part of an event the pool keeps for later pairing.
type Snapshot struct {
	Event    model.Event
	Jets     []model.Jet
	Partners []model.Constituent
}

// Pool buffers up to depth snapshots per class, evicting the oldest first.
type Pool struct {
	zEdges    []float64
	multEdges []float64
	depth     int
	buf       map[Key][]Snapshot
	size      int
}

// NewPool builds a pool with the given options applied over the defaults:
// z-vertex edges [-10, -2.5, 2.5, 10], multiplicity edges
// [0, 15, 25, 35, 50] and a depth of five events per class.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		zEdges:    []float64{-10, -2.5, 2.5, 10},
		multEdges: []float64{0, 15, 25, 35, 50},
		depth:     5,
		buf:       make(map[Key][]Snapshot),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key classifies an event, reporting false when it falls outside the edges
// on either axis. Such events neither mix nor enter the buffer.
func (p *Pool) Key(ev model.Event) (Key, bool) {
	z, ok := binIndex(p.zEdges, ev.PosZ)
	if !ok {
		return Key{}, false
	}
	m, ok := binIndex(p.multEdges, ev.Mult)
	if !ok {
		return Key{}, false
	}
	return Key{ZBin: z, MultBin: m}, true
}

// BinIndex flattens a key into a single ordinal suitable for a histogram
// axis: zBin*numMultBins + multBin.
func (p *Pool) BinIndex(k Key) int {
	return k.ZBin*(len(p.multEdges)-1) + k.MultBin
}

// Partners returns up to depth buffered snapshots from the event's class,
// newest first, never including the event itself. The second result is the
// class key, valid only when ok is true.
func (p *Pool) Partners(ev model.Event) ([]Snapshot, Key, bool) {
	k, ok := p.Key(ev)
	if !ok {
		return nil, Key{}, false
	}
	stored := p.buf[k]
	out := make([]Snapshot, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if stored[i].Event.ID == ev.ID {
			continue
		}
		out = append(out, stored[i])
	}
	return out, k, true
}

// Push buffers a snapshot into its class, evicting the oldest entry when
// the class is full. Events outside the edges are dropped.
func (p *Pool) Push(s Snapshot) {
	k, ok := p.Key(s.Event)
	if !ok {
		return
	}
	stored := p.buf[k]
	if len(stored) >= p.depth {
		over := len(stored) - p.depth + 1
		stored = append(stored[:0], stored[over:]...)
		p.size -= over
		for i := 0; i < over; i++ {
			metrics.RecordPoolEviction()
		}
	}
	p.buf[k] = append(stored, s)
	p.size++
	metrics.UpdatePoolSize(p.size)
}

// Len reports the number of buffered snapshots across all classes.
func (p *Pool) Len() int { return p.size }

// Reset drops everything buffered so far.
func (p *Pool) Reset() {
	p.buf = make(map[Key][]Snapshot)
	p.size = 0
	metrics.UpdatePoolSize(0)
}

// binIndex locates v in the half-open bins defined by edges, with the last
// bin closed on the right so v == edges[len-1] still lands inside.
func binIndex(edges []float64, v float64) (int, bool) {
	n := len(edges)
	if n < 2 || v < edges[0] || v > edges[n-1] {
		return 0, false
	}
	if v == edges[n-1] {
		return n - 2, true
	}
	i := sort.SearchFloat64s(edges, v)
	if i > 0 && edges[i] != v {
		i--
	}
	return i, true
}
