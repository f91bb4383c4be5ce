package sink

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Axis is one binned dimension of a histogram.
type Axis struct {
	edges []float64
}

// UniformAxis spans [min, max] with n equal-width bins.
func UniformAxis(n int, min, max float64) Axis {
	return Axis{edges: floats.Span(make([]float64, n+1), min, max)}
}

// VariableAxis uses the given strictly increasing edges directly.
func VariableAxis(edges []float64) Axis {
	return Axis{edges: append([]float64(nil), edges...)}
}

// Bins reports the number of bins on the axis.
func (a Axis) Bins() int { return len(a.edges) - 1 }

// Edges returns the axis edges.
func (a Axis) Edges() []float64 { return a.edges }

// index locates v on the axis, false for under/overflow. The last bin is
// closed on the right.
func (a Axis) index(v float64) (int, bool) {
	n := len(a.edges)
	if v < a.edges[0] || v > a.edges[n-1] {
		return 0, false
	}
	if v == a.edges[n-1] {
		return n - 2, true
	}
	i := sort.SearchFloat64s(a.edges, v)
	if i > 0 && a.edges[i] != v {
		i--
	}
	return i, true
}

// histogram is an n-dimensional weighted histogram over registered axes.
type histogram struct {
	axes    []Axis
	weights []float64
	entries int
	dropped int
}

func (h *histogram) fill(weight float64, values []float64) bool {
	if len(values) != len(h.axes) {
		return false
	}
	flat := 0
	for d, axis := range h.axes {
		i, ok := axis.index(values[d])
		if !ok {
			h.dropped++
			return true
		}
		flat = flat*axis.Bins() + i
	}
	h.weights[flat] += weight
	h.entries++
	return true
}

// Memory is an in-process Sink. Fills addressed to a registered histogram
// are binned; the rest are kept as raw series so nothing is silently lost.
type Memory struct {
	mu     sync.Mutex
	hists  map[string]*histogram
	series map[string][][]float64
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		hists:  make(map[string]*histogram),
		series: make(map[string][][]float64),
	}
}

// Register declares a histogram of the given axes under name. Registering
// the same name twice replaces the previous histogram.
func (m *Memory) Register(name string, axes ...Axis) {
	m.mu.Lock()
	defer m.mu.Unlock()
	size := 1
	for _, a := range axes {
		size *= a.Bins()
	}
	m.hists[name] = &histogram{axes: axes, weights: make([]float64, size)}
}

// Fill implements Sink.
func (m *Memory) Fill(name string, weight float64, values ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hists[name]; ok && h.fill(weight, values) {
		return
	}
	row := append([]float64{weight}, values...)
	m.series[name] = append(m.series[name], row)
}

// Weights returns a copy of the named histogram's flattened bin contents,
// or nil when the name is unknown.
func (m *Memory) Weights(name string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hists[name]
	if !ok {
		return nil
	}
	return append([]float64(nil), h.weights...)
}

// Entries reports how many fills landed in the named histogram's bins.
func (m *Memory) Entries(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hists[name]; ok {
		return h.entries
	}
	return len(m.series[name])
}

// Dropped reports the under/overflow count of the named histogram.
func (m *Memory) Dropped(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hists[name]; ok {
		return h.dropped
	}
	return 0
}

// Axes returns the named histogram's axes, or nil when unknown.
func (m *Memory) Axes(name string) []Axis {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hists[name]; ok {
		return h.axes
	}
	return nil
}

// Names lists every histogram name, sorted.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.hists))
	for name := range m.hists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Series returns the raw rows buffered under name, weight first.
func (m *Memory) Series(name string) [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.series[name]
}

// Summary describes one histogram's bin-content distribution.
type Summary struct {
	Name    string
	Entries int
	Dropped int
	Sum     float64
	Mean    float64
	StdDev  float64
}

// Summarize computes per-histogram statistics over the bin contents.
func (m *Memory) Summarize(name string) (Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hists[name]
	if !ok {
		return Summary{}, false
	}
	return Summary{
		Name:    name,
		Entries: h.entries,
		Dropped: h.dropped,
		Sum:     floats.Sum(h.weights),
		Mean:    stat.Mean(h.weights, nil),
		StdDev:  stat.StdDev(h.weights, nil),
	}, true
}
