// Package sink abstracts where analysis fills end up. The accumulator only
// talks to the Sink interface; the in-memory implementation here backs tests
// and report generation, while other backends can be swapped in without
// touching the domain code.
package sink

// Sink receives weighted fills addressed by name. A fill's arity is fixed
// per name: one value for a spectrum, two or more for correlation tuples.
type Sink interface {
	Fill(name string, weight float64, values ...float64)
}

// Discard drops every fill. Useful when a processing path is disabled.
type Discard struct{}

func (Discard) Fill(string, float64, ...float64) {}
