package mixing

// Option configures a Pool.
type Option func(*Pool)

// WithZVertexEdges overrides the z-vertex class edges. Edges must be
// strictly increasing; validation lives with the config loader.
func WithZVertexEdges(edges []float64) Option {
	return func(p *Pool) {
		if len(edges) >= 2 {
			p.zEdges = append([]float64(nil), edges...)
		}
	}
}

// WithMultiplicityEdges overrides the multiplicity class edges.
func WithMultiplicityEdges(edges []float64) Option {
	return func(p *Pool) {
		if len(edges) >= 2 {
			p.multEdges = append([]float64(nil), edges...)
		}
	}
}

// WithDepth sets how many events each class retains.
func WithDepth(depth int) Option {
	return func(p *Pool) {
		if depth > 0 {
			p.depth = depth
		}
	}
}
