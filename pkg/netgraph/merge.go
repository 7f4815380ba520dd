package netgraph

// Combined is the union of one or more per-category graphs. Nodes and
// edges shared across categories appear once; Provenance preserves the
// caller-supplied category order for labeling.
type Combined struct {
	*Graph
	Provenance []string
}

// Merge unions the given graphs into one combined graph.
//
// A single graph is wrapped as-is with its one-category provenance.
// For multiple graphs the union is commutative and idempotent: node and
// edge identity comes from the data source, so composition order cannot
// change the resulting node/edge set. Graphs share a coordinate system
// by construction; no validation is performed here.
//
// The caller guarantees a non-empty sequence; Merge returns nil for an
// empty one.
func Merge(graphs []*Graph) *Combined {
	if len(graphs) == 0 {
		return nil
	}

	provenance := make([]string, len(graphs))
	for i, g := range graphs {
		provenance[i] = g.Category.Label()
	}

	if len(graphs) == 1 {
		return &Combined{Graph: graphs[0], Provenance: provenance}
	}

	union := New("")
	for _, g := range graphs {
		union.compose(g)
	}
	return &Combined{Graph: union, Provenance: provenance}
}
