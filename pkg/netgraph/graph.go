package netgraph

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Node is a point in the street network with a stable OSM identity.
type Node struct {
	ID    osm.NodeID
	Point orb.Point // lon/lat
}

// Edge connects two nodes along (part of) an OSM way. Geometry runs from
// From to To and includes both endpoints; after simplification it also
// includes the interstitial points that were collapsed.
type Edge struct {
	From osm.NodeID
	To   osm.NodeID
	Way  osm.WayID

	// Via is the first interior node collapsed into the edge during
	// simplification. It distinguishes parallel chains of the same way
	// between the same two endpoints, such as the two halves of a loop
	// road with exactly two junctions. Zero for raw edges.
	Via osm.NodeID

	Geometry orb.LineString
	Tags     osm.Tags
}

// edgeKey identifies an edge for deduplication during union. Two category
// fetches that both return the same stretch of road produce the same key.
type edgeKey struct {
	from, to osm.NodeID
	way      osm.WayID
	via      osm.NodeID
}

func (e Edge) key() edgeKey {
	return edgeKey{e.From, e.To, e.Way, e.Via}
}

// Graph is one category's routable network clipped to a query region.
type Graph struct {
	Category Category

	nodes map[osm.NodeID]Node
	edges map[edgeKey]Edge
}

// New creates an empty graph for the given category.
func New(cat Category) *Graph {
	return &Graph{
		Category: cat,
		nodes:    make(map[osm.NodeID]Node),
		edges:    make(map[edgeKey]Edge),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// AddEdge inserts an edge, deduplicating on (from, to, way, via).
func (g *Graph) AddEdge(e Edge) {
	g.edges[e.key()] = e
}

// Node looks up a node by its OSM ID.
func (g *Graph) Node(id osm.NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasEdge reports whether the raw edge (from, to, way) is present.
// Simplified edges carry a Via discriminator and are not matched.
func (g *Graph) HasEdge(from, to osm.NodeID, way osm.WayID) bool {
	_, ok := g.edges[edgeKey{from: from, to: to, way: way}]
	return ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges sorted by (from, to, way) for deterministic iteration.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Way < b.Way
	})
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Bound returns the geographic bounding box of all edge geometry.
// The zero bound is returned for an empty graph.
func (g *Graph) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, e := range g.edges {
		eb := e.Geometry.Bound()
		if first {
			b = eb
			first = false
			continue
		}
		b = b.Union(eb)
	}
	if first {
		for _, n := range g.nodes {
			pb := orb.Bound{Min: n.Point, Max: n.Point}
			if first {
				b = pb
				first = false
				continue
			}
			b = b.Union(pb)
		}
	}
	return b
}

// compose merges other's nodes and edges into g. Existing entries win,
// which keeps the operation idempotent.
func (g *Graph) compose(other *Graph) {
	for id, n := range other.nodes {
		if _, ok := g.nodes[id]; !ok {
			g.nodes[id] = n
		}
	}
	for k, e := range other.edges {
		if _, ok := g.edges[k]; !ok {
			g.edges[k] = e
		}
	}
}
