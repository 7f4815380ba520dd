package netgraph

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Simplify collapses interstitial degree-2 nodes: points along a road
// that only record its shape, not a real intersection. Each chain of
// such nodes becomes a single edge whose geometry concatenates the
// collapsed segments, so the drawn shape is unchanged while the graph
// shrinks considerably.
//
// Endpoints, intersections (degree != 2) and isolated nodes are kept.
// Closed loops made entirely of degree-2 nodes keep one anchor node.
func Simplify(g *Graph) *Graph {
	adj := make(map[osm.NodeID][]Edge, g.NodeCount())
	for _, e := range g.Edges() {
		adj[e.From] = append(adj[e.From], e)
		if e.To != e.From {
			adj[e.To] = append(adj[e.To], e)
		} else {
			// Self-loop contributes twice to the degree.
			adj[e.To] = append(adj[e.To], e)
		}
	}

	keep := func(id osm.NodeID) bool { return len(adj[id]) != 2 }

	out := New(g.Category)
	consumed := make(map[edgeKey]bool, g.EdgeCount())

	// Chains anchored at kept nodes.
	for _, n := range g.Nodes() {
		if !keep(n.ID) {
			continue
		}
		out.AddNode(n)
		for _, e := range adj[n.ID] {
			if consumed[e.key()] {
				continue
			}
			merged, end := walkChain(g, adj, keep, n.ID, e, consumed)
			out.AddNode(mustNode(g, end))
			out.AddEdge(merged)
		}
	}

	// Pure rings: every node on the cycle has degree 2, so no kept node
	// anchors it. Pick the lowest node ID as the anchor.
	remaining := make([]Edge, 0)
	for _, e := range g.Edges() {
		if !consumed[e.key()] {
			remaining = append(remaining, e)
		}
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].From < remaining[j].From })
	for _, e := range remaining {
		if consumed[e.key()] {
			continue
		}
		anchor := e.From
		out.AddNode(mustNode(g, anchor))
		merged, _ := walkChain(g, adj, func(id osm.NodeID) bool { return id == anchor }, anchor, e, consumed)
		out.AddEdge(merged)
	}

	return out
}

// walkChain follows edges from start through successive degree-2 nodes
// until it reaches a node satisfying keep, concatenating geometry as it
// goes. It marks every traversed edge as consumed and returns the merged
// edge plus the terminal node ID. The first interior node becomes the
// merged edge's Via, so two chains of the same way between the same kept
// nodes stay distinct edges.
func walkChain(g *Graph, adj map[osm.NodeID][]Edge, keep func(osm.NodeID) bool, start osm.NodeID, first Edge, consumed map[edgeKey]bool) (Edge, osm.NodeID) {
	geometry := orb.LineString{}
	var via osm.NodeID
	cur := start
	e := first

	for {
		consumed[e.key()] = true

		seg := orientGeometry(e, cur)
		if len(geometry) == 0 {
			geometry = append(geometry, seg...)
		} else {
			geometry = append(geometry, seg[1:]...)
		}

		next := e.To
		if next == cur && e.From != e.To {
			next = e.From
		}
		cur = next

		if keep(cur) {
			return Edge{
				From:     start,
				To:       cur,
				Way:      first.Way,
				Via:      via,
				Geometry: geometry,
				Tags:     first.Tags,
			}, cur
		}
		if via == 0 {
			via = cur
		}

		// Degree-2 node: continue along the one edge we didn't arrive by.
		found := false
		for _, cand := range adj[cur] {
			if !consumed[cand.key()] {
				e = cand
				found = true
				break
			}
		}
		if !found {
			// Dead end inside a chain (both edges consumed); terminate here.
			return Edge{
				From:     start,
				To:       cur,
				Way:      first.Way,
				Via:      via,
				Geometry: geometry,
				Tags:     first.Tags,
			}, cur
		}
	}
}

// orientGeometry returns the edge geometry running away from the node from.
func orientGeometry(e Edge, from osm.NodeID) orb.LineString {
	if e.From == from {
		return e.Geometry
	}
	rev := make(orb.LineString, len(e.Geometry))
	for i, pt := range e.Geometry {
		rev[len(e.Geometry)-1-i] = pt
	}
	return rev
}

func mustNode(g *Graph, id osm.NodeID) Node {
	n, _ := g.Node(id)
	return n
}
