package netgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// FromOSM builds a network graph from raw OSM data: one node per OSM
// node referenced by a way, one edge per consecutive node pair along
// each way. Way nodes missing from the node set (clipped at the region
// boundary by the data source) terminate their segment chain.
func FromOSM(data *osm.OSM, cat Category) *Graph {
	g := New(cat)

	points := make(map[osm.NodeID]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		points[n.ID] = orb.Point{n.Lon, n.Lat}
	}

	for _, way := range data.Ways {
		var prev *Node
		for _, wn := range way.Nodes {
			pt, ok := points[wn.ID]
			if !ok {
				prev = nil
				continue
			}
			cur := Node{ID: wn.ID, Point: pt}
			g.AddNode(cur)
			if prev != nil {
				g.AddEdge(Edge{
					From:     prev.ID,
					To:       cur.ID,
					Way:      way.ID,
					Geometry: orb.LineString{prev.Point, cur.Point},
					Tags:     way.Tags,
				})
			}
			prev = &cur
		}
	}

	return g
}
