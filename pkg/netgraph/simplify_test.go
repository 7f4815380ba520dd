package netgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// chainGraph builds 1 - 2 - 3 - 4 where 2 and 3 are shape points.
func chainGraph() *Graph {
	g := New(CategoryDrive)
	pts := []orb.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	for i, pt := range pts {
		g.AddNode(Node{ID: osm.NodeID(i + 1), Point: pt})
	}
	for i := 1; i <= 3; i++ {
		g.AddEdge(Edge{
			From:     osm.NodeID(i),
			To:       osm.NodeID(i + 1),
			Way:      50,
			Geometry: orb.LineString{pts[i-1], pts[i]},
		})
	}
	return g
}

func TestSimplify_CollapsesChain(t *testing.T) {
	s := Simplify(chainGraph())

	if s.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2 (endpoints only)", s.NodeCount())
	}
	if s.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", s.EdgeCount())
	}

	e := s.Edges()[0]
	if len(e.Geometry) != 4 {
		t.Errorf("merged geometry has %d points, want 4 (shape preserved)", len(e.Geometry))
	}
	if e.Geometry[0] != (orb.Point{0, 0}) || e.Geometry[3] != (orb.Point{3, 0}) {
		t.Errorf("merged geometry endpoints wrong: %v", e.Geometry)
	}
}

func TestSimplify_KeepsIntersections(t *testing.T) {
	// A T-junction: 1-2-3 with a branch 2-4. Node 2 has degree 3 and
	// must survive.
	g := New(CategoryDrive)
	for i, pt := range []orb.Point{{0, 0}, {1, 0}, {2, 0}, {1, 1}} {
		g.AddNode(Node{ID: osm.NodeID(i + 1), Point: pt})
	}
	g.AddEdge(Edge{From: 1, To: 2, Way: 1, Geometry: orb.LineString{{0, 0}, {1, 0}}})
	g.AddEdge(Edge{From: 2, To: 3, Way: 1, Geometry: orb.LineString{{1, 0}, {2, 0}}})
	g.AddEdge(Edge{From: 2, To: 4, Way: 2, Geometry: orb.LineString{{1, 0}, {1, 1}}})

	s := Simplify(g)
	if s.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4 (nothing collapsible)", s.NodeCount())
	}
	if s.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", s.EdgeCount())
	}
	if _, ok := s.Node(2); !ok {
		t.Error("intersection node 2 must be kept")
	}
}

func TestSimplify_PureRing(t *testing.T) {
	// A closed loop of degree-2 nodes (e.g., a roundabout with no
	// connections in the extract). One anchor survives with a loop edge.
	g := New(CategoryDrive)
	pts := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, pt := range pts {
		g.AddNode(Node{ID: osm.NodeID(i + 1), Point: pt})
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		g.AddEdge(Edge{
			From:     osm.NodeID(i + 1),
			To:       osm.NodeID(j + 1),
			Way:      70,
			Geometry: orb.LineString{pts[i], pts[j]},
		})
	}

	s := Simplify(g)
	if s.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1 (single anchor)", s.NodeCount())
	}
	if s.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1 (loop edge)", s.EdgeCount())
	}
	e := s.Edges()[0]
	if e.From != e.To {
		t.Errorf("ring edge should be a loop, got %d -> %d", e.From, e.To)
	}
	if len(e.Geometry) != 5 {
		t.Errorf("loop geometry has %d points, want 5", len(e.Geometry))
	}
}

func TestSimplify_TwoJunctionRing(t *testing.T) {
	// A circular street 1-2-3-4-1 with entrances at 1 and 3. Both halves
	// of the ring run between the same junctions along the same way, so
	// they must survive as two distinct edges.
	g := New(CategoryDrive)
	pts := []orb.Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	for i, pt := range pts {
		g.AddNode(Node{ID: osm.NodeID(i + 1), Point: pt})
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		g.AddEdge(Edge{
			From:     osm.NodeID(i + 1),
			To:       osm.NodeID(j + 1),
			Way:      70,
			Geometry: orb.LineString{pts[i], pts[j]},
		})
	}
	g.AddNode(Node{ID: 10, Point: orb.Point{-1, 0}})
	g.AddNode(Node{ID: 11, Point: orb.Point{2, 1}})
	g.AddEdge(Edge{From: 10, To: 1, Way: 80, Geometry: orb.LineString{{-1, 0}, {0, 0}}})
	g.AddEdge(Edge{From: 3, To: 11, Way: 81, Geometry: orb.LineString{{1, 1}, {2, 1}}})

	s := Simplify(g)
	if s.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4 (junctions and branch ends)", s.NodeCount())
	}
	if s.EdgeCount() != 4 {
		t.Fatalf("EdgeCount = %d, want 4 (two branches and both ring halves)", s.EdgeCount())
	}

	var halves []Edge
	for _, e := range s.Edges() {
		if e.Way == 70 {
			halves = append(halves, e)
		}
	}
	if len(halves) != 2 {
		t.Fatalf("ring produced %d simplified edges, want 2", len(halves))
	}
	for _, e := range halves {
		if e.From != 1 || e.To != 3 {
			t.Errorf("ring half runs %d -> %d, want 1 -> 3", e.From, e.To)
		}
		if len(e.Geometry) != 3 {
			t.Errorf("ring half geometry has %d points, want 3", len(e.Geometry))
		}
	}
	if halves[0].Via == halves[1].Via {
		t.Errorf("ring halves share Via %d, want distinct interior nodes", halves[0].Via)
	}
}

func TestSimplify_IsolatedNodeKept(t *testing.T) {
	g := New(CategoryWalk)
	g.AddNode(Node{ID: 42, Point: orb.Point{5, 5}})

	s := Simplify(g)
	if _, ok := s.Node(42); !ok {
		t.Error("isolated node should be kept")
	}
}

func TestSimplify_PreservesCategory(t *testing.T) {
	s := Simplify(chainGraph())
	if s.Category != CategoryDrive {
		t.Errorf("Category = %q, want drive", s.Category)
	}
}
