package render

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

func testCombined() *netgraph.Combined {
	g := netgraph.New(netgraph.CategoryDrive)
	pts := []orb.Point{{-96.34, 30.62}, {-96.33, 30.63}, {-96.32, 30.62}}
	for i, pt := range pts {
		g.AddNode(netgraph.Node{ID: osm.NodeID(i + 1), Point: pt})
	}
	g.AddEdge(netgraph.Edge{From: 1, To: 2, Way: 1, Geometry: orb.LineString{pts[0], pts[1]}})
	g.AddEdge(netgraph.Edge{From: 2, To: 3, Way: 1, Geometry: orb.LineString{pts[1], pts[2]}})
	return netgraph.Merge([]*netgraph.Graph{g})
}

func TestRender(t *testing.T) {
	img, err := Render(testCombined(), "College Station, Texas", Options{Size: 256})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("image is %dx%d, want 256x256", b.Dx(), b.Dy())
	}

	// Background is black.
	r, g, bl, _ := img.At(2, 2).RGBA()
	if r != 0 || g != 0 || bl != 0 {
		t.Errorf("corner pixel = %v, want black", img.At(2, 2))
	}

	// Something white was drawn.
	if !hasBrightPixel(img, 256) {
		t.Error("no bright pixels found; edges were not drawn")
	}
}

func hasBrightPixel(img image.Image, size int) bool {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r > 0x8000 {
				return true
			}
		}
	}
	return false
}

func TestRender_EmptyGraph(t *testing.T) {
	empty := netgraph.Merge([]*netgraph.Graph{netgraph.New(netgraph.CategoryDrive)})
	_, err := Render(empty, "nowhere", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}

	_, err = Render(nil, "nowhere", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT for nil graph", err)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testCombined(), "College Station, Texas", Options{Size: 128}); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("decoded width = %d, want 128", img.Bounds().Dx())
	}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		prov []string
		want string
	}{
		{[]string{"Drive"}, "Bryan | Drive Network"},
		{[]string{"Drive", "Bike"}, "Bryan | Drive and Bike Network"},
		{[]string{"Drive", "Bike", "Walk"}, "Bryan | Drive, Bike and Walk Network"},
		{nil, "Bryan"},
	}
	for _, tt := range tests {
		if got := Caption("Bryan", tt.prov); got != tt.want {
			t.Errorf("Caption(%v) = %q, want %q", tt.prov, got, tt.want)
		}
	}
}
