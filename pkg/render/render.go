// Package render rasterizes combined street networks to PNG images:
// white edges on a black background with a caption along the bottom.
package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/basicfont"

	"github.com/mapforge/mapforge/pkg/errors"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

const (
	// DefaultSize is the canvas edge length in pixels. The canvas is
	// always square, matching the circular query region.
	DefaultSize = 1024

	// DefaultMargin is the fraction of the canvas kept clear around the
	// network on each side.
	DefaultMargin = 0.05

	// DefaultEdgeWidth is the stroke width for network edges in pixels.
	DefaultEdgeWidth = 0.5
)

// Options controls rasterization.
type Options struct {
	Size      int     // canvas edge length in pixels (default 1024)
	Margin    float64 // clear border fraction per side (default 0.05)
	EdgeWidth float64 // edge stroke width in pixels (default 0.5)
	Title     string  // caption override; empty derives one from place and provenance
}

func (o *Options) setDefaults() {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.EdgeWidth <= 0 {
		o.EdgeWidth = DefaultEdgeWidth
	}
}

// Render draws the combined network and returns the image. The place
// name appears with the category provenance in the bottom caption.
func Render(combined *netgraph.Combined, place string, opts Options) (image.Image, error) {
	if combined == nil || combined.EdgeCount() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render: combined graph is empty")
	}
	opts.setDefaults()

	dc := gg.NewContext(opts.Size, opts.Size)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	proj := newProjector(combined.Bound(), opts.Size, opts.Margin)

	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(opts.EdgeWidth)
	for _, e := range combined.Edges() {
		drawEdge(dc, proj, combined.Graph, e)
	}
	dc.Stroke()

	title := opts.Title
	if title == "" {
		title = Caption(place, combined.Provenance)
	}
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(title, float64(opts.Size)/2, float64(opts.Size)-16, 0.5, 0.5)

	return dc.Image(), nil
}

// WritePNG renders the combined network and PNG-encodes it to w.
func WritePNG(w io.Writer, combined *netgraph.Combined, place string, opts Options) error {
	img, err := Render(combined, place, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding png")
	}
	return nil
}

// Caption joins the place name with the provenance labels, e.g.
// "College Station, Texas | Drive and Bike Network".
func Caption(place string, provenance []string) string {
	if len(provenance) == 0 {
		return place
	}
	var cats string
	switch len(provenance) {
	case 1:
		cats = provenance[0]
	case 2:
		cats = provenance[0] + " and " + provenance[1]
	default:
		cats = strings.Join(provenance[:len(provenance)-1], ", ") + " and " + provenance[len(provenance)-1]
	}
	return fmt.Sprintf("%s | %s Network", place, cats)
}

func drawEdge(dc *gg.Context, proj projector, g *netgraph.Graph, e netgraph.Edge) {
	geom := e.Geometry
	if len(geom) < 2 {
		// Fall back to a straight segment between the endpoints.
		from, okF := g.Node(e.From)
		to, okT := g.Node(e.To)
		if !okF || !okT {
			return
		}
		geom = orb.LineString{from.Point, to.Point}
	}

	x, y := proj.project(geom[0])
	dc.MoveTo(x, y)
	for _, pt := range geom[1:] {
		x, y = proj.project(pt)
		dc.LineTo(x, y)
	}
}

// projector maps lon/lat onto canvas pixels: equirectangular with a
// cos(latitude) correction so streets keep their aspect, scaled to fit
// and centered.
type projector struct {
	bound   orb.Bound
	cosLat  float64
	scale   float64
	offsetX float64
	offsetY float64
}

func newProjector(b orb.Bound, size int, margin float64) projector {
	mid := (b.Min.Lat() + b.Max.Lat()) / 2
	cosLat := math.Cos(mid * math.Pi / 180)

	w := (b.Max.Lon() - b.Min.Lon()) * cosLat
	h := b.Max.Lat() - b.Min.Lat()
	extent := math.Max(w, h)
	if extent <= 0 {
		extent = 1e-9
	}

	usable := float64(size) * (1 - 2*margin)
	scale := usable / extent

	return projector{
		bound:   b,
		cosLat:  cosLat,
		scale:   scale,
		offsetX: (float64(size) - w*scale) / 2,
		offsetY: (float64(size) - h*scale) / 2,
	}
}

func (p projector) project(pt orb.Point) (x, y float64) {
	x = (pt.Lon()-p.bound.Min.Lon())*p.cosLat*p.scale + p.offsetX
	y = (p.bound.Max.Lat()-pt.Lat())*p.scale + p.offsetY
	return x, y
}
