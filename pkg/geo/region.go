package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mapforge/mapforge/pkg/errors"
)

// bufferSegments is the number of vertices approximating the buffer disk.
// 64 keeps the polygon area within 0.2% of the true circle.
const bufferSegments = 64

// Region is the buffered query area around a geocoded place. It carries
// two representations of the same boundary: the metric one in the
// projected CRS the buffer was computed in, and the geographic one used
// as the query shape for network retrieval.
type Region struct {
	Center Coordinate
	Radius float64 // meters, as measured in the projected system
	CRS    int     // EPSG code the buffer was computed in

	projected orb.Ring
	boundary  orb.Ring
}

// BuildRegion constructs the buffered region around coord.
//
// The buffer is computed entirely in the projected system: the point is
// reprojected, a disk of radiusMeters is traced around it, and each
// vertex is reprojected back to WGS84. Any transform failure (invalid
// domain) surfaces as a REPROJECTION_FAILED error with the cause.
func BuildRegion(coord Coordinate, radiusMeters float64, crs *CRS) (*Region, error) {
	if radiusMeters <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRadius, "radius must be positive, got %g m", radiusMeters)
	}

	center, err := crs.Forward(coord.Point())
	if err != nil {
		return nil, err
	}

	projected := make(orb.Ring, 0, bufferSegments+1)
	boundary := make(orb.Ring, 0, bufferSegments+1)
	for i := 0; i <= bufferSegments; i++ {
		theta := 2 * math.Pi * float64(i%bufferSegments) / bufferSegments
		pt := orb.Point{
			center[0] + radiusMeters*math.Cos(theta),
			center[1] + radiusMeters*math.Sin(theta),
		}
		geo, err := crs.Inverse(pt)
		if err != nil {
			return nil, err
		}
		projected = append(projected, pt)
		boundary = append(boundary, geo)
	}

	return &Region{
		Center:    coord,
		Radius:    radiusMeters,
		CRS:       crs.Code,
		projected: projected,
		boundary:  boundary,
	}, nil
}

// Polygon returns the geographic (lon/lat) boundary as the query shape
// for the network data source.
func (r *Region) Polygon() orb.Polygon {
	return orb.Polygon{r.boundary}
}

// Boundary returns the geographic boundary ring.
func (r *Region) Boundary() orb.Ring {
	return r.boundary
}

// ProjectedArea returns the area of the buffer in the projected plane,
// in square projected units. For a well-chosen CRS this approximates the
// ground area pi*r^2.
func (r *Region) ProjectedArea() float64 {
	return math.Abs(planar.Area(r.projected))
}

// Bound returns the geographic bounding box of the region.
func (r *Region) Bound() orb.Bound {
	return r.boundary.Bound()
}
