package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"

	"github.com/mapforge/mapforge/pkg/errors"
)

// EPSGWGS84 is the geographic reference system used for all boundary
// polygons handed to the network data source.
const EPSGWGS84 = 4326

// CRS is a projected coordinate reference system identified by its EPSG
// code, with transforms to and from WGS84 longitude/latitude.
type CRS struct {
	Code    int
	forward wgs84.Func // lon/lat -> projected
	inverse wgs84.Func // projected -> lon/lat
}

// LookupCRS resolves a numeric EPSG code against the supported EPSG table.
// Unknown codes return an INVALID_CRS error; the pipeline does not
// auto-select a CRS on the caller's behalf.
func LookupCRS(code int) (*CRS, error) {
	crs := wgs84.EPSG().Code(code)
	if crs == nil {
		return nil, errors.New(errors.ErrCodeInvalidCRS, "unsupported EPSG code: %d", code)
	}
	return &CRS{
		Code:    code,
		forward: wgs84.Transform(wgs84.LonLat(), crs),
		inverse: wgs84.Transform(crs, wgs84.LonLat()),
	}, nil
}

// Forward reprojects a geographic point (lon/lat) into the projected system.
// A coordinate outside the CRS's valid domain surfaces as a
// REPROJECTION_FAILED error rather than a silently wrong position.
func (c *CRS) Forward(pt orb.Point) (orb.Point, error) {
	x, y, _ := c.forward(pt[0], pt[1], 0)
	if !finite(x) || !finite(y) {
		return orb.Point{}, errors.New(errors.ErrCodeReprojectionFailed,
			"coordinate %.4f,%.4f is outside the valid domain of EPSG:%d", pt[1], pt[0], c.Code)
	}
	return orb.Point{x, y}, nil
}

// Inverse reprojects a projected point back to geographic lon/lat.
func (c *CRS) Inverse(pt orb.Point) (orb.Point, error) {
	lon, lat, _ := c.inverse(pt[0], pt[1], 0)
	if !finite(lon) || !finite(lat) {
		return orb.Point{}, errors.New(errors.ErrCodeReprojectionFailed,
			"projected point %.1f,%.1f has no geographic equivalent in EPSG:%d", pt[0], pt[1], c.Code)
	}
	return orb.Point{lon, lat}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
