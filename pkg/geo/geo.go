// Package geo provides the spatial primitives for the map pipeline:
// geographic coordinates, EPSG coordinate reference systems, and the
// buffered query region built around a geocoded place.
//
// Buffering happens in a projected CRS so the radius is a true ground
// distance. Buffering directly in longitude/latitude would produce a
// radius that varies with latitude, which is a correctness bug, not a
// shortcut. The resulting polygon is re-expressed in WGS84 because the
// network data source expects geographic coordinates.
package geo

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Coordinate is a geographic (WGS84) position. Immutable once resolved.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the coordinate as an orb point in lon/lat order.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// GeocodeResult is the outcome of resolving a place name: the coordinate
// plus the canonical display address reported by the resolution service.
// The address is used for map labeling, not for further lookups.
type GeocodeResult struct {
	Coordinate Coordinate `json:"coordinate"`
	Address    string     `json:"address"`
}
