package overpass

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mapforge/mapforge/pkg/geo"
	"github.com/mapforge/mapforge/pkg/netgraph"
)

// queryTimeout is the server-side timeout requested from Overpass, in
// seconds. Distinct from the HTTP client timeout.
const queryTimeout = 180

// highwayFilters selects which OSM ways count as routable for each
// network category. The exclusion lists follow common Overpass
// conventions for drive, bike and walk networks.
var highwayFilters = map[netgraph.Category]string{
	netgraph.CategoryDrive: `["highway"]["area"!="yes"]` +
		`["highway"!~"abandoned|bridleway|bus_guideway|construction|corridor|cycleway|elevator|escalator|footway|path|pedestrian|planned|platform|proposed|raceway|steps|track"]` +
		`["motor_vehicle"!~"no"]["motorcar"!~"no"]` +
		`["service"!~"alley|driveway|emergency_access|parking|parking_aisle|private"]`,
	netgraph.CategoryBike: `["highway"]["area"!="yes"]` +
		`["highway"!~"abandoned|bus_guideway|construction|corridor|elevator|escalator|footway|motor|planned|platform|proposed|raceway|steps"]` +
		`["bicycle"!~"no"]["service"!~"private"]`,
	netgraph.CategoryWalk: `["highway"]["area"!="yes"]` +
		`["highway"!~"abandoned|bus_guideway|construction|cycleway|motor|planned|platform|proposed|raceway"]` +
		`["foot"!~"no"]["service"!~"private"]`,
}

// buildQuery assembles the Overpass QL request for one category,
// clipped to the region's geographic boundary. The `>` recursion pulls
// in every node referenced by a matched way so way geometry is complete.
func buildQuery(region *geo.Region, cat netgraph.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", queryTimeout)
	fmt.Fprintf(&b, "way%s(poly:%q);\n", highwayFilters[cat], polyClause(region))
	b.WriteString("out body;\n>;\nout skel qt;")
	return b.String()
}

// polyClause renders the region boundary as the "lat lon lat lon ..."
// vertex list Overpass expects inside a poly filter.
func polyClause(region *geo.Region) string {
	ring := region.Boundary()
	parts := make([]string, 0, len(ring)*2)
	for _, pt := range ring {
		parts = append(parts,
			strconv.FormatFloat(pt.Lat(), 'f', 7, 64),
			strconv.FormatFloat(pt.Lon(), 'f', 7, 64))
	}
	return strings.Join(parts, " ")
}
