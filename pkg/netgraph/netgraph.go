// Package netgraph models routable street networks fetched from
// OpenStreetMap: nodes keyed by their stable OSM identifier, edges
// carrying way attributes and geometry, and the union operation that
// fuses several per-category networks into one combined graph.
//
// Node identity is the OSM node ID. The data source assigns the same ID
// to the same real-world intersection regardless of which category query
// returned it, which is what makes the union across categories correct:
// a road that is also a bike lane appears once, not twice.
package netgraph

import (
	"strings"

	"github.com/mapforge/mapforge/pkg/errors"
)

// Category identifies which transportation mode's network to fetch.
type Category string

// The supported network categories.
const (
	CategoryDrive Category = "drive"
	CategoryBike  Category = "bike"
	CategoryWalk  Category = "walk"
)

// AllCategories lists every supported category in display order.
var AllCategories = []Category{CategoryDrive, CategoryBike, CategoryWalk}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDrive:
		return CategoryDrive, nil
	case CategoryBike:
		return CategoryBike, nil
	case CategoryWalk:
		return CategoryWalk, nil
	}
	return "", errors.New(errors.ErrCodeInvalidCategory,
		"unknown network category: %q (must be one of: drive, bike, walk)", s)
}

// Label returns the display form of the category ("drive" -> "Drive").
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}
