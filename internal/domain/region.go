package domain

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Region is an ocean basin derived from a record's coordinates.
type Region string

const (
	RegionUnset            Region = ""
	RegionAll              Region = "all"
	RegionArabianSea       Region = "Arabian Sea"
	RegionBayOfBengal      Region = "Bay of Bengal"
	RegionSouthernOcean    Region = "Southern Ocean"
	RegionEquatorialIndian Region = "Equatorial Indian"
	RegionMadagascarRidge  Region = "Madagascar Ridge"
	RegionUnclassified     Region = "Unclassified"
)

// Regions lists the classifiable basins, Unclassified last.
var Regions = []Region{
	RegionArabianSea,
	RegionBayOfBengal,
	RegionSouthernOcean,
	RegionEquatorialIndian,
	RegionMadagascarRidge,
	RegionUnclassified,
}

// IsSpecific reports whether r names a single basin (not unset or "all").
func (r Region) IsSpecific() bool {
	return r != RegionUnset && r != RegionAll
}

// ParseRegion matches s against region names case-insensitively.
// It returns false for anything outside the closed vocabulary.
func ParseRegion(s string) (Region, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(RegionAll)) {
		return RegionAll, true
	}
	for _, r := range Regions {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return RegionUnset, false
}

// regionShape pairs a region with its outline. Points are (lon, lat).
type regionShape struct {
	region  Region
	polygon orb.Polygon
}

// regionShapes is checked in order; the first containing polygon wins.
// Madagascar Ridge precedes Southern Ocean because they share the 40°S edge.
var regionShapes = []regionShape{
	{RegionArabianSea, orb.Polygon{orb.Ring{
		{43, 11}, {51, 25}, {67, 25.5}, {73, 21}, {77.5, 8}, {77.5, 5}, {50, 5}, {43, 11},
	}}},
	{RegionBayOfBengal, orb.Polygon{orb.Ring{
		{78, 5}, {78, 10}, {80, 16}, {86, 22.5}, {92, 22.5}, {95, 16}, {98, 10}, {98, 5}, {78, 5},
	}}},
	{RegionEquatorialIndian, orb.Polygon{orb.Ring{
		{40, -10}, {40, 5}, {100, 5}, {100, -10}, {40, -10},
	}}},
	{RegionMadagascarRidge, orb.Polygon{orb.Ring{
		{40, -40}, {40, -25}, {50, -25}, {50, -40}, {40, -40},
	}}},
	{RegionSouthernOcean, orb.Polygon{orb.Ring{
		{-180, -90}, {-180, -40}, {180, -40}, {180, -90}, {-180, -90},
	}}},
}

// ClassifyRegion returns the basin containing (lat, lon), or Unclassified.
func ClassifyRegion(lat, lon float64) Region {
	pt := orb.Point{lon, lat}
	for _, s := range regionShapes {
		if planar.PolygonContains(s.polygon, pt) {
			return s.region
		}
	}
	return RegionUnclassified
}
