package domain

// Category is a symbolic bucket for a measured value or a region.
type Category string

const (
	CategoryUnclassified Category = "unclassified"

	CategoryHot      Category = "hot"
	CategoryWarm     Category = "warm"
	CategoryModerate Category = "moderate"
	CategoryCold     Category = "cold"

	CategoryHighSalinity   Category = "high"
	CategoryNormalSalinity Category = "normal"
	CategoryLowSalinity    Category = "low"

	CategorySurface Category = "surface"
	CategoryShallow Category = "shallow"
	CategoryMiddle  Category = "middle"
	CategoryDeep    Category = "deep"
	CategoryAbyssal Category = "abyssal"
)

var categoryGlyphs = map[Category]string{
	CategoryUnclassified: "❔",

	CategoryHot:      "🔥",
	CategoryWarm:     "☀️",
	CategoryModerate: "🌤️",
	CategoryCold:     "❄️",

	CategoryHighSalinity:   "🧂",
	CategoryNormalSalinity: "🌊",
	CategoryLowSalinity:    "💧",

	CategorySurface: "🏄",
	CategoryShallow: "🐠",
	CategoryMiddle:  "🐙",
	CategoryDeep:    "🦑",
	CategoryAbyssal: "🐋",
}

var regionGlyphs = map[Region]string{
	RegionArabianSea:       "🟠",
	RegionBayOfBengal:      "🔵",
	RegionSouthernOcean:    "⚪",
	RegionEquatorialIndian: "🟢",
	RegionMadagascarRidge:  "🟣",
	RegionUnclassified:     "⚫",
}

// Glyph returns the emoji drawn for a category.
func (c Category) Glyph() string {
	if g, ok := categoryGlyphs[c]; ok {
		return g
	}
	return categoryGlyphs[CategoryUnclassified]
}

// RegionMarker returns the category and glyph used when a point is encoded
// by region rather than by a measured value.
func RegionMarker(r Region) (Category, string) {
	g, ok := regionGlyphs[r]
	if !ok {
		r = RegionUnclassified
		g = regionGlyphs[r]
	}
	return Category(r), g
}

// Categorize buckets a value of parameter p. A nil value is unclassified.
func Categorize(p Parameter, v *float64) Category {
	if v == nil {
		return CategoryUnclassified
	}
	switch p {
	case ParamTemperature:
		return temperatureCategory(*v)
	case ParamSalinity:
		return salinityCategory(*v)
	case ParamDepth:
		return depthCategory(*v)
	default:
		return CategoryUnclassified
	}
}

// temperatureCategory: >28 hot, [20,28] warm, [15,20) moderate, <15 cold.
func temperatureCategory(t float64) Category {
	switch {
	case t > 28:
		return CategoryHot
	case t >= 20:
		return CategoryWarm
	case t >= 15:
		return CategoryModerate
	default:
		return CategoryCold
	}
}

// salinityCategory: >36 high, [34,36] normal, <34 low.
func salinityCategory(s float64) Category {
	switch {
	case s > 36:
		return CategoryHighSalinity
	case s >= 34:
		return CategoryNormalSalinity
	default:
		return CategoryLowSalinity
	}
}

// depthCategory: [0,50) surface, [50,200) shallow, [200,1000) middle,
// [1000,2000] deep, >2000 abyssal.
func depthCategory(d float64) Category {
	switch {
	case d < 0:
		return CategoryUnclassified
	case d < 50:
		return CategorySurface
	case d < 200:
		return CategoryShallow
	case d < 1000:
		return CategoryMiddle
	case d <= 2000:
		return CategoryDeep
	default:
		return CategoryAbyssal
	}
}
