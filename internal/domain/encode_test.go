package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		value *float64
		want  Category
	}{
		{"hot", ParamTemperature, ptr(29), CategoryHot},
		{"28 is warm not hot", ParamTemperature, ptr(28.0), CategoryWarm},
		{"20 is warm", ParamTemperature, ptr(20), CategoryWarm},
		{"just below 20 is moderate", ParamTemperature, ptr(19.99), CategoryModerate},
		{"15 is moderate not cold", ParamTemperature, ptr(15.0), CategoryModerate},
		{"cold", ParamTemperature, ptr(14), CategoryCold},

		{"high salinity", ParamSalinity, ptr(36.1), CategoryHighSalinity},
		{"36 is normal", ParamSalinity, ptr(36), CategoryNormalSalinity},
		{"34 is normal", ParamSalinity, ptr(34), CategoryNormalSalinity},
		{"low salinity", ParamSalinity, ptr(33.9), CategoryLowSalinity},

		{"surface", ParamDepth, ptr(0), CategorySurface},
		{"50 is shallow", ParamDepth, ptr(50), CategoryShallow},
		{"200 is middle", ParamDepth, ptr(200), CategoryMiddle},
		{"1000 is deep", ParamDepth, ptr(1000), CategoryDeep},
		{"2000 is deep", ParamDepth, ptr(2000), CategoryDeep},
		{"abyssal", ParamDepth, ptr(2000.5), CategoryAbyssal},

		{"nil value", ParamTemperature, nil, CategoryUnclassified},
		{"no parameter", ParamNone, ptr(20), CategoryUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.param, tt.value))
		})
	}
}

func TestCategoryGlyph(t *testing.T) {
	assert.Equal(t, "🔥", CategoryHot.Glyph())
	assert.Equal(t, "🐋", CategoryAbyssal.Glyph())
	assert.Equal(t, "❔", Category("nonsense").Glyph())
}

func TestRegionMarker(t *testing.T) {
	cat, glyph := RegionMarker(RegionArabianSea)
	assert.Equal(t, Category("Arabian Sea"), cat)
	assert.Equal(t, "🟠", glyph)

	cat, glyph = RegionMarker(RegionAll)
	assert.Equal(t, Category(RegionUnclassified), cat)
	assert.Equal(t, "⚫", glyph)
}
