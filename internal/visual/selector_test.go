package visual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floatchat/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func records() []domain.MeasurementRecord {
	return []domain.MeasurementRecord{
		{ID: "as-1", Latitude: 15, Longitude: 65, Timestamp: day(2022, 3, 1), TemperatureC: ptr(29), SalinityPSU: ptr(36.5)},
		{ID: "as-2", Latitude: 18, Longitude: 62, Timestamp: day(2023, 9, 1), TemperatureC: ptr(22), SalinityPSU: ptr(35.8)},
		{ID: "bb-1", Latitude: 15, Longitude: 88, Timestamp: day(2024, 1, 10), TemperatureC: ptr(14), SalinityPSU: ptr(33.1)},
	}
}

func TestSelect_ChartRules(t *testing.T) {
	multiYear := &domain.DateRange{Start: day(2022, 1, 1), End: day(2024, 12, 31)}
	shortRange := &domain.DateRange{Start: day(2024, 1, 1), End: day(2024, 2, 28)}

	tests := []struct {
		name   string
		intent domain.QueryIntent
		want   domain.ChartType
	}{
		{"hint wins", domain.QueryIntent{Parameter: domain.ParamTemperature, ChartHint: domain.ChartMap, DateRange: multiYear}, domain.ChartMap},
		{
			"comparison of two regions outranks time series",
			domain.QueryIntent{
				Parameter:  domain.ParamTemperature,
				Region:     domain.RegionArabianSea,
				Regions:    []domain.Region{domain.RegionArabianSea, domain.RegionBayOfBengal},
				DateRange:  multiYear,
				Comparison: true,
			},
			domain.ChartComparisonBars,
		},
		{
			"comparison of two parameters",
			domain.QueryIntent{
				Parameter:  domain.ParamTemperature,
				Parameters: []domain.Parameter{domain.ParamTemperature, domain.ParamSalinity},
				Comparison: true,
			},
			domain.ChartComparisonBars,
		},
		{"comparison word with one region is not bars", domain.QueryIntent{Parameter: domain.ParamSalinity, Region: domain.RegionArabianSea, Comparison: true}, domain.ChartHistogram},
		{"long date range", domain.QueryIntent{Parameter: domain.ParamSalinity, DateRange: multiYear}, domain.ChartTimeSeries},
		{"short date range", domain.QueryIntent{Parameter: domain.ParamSalinity, DateRange: shortRange}, domain.ChartHistogram},
		{"open range clamped to records", domain.QueryIntent{Parameter: domain.ParamSalinity, DateRange: &domain.DateRange{Start: day(2023, 12, 1)}}, domain.ChartHistogram},
		{"open range spanning records", domain.QueryIntent{Parameter: domain.ParamSalinity, DateRange: &domain.DateRange{End: day(2030, 1, 1)}}, domain.ChartTimeSeries},
		{"date range without parameter", domain.QueryIntent{DateRange: multiYear}, domain.ChartMap},
		{"parameter", domain.QueryIntent{Parameter: domain.ParamDepth}, domain.ChartHistogram},
		{"region only", domain.QueryIntent{Region: domain.RegionAll}, domain.ChartMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.intent, records()).ChartType)
		})
	}
}

func TestSelect_Empty(t *testing.T) {
	spec := Select(domain.QueryIntent{Parameter: domain.ParamTemperature, ChartHint: domain.ChartMap}, nil)

	assert.Equal(t, domain.ChartNone, spec.ChartType)
	assert.Empty(t, spec.EncodedPoints)
	assert.Zero(t, spec.RecordCount)
	assert.Equal(t, 0, spec.SummaryStats[domain.ParamTemperature].Count)
	assert.Nil(t, spec.SummaryStats[domain.ParamTemperature].Mean)
}

func TestSelect_EncodesByParameter(t *testing.T) {
	spec := Select(domain.QueryIntent{Parameter: domain.ParamTemperature}, records())

	require.Len(t, spec.EncodedPoints, 3)
	assert.Equal(t, "as-1", spec.EncodedPoints[0].RecordID)
	assert.Equal(t, domain.CategoryHot, spec.EncodedPoints[0].Category)
	assert.Equal(t, "🔥", spec.EncodedPoints[0].Glyph)
	assert.Equal(t, domain.CategoryWarm, spec.EncodedPoints[1].Category)
	assert.Equal(t, domain.CategoryCold, spec.EncodedPoints[2].Category)
	assert.Equal(t, 3, spec.RecordCount)

	temp := spec.SummaryStats[domain.ParamTemperature]
	assert.Equal(t, 3, temp.Count)
	assert.InDelta(t, 21.6667, *temp.Mean, 0.001)
	assert.Equal(t, 0, spec.SummaryStats[domain.ParamDepth].Count)
}

func TestSelect_EncodesByRegionWithoutParameter(t *testing.T) {
	spec := Select(domain.QueryIntent{Region: domain.RegionAll}, records())

	require.Len(t, spec.EncodedPoints, 3)
	assert.Equal(t, domain.Category(domain.RegionArabianSea), spec.EncodedPoints[0].Category)
	assert.Equal(t, "🟠", spec.EncodedPoints[0].Glyph)
	assert.Equal(t, "🔵", spec.EncodedPoints[2].Glyph)
}

func TestSelect_Groups(t *testing.T) {
	t.Run("by named regions", func(t *testing.T) {
		spec := Select(domain.QueryIntent{
			Parameter:  domain.ParamTemperature,
			Region:     domain.RegionBayOfBengal,
			Regions:    []domain.Region{domain.RegionBayOfBengal, domain.RegionArabianSea},
			Comparison: true,
		}, records())

		require.Len(t, spec.Groups, 2)
		assert.Equal(t, "Bay of Bengal", spec.Groups[0].Label)
		assert.Equal(t, 1, spec.Groups[0].Stats.Count)
		assert.Equal(t, domain.RegionArabianSea, spec.Groups[1].Region)
		assert.Equal(t, 25.5, *spec.Groups[1].Stats.Mean)
	})

	t.Run("by parameters", func(t *testing.T) {
		spec := Select(domain.QueryIntent{
			Parameter:  domain.ParamSalinity,
			Parameters: []domain.Parameter{domain.ParamSalinity, domain.ParamTemperature},
			Comparison: true,
		}, records())

		require.Len(t, spec.Groups, 2)
		assert.Equal(t, domain.ParamSalinity, spec.Groups[0].Parameter)
		assert.Equal(t, domain.ParamTemperature, spec.Groups[1].Parameter)
		assert.Equal(t, 3, spec.Groups[1].Stats.Count)
	})

	t.Run("by regions present when hinted", func(t *testing.T) {
		spec := Select(domain.QueryIntent{Parameter: domain.ParamSalinity, ChartHint: domain.ChartComparisonBars}, records())

		require.Len(t, spec.Groups, 2)
		assert.Equal(t, domain.RegionArabianSea, spec.Groups[0].Region)
		assert.Equal(t, 2, spec.Groups[0].Stats.Count)
		assert.Equal(t, domain.RegionBayOfBengal, spec.Groups[1].Region)
	})

	t.Run("no groups for other charts", func(t *testing.T) {
		assert.Nil(t, Select(domain.QueryIntent{Parameter: domain.ParamSalinity}, records()).Groups)
	})
}
