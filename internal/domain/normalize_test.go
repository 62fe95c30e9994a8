package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = "profiles_2024.json"

func TestNormalize(t *testing.T) {
	t.Run("flat record", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"p1","lat":15.2,"lon":65.1,"timestamp":"2024-03-15T06:00:00Z","temperature":29.1,"salinity":"36.2","depth":-10,"quality_flag":"1"}`)
		rec, err := Normalize(testSource, 0, raw)

		require.NoError(t, err)
		assert.Equal(t, "p1", rec.ID)
		assert.Equal(t, 15.2, rec.Latitude)
		assert.Equal(t, 65.1, rec.Longitude)
		assert.Equal(t, time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC), rec.Timestamp)
		require.NotNil(t, rec.TemperatureC)
		assert.Equal(t, 29.1, *rec.TemperatureC)
		require.NotNil(t, rec.SalinityPSU)
		assert.Equal(t, 36.2, *rec.SalinityPSU)
		require.NotNil(t, rec.DepthM)
		assert.Equal(t, 10.0, *rec.DepthM, "negative depth is taken as absolute")
		assert.Equal(t, QualityGood, rec.Quality)
		assert.Equal(t, testSource, rec.Source)
		assert.Equal(t, RegionArabianSea, rec.Region())
	})

	t.Run("nested record with upper-case keys", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"n1","coordinates":{"LATITUDE":-50.5,"LONGITUDE":80.25},"time":"2023-07-01","measurements":{"TEMP":2.5,"PSAL":34.1,"PRES":1500}}`)
		rec, err := Normalize(testSource, 0, raw)

		require.NoError(t, err)
		assert.Equal(t, -50.5, rec.Latitude)
		assert.Equal(t, 80.25, rec.Longitude)
		assert.Equal(t, time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), rec.Timestamp)
		require.NotNil(t, rec.TemperatureC)
		assert.Equal(t, 2.5, *rec.TemperatureC)
		require.NotNil(t, rec.DepthM)
		assert.Equal(t, 1500.0, *rec.DepthM)
		assert.Equal(t, QualityUnknown, rec.Quality)
		assert.Equal(t, RegionSouthernOcean, rec.Region())
	})

	t.Run("argo summary record", func(t *testing.T) {
		raw := json.RawMessage(`{
			"metadata": {"platform_number": "2902746", "cycle_number": 12},
			"geospatial": {"latitude": 10.5, "longitude": 88.0},
			"temporal": {"datetime": "2022-11-02T00:00:00"},
			"measurements": {"core_variables": {
				"TEMP": {"present": true, "statistics": {"mean": 27.4, "min": 4.1, "max": 29.0}},
				"PSAL": {"present": false},
				"PRES": {"present": true, "statistics": {"mean": 900, "max": 1980.5}}
			}}
		}`)
		rec, err := Normalize(testSource, 0, raw)

		require.NoError(t, err)
		assert.Equal(t, "2902746-12", rec.ID)
		assert.Equal(t, 10.5, rec.Latitude)
		assert.Equal(t, 88.0, rec.Longitude)
		assert.Equal(t, time.Date(2022, 11, 2, 0, 0, 0, 0, time.UTC), rec.Timestamp)
		require.NotNil(t, rec.TemperatureC)
		assert.Equal(t, 27.4, *rec.TemperatureC)
		assert.Nil(t, rec.SalinityPSU)
		require.NotNil(t, rec.DepthM)
		assert.Equal(t, 1980.5, *rec.DepthM)
		assert.Equal(t, RegionBayOfBengal, rec.Region())
	})

	t.Run("argo summary date from parts", func(t *testing.T) {
		raw := json.RawMessage(`{"geospatial":{"latitude":0,"longitude":70},"temporal":{"year":2021,"month":6,"day":9}}`)
		rec, err := Normalize(testSource, 0, raw)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2021, 6, 9, 0, 0, 0, 0, time.UTC), rec.Timestamp)
	})

	t.Run("missing latitude and longitude", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"x","timestamp":"2024-01-01","temperature":20}`)
		_, err := Normalize(testSource, 3, raw)

		require.Error(t, err)
		var nerr *NormalizationError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, testSource, nerr.Source)
		assert.Equal(t, 3, nerr.Index)
		assert.Contains(t, nerr.Reason, "latitude and longitude")
	})

	t.Run("unresolvable latitude", func(t *testing.T) {
		_, err := Normalize(testSource, 0, json.RawMessage(`{"lat":"north","lon":70}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude not found")
	})

	t.Run("flat record with unrelated location object", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"f1","lat":15.2,"lon":65.1,"timestamp":"2024-03-01","temperature":28.1,"location":{"name":"Arabian Sea"}}`)
		rec, err := Normalize(testSource, 0, raw)

		require.NoError(t, err)
		assert.Equal(t, "f1", rec.ID)
		assert.InDelta(t, 15.2, rec.Latitude, 1e-9)
		assert.InDelta(t, 65.1, rec.Longitude, 1e-9)
		require.NotNil(t, rec.TemperatureC)
		assert.InDelta(t, 28.1, *rec.TemperatureC, 1e-9)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := Normalize(testSource, 0, json.RawMessage(`{"lat":95,"lon":70}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("longitude past 180 is wrapped", func(t *testing.T) {
		rec, err := Normalize(testSource, 0, json.RawMessage(`{"lat":-60,"lon":350}`))
		require.NoError(t, err)
		assert.Equal(t, -10.0, rec.Longitude)
	})

	t.Run("ARGO julian day", func(t *testing.T) {
		rec, err := Normalize(testSource, 0, json.RawMessage(`{"lat":0,"lon":70,"JULD":27000}`))
		require.NoError(t, err)
		want := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 27000)
		assert.True(t, want.Equal(rec.Timestamp), "got %s", rec.Timestamp)
	})

	t.Run("unparseable timestamp leaves zero time", func(t *testing.T) {
		rec, err := Normalize(testSource, 0, json.RawMessage(`{"lat":0,"lon":70,"time":"yesterday"}`))
		require.NoError(t, err)
		assert.False(t, rec.HasTimestamp())
	})

	t.Run("non-finite values become nil", func(t *testing.T) {
		rec, err := Normalize(testSource, 0, json.RawMessage(`{"lat":0,"lon":70,"temperature":"NaN","salinity":"n/a"}`))
		require.NoError(t, err)
		assert.Nil(t, rec.TemperatureC)
		assert.Nil(t, rec.SalinityPSU)
	})

	t.Run("generated ID is deterministic", func(t *testing.T) {
		raw := json.RawMessage(`{"lat":12.5,"lon":60.1,"date":"2024-02-01"}`)
		a, err := Normalize(testSource, 4, raw)
		require.NoError(t, err)
		b, err := Normalize(testSource, 4, raw)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(a.ID, "argo-"))
		assert.Equal(t, a.ID, b.ID)

		c, err := Normalize(testSource, 5, raw)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, c.ID)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := Normalize(testSource, 0, json.RawMessage(`[1,2]`))
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Normalize(testSource, 0, json.RawMessage(`{invalid`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

func TestNormalizeFile(t *testing.T) {
	t.Run("array collects rejections", func(t *testing.T) {
		data := []byte(`[
			{"id":"a","lat":15,"lon":65,"time":"2024-01-01"},
			{"id":"b","temperature":20},
			{"id":"c","coordinates":{"lat":15,"lon":88}}
		]`)
		records, rejected := NormalizeFile(testSource, data)

		require.Len(t, records, 2)
		assert.Equal(t, "a", records[0].ID)
		assert.Equal(t, "c", records[1].ID)
		require.Len(t, rejected, 1)
		assert.Equal(t, 1, rejected[0].Index)
	})

	t.Run("profiles wrapper", func(t *testing.T) {
		data := []byte(`{"float":"2902746","Profiles":[{"lat":1,"lon":70},{"lat":2,"lon":71}]}`)
		records, rejected := NormalizeFile(testSource, data)

		assert.Len(t, records, 2)
		assert.Empty(t, rejected)
	})

	t.Run("single object", func(t *testing.T) {
		records, rejected := NormalizeFile(testSource, []byte(`{"lat":1,"lon":70}`))
		assert.Len(t, records, 1)
		assert.Empty(t, rejected)
	})

	t.Run("file-level failures", func(t *testing.T) {
		for name, data := range map[string]string{
			"empty":   "  ",
			"invalid": "{nope",
			"scalar":  "42",
		} {
			t.Run(name, func(t *testing.T) {
				records, rejected := NormalizeFile(testSource, []byte(data))
				assert.Empty(t, records)
				require.Len(t, rejected, 1)
				assert.Equal(t, -1, rejected[0].Index)
			})
		}
	})
}

func TestVariantOf(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"coordinates":{"lat":1,"lon":2}}`, "nested"},
		{`{"geospatial":{"latitude":1,"longitude":2}}`, "argo-summary"},
		{`{"coordinates":{"lat":1,"lon":2},"geospatial":{"latitude":1}}`, "nested"},
		{`{"coordinates":{"lat":1},"geospatial":{"latitude":1,"longitude":2}}`, "argo-summary"},
		{`{"lat":15.2,"lon":65.1,"location":{"name":"Arabian Sea"}}`, "flat"},
		{`{"lat":1,"lon":2,"geospatial":{"region":"x"}}`, "flat"},
		{`{"lat":1,"lon":2}`, "flat"},
		{`[1]`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VariantOf(json.RawMessage(tt.raw)), tt.raw)
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   any
		want QualityFlag
	}{
		{nil, QualityUnknown},
		{"good", QualityGood},
		{"Probably Good", QualityQuestionable},
		{"BAD", QualityBad},
		{json.Number("1"), QualityGood},
		{json.Number("2"), QualityQuestionable},
		{json.Number("3"), QualityQuestionable},
		{json.Number("4"), QualityBad},
		{json.Number("9"), QualityUnknown},
		{"A", QualityGood},
		{"C", QualityQuestionable},
		{"F", QualityBad},
		{"whatever", QualityUnknown},
		{true, QualityUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseQuality(tt.in), "%v", tt.in)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   any
		want time.Time
	}{
		{"RFC3339", "time", "2024-03-15T06:00:00+02:00", time.Date(2024, 3, 15, 4, 0, 0, 0, time.UTC)},
		{"space separated", "time", "2024-03-15 06:30:00", time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)},
		{"slashes", "date", "2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"compact", "date", "20240315", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"unix seconds", "timestamp", json.Number("1710482400"), time.Unix(1710482400, 0).UTC()},
		{"juld string", "juld", "1.5", time.Date(1950, 1, 2, 12, 0, 0, 0, time.UTC)},
		{"small number is not a time", "time", json.Number("2024"), time.Time{}},
		{"empty", "time", "", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.key, tt.in)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}
