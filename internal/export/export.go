// Package export writes filtered measurement records as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty defaults to CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Header is the CSV column order.
var Header = []string{
	"id", "latitude", "longitude", "timestamp", "depth_m",
	"temperature_c", "salinity_psu", "quality_flag", "region", "source",
}

// Write encodes records in format f.
func Write(w io.Writer, f Format, records []domain.MeasurementRecord) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes a header row followed by one row per record. Missing
// measurements and timestamps are empty cells.
func WriteCSV(w io.Writer, records []domain.MeasurementRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		ts := ""
		if r.HasTimestamp() {
			ts = r.Timestamp.UTC().Format(time.RFC3339)
		}
		row := []string{
			r.ID,
			formatFloat(&r.Latitude),
			formatFloat(&r.Longitude),
			ts,
			formatFloat(r.DepthM),
			formatFloat(r.TemperatureC),
			formatFloat(r.SalinityPSU),
			string(r.Quality),
			string(r.Region()),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []domain.MeasurementRecord) error {
	if records == nil {
		records = []domain.MeasurementRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
