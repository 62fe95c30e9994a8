// Command genmock writes a deterministic synthetic ARGO corpus covering every
// JSON layout the service ingests: flat arrays, nested profile wrappers, and
// per-cycle argo-summary documents. Each file is read back through the
// normalizer so the fixture always matches real ingestion behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -per-region 40
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/index"
)

var baseDate = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// basin is a sampling box with a typical surface climate.
type basin struct {
	region          domain.Region
	latMin, latMax  float64
	lonMin, lonMax  float64
	surfaceTemp     float64
	surfaceSalinity float64
	platformBase    int
}

var basins = []basin{
	{domain.RegionArabianSea, 8, 20, 55, 70, 27.5, 36.2, 2902100},
	{domain.RegionBayOfBengal, 8, 18, 82, 92, 28.5, 33.0, 2902200},
	{domain.RegionEquatorialIndian, -8, 3, 50, 95, 28.0, 34.8, 2902300},
	{domain.RegionMadagascarRidge, -38, -27, 42, 48, 19.0, 35.3, 2902400},
	{domain.RegionSouthernOcean, -60, -45, 20, 120, 4.0, 33.9, 2902500},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock", "output directory")
	perRegion := flag.Int("per-region", 40, "profiles per region")
	seed := flag.Uint64("seed", 2902746, "random seed")
	flag.Parse()

	if *perRegion < 3 {
		return fmt.Errorf("-per-region must be at least 3")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed>>1))

	var flat, nested []map[string]any
	var summaries []map[string]any
	for _, b := range basins {
		for i := range *perRegion {
			p := sampleProfile(rng, b, i)
			switch i % 3 {
			case 0:
				flat = append(flat, flatRecord(p))
			case 1:
				nested = append(nested, nestedRecord(p))
			default:
				summaries = append(summaries, summaryRecord(p))
			}
		}
	}

	files := []struct {
		name string
		v    any
	}{
		{"flat_profiles.json", flat},
		{"nested_profiles.json", map[string]any{"source": "genmock", "profiles": nested}},
		{"summary/argo_summaries.json", summaries},
	}

	var all []domain.MeasurementRecord
	for _, f := range files {
		path := filepath.Join(*out, f.name)
		data, err := writeJSON(path, f.v)
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		records, rejected := domain.NormalizeFile(f.name, data)
		if len(rejected) > 0 {
			return fmt.Errorf("%s: generated data rejected: %v", f.name, rejected[0].Error())
		}
		all = append(all, records...)
		log.Printf("wrote %s: %d records", path, len(records))
	}

	printStats(index.Build(all))
	return nil
}

// profile is one synthetic float cycle before layout-specific encoding.
type profile struct {
	platform    int
	cycle       int
	lat, lon    float64
	at          time.Time
	depth       float64
	temperature float64
	salinity    float64
	qc          int
}

func sampleProfile(rng *rand.Rand, b basin, i int) profile {
	depth := math.Round(rng.Float64()*1800*10) / 10
	// Temperature decays with depth toward ~2°C; salinity converges on 34.7.
	decay := math.Exp(-depth / 400)
	temp := 2 + (b.surfaceTemp-2)*decay + rng.NormFloat64()*0.6
	sal := 34.7 + (b.surfaceSalinity-34.7)*decay + rng.NormFloat64()*0.1

	qc := 1
	if rng.IntN(10) == 0 {
		qc = 2 + rng.IntN(3)
	}

	return profile{
		platform:    b.platformBase + i%5,
		cycle:       i/5 + 1,
		lat:         round(b.latMin+rng.Float64()*(b.latMax-b.latMin), 3),
		lon:         round(b.lonMin+rng.Float64()*(b.lonMax-b.lonMin), 3),
		at:          baseDate.Add(time.Duration(rng.IntN(3*365*24)) * time.Hour),
		depth:       depth,
		temperature: round(temp, 2),
		salinity:    round(sal, 3),
		qc:          qc,
	}
}

func (p profile) id() string { return fmt.Sprintf("%d-%d", p.platform, p.cycle) }

func flatRecord(p profile) map[string]any {
	return map[string]any{
		"id":            p.id(),
		"latitude":      p.lat,
		"longitude":     p.lon,
		"timestamp":     p.at.Format(time.RFC3339),
		"depth_m":       p.depth,
		"temperature_c": p.temperature,
		"salinity_psu":  p.salinity,
		"quality_flag":  p.qc,
	}
}

func nestedRecord(p profile) map[string]any {
	// JULD: fractional days since 1950-01-01.
	juld := p.at.Sub(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24
	return map[string]any{
		"profile_id":  p.id(),
		"coordinates": map[string]any{"lat": p.lat, "lon": p.lon},
		"JULD":        juld,
		"measurements": map[string]any{
			"PRES": p.depth,
			"TEMP": p.temperature,
			"PSAL": p.salinity,
		},
		"PROFILE_QC": fmt.Sprint(p.qc),
	}
}

func summaryRecord(p profile) map[string]any {
	stat := func(v float64) map[string]any {
		return map[string]any{
			"present":    true,
			"statistics": map[string]any{"mean": v, "max": v},
		}
	}
	return map[string]any{
		"metadata": map[string]any{
			"platform_number": fmt.Sprint(p.platform),
			"cycle_number":    p.cycle,
			"data_centre":     "IN",
		},
		"geospatial": map[string]any{"latitude": p.lat, "longitude": p.lon},
		"temporal": map[string]any{
			"year":  p.at.Year(),
			"month": int(p.at.Month()),
			"day":   p.at.Day(),
		},
		"measurements": map[string]any{
			"core_variables": map[string]any{
				"TEMP": stat(p.temperature),
				"PSAL": stat(p.salinity),
				"PRES": stat(p.depth),
			},
		},
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func writeJSON(path string, v any) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	return data, os.WriteFile(path, data, 0o600)
}

func printStats(ix *index.Index) {
	start, end := ix.TimeSpan()
	log.Printf("indexed %d records from %s to %s", ix.Len(), start.Format(time.DateOnly), end.Format(time.DateOnly))
	counts := ix.Regions()
	for _, r := range append(domain.Regions, domain.RegionUnclassified) {
		log.Printf("  %-20s %d", r, counts[r])
	}
}
