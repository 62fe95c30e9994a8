package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Key aliases, matched case-insensitively.
var (
	idAliases      = []string{"id", "profile_id", "uid"}
	latAliases     = []string{"lat", "latitude", "lat_deg"}
	lonAliases     = []string{"lon", "lng", "long", "longitude", "lon_deg"}
	timeAliases    = []string{"timestamp", "time", "datetime", "date_time", "date", "juld"}
	depthAliases   = []string{"depth_m", "depth", "pres", "pressure"}
	tempAliases    = []string{"temperature_c", "temperature", "temp"}
	salAliases     = []string{"salinity_psu", "salinity", "psal", "sal"}
	qualityAliases = []string{"quality_flag", "quality", "qc", "profile_qc", "position_qc"}
)

// juldEpoch is the ARGO reference date for Julian-day timestamps.
var juldEpoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// timeLayouts are tried in order for string timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
	"2006/01/02",
	"20060102150405", // ARGO DATE_CREATION style
	"20060102",
}

// fields is a decoded JSON object with lowercased keys.
type fields map[string]any

func foldKeys(m map[string]any) fields {
	f := make(fields, len(m))
	for k, v := range m {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, dup := f[lk]; !dup {
			f[lk] = v
		}
	}
	return f
}

// lookup returns the first present alias and its value.
func (f fields) lookup(aliases ...string) (string, any, bool) {
	for _, a := range aliases {
		if v, ok := f[a]; ok && v != nil {
			return a, v, true
		}
	}
	return "", nil, false
}

// object returns the nested object under the first present alias.
func (f fields) object(aliases ...string) (fields, bool) {
	for _, a := range aliases {
		if m, ok := f[a].(map[string]any); ok {
			return foldKeys(m), true
		}
	}
	return nil, false
}

// hasPosition reports whether both a latitude and a longitude alias are present.
func (f fields) hasPosition() bool {
	_, _, hasLat := f.lookup(latAliases...)
	_, _, hasLon := f.lookup(lonAliases...)
	return hasLat && hasLon
}

// extracted holds the loosely typed values a variant pulled out of a record.
type extracted struct {
	id      any
	lat     any
	lon     any
	timeKey string
	time    any
	depth   *float64
	temp    *float64
	sal     *float64
	quality any
}

// variant recognizes one structural shape of an input record.
type variant struct {
	name    string
	matches func(fields) bool
	extract func(fields) extracted
}

// variants are tried in priority order; the first whose matcher accepts the record wins.
// Shapes with a distinctive container key come before the catch-all flat
// shape so a loosely matching file never falls through to the wrong one.
var variants = []variant{
	{name: "nested", matches: isNested, extract: extractNested},
	{name: "argo-summary", matches: isSummary, extract: extractSummary},
	{name: "flat", matches: func(fields) bool { return true }, extract: extractFlat},
}

// NormalizeFile parses one ingested file into records. A top-level array or
// an object with a "profiles" array yields one record per element; any other
// object is a single record. Rejected records are returned, not dropped.
func NormalizeFile(source string, data []byte) ([]MeasurementRecord, []NormalizationError) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, []NormalizationError{{Source: source, Index: -1, Reason: "empty file"}}
	}

	var top any
	if err := decodeJSON(data, &top); err != nil {
		return nil, []NormalizationError{{Source: source, Index: -1, Reason: fmt.Sprintf("invalid JSON: %v", err)}}
	}

	var elems []any
	switch v := top.(type) {
	case []any:
		elems = v
	case map[string]any:
		if profiles, ok := foldKeys(v)["profiles"].([]any); ok {
			elems = profiles
		} else {
			elems = []any{v}
		}
	default:
		return nil, []NormalizationError{{Source: source, Index: -1, Reason: "top-level value is not an object or array"}}
	}

	records := make([]MeasurementRecord, 0, len(elems))
	var rejected []NormalizationError
	for i, elem := range elems {
		rec, err := normalizeValue(source, i, elem)
		if err != nil {
			rejected = append(rejected, *err)
			continue
		}
		records = append(records, rec)
	}
	return records, rejected
}

// Normalize parses a single JSON record.
func Normalize(source string, index int, raw json.RawMessage) (MeasurementRecord, error) {
	var v any
	if err := decodeJSON(raw, &v); err != nil {
		return MeasurementRecord{}, &NormalizationError{Source: source, Index: index, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	rec, nerr := normalizeValue(source, index, v)
	if nerr != nil {
		return MeasurementRecord{}, nerr
	}
	return rec, nil
}

// VariantOf names the structural variant that would handle the object, or
// "" when the value is not an object.
func VariantOf(raw json.RawMessage) string {
	var m map[string]any
	if err := decodeJSON(raw, &m); err != nil || m == nil {
		return ""
	}
	f := foldKeys(m)
	for _, v := range variants {
		if v.matches(f) {
			return v.name
		}
	}
	return ""
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func normalizeValue(source string, index int, v any) (MeasurementRecord, *NormalizationError) {
	reject := func(format string, args ...any) (MeasurementRecord, *NormalizationError) {
		return MeasurementRecord{}, &NormalizationError{Source: source, Index: index, Reason: fmt.Sprintf(format, args...)}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return reject("record is not a JSON object")
	}
	f := foldKeys(m)

	var x extracted
	for _, vr := range variants {
		if vr.matches(f) {
			x = vr.extract(f)
			break
		}
	}

	lat := parseFloat(x.lat)
	lon := parseFloat(x.lon)
	switch {
	case lat == nil && lon == nil:
		return reject("latitude and longitude not found")
	case lat == nil:
		return reject("latitude not found")
	case lon == nil:
		return reject("longitude not found")
	}
	if *lat < -90 || *lat > 90 {
		return reject("latitude %g out of range", *lat)
	}
	lonVal := *lon
	if lonVal > 180 && lonVal <= 360 {
		lonVal -= 360
	}
	if lonVal < -180 || lonVal > 180 {
		return reject("longitude %g out of range", *lon)
	}

	ts := parseTimestamp(x.timeKey, x.time)

	id := idString(x.id)
	if id == "" {
		id = generateID(source, index, *lat, lonVal, ts)
	}

	return MeasurementRecord{
		ID:           id,
		Latitude:     *lat,
		Longitude:    lonVal,
		Timestamp:    ts,
		DepthM:       absOrNil(x.depth),
		TemperatureC: x.temp,
		SalinityPSU:  x.sal,
		Quality:      parseQuality(x.quality),
		Source:       source,
	}, nil
}

// --- variant: nested {"coordinates": {...}, "measurements": {...}} ---

func isNested(f fields) bool {
	coords, ok := f.object("coordinates", "coords", "position", "location")
	return ok && coords.hasPosition()
}

func extractNested(f fields) extracted {
	coords, _ := f.object("coordinates", "coords", "position", "location")
	meas, hasMeas := f.object("measurements", "measurement", "values")
	if !hasMeas {
		meas = fields{}
	}

	x := extracted{}
	_, x.id, _ = f.lookup(idAliases...)
	_, x.lat, _ = coords.lookup(latAliases...)
	_, x.lon, _ = coords.lookup(lonAliases...)
	x.timeKey, x.time, _ = firstLookup(timeAliases, f, meas)
	x.depth = firstFloat(depthAliases, meas, coords, f)
	x.temp = firstFloat(tempAliases, meas, f)
	x.sal = firstFloat(salAliases, meas, f)
	_, x.quality, _ = firstLookup(qualityAliases, f, meas)
	return x
}

// --- variant: argo-summary {"geospatial", "temporal", "measurements.core_variables"} ---

func isSummary(f fields) bool {
	geo, ok := f.object("geospatial")
	return ok && geo.hasPosition()
}

func extractSummary(f fields) extracted {
	geo, _ := f.object("geospatial")
	temporal, hasTemporal := f.object("temporal")
	meta, hasMeta := f.object("metadata")
	if !hasMeta {
		meta = fields{}
	}

	x := extracted{}
	_, x.lat, _ = geo.lookup(latAliases...)
	_, x.lon, _ = geo.lookup(lonAliases...)

	_, x.id, _ = firstLookup(idAliases, f, meta)
	if x.id == nil {
		x.id = platformCycleID(meta)
	}

	if hasTemporal {
		x.timeKey, x.time, _ = temporal.lookup(timeAliases...)
		if x.time == nil {
			x.time = dateFromParts(temporal)
		}
	}

	if meas, ok := f.object("measurements"); ok {
		core, hasCore := meas.object("core_variables")
		if !hasCore {
			core = meas
		}
		x.temp = summaryStat(core, "temp", "mean")
		x.sal = summaryStat(core, "psal", "mean")
		x.depth = summaryStat(core, "pres", "max")
	}

	_, x.quality, _ = firstLookup(qualityAliases, f, meta)
	return x
}

// summaryStat reads core_variables.<name>.statistics.<stat>, honoring the
// converter's "present" flag.
func summaryStat(core fields, name, stat string) *float64 {
	v, ok := core.object(name)
	if !ok {
		return nil
	}
	if present, ok := v["present"].(bool); ok && !present {
		return nil
	}
	if stats, ok := v.object("statistics"); ok {
		if _, s, ok := stats.lookup(stat, "mean", "value"); ok {
			return parseFloat(s)
		}
	}
	_, val, _ := v.lookup("value")
	return parseFloat(val)
}

func platformCycleID(meta fields) any {
	_, platform, ok := meta.lookup("platform_number", "platform")
	if !ok {
		return nil
	}
	p := idString(platform)
	if p == "" {
		return nil
	}
	if _, cycle, ok := meta.lookup("cycle_number", "cycle"); ok {
		if c := idString(cycle); c != "" {
			return p + "-" + c
		}
	}
	return p
}

func dateFromParts(t fields) any {
	_, y, ok := t.lookup("year")
	if !ok {
		return nil
	}
	year := parseFloat(y)
	if year == nil {
		return nil
	}
	month, day := 1.0, 1.0
	if _, m, ok := t.lookup("month"); ok {
		if v := parseFloat(m); v != nil {
			month = *v
		}
	}
	if _, d, ok := t.lookup("day"); ok {
		if v := parseFloat(d); v != nil {
			day = *v
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	return fmt.Sprintf("%04d-%02d-%02d", int(*year), int(month), int(day))
}

// --- variant: flat key-value ---

func extractFlat(f fields) extracted {
	x := extracted{}
	_, x.id, _ = f.lookup(idAliases...)
	_, x.lat, _ = f.lookup(latAliases...)
	_, x.lon, _ = f.lookup(lonAliases...)
	x.timeKey, x.time, _ = f.lookup(timeAliases...)
	x.depth = firstFloat(depthAliases, f)
	x.temp = firstFloat(tempAliases, f)
	x.sal = firstFloat(salAliases, f)
	_, x.quality, _ = f.lookup(qualityAliases...)
	return x
}

// --- shared helpers ---

func firstLookup(aliases []string, objs ...fields) (string, any, bool) {
	for _, o := range objs {
		if k, v, ok := o.lookup(aliases...); ok {
			return k, v, true
		}
	}
	return "", nil, false
}

func firstFloat(aliases []string, objs ...fields) *float64 {
	for _, o := range objs {
		for _, a := range aliases {
			if v, ok := o[a]; ok && v != nil {
				if f := parseFloat(v); f != nil {
					return f
				}
			}
		}
	}
	return nil
}

// parseFloat accepts JSON numbers and numeric strings. Anything else,
// including NaN and infinities, yields nil.
func parseFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func absOrNil(v *float64) *float64 {
	if v == nil {
		return nil
	}
	a := math.Abs(*v)
	return &a
}

// parseTimestamp returns the zero time when v cannot be interpreted.
// Numeric values are ARGO Julian days under the "juld" key and Unix seconds
// elsewhere.
func parseTimestamp(key string, v any) time.Time {
	if v == nil {
		return time.Time{}
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if key != "juld" {
			return time.Time{}
		}
	}

	n := parseFloat(v)
	if n == nil {
		return time.Time{}
	}
	if key == "juld" {
		if *n < 0 || *n > 100*366 {
			return time.Time{}
		}
		return juldEpoch.Add(time.Duration(*n * float64(24*time.Hour))).UTC()
	}
	if *n < 1e8 {
		return time.Time{}
	}
	sec, frac := math.Modf(*n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// parseQuality collapses ARGO QC digits, profile letters, and words into a QualityFlag.
func parseQuality(v any) QualityFlag {
	if v == nil {
		return QualityUnknown
	}
	if n := parseFloat(v); n != nil {
		return qualityFromDigit(int(*n))
	}
	s, ok := v.(string)
	if !ok {
		return QualityUnknown
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good", "a":
		return QualityGood
	case "questionable", "suspect", "probably good", "probably bad", "b", "c", "d", "e":
		return QualityQuestionable
	case "bad", "f":
		return QualityBad
	default:
		return QualityUnknown
	}
}

func qualityFromDigit(d int) QualityFlag {
	switch d {
	case 1:
		return QualityGood
	case 2, 3:
		return QualityQuestionable
	case 4:
		return QualityBad
	default:
		return QualityUnknown
	}
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// generateID produces a deterministic ID for records that arrive without one,
// so re-ingesting the same file yields the same IDs.
func generateID(source string, index int, lat, lon float64, ts time.Time) string {
	input := fmt.Sprintf("%s|%d|%.4f|%.4f|%s", source, index, lat, lon, ts.Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return "argo-" + hex.EncodeToString(hash[:8])
}
