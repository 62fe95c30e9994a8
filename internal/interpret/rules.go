package interpret

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
)

// Rule extracts one facet of a query from folded text. A rule only sets the
// fields it owns; everything else is left zero for the reducer.
type Rule struct {
	Name    string
	Extract func(text string) domain.QueryIntent
}

// DefaultRules is the rule set used when no augmenter answers.
var DefaultRules = []Rule{
	{Name: "parameter", Extract: extractParameter},
	{Name: "region", Extract: extractRegion},
	{Name: "date", Extract: extractDate},
	{Name: "depth", Extract: extractDepth},
	{Name: "comparison", Extract: extractComparison},
	{Name: "chart", Extract: extractChartHint},
	{Name: "quality", Extract: extractQuality},
}

// ApplyRules folds text, runs every rule, and reduces the partial intents.
func ApplyRules(rules []Rule, text string) domain.QueryIntent {
	folded := fold(text)
	parts := make([]domain.QueryIntent, 0, len(rules))
	for _, r := range rules {
		parts = append(parts, r.Extract(folded))
	}
	q := reduce(parts...)
	q.Source = "rules"
	return q
}

// reduce merges partial intents. Scalars keep the first value set, lists
// are concatenated without duplicates, and flags are OR-ed.
func reduce(parts ...domain.QueryIntent) domain.QueryIntent {
	var q domain.QueryIntent
	for _, p := range parts {
		if q.Parameter == domain.ParamNone {
			q.Parameter = p.Parameter
		}
		for _, v := range p.Parameters {
			if !slices.Contains(q.Parameters, v) {
				q.Parameters = append(q.Parameters, v)
			}
		}
		if q.Region == domain.RegionUnset {
			q.Region = p.Region
		}
		for _, v := range p.Regions {
			if !slices.Contains(q.Regions, v) {
				q.Regions = append(q.Regions, v)
			}
		}
		if q.DateRange == nil {
			q.DateRange = p.DateRange
		}
		if q.DepthRange == nil {
			q.DepthRange = p.DepthRange
		}
		if q.ChartHint == "" {
			q.ChartHint = p.ChartHint
		}
		q.Comparison = q.Comparison || p.Comparison
		q.QualityFilter = q.QualityFilter || p.QualityFilter
	}
	return q
}

// --- parameter ---

var (
	temperatureWords = regexp.MustCompile(`\b(temperatures?|temps?|warm(er|est)?|cold(er|est)?|hot(ter|test)?|thermal)\b`)
	salinityWords    = regexp.MustCompile(`\b(salinity|salt|salty|saline|psu|psal)\b`)
	depthWords       = regexp.MustCompile(`\b(depths?|pressure)\b`)
	weakDepthWords   = regexp.MustCompile(`\b(deep(er|est)?|shallow(er|est)?)\b`)
)

type mention struct {
	pos   int
	param domain.Parameter
}

// extractParameter lists parameters in order of first mention. Temperature
// and salinity outrank depth for the primary parameter, since depth words
// usually qualify a temperature or salinity question.
func extractParameter(text string) domain.QueryIntent {
	var found []mention
	for _, w := range []struct {
		re    *regexp.Regexp
		param domain.Parameter
	}{
		{temperatureWords, domain.ParamTemperature},
		{salinityWords, domain.ParamSalinity},
		{depthWords, domain.ParamDepth},
	} {
		if loc := w.re.FindStringIndex(text); loc != nil {
			found = append(found, mention{loc[0], w.param})
		}
	}
	if len(found) == 0 {
		if weakDepthWords.MatchString(text) {
			return domain.QueryIntent{Parameter: domain.ParamDepth}
		}
		return domain.QueryIntent{}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	var q domain.QueryIntent
	for _, m := range found {
		q.Parameters = append(q.Parameters, m.param)
		if q.Parameter == domain.ParamNone && m.param != domain.ParamDepth {
			q.Parameter = m.param
		}
	}
	if q.Parameter == domain.ParamNone {
		q.Parameter = domain.ParamDepth
	}
	if len(q.Parameters) == 1 {
		q.Parameters = nil
	}
	return q
}

// --- region ---

var regionAliases = []struct {
	alias  string
	region domain.Region
}{
	{"arabian sea", domain.RegionArabianSea},
	{"arabian", domain.RegionArabianSea},
	{"bay of bengal", domain.RegionBayOfBengal},
	{"bengal", domain.RegionBayOfBengal},
	{"southern ocean", domain.RegionSouthernOcean},
	{"antarctic", domain.RegionSouthernOcean},
	{"equatorial indian", domain.RegionEquatorialIndian},
	{"equatorial", domain.RegionEquatorialIndian},
	{"equator", domain.RegionEquatorialIndian},
	{"madagascar ridge", domain.RegionMadagascarRidge},
	{"madagascar", domain.RegionMadagascarRidge},
}

var regionPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(regionAliases))
	for i, a := range regionAliases {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a.alias) + `\b`)
	}
	return out
}()

var allRegionsWords = regexp.MustCompile(`\b(all regions|all basins|every region|everywhere|indian ocean|whole ocean)\b`)

func extractRegion(text string) domain.QueryIntent {
	type hit struct {
		pos    int
		region domain.Region
	}
	var hits []hit
	seen := map[domain.Region]bool{}
	for i, re := range regionPatterns {
		r := regionAliases[i].region
		if seen[r] {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			seen[r] = true
			hits = append(hits, hit{loc[0], r})
		}
	}

	if len(hits) == 0 {
		if allRegionsWords.MatchString(text) {
			return domain.QueryIntent{Region: domain.RegionAll}
		}
		return domain.QueryIntent{}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	q := domain.QueryIntent{Region: hits[0].region}
	if len(hits) > 1 {
		for _, h := range hits {
			q.Regions = append(q.Regions, h.region)
		}
	}
	return q
}

// --- date ---

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`

var months = func() map[string]time.Month {
	m := make(map[string]time.Month, 25)
	for mo := time.January; mo <= time.December; mo++ {
		name := strings.ToLower(mo.String())
		m[name] = mo
		m[name[:3]] = mo
	}
	m["sept"] = time.September
	return m
}()

var (
	isoDay        = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	isoOpenStart  = regexp.MustCompile(`\b(since|after|from)\s+\d{4}-\d{2}-\d{2}\b`)
	isoOpenEnd    = regexp.MustCompile(`\b(before|until|till)\s+\d{4}-\d{2}-\d{2}\b`)
	dayMonthYear  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthPattern + `,?\s+(\d{4})\b`)
	monthDayYear  = regexp.MustCompile(`\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	monthYear     = regexp.MustCompile(`\b` + monthPattern + `,?\s+(\d{4})\b`)
	relativeSpan  = regexp.MustCompile(`\b(?:last|past|previous)\s+(\d+)\s+(day|week|month|year)s?\b`)
	relativeOne   = regexp.MustCompile(`\b(?:last|past|previous)\s+(day|week|month|year)\b`)
	yearToken     = `(199\d|20\d\d|2100)`
	yearRange     = regexp.MustCompile(`\b(?:between\s+|from\s+)?` + yearToken + `\s*(?:-|to|until|through|and)\s*` + yearToken + `\b`)
	yearSince     = regexp.MustCompile(`\b(since|after|before|until)\s+` + yearToken + `\b`)
	yearSingle    = regexp.MustCompile(`\b` + yearToken + `\b`)
	depthUnitNext = regexp.MustCompile(`^\s*(m|meters?|metres?|dbar|decibars?)\b`)
)

// dateForms are tried in order after ISO days; the first form that
// matches wins.
var dateForms = []func(text string) *domain.DateRange{
	namedDay,
	namedMonth,
	relativeRange,
	explicitYearRange,
	openYearRange,
	singleYear,
}

func extractDate(text string) domain.QueryIntent {
	if dr := isoDateRange(text); dr != nil {
		return domain.QueryIntent{DateRange: dr}
	}
	// A malformed ISO day such as 2024-02-30 must not be read as a bare year.
	text = isoDay.ReplaceAllString(text, " ")
	for _, form := range dateForms {
		if dr := form(text); dr != nil {
			return domain.QueryIntent{DateRange: dr}
		}
	}
	return domain.QueryIntent{}
}

func isoDateRange(text string) *domain.DateRange {
	var days []time.Time
	for _, m := range isoDay.FindAllStringSubmatch(text, -1) {
		if d, ok := makeDay(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			days = append(days, d)
		}
	}
	switch {
	case len(days) == 0:
		return nil
	case len(days) >= 2:
		start, end := days[0], days[1]
		if end.Before(start) {
			start, end = end, start
		}
		return &domain.DateRange{Start: start, End: end}
	case isoOpenStart.MatchString(text):
		return &domain.DateRange{Start: days[0]}
	case isoOpenEnd.MatchString(text):
		return &domain.DateRange{End: days[0]}
	default:
		return &domain.DateRange{Start: days[0], End: days[0]}
	}
}

func namedDay(text string) *domain.DateRange {
	if m := dayMonthYear.FindStringSubmatch(text); m != nil {
		if d, ok := makeDay(atoi(m[3]), int(months[m[2]]), atoi(m[1])); ok {
			return &domain.DateRange{Start: d, End: d}
		}
	}
	if m := monthDayYear.FindStringSubmatch(text); m != nil {
		if d, ok := makeDay(atoi(m[3]), int(months[m[1]]), atoi(m[2])); ok {
			return &domain.DateRange{Start: d, End: d}
		}
	}
	return nil
}

func namedMonth(text string) *domain.DateRange {
	m := monthYear.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	start, ok := makeDay(atoi(m[2]), int(months[m[1]]), 1)
	if !ok {
		return nil
	}
	return &domain.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

// relativeRange anchors "last N months" on the package clock so tests can
// freeze it.
func relativeRange(text string) *domain.DateRange {
	n, unit := 0, ""
	if m := relativeSpan.FindStringSubmatch(text); m != nil {
		n, unit = atoi(m[1]), m[2]
	} else if m := relativeOne.FindStringSubmatch(text); m != nil {
		n, unit = 1, m[1]
	}
	if n <= 0 {
		return nil
	}

	now := domain.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var start time.Time
	switch unit {
	case "day":
		start = today.AddDate(0, 0, -n)
	case "week":
		start = today.AddDate(0, 0, -7*n)
	case "month":
		start = today.AddDate(0, -n, 0)
	case "year":
		start = today.AddDate(-n, 0, 0)
	default:
		return nil
	}
	return &domain.DateRange{Start: start, End: today}
}

func explicitYearRange(text string) *domain.DateRange {
	for _, loc := range yearRange.FindAllStringSubmatchIndex(text, -1) {
		if followedByDepthUnit(text, loc[1]) {
			continue
		}
		y1, y2 := atoi(text[loc[2]:loc[3]]), atoi(text[loc[4]:loc[5]])
		if y2 < y1 {
			y1, y2 = y2, y1
		}
		return &domain.DateRange{Start: yearStart(y1), End: yearEnd(y2)}
	}
	return nil
}

func openYearRange(text string) *domain.DateRange {
	for _, loc := range yearSince.FindAllStringSubmatchIndex(text, -1) {
		if followedByDepthUnit(text, loc[1]) {
			continue
		}
		y := atoi(text[loc[4]:loc[5]])
		switch text[loc[2]:loc[3]] {
		case "since":
			return &domain.DateRange{Start: yearStart(y)}
		case "after":
			return &domain.DateRange{Start: yearStart(y + 1)}
		case "before":
			return &domain.DateRange{End: yearEnd(y - 1)}
		case "until":
			return &domain.DateRange{End: yearEnd(y)}
		}
	}
	return nil
}

// singleYear treats a lone year as the closed calendar year.
func singleYear(text string) *domain.DateRange {
	for _, loc := range yearSingle.FindAllStringSubmatchIndex(text, -1) {
		if followedByDepthUnit(text, loc[1]) {
			continue
		}
		y := atoi(text[loc[2]:loc[3]])
		return &domain.DateRange{Start: yearStart(y), End: yearEnd(y)}
	}
	return nil
}

func followedByDepthUnit(text string, end int) bool {
	return depthUnitNext.MatchString(text[end:])
}

func yearStart(y int) time.Time { return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC) }
func yearEnd(y int) time.Time   { return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC) }

// makeDay rejects dates that time.Date would normalize, such as 2024-02-30.
func makeDay(y, m, d int) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// --- depth ---

const (
	numPattern  = `(\d+(?:\.\d+)?)`
	unitPattern = `\s*(?:m|meters?|metres?|dbar|decibars?)\b`
)

var (
	depthBetween = regexp.MustCompile(`\bbetween\s+` + numPattern + `(?:` + unitPattern + `)?\s+and\s+` + numPattern + unitPattern)
	depthSpan    = regexp.MustCompile(numPattern + `(?:` + unitPattern + `)?\s*(?:-|to)\s*` + numPattern + unitPattern)
	depthMin     = regexp.MustCompile(`\b(?:deeper than|below|beneath|greater than|more than)\s+` + numPattern + unitPattern)
	depthMax     = regexp.MustCompile(`\b(?:above|shallower than|less than|up to|within)\s+(?:the\s+)?(?:top\s+|upper\s+|first\s+)?` + numPattern + unitPattern)
)

func extractDepth(text string) domain.QueryIntent {
	var lo, hi *float64
	if m := depthBetween.FindStringSubmatch(text); m != nil {
		lo, hi = parseNum(m[1]), parseNum(m[2])
	} else if m := depthSpan.FindStringSubmatch(text); m != nil {
		lo, hi = parseNum(m[1]), parseNum(m[2])
	} else {
		if m := depthMin.FindStringSubmatch(text); m != nil {
			lo = parseNum(m[1])
		}
		if m := depthMax.FindStringSubmatch(text); m != nil {
			hi = parseNum(m[1])
		}
	}
	if lo == nil && hi == nil {
		return domain.QueryIntent{}
	}
	if lo != nil && hi != nil && *lo > *hi {
		if depthBetween.MatchString(text) || depthSpan.MatchString(text) {
			lo, hi = hi, lo
		} else {
			return domain.QueryIntent{}
		}
	}
	return domain.QueryIntent{DepthRange: &domain.DepthRange{Min: lo, Max: hi}}
}

func parseNum(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// --- comparison, chart hint, quality ---

var comparisonWords = regexp.MustCompile(`\b(compare|compared|comparing|comparison|vs|versus|contrast|difference|differences)\b`)

func extractComparison(text string) domain.QueryIntent {
	return domain.QueryIntent{Comparison: comparisonWords.MatchString(text)}
}

var chartHints = []struct {
	re    *regexp.Regexp
	chart domain.ChartType
}{
	{regexp.MustCompile(`\b(histogram|distribution|distributed)\b`), domain.ChartHistogram},
	{regexp.MustCompile(`\b(time series|timeseries|trends?|over time)\b`), domain.ChartTimeSeries},
	{regexp.MustCompile(`\b(bar chart|bar graph|bars)\b`), domain.ChartComparisonBars},
	{regexp.MustCompile(`\b(map|maps|plot locations|where are)\b`), domain.ChartMap},
}

func extractChartHint(text string) domain.QueryIntent {
	for _, h := range chartHints {
		if h.re.MatchString(text) {
			return domain.QueryIntent{ChartHint: h.chart}
		}
	}
	return domain.QueryIntent{}
}

var qualityWords = regexp.MustCompile(`\b(high[- ]quality|good[- ]quality|quality[- ]controlled|good data only|only good|qc passed)\b`)

func extractQuality(text string) domain.QueryIntent {
	return domain.QueryIntent{QualityFilter: qualityWords.MatchString(text)}
}
