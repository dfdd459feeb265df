// Package analytics reads LinkedIn analytics exports and post pages and
// asks the model for reports about them.
package analytics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/xuri/excelize/v2"
)

// Sheet names in a LinkedIn creator analytics export.
const (
	SheetEngagement   = "ENGAGEMENT"
	SheetTopPosts     = "TOP POSTS"
	SheetDiscovery    = "DISCOVERY"
	SheetDemographics = "DEMOGRAPHICS"

	topPostsHeaderRow = 2 // 0-based; the first two rows are a title and a blank line
	topPostsLimit     = 10
)

var (
	engagementCandidates = []string{"engagements", "engagement", "interactions"}
	impressionCandidates = []string{"impressions", "impression", "views"}
	numberRe             = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)
)

// Record is one spreadsheet row keyed by header. Metric cells that parse as
// numbers are float64, everything else is a string.
type Record map[string]any

// MonthlyEngagement aggregates the ENGAGEMENT sheet by month. Growth is nil
// for the first month.
type MonthlyEngagement struct {
	Month            string   `json:"month"`
	Engagements      float64  `json:"engagements"`
	Impressions      float64  `json:"impressions"`
	EngagementGrowth *float64 `json:"engagement_growth_pct"`
	ImpressionGrowth *float64 `json:"impression_growth_pct"`
}

// Export is the parsed workbook. A sheet that failed to load is recorded in
// Errors and left empty.
type Export struct {
	Engagement   []MonthlyEngagement `json:"engagement,omitempty"`
	TopPosts     []Record            `json:"top_posts,omitempty"`
	Discovery    []Record            `json:"discovery,omitempty"`
	Demographics []Record            `json:"demographics,omitempty"`
	Errors       map[string]string   `json:"errors,omitempty"`
}

// Loader parses exports and keeps them in a TTL cache keyed by path, size
// and modification time.
type Loader struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewLoader(ttl time.Duration) (*Loader, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     64,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache, ttl: ttl}, nil
}

// Load parses path, or returns the cached parse of an unchanged file.
func (l *Loader) Load(path string) (*Export, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("analytics file: %w", err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, st.Size(), st.ModTime().UnixNano())
	if v, ok := l.cache.Get(key); ok {
		if exp, ok := v.(*Export); ok {
			return exp, nil
		}
	}
	exp, err := ParseWorkbook(path)
	if err != nil {
		return nil, err
	}
	l.cache.SetWithTTL(key, exp, 1, l.ttl)
	l.cache.Wait()
	return exp, nil
}

func (l *Loader) Close() { l.cache.Close() }

// ParseWorkbook reads all four sheets from an xlsx export.
func ParseWorkbook(path string) (*Export, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, errors.New("analytics: csv exports hold a single sheet; upload the .xlsx export")
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	exp := &Export{Errors: map[string]string{}}
	note := func(sheet string, err error) {
		exp.Errors[sheet] = err.Error()
	}

	if rows, err := f.GetRows(SheetEngagement); err != nil {
		note(SheetEngagement, err)
	} else if exp.Engagement, err = monthlyEngagement(rows); err != nil {
		note(SheetEngagement, err)
	}
	if rows, err := f.GetRows(SheetTopPosts); err != nil {
		note(SheetTopPosts, err)
	} else if exp.TopPosts, err = topPosts(rows); err != nil {
		note(SheetTopPosts, err)
	}
	if rows, err := f.GetRows(SheetDiscovery); err != nil {
		note(SheetDiscovery, err)
	} else {
		exp.Discovery = records(rows, 0)
	}
	if rows, err := f.GetRows(SheetDemographics); err != nil {
		note(SheetDemographics, err)
	} else {
		exp.Demographics = demographics(rows)
	}

	if len(exp.Errors) == 4 {
		return nil, fmt.Errorf("analytics: no known sheets in %s", path)
	}
	if len(exp.Errors) == 0 {
		exp.Errors = nil
	}
	return exp, nil
}

// records maps rows below headerRow to header-keyed records, skipping rows
// with no content.
func records(rows [][]string, headerRow int) []Record {
	if len(rows) <= headerRow {
		return nil
	}
	header := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		header[i] = strings.TrimSpace(h)
	}
	var out []Record
	for _, row := range rows[headerRow+1:] {
		rec := Record{}
		empty := true
		for i, h := range header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v != "" {
				empty = false
			}
			rec[h] = v
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

// toNumber strips thousands separators and takes the first number in s.
func toNumber(s string) (float64, bool) {
	m := numberRe.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	return f, err == nil
}

// findColumn matches candidates case-insensitively, first exactly, then as
// a substring of the header.
func findColumn(header []string, candidates []string) string {
	lower := make(map[string]string, len(header))
	for _, h := range header {
		lower[strings.ToLower(strings.TrimSpace(h))] = strings.TrimSpace(h)
	}
	for _, c := range candidates {
		if orig, ok := lower[c]; ok {
			return orig
		}
	}
	for _, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if key != "" && strings.Contains(key, c) {
				return strings.TrimSpace(h)
			}
		}
	}
	return ""
}

// coerce replaces the column's values with float64, deleting unparsable ones.
func coerce(recs []Record, col string) {
	if col == "" {
		return
	}
	for _, r := range recs {
		s, _ := r[col].(string)
		if f, ok := toNumber(s); ok {
			r[col] = f
		} else {
			delete(r, col)
		}
	}
}

func metric(r Record, col string) (float64, bool) {
	if col == "" {
		return 0, false
	}
	f, ok := r[col].(float64)
	return f, ok
}

// byMetricsDesc orders by the given columns descending; missing values last.
func byMetricsDesc(recs []Record, cols ...string) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, c := range cols {
			a, aok := metric(recs[i], c)
			b, bok := metric(recs[j], c)
			switch {
			case aok && !bok:
				return true
			case !aok && bok:
				return false
			case aok && bok && a != b:
				return a > b
			}
		}
		return false
	})
}

func topPosts(rows [][]string) ([]Record, error) {
	if len(rows) <= topPostsHeaderRow {
		return nil, errors.New("sheet has no header row")
	}
	recs := records(rows, topPostsHeaderRow)
	header := rows[topPostsHeaderRow]
	engCol := findColumn(header, engagementCandidates)
	impCol := findColumn(header, impressionCandidates)
	coerce(recs, engCol)
	coerce(recs, impCol)

	var cols []string
	for _, c := range []string{engCol, impCol} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) > 0 {
		kept := recs[:0]
		for _, r := range recs {
			_, e := metric(r, engCol)
			_, i := metric(r, impCol)
			if e || i {
				kept = append(kept, r)
			}
		}
		recs = kept
		byMetricsDesc(recs, cols...)
	}
	if len(recs) > topPostsLimit {
		recs = recs[:topPostsLimit]
	}
	return recs, nil
}

func demographics(rows [][]string) []Record {
	recs := records(rows, 0)
	coerce(recs, "Percentage")
	byMetricsDesc(recs, "Percentage")
	return recs
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
	"2006/01/02",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// monthlyEngagement sums the daily rows per month and computes
// month-over-month growth.
func monthlyEngagement(rows [][]string) ([]MonthlyEngagement, error) {
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}
	header := rows[0]
	idx := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}
	dateCol, engCol, impCol := idx("Date"), idx("Engagements"), idx("Impressions")
	if dateCol < 0 {
		return nil, errors.New(`missing "Date" column`)
	}
	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	byMonth := map[string]*MonthlyEngagement{}
	for _, row := range rows[1:] {
		d, ok := parseDate(cell(row, dateCol))
		if !ok {
			continue
		}
		key := d.Format("2006-01")
		m := byMonth[key]
		if m == nil {
			m = &MonthlyEngagement{Month: key}
			byMonth[key] = m
		}
		if v, ok := toNumber(cell(row, engCol)); ok {
			m.Engagements += v
		}
		if v, ok := toNumber(cell(row, impCol)); ok {
			m.Impressions += v
		}
	}

	months := make([]string, 0, len(byMonth))
	for k := range byMonth {
		months = append(months, k)
	}
	sort.Strings(months)

	out := make([]MonthlyEngagement, 0, len(months))
	for i, k := range months {
		m := *byMonth[k]
		if i > 0 {
			prev := out[i-1]
			m.EngagementGrowth = growth(prev.Engagements, m.Engagements)
			m.ImpressionGrowth = growth(prev.Impressions, m.Impressions)
		}
		out = append(out, m)
	}
	return out, nil
}

func growth(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	g := (cur - prev) / prev * 100
	return &g
}
