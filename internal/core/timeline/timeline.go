package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

// record keeps just the per-satellite dimensions breakdowns group by.
type record struct {
	year          int
	month         int // 0 when the date is year-only
	band          string
	country       string
	constellation string
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"satellite_count"`
}

type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"satellite_count"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Breakdown is the per-dimension decomposition of one year or year+month
// slice. Sub-counts may sum to less than Total when satellites lack the
// sub-dimension value.
type Breakdown struct {
	Year            int             `json:"year"`
	Month           int             `json:"month,omitempty"`
	Total           int             `json:"total_satellites"`
	ByBand          []CategoryCount `json:"by_orbital_band"`
	ByCountry       []CategoryCount `json:"by_country"`
	ByConstellation []CategoryCount `json:"by_constellation"`
}

// Index is the launch timeline aggregate: pure counts, no entity-to-entity
// edges. Satellites without a parseable launch date are excluded entirely.
type Index struct {
	records []record
}

// Build indexes every satellite with a parseable launch date at or after
// minYear. Mixed granularity is fine; year-only dates count toward yearly
// aggregates but never toward a month.
func Build(sats []model.Satellite, minYear int) *Index {
	ix := &Index{}
	for _, sat := range sats {
		year, month, ok := ParseLaunchDate(sat.Canonical.LaunchDate)
		if !ok || year < minYear {
			continue
		}
		ix.records = append(ix.records, record{
			year:          year,
			month:         month,
			band:          sat.Canonical.OrbitalBand,
			country:       sat.Canonical.Country,
			constellation: sat.Canonical.Constellation,
		})
	}
	return ix
}

// ParseLaunchDate consumes the usable portion of a launch date: full ISO
// dates, year-month, or bare years. month is 0 for year-only dates.
func ParseLaunchDate(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if len(s) < len(layout) {
			continue
		}
		t, err := time.Parse(layout, s[:len(layout)])
		if err != nil {
			continue
		}
		year = t.Year()
		if len(layout) > 4 {
			month = int(t.Month())
		}
		return year, month, true
	}
	return 0, 0, false
}

func (ix *Index) Len() int {
	return len(ix.records)
}

// YearlyCounts returns launch counts per year, ascending.
func (ix *Index) YearlyCounts() []YearCount {
	byYear := map[int]int{}
	for _, r := range ix.records {
		byYear[r.year]++
	}
	out := make([]YearCount, 0, len(byYear))
	for year, count := range byYear {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MonthlyCounts returns per-month counts for one year, ascending. Year-only
// records are not attributable to a month and are skipped.
func (ix *Index) MonthlyCounts(year int) []MonthCount {
	byMonth := map[int]int{}
	for _, r := range ix.records {
		if r.year != year || r.month == 0 {
			continue
		}
		byMonth[r.month]++
	}
	out := make([]MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		out = append(out, MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Breakdown decomposes one year (month == 0) or one year+month by band,
// country, and constellation, keeping the top-N per dimension.
func (ix *Index) Breakdown(year, month, topN int) *Breakdown {
	bd := &Breakdown{
		Year:            year,
		Month:           month,
		ByBand:          []CategoryCount{},
		ByCountry:       []CategoryCount{},
		ByConstellation: []CategoryCount{},
	}
	bands := map[string]int{}
	countries := map[string]int{}
	constellations := map[string]int{}

	for _, r := range ix.records {
		if r.year != year {
			continue
		}
		if month != 0 && r.month != month {
			continue
		}
		bd.Total++
		if r.band != "" {
			bands[r.band]++
		}
		if r.country != "" {
			countries[r.country]++
		}
		if r.constellation != "" {
			constellations[r.constellation]++
		}
	}

	bd.ByBand = topCounts(bands, topN)
	bd.ByCountry = topCounts(countries, topN)
	bd.ByConstellation = topCounts(constellations, topN)
	return bd
}

func topCounts(m map[string]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(m))
	for name, count := range m {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
