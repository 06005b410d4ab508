package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

func sat(id, launch, band, country, constellation string) model.Satellite {
	return model.Satellite{
		Identifier: id,
		Canonical: model.Canonical{
			LaunchDate:    launch,
			OrbitalBand:   band,
			Country:       country,
			Constellation: constellation,
		},
	}
}

func TestParseLaunchDate(t *testing.T) {
	year, month, ok := ParseLaunchDate("1957-10-04")
	assert.True(t, ok)
	assert.Equal(t, 1957, year)
	assert.Equal(t, 10, month)

	year, month, ok = ParseLaunchDate("1999-05")
	assert.True(t, ok)
	assert.Equal(t, 1999, year)
	assert.Equal(t, 5, month)

	year, month, ok = ParseLaunchDate("2021")
	assert.True(t, ok)
	assert.Equal(t, 2021, year)
	assert.Equal(t, 0, month)

	// Timestamps keep only the date portion.
	year, month, ok = ParseLaunchDate("2020-07-20T04:30:00Z")
	assert.True(t, ok)
	assert.Equal(t, 2020, year)
	assert.Equal(t, 7, month)

	_, _, ok = ParseLaunchDate("")
	assert.False(t, ok)
	_, _, ok = ParseLaunchDate("unknown")
	assert.False(t, ok)
}

func TestYearlyCountsExcludeUnparseable(t *testing.T) {
	ix := Build([]model.Satellite{
		sat("a", "2020-01-01", "LEO", "USA", ""),
		sat("b", "2020", "LEO", "USA", ""),
		sat("c", "2021-03-15", "GEO", "France", ""),
		sat("d", "", "LEO", "USA", ""),
		sat("e", "n/a", "LEO", "USA", ""),
	}, 1957)

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, []YearCount{
		{Year: 2020, Count: 2},
		{Year: 2021, Count: 1},
	}, ix.YearlyCounts())
}

func TestMinYearFilter(t *testing.T) {
	ix := Build([]model.Satellite{
		sat("a", "1912-01-01", "", "", ""),
		sat("b", "1957-10-04", "", "", ""),
	}, 1957)
	assert.Equal(t, 1, ix.Len())
}

func TestMonthlyCountsSkipYearOnly(t *testing.T) {
	ix := Build([]model.Satellite{
		sat("a", "2020-01-10", "", "", ""),
		sat("b", "2020-01-22", "", "", ""),
		sat("c", "2020-06-01", "", "", ""),
		sat("d", "2020", "", "", ""),
	}, 1957)

	assert.Equal(t, []MonthCount{
		{Month: 1, Count: 2},
		{Month: 6, Count: 1},
	}, ix.MonthlyCounts(2020))
}

func TestBreakdownSubcountsBounded(t *testing.T) {
	ix := Build([]model.Satellite{
		sat("a", "2020-01-01", "LEO", "USA", "Starlink Gen 1"),
		sat("b", "2020-02-01", "LEO", "USA", "Starlink Gen 1"),
		sat("c", "2020-03-01", "GEO", "", ""),
		sat("d", "2020", "", "Japan", ""),
	}, 1957)

	bd := ix.Breakdown(2020, 0, 10)
	assert.Equal(t, 4, bd.Total)

	sum := func(counts []CategoryCount) int {
		total := 0
		for _, c := range counts {
			total += c.Count
		}
		return total
	}
	// Missing sub-dimension values leave each decomposition at or below total.
	assert.LessOrEqual(t, sum(bd.ByBand), bd.Total)
	assert.LessOrEqual(t, sum(bd.ByCountry), bd.Total)
	assert.LessOrEqual(t, sum(bd.ByConstellation), bd.Total)

	assert.Equal(t, []CategoryCount{{Name: "LEO", Count: 2}, {Name: "GEO", Count: 1}}, bd.ByBand)
	assert.Equal(t, []CategoryCount{{Name: "Starlink Gen 1", Count: 2}}, bd.ByConstellation)
}

func TestMonthlyBreakdown(t *testing.T) {
	ix := Build([]model.Satellite{
		sat("a", "2021-05-01", "LEO", "USA", ""),
		sat("b", "2021-05-09", "LEO", "China", ""),
		sat("c", "2021-06-01", "LEO", "USA", ""),
	}, 1957)

	bd := ix.Breakdown(2021, 5, 10)
	assert.Equal(t, 2, bd.Total)
	assert.Equal(t, []CategoryCount{{Name: "LEO", Count: 2}}, bd.ByBand)
}

func TestBreakdownTopN(t *testing.T) {
	sats := []model.Satellite{
		sat("a", "2019-01-01", "", "USA", ""),
		sat("b", "2019-01-01", "", "USA", ""),
		sat("c", "2019-01-01", "", "China", ""),
		sat("d", "2019-01-01", "", "France", ""),
	}
	ix := Build(sats, 1957)
	bd := ix.Breakdown(2019, 0, 2)
	assert.Len(t, bd.ByCountry, 2)
	assert.Equal(t, "USA", bd.ByCountry[0].Name)
}
