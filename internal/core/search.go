package core

import (
	"context"

	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/driver"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// SearchOptions filters the satellite listing. Empty fields match
// everything.
type SearchOptions struct {
	Query          string
	Country        string
	Status         string
	OrbitalBand    string
	CongestionRisk string
	Skip           int
	Limit          int
}

func (e *Engine) SearchSatellites(ctx context.Context, opts SearchOptions) ([]model.Satellite, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchLimit
	}
	if opts.Limit > maxSearchLimit {
		opts.Limit = maxSearchLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	res, err := e.Store.ExecuteQuery(ctx, driver.SearchSatellitesQuery, map[string]interface{}{
		"query":           opts.Query,
		"country":         opts.Country,
		"status":          opts.Status,
		"orbital_band":    opts.OrbitalBand,
		"congestion_risk": opts.CongestionRisk,
		"skip":            opts.Skip,
		"limit":           opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	sats := make([]model.Satellite, 0, len(res.Records))
	for _, rec := range res.Records {
		sat, err := satelliteFromRecord(rec)
		if err != nil {
			return nil, err
		}
		sats = append(sats, *sat)
	}
	return sats, nil
}

// FilterOptions lists the distinct values of each filterable attribute, for
// populating dropdowns.
func (e *Engine) FilterOptions(ctx context.Context) (map[string][]string, error) {
	queries := map[string]string{
		"countries":        driver.DistinctCountriesQuery,
		"statuses":         driver.DistinctStatusesQuery,
		"orbital_bands":    driver.DistinctBandsQuery,
		"congestion_risks": driver.DistinctRisksQuery,
	}

	out := make(map[string][]string, len(queries))
	for name, q := range queries {
		res, err := e.Store.ExecuteQuery(ctx, q, nil)
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(res.Records))
		for _, rec := range res.Records {
			if v := recString(rec, "value"); v != "" {
				values = append(values, v)
			}
		}
		out[name] = values
	}
	return out, nil
}
