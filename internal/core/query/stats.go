package query

import (
	"context"

	"github.com/orbitwatch/orbitgraph/internal/core/timeline"
	"github.com/orbitwatch/orbitgraph/internal/driver"
)

// statsConstellationLimit bounds the constellation size listing in the
// navigation stats payload.
const statsConstellationLimit = 10

// Stats aggregates summary counts across every relationship type. The
// payload backs navigation menus, so each section is small and bounded.
func (s *Service) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{}

	counts := []struct {
		key   string
		query string
	}{
		{"satellites", driver.CountSatellitesQuery},
		{"documents", driver.CountDocumentsQuery},
		{"countries", driver.CountCountryNodesQuery},
	}
	for _, c := range counts {
		res, err := s.store.ExecuteQuery(ctx, c.query, nil)
		if err != nil {
			return nil, err
		}
		total := 0
		if len(res.Records) > 0 {
			total = recInt(res.Records[0], "total")
		}
		stats[c.key] = total
	}

	edgeRes, err := s.store.ExecuteQuery(ctx, driver.CountEdgesByTypeQuery, nil)
	if err != nil {
		return nil, err
	}
	edgeCounts := map[string]int{}
	for _, rec := range edgeRes.Records {
		switch recStr(rec, "rel_type") {
		case driver.RelMemberOf:
			edgeCounts["constellation"] = recInt(rec, "total")
		case driver.RelNear:
			edgeCounts["proximity"] = recInt(rec, "total")
		case driver.RelRegisteredIn:
			edgeCounts["registration"] = recInt(rec, "total")
		case driver.RelCountryLink:
			edgeCounts["country"] = recInt(rec, "total")
		}
	}
	stats["edges"] = edgeCounts

	bandRes, err := s.store.ExecuteQuery(ctx, driver.ProximityByBandQuery, nil)
	if err != nil {
		return nil, err
	}
	byBand := map[string]int{}
	for _, rec := range bandRes.Records {
		if band := recStr(rec, "orbital_band"); band != "" {
			byBand[band] = recInt(rec, "total")
		}
	}
	stats["proximity_by_band"] = byBand

	constRes, err := s.store.ExecuteQuery(ctx, driver.ConstellationSizesQuery, nil)
	if err != nil {
		return nil, err
	}
	type constellationSize struct {
		Name    string `json:"name"`
		Members int    `json:"members"`
	}
	sizes := make([]constellationSize, 0, statsConstellationLimit)
	for _, rec := range constRes.Records {
		if len(sizes) == statsConstellationLimit {
			break
		}
		name := recStr(rec, "constellation")
		if name == "" {
			continue
		}
		// Hub edges undercount by one per group.
		sizes = append(sizes, constellationSize{Name: name, Members: recInt(rec, "members") + 1})
	}
	stats["top_constellations"] = sizes

	docRes, err := s.store.ExecuteQuery(ctx, driver.TopDocumentsQuery, nil)
	if err != nil {
		return nil, err
	}
	type documentSummary struct {
		Key            string   `json:"key"`
		Reference      string   `json:"reference"`
		SatelliteCount int      `json:"satellite_count"`
		Countries      []string `json:"countries"`
	}
	docs := make([]documentSummary, 0, len(docRes.Records))
	for _, rec := range docRes.Records {
		docs = append(docs, documentSummary{
			Key:            recStr(rec, "key"),
			Reference:      recStr(rec, "reference"),
			SatelliteCount: recInt(rec, "satellite_count"),
			Countries:      recStrList(rec, "countries"),
		})
	}
	stats["top_documents"] = docs

	yearRes, err := s.store.ExecuteQuery(ctx, driver.LaunchYearsQuery, nil)
	if err != nil {
		return nil, err
	}
	byYear := map[int]int{}
	for _, rec := range yearRes.Records {
		year, _, ok := timeline.ParseLaunchDate(recStr(rec, "launch_date"))
		if !ok || year < s.cfg.Timeline.MinYear {
			continue
		}
		byYear[year]++
	}
	stats["launches_by_year"] = byYear

	return stats, nil
}
