package builder

import (
	"fmt"
	"sort"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

// CountryNode is the per-country aggregate the country-relations graph is
// built over.
type CountryNode struct {
	Name           string `json:"country"`
	SatelliteCount int    `json:"satellite_count"`
}

// BuildCountryRelations aggregates satellites by country of origin and
// derives two edge kinds between the retained countries: "collaboration"
// (both countries appear on the same registration document) and
// "shared_band" (their combined satellite count in one band clears the
// threshold). Countries below MinSatellites are dropped for legibility and
// at most MaxCountries are kept.
func BuildCountryRelations(sats []model.Satellite, cfg config.CountryConfig) ([]CountryNode, []model.Edge) {
	counts := map[string]int{}
	for _, sat := range sats {
		if sat.Canonical.Country != "" {
			counts[sat.Canonical.Country]++
		}
	}

	nodes := make([]CountryNode, 0, len(counts))
	for name, count := range counts {
		if count >= cfg.MinSatellites {
			nodes = append(nodes, CountryNode{Name: name, SatelliteCount: count})
		}
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].SatelliteCount != nodes[j].SatelliteCount {
			return nodes[i].SatelliteCount > nodes[j].SatelliteCount
		}
		return nodes[i].Name < nodes[j].Name
	})
	if cfg.MaxCountries > 0 && len(nodes) > cfg.MaxCountries {
		nodes = nodes[:cfg.MaxCountries]
	}

	included := map[string]bool{}
	for _, n := range nodes {
		included[n.Name] = true
	}

	edges := append(sharedBandEdges(sats, included, cfg), collaborationEdges(sats, included)...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return nodes, edges
}

func sharedBandEdges(sats []model.Satellite, included map[string]bool, cfg config.CountryConfig) []model.Edge {
	type bandKey struct{ country, band string }
	perBand := map[bandKey]int{}
	bandSet := map[string]bool{}
	for _, sat := range sats {
		c, b := sat.Canonical.Country, sat.Canonical.OrbitalBand
		if !included[c] || b == "" {
			continue
		}
		perBand[bandKey{c, b}]++
		bandSet[b] = true
	}

	countries := sortedKeys(included)
	var edges []model.Edge
	for band := range bandSet {
		for i := 0; i < len(countries); i++ {
			for j := i + 1; j < len(countries); j++ {
				c1, c2 := countries[i], countries[j]
				n1 := perBand[bandKey{c1, band}]
				n2 := perBand[bandKey{c2, band}]
				if n1 == 0 || n2 == 0 || n1+n2 < cfg.SharedBandMin {
					continue
				}
				edges = append(edges, model.Edge{
					ID:       fmt.Sprintf("%s_%s_%s", SanitizeKey(c1), SanitizeKey(c2), SanitizeKey(band)),
					SourceID: c1,
					TargetID: c2,
					Type:     model.RelCountry,
					TypeAttrs: map[string]interface{}{
						"relationship": "shared_band",
						"orbital_band": band,
						"strength":     n1 + n2,
					},
				})
			}
		}
	}
	return edges
}

func collaborationEdges(sats []model.Satellite, included map[string]bool) []model.Edge {
	type docKey struct{ country, doc string }
	perDoc := map[docKey]int{}
	docCountries := map[string]map[string]bool{}
	for _, sat := range sats {
		c, doc := sat.Canonical.Country, sat.Canonical.RegistrationDocument
		if !included[c] || doc == "" {
			continue
		}
		perDoc[docKey{c, doc}]++
		if docCountries[doc] == nil {
			docCountries[doc] = map[string]bool{}
		}
		docCountries[doc][c] = true
	}

	// One collaboration edge per country pair, strength accumulated over
	// every document they share.
	type pair struct{ c1, c2 string }
	strength := map[pair]int{}
	for doc, cset := range docCountries {
		countries := sortedKeys(cset)
		for i := 0; i < len(countries); i++ {
			for j := i + 1; j < len(countries); j++ {
				p := pair{countries[i], countries[j]}
				strength[p] += perDoc[docKey{p.c1, doc}] + perDoc[docKey{p.c2, doc}]
			}
		}
	}

	var edges []model.Edge
	for p, s := range strength {
		edges = append(edges, model.Edge{
			ID:       fmt.Sprintf("%s_%s_collab", SanitizeKey(p.c1), SanitizeKey(p.c2)),
			SourceID: p.c1,
			TargetID: p.c2,
			Type:     model.RelCountry,
			TypeAttrs: map[string]interface{}{
				"relationship": "collaboration",
				"strength":     s * 10,
			},
		})
	}
	return edges
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
