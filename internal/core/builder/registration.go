package builder

import (
	"fmt"
	"sort"
	"time"

	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

// BuildRegistrations derives the bipartite registration linkage: one document
// node per unique reference and one satellite→document edge per satellite
// carrying that reference. Satellites without a reference contribute nothing.
func BuildRegistrations(sats []model.Satellite) ([]model.DocumentNode, []model.Edge) {
	type docAgg struct {
		reference string
		count     int
		countries map[string]bool
	}

	docs := map[string]*docAgg{}
	var edges []model.Edge

	for _, sat := range sats {
		ref := sat.Canonical.RegistrationDocument
		if ref == "" {
			continue
		}
		key := SanitizeKey(ref)
		agg, ok := docs[key]
		if !ok {
			agg = &docAgg{reference: ref, countries: map[string]bool{}}
			docs[key] = agg
		}
		agg.count++
		if sat.Canonical.Country != "" {
			agg.countries[sat.Canonical.Country] = true
		}

		edges = append(edges, model.Edge{
			ID:       fmt.Sprintf("%s_to_%s", SanitizeKey(sat.Identifier), key),
			SourceID: sat.Identifier,
			TargetID: key,
			Type:     model.RelRegistration,
			TypeAttrs: map[string]interface{}{
				"registration_document": ref,
				"relationship":          "registered_in",
			},
		})
	}

	now := time.Now().UTC()
	nodes := make([]model.DocumentNode, 0, len(docs))
	for key, agg := range docs {
		countries := make([]string, 0, len(agg.countries))
		for c := range agg.countries {
			countries = append(countries, c)
		}
		sort.Strings(countries)
		nodes = append(nodes, model.DocumentNode{
			Key:            key,
			Reference:      agg.reference,
			SatelliteCount: agg.count,
			Countries:      countries,
			CreatedAt:      now,
		})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key < nodes[j].Key })

	return nodes, edges
}
