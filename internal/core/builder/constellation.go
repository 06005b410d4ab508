package builder

import (
	"fmt"
	"sort"

	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

// BuildConstellations derives the star-topology membership edges: every
// constellation gets one hub (the member with the lexicographically smallest
// identifier) and one member→hub edge per remaining member. Groups of one
// yield no edges. The result is deterministic for unchanged grouping data.
func BuildConstellations(sats []model.Satellite) []model.Edge {
	groups := map[string][]string{}
	for _, sat := range sats {
		name := sat.Canonical.Constellation
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], sat.Identifier)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var edges []model.Edge
	for _, name := range names {
		members := groups[name]
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		hub := members[0]
		for _, member := range members[1:] {
			edges = append(edges, model.Edge{
				ID:       fmt.Sprintf("%s_to_hub", SanitizeKey(member)),
				SourceID: member,
				TargetID: hub,
				Type:     model.RelConstellation,
				TypeAttrs: map[string]interface{}{
					"constellation": name,
					"relationship":  "member_to_hub",
					"via_hub":       true,
				},
			})
		}
	}
	return edges
}
