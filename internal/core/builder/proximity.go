package builder

import (
	"fmt"
	"math"
	"sort"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

type orbitEntry struct {
	id          string
	apogee      float64
	perigee     float64
	inclination float64
}

type candidate struct {
	target          string
	score           float64
	apogeeDiff      float64
	perigeeDiff     float64
	inclinationDiff float64
}

// BuildProximity derives the directed orbital-proximity edges. Satellites are
// partitioned by orbital band and only compared within their partition. A
// pair qualifies only when apogee, perigee, AND inclination deltas are all
// within their thresholds; a blended distance that fails one dimension does
// not. Each satellite keeps at most MaxEdgesPerSatellite outbound edges,
// ranked by composite score (lower = closer), so the relation is asymmetric
// per source node.
//
// Satellites missing the band or any orbital parameter are skipped, not
// failed: most records lack complete parameters.
func BuildProximity(sats []model.Satellite, cfg config.ProximityConfig, log *logger.Logger) []model.Edge {
	if log == nil {
		log = logger.NewNop()
	}

	bands := map[string][]orbitEntry{}
	for _, sat := range sats {
		band := sat.Canonical.OrbitalBand
		orbit := sat.Canonical.Orbit
		if band == "" || !orbit.Complete() {
			continue
		}
		bands[band] = append(bands[band], orbitEntry{
			id:          sat.Identifier,
			apogee:      *orbit.ApogeeKm,
			perigee:     *orbit.PerigeeKm,
			inclination: *orbit.InclinationDeg,
		})
	}

	bandNames := make([]string, 0, len(bands))
	for name := range bands {
		bandNames = append(bandNames, name)
	}
	sort.Strings(bandNames)

	var edges []model.Edge
	for _, band := range bandNames {
		edges = append(edges, buildBand(band, bands[band], cfg, log)...)
	}
	return edges
}

// buildBand runs the pairwise scan for one partition. Candidate lists are
// pruned as the scan proceeds so peak memory stays proportional to
// members * top-K, not members².
func buildBand(band string, entries []orbitEntry, cfg config.ProximityConfig, log *logger.Logger) []model.Edge {
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	topK := cfg.MaxEdgesPerSatellite
	pruneAt := topK * 4
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = 500
	}

	candidates := make([][]candidate, len(entries))
	for i := range entries {
		if i > 0 && i%chunk == 0 {
			log.Debug("proximity scan progress", "band", band, "processed", i, "total", len(entries))
		}
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			apogeeDiff := math.Abs(a.apogee - b.apogee)
			perigeeDiff := math.Abs(a.perigee - b.perigee)
			inclinationDiff := math.Abs(a.inclination - b.inclination)

			if apogeeDiff > cfg.ApogeeThresholdKm ||
				perigeeDiff > cfg.PerigeeThresholdKm ||
				inclinationDiff > cfg.InclinationThresholdDeg {
				continue
			}

			score := proximityScore(apogeeDiff, perigeeDiff, inclinationDiff, cfg)
			c := candidate{
				score:           score,
				apogeeDiff:      apogeeDiff,
				perigeeDiff:     perigeeDiff,
				inclinationDiff: inclinationDiff,
			}
			c.target = b.id
			candidates[i] = appendPruned(candidates[i], c, pruneAt, topK)
			c.target = a.id
			candidates[j] = appendPruned(candidates[j], c, pruneAt, topK)
		}
	}

	var edges []model.Edge
	for i, entry := range entries {
		list := candidates[i]
		sortCandidates(list)
		if len(list) > topK {
			list = list[:topK]
		}
		for _, c := range list {
			edges = append(edges, model.Edge{
				ID:       fmt.Sprintf("%s__%s", SanitizeKey(entry.id), SanitizeKey(c.target)),
				SourceID: entry.id,
				TargetID: c.target,
				Type:     model.RelProximity,
				TypeAttrs: map[string]interface{}{
					"orbital_band":             band,
					"proximity_score":          round(c.score, 4),
					"apogee_diff_km":           round(c.apogeeDiff, 2),
					"perigee_diff_km":          round(c.perigeeDiff, 2),
					"inclination_diff_degrees": round(c.inclinationDiff, 2),
					"risk_level":               RiskLevel(c.score),
				},
			})
		}
	}
	log.Debug("proximity band complete", "band", band, "satellites", len(entries), "edges", len(edges))
	return edges
}

// proximityScore is the sum of squared threshold-normalized deltas. Zero
// means identical parameters; 3.0 means every delta sits exactly on its
// threshold.
func proximityScore(apogeeDiff, perigeeDiff, inclinationDiff float64, cfg config.ProximityConfig) float64 {
	a := apogeeDiff / cfg.ApogeeThresholdKm
	p := perigeeDiff / cfg.PerigeeThresholdKm
	i := inclinationDiff / cfg.InclinationThresholdDeg
	return a*a + p*p + i*i
}

// RiskLevel buckets a proximity score into the 4-level congestion scale so
// consumers never recompute it.
func RiskLevel(score float64) string {
	switch {
	case score < 0.25:
		return "critical"
	case score < 1.0:
		return "high"
	case score < 2.0:
		return "medium"
	default:
		return "low"
	}
}

func appendPruned(list []candidate, c candidate, pruneAt, topK int) []candidate {
	list = append(list, c)
	if pruneAt > 0 && len(list) > pruneAt {
		sortCandidates(list)
		list = list[:topK]
	}
	return list
}

func sortCandidates(list []candidate) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score < list[j].score
		}
		return list[i].target < list[j].target
	})
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
