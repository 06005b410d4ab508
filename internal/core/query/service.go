// Package query assembles bounded node+edge views over the stored
// relationship graph. All reads are stateless; rebuilds swap edge sets
// atomically, so no locking is needed here.
package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core/builder"
	"github.com/orbitwatch/orbitgraph/internal/core/classify"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/core/timeline"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

const defaultLimit = 100

type Service struct {
	store      driver.GraphStore
	cfg        *config.Config
	classifier *classify.Classifier
	log        *logger.Logger
}

func NewService(store driver.GraphStore, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		cfg:        cfg,
		classifier: classify.FromConfig(cfg.Classify),
		log:        log.With("component", "query"),
	}
}

// Query returns the subgraph for one relationship type and selector. An
// unmatched selector is a normal empty result, never an error.
func (s *Service) Query(ctx context.Context, relType model.RelationshipType, selector string, limit int) (*model.GraphView, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	switch relType {
	case model.RelConstellation:
		return s.constellationView(ctx, selector, limit)
	case model.RelProximity:
		return s.proximityView(ctx, selector, limit)
	case model.RelRegistration:
		return s.registrationView(ctx, selector, limit)
	case model.RelCountry:
		return s.countryView(ctx, limit)
	case model.RelFunction:
		return s.functionView(ctx, selector, limit)
	case model.RelTimeline:
		return s.timelineView(ctx, selector)
	default:
		return nil, fmt.Errorf("unknown relationship type %q", relType)
	}
}

func (s *Service) constellationView(ctx context.Context, constellation string, limit int) (*model.GraphView, error) {
	res, err := s.store.ExecuteQuery(ctx, driver.ConstellationMembersQuery, map[string]interface{}{
		"constellation": constellation,
		"limit":         limit,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return model.EmptyView(), nil
	}

	view := model.EmptyView()
	hub := res.Records[0]
	hubID := recStr(hub, "hub_identifier")
	view.Nodes = append(view.Nodes, model.Node{
		ID:          hubID,
		DisplayName: recStr(hub, "hub_name"),
		Type:        "satellite",
		TypeAttrs: map[string]interface{}{
			"role":          "hub",
			"constellation": constellation,
			"country":       recStr(hub, "hub_country"),
			"orbital_band":  recStr(hub, "hub_orbital_band"),
			"status":        recStr(hub, "hub_status"),
			"launch_date":   recStr(hub, "hub_launch_date"),
		},
	})

	for _, rec := range res.Records {
		memberID := recStr(rec, "identifier")
		if memberID == hubID {
			continue
		}
		view.Nodes = append(view.Nodes, model.Node{
			ID:          memberID,
			DisplayName: recStr(rec, "name"),
			Type:        "satellite",
			TypeAttrs: map[string]interface{}{
				"role":          "member",
				"constellation": constellation,
				"country":       recStr(rec, "country"),
				"orbital_band":  recStr(rec, "orbital_band"),
				"status":        recStr(rec, "status"),
				"launch_date":   recStr(rec, "launch_date"),
			},
		})
		view.Edges = append(view.Edges, model.Edge{
			ID:       recStr(rec, "edge_id"),
			SourceID: memberID,
			TargetID: hubID,
			Type:     model.RelConstellation,
			TypeAttrs: map[string]interface{}{
				"constellation": constellation,
				"relationship":  "member_to_hub",
				"via_hub":       true,
			},
		})
	}

	view.Stats = map[string]interface{}{
		"count":         len(view.Edges),
		"constellation": constellation,
		"hub":           hubID,
	}
	return view, nil
}

func (s *Service) proximityView(ctx context.Context, band string, limit int) (*model.GraphView, error) {
	res, err := s.store.ExecuteQuery(ctx, driver.ProximityEdgesQuery, map[string]interface{}{
		"orbital_band": band,
		"limit":        limit,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return model.EmptyView(), nil
	}

	totalRes, err := s.store.ExecuteQuery(ctx, driver.CountProximityEdgesQuery, map[string]interface{}{
		"orbital_band": band,
	})
	if err != nil {
		return nil, err
	}
	total := 0
	if len(totalRes.Records) > 0 {
		total = recInt(totalRes.Records[0], "total")
	}

	view := model.EmptyView()
	seen := map[string]bool{}
	addNode := func(rec *db.Record, prefix string) string {
		id := recStr(rec, prefix+"identifier")
		if id == "" || seen[id] {
			return id
		}
		seen[id] = true
		view.Nodes = append(view.Nodes, model.Node{
			ID:          id,
			DisplayName: recStr(rec, prefix+"name"),
			Type:        "satellite",
			TypeAttrs: map[string]interface{}{
				"orbital_band":        band,
				"apogee_km":           recFloat(rec, prefix+"apogee_km"),
				"perigee_km":          recFloat(rec, prefix+"perigee_km"),
				"inclination_degrees": recFloat(rec, prefix+"inclination_degrees"),
				"congestion_risk":     recStr(rec, prefix+"congestion_risk"),
			},
		})
		return id
	}

	for _, rec := range res.Records {
		srcID := addNode(rec, "source_")
		dstID := addNode(rec, "target_")
		view.Edges = append(view.Edges, model.Edge{
			ID:       recStr(rec, "edge_id"),
			SourceID: srcID,
			TargetID: dstID,
			Type:     model.RelProximity,
			TypeAttrs: map[string]interface{}{
				"orbital_band":             band,
				"proximity_score":          recFloat(rec, "proximity_score"),
				"apogee_diff_km":           recFloat(rec, "apogee_diff_km"),
				"perigee_diff_km":          recFloat(rec, "perigee_diff_km"),
				"inclination_diff_degrees": recFloat(rec, "inclination_diff_degrees"),
				"risk_level":               recStr(rec, "risk_level"),
			},
		})
	}

	view.Stats = map[string]interface{}{
		"count":        len(view.Edges),
		"total_edges":  total,
		"orbital_band": band,
	}
	return view, nil
}

func (s *Service) registrationView(ctx context.Context, selector string, limit int) (*model.GraphView, error) {
	key := builder.SanitizeKey(selector)
	docRes, err := s.store.ExecuteQuery(ctx, driver.GetDocumentQuery, map[string]interface{}{"key": key})
	if err != nil {
		return nil, err
	}
	if len(docRes.Records) == 0 {
		return model.EmptyView(), nil
	}
	doc := docRes.Records[0]

	satRes, err := s.store.ExecuteQuery(ctx, driver.DocumentSatellitesQuery, map[string]interface{}{
		"key":   key,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}

	view := model.EmptyView()
	view.Nodes = append(view.Nodes, model.Node{
		ID:          key,
		DisplayName: recStr(doc, "display_name"),
		Type:        "document",
		TypeAttrs: map[string]interface{}{
			"reference":       recStr(doc, "reference"),
			"satellite_count": recInt(doc, "satellite_count"),
			"countries":       recStrList(doc, "countries"),
		},
	})

	for _, rec := range satRes.Records {
		satID := recStr(rec, "identifier")
		view.Nodes = append(view.Nodes, model.Node{
			ID:          satID,
			DisplayName: recStr(rec, "name"),
			Type:        "satellite",
			TypeAttrs: map[string]interface{}{
				"country":             recStr(rec, "country"),
				"orbital_band":        recStr(rec, "orbital_band"),
				"status":              recStr(rec, "status"),
				"registration_number": recStr(rec, "registration_number"),
			},
		})
		view.Edges = append(view.Edges, model.Edge{
			ID:       recStr(rec, "edge_id"),
			SourceID: satID,
			TargetID: key,
			Type:     model.RelRegistration,
			TypeAttrs: map[string]interface{}{
				"registration_document": recStr(doc, "reference"),
				"relationship":          "registered_in",
			},
		})
	}

	view.Stats = map[string]interface{}{
		"count":    len(view.Edges),
		"document": key,
	}
	return view, nil
}

func (s *Service) countryView(ctx context.Context, limit int) (*model.GraphView, error) {
	nodeRes, err := s.store.ExecuteQuery(ctx, driver.CountryNodesQuery, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}
	if len(nodeRes.Records) == 0 {
		return model.EmptyView(), nil
	}

	edgeRes, err := s.store.ExecuteQuery(ctx, driver.CountryEdgesQuery, nil)
	if err != nil {
		return nil, err
	}

	view := model.EmptyView()
	included := map[string]bool{}
	for _, rec := range nodeRes.Records {
		name := recStr(rec, "name")
		included[name] = true
		view.Nodes = append(view.Nodes, model.Node{
			ID:          name,
			DisplayName: name,
			Type:        "country",
			TypeAttrs: map[string]interface{}{
				"satellite_count": recInt(rec, "satellite_count"),
			},
		})
	}

	for _, rec := range edgeRes.Records {
		src := recStr(rec, "source_name")
		dst := recStr(rec, "target_name")
		if !included[src] || !included[dst] {
			continue
		}
		attrs := map[string]interface{}{
			"relationship": recStr(rec, "relationship"),
			"strength":     recInt(rec, "strength"),
		}
		if band := recStr(rec, "orbital_band"); band != "" {
			attrs["orbital_band"] = band
		}
		view.Edges = append(view.Edges, model.Edge{
			ID:        recStr(rec, "edge_id"),
			SourceID:  src,
			TargetID:  dst,
			Type:      model.RelCountry,
			TypeAttrs: attrs,
		})
	}

	view.Stats = map[string]interface{}{
		"count":     len(view.Nodes),
		"edges":     len(view.Edges),
		"countries": len(view.Nodes),
	}
	return view, nil
}

// functionView groups satellites into keyword-derived categories. With an
// empty selector it returns one node per category; with a category selector
// it returns the co-membership star for that category.
func (s *Service) functionView(ctx context.Context, category string, limit int) (*model.GraphView, error) {
	res, err := s.store.ExecuteQuery(ctx, driver.FunctionSatellitesQuery, nil)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*db.Record{}
	for _, rec := range res.Records {
		cat := s.classifier.Classify(recStr(rec, "function"))
		if cat == "" {
			continue
		}
		grouped[cat] = append(grouped[cat], rec)
	}

	view := model.EmptyView()
	if category == "" {
		names := make([]string, 0, len(grouped))
		for name := range grouped {
			names = append(names, name)
		}
		sort.Strings(names)
		total := 0
		for _, name := range names {
			total += len(grouped[name])
			view.Nodes = append(view.Nodes, model.Node{
				ID:          "category:" + builder.SanitizeKey(name),
				DisplayName: name,
				Type:        "function_category",
				TypeAttrs: map[string]interface{}{
					"satellite_count": len(grouped[name]),
				},
			})
		}
		view.Stats = map[string]interface{}{
			"count":            len(view.Nodes),
			"total_classified": total,
		}
		return view, nil
	}

	members, ok := grouped[category]
	if !ok {
		return model.EmptyView(), nil
	}
	if len(members) > limit {
		members = members[:limit]
	}

	catID := "category:" + builder.SanitizeKey(category)
	view.Nodes = append(view.Nodes, model.Node{
		ID:          catID,
		DisplayName: category,
		Type:        "function_category",
		TypeAttrs: map[string]interface{}{
			"satellite_count": len(grouped[category]),
		},
	})
	for _, rec := range members {
		satID := recStr(rec, "identifier")
		view.Nodes = append(view.Nodes, model.Node{
			ID:          satID,
			DisplayName: recStr(rec, "name"),
			Type:        "satellite",
			TypeAttrs: map[string]interface{}{
				"function":        recStr(rec, "function"),
				"country":         recStr(rec, "country"),
				"orbital_band":    recStr(rec, "orbital_band"),
				"launch_date":     recStr(rec, "launch_date"),
				"congestion_risk": recStr(rec, "congestion_risk"),
			},
		})
		view.Edges = append(view.Edges, model.Edge{
			ID:       builder.SanitizeKey(satID) + "_to_" + catID,
			SourceID: satID,
			TargetID: catID,
			Type:     model.RelFunction,
			TypeAttrs: map[string]interface{}{
				"category":     category,
				"relationship": "same_function",
				"via_hub":      true,
			},
		})
	}

	view.Stats = map[string]interface{}{
		"count":    len(view.Edges),
		"category": category,
	}
	return view, nil
}

// timelineView aggregates launch counts. Selector forms: "" for the yearly
// series, "2003" for a year breakdown, "2003-06" for a month breakdown.
func (s *Service) timelineView(ctx context.Context, selector string) (*model.GraphView, error) {
	res, err := s.store.ExecuteQuery(ctx, driver.TimelineRecordsQuery, nil)
	if err != nil {
		return nil, err
	}

	sats := make([]model.Satellite, 0, len(res.Records))
	for _, rec := range res.Records {
		sats = append(sats, model.Satellite{
			Identifier: recStr(rec, "identifier"),
			Canonical: model.Canonical{
				LaunchDate:    recStr(rec, "launch_date"),
				OrbitalBand:   recStr(rec, "orbital_band"),
				Country:       recStr(rec, "country"),
				Constellation: recStr(rec, "constellation"),
			},
		})
	}
	index := timeline.Build(sats, s.cfg.Timeline.MinYear)

	view := model.EmptyView()
	if selector == "" {
		years := index.YearlyCounts()
		total := 0
		for _, yc := range years {
			total += yc.Count
			view.Nodes = append(view.Nodes, model.Node{
				ID:          "year:" + strconv.Itoa(yc.Year),
				DisplayName: strconv.Itoa(yc.Year),
				Type:        "launch_year",
				TypeAttrs: map[string]interface{}{
					"year":  yc.Year,
					"count": yc.Count,
				},
			})
		}
		view.Stats = map[string]interface{}{
			"count":            len(years),
			"total_satellites": total,
			"years":            years,
		}
		return view, nil
	}

	year, month, ok := parseTimelineSelector(selector)
	if !ok {
		return model.EmptyView(), nil
	}
	breakdown := index.Breakdown(year, month, s.cfg.Timeline.BreakdownLimit)
	if breakdown.Total == 0 {
		return model.EmptyView(), nil
	}

	view.Stats = map[string]interface{}{
		"count":            breakdown.Total,
		"year":             breakdown.Year,
		"total":            breakdown.Total,
		"by_band":          breakdown.ByBand,
		"by_country":       breakdown.ByCountry,
		"by_constellation": breakdown.ByConstellation,
	}
	if month > 0 {
		view.Stats["month"] = month
	} else {
		view.Stats["months"] = index.MonthlyCounts(year)
	}
	return view, nil
}

func parseTimelineSelector(selector string) (year, month int, ok bool) {
	parts := strings.SplitN(selector, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return 0, 0, false
	}
	if len(parts) == 2 {
		month, err = strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return 0, 0, false
		}
	}
	return year, month, true
}

func recStr(rec *db.Record, key string) string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func recInt(rec *db.Record, key string) int {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func recFloat(rec *db.Record, key string) float64 {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func recStrList(rec *db.Record, key string) []string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
