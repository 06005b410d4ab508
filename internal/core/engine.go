package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"golang.org/x/sync/errgroup"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core/builder"
	"github.com/orbitwatch/orbitgraph/internal/core/merge"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

// insertBatchSize bounds how many edges one UNWIND statement carries. All
// batches of a rebuild still run in a single transaction.
const insertBatchSize = 1000

// Engine owns the write path: canonical merges and batch relationship
// rebuilds. Reads go through the query service.
type Engine struct {
	Store  driver.GraphStore
	Config *config.Config
	Merger *merge.Merger
	Log    *logger.Logger
}

func NewEngine(store driver.GraphStore, cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{
		Store:  store,
		Config: cfg,
		Merger: merge.NewMerger(cfg.Merge.SourcePriority),
		Log:    log.With("component", "engine"),
	}
}

func (e *Engine) BuildIndices(ctx context.Context) error {
	return e.Store.BuildIndices(ctx)
}

// Merge upserts one source payload for a satellite and persists the
// recomputed canonical view.
func (e *Engine) Merge(ctx context.Context, identifier, source string, payload model.SourcePayload) (*model.Satellite, error) {
	existing, err := e.GetSatellite(ctx, identifier)
	if err != nil {
		return nil, err
	}

	sat, err := e.Merger.Merge(existing, identifier, source, payload)
	if err != nil {
		return nil, err
	}

	params, err := satelliteParams(sat)
	if err != nil {
		return nil, err
	}
	if _, err := e.Store.ExecuteQuery(ctx, driver.SaveSatelliteQuery, params); err != nil {
		return nil, fmt.Errorf("failed to save satellite %s: %w", identifier, err)
	}
	return sat, nil
}

// GetSatellite returns nil without error when the identifier is unknown.
func (e *Engine) GetSatellite(ctx context.Context, identifier string) (*model.Satellite, error) {
	res, err := e.Store.ExecuteQuery(ctx, driver.GetSatelliteQuery, map[string]interface{}{
		"identifier": identifier,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	sat, err := satelliteFromRecord(res.Records[0])
	if err != nil {
		return nil, err
	}
	return sat, nil
}

// LoadSatellites fetches every canonical record, ordered by identifier.
func (e *Engine) LoadSatellites(ctx context.Context) ([]model.Satellite, error) {
	res, err := e.Store.ExecuteQuery(ctx, driver.LoadSatellitesQuery, nil)
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

// RebuildResult summarizes one relationship rebuild.
type RebuildResult struct {
	Type     model.RelationshipType `json:"type"`
	RunID    string                 `json:"run_id"`
	Edges    int                    `json:"edges"`
	AuxNodes int                    `json:"aux_nodes"`
	Duration time.Duration          `json:"-"`
}

// Rebuild recomputes one relationship type from canonical attributes and
// atomically replaces its stored edge set. A failure leaves the previous
// edge set intact.
func (e *Engine) Rebuild(ctx context.Context, relType model.RelationshipType) (*RebuildResult, error) {
	runID := uuid.New().String()
	log := e.Log.With("run_id", runID, "type", string(relType))
	started := time.Now()

	sats, err := e.LoadSatellites(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("loaded canonical records", "satellites", len(sats))

	statements, result, err := e.planRebuild(relType, sats, log)
	if err != nil {
		return nil, err
	}
	result.RunID = runID

	if err := e.Store.WriteBatch(ctx, statements); err != nil {
		return nil, fmt.Errorf("rebuild %s failed: %w", relType, err)
	}

	result.Duration = time.Since(started)
	log.Info("rebuild complete", "edges", result.Edges, "aux_nodes", result.AuxNodes, "duration", result.Duration.String())
	return result, nil
}

// Plan computes what a rebuild would write without touching the store.
func (e *Engine) Plan(ctx context.Context, relType model.RelationshipType) (*RebuildResult, error) {
	sats, err := e.LoadSatellites(ctx)
	if err != nil {
		return nil, err
	}
	_, result, err := e.planRebuild(relType, sats, logger.NewNop())
	return result, err
}

// RebuildAll rebuilds every stored relationship type. The builders share no
// mutable state, so the types run concurrently; each type still swaps
// atomically on its own.
func (e *Engine) RebuildAll(ctx context.Context) ([]*RebuildResult, error) {
	types := model.RebuildableTypes()
	results := make([]*RebuildResult, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, relType := range types {
		i, relType := i, relType
		g.Go(func() error {
			res, err := e.Rebuild(gctx, relType)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) planRebuild(relType model.RelationshipType, sats []model.Satellite, log *logger.Logger) ([]driver.Statement, *RebuildResult, error) {
	result := &RebuildResult{Type: relType}
	var statements []driver.Statement

	switch relType {
	case model.RelConstellation:
		edges := builder.BuildConstellations(sats)
		result.Edges = len(edges)
		statements = append(statements, driver.Statement{Query: driver.DeleteConstellationEdgesQuery})
		statements = append(statements, edgeInserts(driver.InsertConstellationEdgesQuery, edges)...)

	case model.RelProximity:
		edges := builder.BuildProximity(sats, e.Config.Proximity, log)
		result.Edges = len(edges)
		statements = append(statements, driver.Statement{Query: driver.DeleteProximityEdgesQuery})
		statements = append(statements, edgeInserts(driver.InsertProximityEdgesQuery, edges)...)

	case model.RelRegistration:
		docs, edges := builder.BuildRegistrations(sats)
		result.Edges = len(edges)
		result.AuxNodes = len(docs)
		statements = append(statements, driver.Statement{Query: driver.DeleteRegistrationQuery})
		if len(docs) > 0 {
			statements = append(statements, driver.Statement{
				Query:  driver.InsertDocumentsQuery,
				Params: map[string]interface{}{"docs": documentMaps(docs)},
			})
		}
		statements = append(statements, edgeInserts(driver.InsertRegistrationEdgesQuery, edges)...)

	case model.RelCountry:
		countries, edges := builder.BuildCountryRelations(sats, e.Config.Country)
		result.Edges = len(edges)
		result.AuxNodes = len(countries)
		statements = append(statements, driver.Statement{Query: driver.DeleteCountryQuery})
		if len(countries) > 0 {
			statements = append(statements, driver.Statement{
				Query:  driver.InsertCountriesQuery,
				Params: map[string]interface{}{"countries": countryMaps(countries)},
			})
		}
		statements = append(statements, edgeInserts(driver.InsertCountryEdgesQuery, edges)...)

	default:
		return nil, nil, fmt.Errorf("relationship type %q has no stored edge collection", relType)
	}

	return statements, result, nil
}

func edgeInserts(query string, edges []model.Edge) []driver.Statement {
	var statements []driver.Statement
	for start := 0; start < len(edges); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(edges) {
			end = len(edges)
		}
		batch := make([]map[string]interface{}, 0, end-start)
		for _, edge := range edges[start:end] {
			props := map[string]interface{}{"id": edge.ID}
			for k, v := range edge.TypeAttrs {
				props[k] = v
			}
			batch = append(batch, map[string]interface{}{
				"source": edge.SourceID,
				"target": edge.TargetID,
				"props":  props,
			})
		}
		statements = append(statements, driver.Statement{
			Query:  query,
			Params: map[string]interface{}{"edges": batch},
		})
	}
	return statements
}

func documentMaps(docs []model.DocumentNode) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]interface{}{
			"key":             d.Key,
			"reference":       d.Reference,
			"display_name":    builder.DisplayName(d.Reference),
			"satellite_count": d.SatelliteCount,
			"countries":       d.Countries,
			"created_at":      d.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func countryMaps(countries []builder.CountryNode) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(countries))
	for _, c := range countries {
		out = append(out, map[string]interface{}{
			"name":            c.Name,
			"satellite_count": c.SatelliteCount,
		})
	}
	return out
}

func satelliteParams(sat *model.Satellite) (map[string]interface{}, error) {
	sourcesJSON, err := json.Marshal(sat.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sources: %w", err)
	}
	provJSON, err := json.Marshal(sat.Metadata.Provenance)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize provenance: %w", err)
	}

	return map[string]interface{}{
		"identifier":            sat.Identifier,
		"name":                  sat.Canonical.Name,
		"country":               sat.Canonical.Country,
		"status":                sat.Canonical.Status,
		"orbital_band":          sat.Canonical.OrbitalBand,
		"congestion_risk":       sat.Canonical.CongestionRisk,
		"function":              sat.Canonical.Function,
		"constellation":         sat.Canonical.Constellation,
		"registration_number":   sat.Canonical.RegistrationNumber,
		"registration_document": sat.Canonical.RegistrationDocument,
		"launch_date":           sat.Canonical.LaunchDate,
		"apogee_km":             floatOrNil(sat.Canonical.Orbit.ApogeeKm),
		"perigee_km":            floatOrNil(sat.Canonical.Orbit.PerigeeKm),
		"inclination_degrees":   floatOrNil(sat.Canonical.Orbit.InclinationDeg),
		"sources_json":          string(sourcesJSON),
		"provenance_json":       string(provJSON),
		"sources_available":     sat.Metadata.SourcesAvailable,
		"source_priority":       sat.Metadata.SourcePriority,
		"created_at":            sat.Metadata.CreatedAt.Format(time.RFC3339),
		"updated_at":            sat.Metadata.LastUpdatedAt.Format(time.RFC3339),
	}, nil
}

func satelliteFromRecord(rec *db.Record) (*model.Satellite, error) {
	sat := &model.Satellite{
		Identifier: recString(rec, "identifier"),
		Canonical: model.Canonical{
			Name:                 recString(rec, "name"),
			Country:              recString(rec, "country"),
			Status:               recString(rec, "status"),
			OrbitalBand:          recString(rec, "orbital_band"),
			CongestionRisk:       recString(rec, "congestion_risk"),
			Function:             recString(rec, "function"),
			Constellation:        recString(rec, "constellation"),
			RegistrationNumber:   recString(rec, "registration_number"),
			RegistrationDocument: recString(rec, "registration_document"),
			LaunchDate:           recString(rec, "launch_date"),
			Orbit: model.Orbit{
				ApogeeKm:       recFloatPtr(rec, "apogee_km"),
				PerigeeKm:      recFloatPtr(rec, "perigee_km"),
				InclinationDeg: recFloatPtr(rec, "inclination_degrees"),
			},
		},
		Metadata: model.Metadata{
			SourcesAvailable: recStrings(rec, "sources_available"),
			SourcePriority:   recStrings(rec, "source_priority"),
		},
	}

	if raw := recString(rec, "sources_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sat.Sources); err != nil {
			return nil, fmt.Errorf("corrupt sources for %s: %w", sat.Identifier, err)
		}
	}
	if sat.Sources == nil {
		sat.Sources = map[string]model.SourcePayload{}
	}
	if raw := recString(rec, "provenance_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sat.Metadata.Provenance); err != nil {
			return nil, fmt.Errorf("corrupt provenance for %s: %w", sat.Identifier, err)
		}
	}
	sat.Metadata.CreatedAt = recTime(rec, "created_at")
	sat.Metadata.LastUpdatedAt = recTime(rec, "updated_at")
	return sat, nil
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func recString(rec *db.Record, key string) string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func recFloatPtr(rec *db.Record, key string) *float64 {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

func recTime(rec *db.Record, key string) time.Time {
	t, err := time.Parse(time.RFC3339, recString(rec, key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func recStrings(rec *db.Record, key string) []string {
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
