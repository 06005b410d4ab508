package query

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/core/model"
	"github.com/orbitwatch/orbitgraph/internal/core/timeline"
	"github.com/orbitwatch/orbitgraph/internal/driver"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

type mockStore struct {
	results map[string]neo4j.EagerResult
}

func newMockStore() *mockStore {
	return &mockStore{results: map[string]neo4j.EagerResult{}}
}

// ExecuteQuery matches the longest registered needle first so that a count
// query is never shadowed by a broader substring.
func (m *mockStore) ExecuteQuery(_ context.Context, query string, _ map[string]interface{}) (neo4j.EagerResult, error) {
	needles := make([]string, 0, len(m.results))
	for needle := range m.results {
		needles = append(needles, needle)
	}
	sort.Slice(needles, func(i, j int) bool { return len(needles[i]) > len(needles[j]) })
	for _, needle := range needles {
		if strings.Contains(query, needle) {
			return m.results[needle], nil
		}
	}
	return neo4j.EagerResult{}, nil
}

func (m *mockStore) WriteBatch(context.Context, []driver.Statement) error { return nil }
func (m *mockStore) BuildIndices(context.Context) error                   { return nil }
func (m *mockStore) Close(context.Context) error                          { return nil }

func record(keys []string, values []interface{}) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

func testService(store driver.GraphStore) *Service {
	return NewService(store, config.Default(), logger.NewNop())
}

func TestUnknownDocumentKeyYieldsEmptyView(t *testing.T) {
	view, err := testService(newMockStore()).Query(context.Background(), model.RelRegistration, "no-such-doc", 50)
	require.NoError(t, err)

	assert.Empty(t, view.Nodes)
	assert.Empty(t, view.Edges)
	assert.Equal(t, 0, view.Stats["count"])
}

func TestUnknownRelationshipTypeIsError(t *testing.T) {
	_, err := testService(newMockStore()).Query(context.Background(), model.RelationshipType("orbit"), "", 10)
	assert.Error(t, err)
}

func constellationRecord(member string) *db.Record {
	return record(
		[]string{
			"hub_identifier", "hub_name", "hub_country", "hub_orbital_band", "hub_status", "hub_launch_date",
			"identifier", "name", "country", "orbital_band", "status", "launch_date", "edge_id",
		},
		[]interface{}{
			"sat-001", "ALPHA 1", "USA", "LEO", "active", "2019-05-24",
			member, strings.ToUpper(member), "USA", "LEO", "active", "2019-05-24", member + "_to_hub",
		},
	)
}

func TestConstellationViewBuildsStar(t *testing.T) {
	store := newMockStore()
	store.results["MEMBER_OF"] = neo4j.EagerResult{Records: []*db.Record{
		constellationRecord("sat-001"), // the hub row itself
		constellationRecord("sat-002"),
		constellationRecord("sat-003"),
	}}

	view, err := testService(store).Query(context.Background(), model.RelConstellation, "alpha", 100)
	require.NoError(t, err)

	require.Len(t, view.Nodes, 3)
	assert.Equal(t, "hub", view.Nodes[0].TypeAttrs["role"])
	require.Len(t, view.Edges, 2)
	for _, e := range view.Edges {
		assert.Equal(t, "sat-001", e.TargetID)
		assert.Equal(t, true, e.TypeAttrs["via_hub"])
	}
	assert.Equal(t, 2, view.Stats["count"])
	assert.Equal(t, "sat-001", view.Stats["hub"])
}

func TestConstellationViewUnknownNameIsEmpty(t *testing.T) {
	view, err := testService(newMockStore()).Query(context.Background(), model.RelConstellation, "ghost", 100)
	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
	assert.Equal(t, 0, view.Stats["count"])
}

func proximityRecord(src, dst string, score float64) *db.Record {
	return record(
		[]string{
			"edge_id", "proximity_score", "apogee_diff_km", "perigee_diff_km",
			"inclination_diff_degrees", "risk_level",
			"source_identifier", "source_name", "source_apogee_km", "source_perigee_km",
			"source_inclination_degrees", "source_congestion_risk",
			"target_identifier", "target_name", "target_apogee_km", "target_perigee_km",
			"target_inclination_degrees", "target_congestion_risk",
		},
		[]interface{}{
			src + "__" + dst, score, 20.0, 10.0, 1.0, "high",
			src, strings.ToUpper(src), 500.0, 480.0, 53.0, "medium",
			dst, strings.ToUpper(dst), 520.0, 490.0, 54.0, "medium",
		},
	)
}

func TestProximityViewDeduplicatesNodes(t *testing.T) {
	store := newMockStore()
	store.results["NEAR"] = neo4j.EagerResult{Records: []*db.Record{
		proximityRecord("sat-a", "sat-b", 0.21),
		proximityRecord("sat-a", "sat-c", 0.48),
	}}
	store.results["count(e) AS total"] = neo4j.EagerResult{Records: []*db.Record{
		record([]string{"total"}, []interface{}{int64(40)}),
	}}

	view, err := testService(store).Query(context.Background(), model.RelProximity, "LEO", 100)
	require.NoError(t, err)

	assert.Len(t, view.Nodes, 3) // sat-a appears once
	assert.Len(t, view.Edges, 2)
	assert.Equal(t, 40, view.Stats["total_edges"])
	assert.Equal(t, 0.21, view.Edges[0].TypeAttrs["proximity_score"])
}

func TestRegistrationViewLinksSatellitesToDocument(t *testing.T) {
	store := newMockStore()
	store.results["MATCH (d:Document {key: $key})"] = neo4j.EagerResult{Records: []*db.Record{
		record(
			[]string{"key", "reference", "display_name", "satellite_count", "countries"},
			[]interface{}{"ST_SG_123", "ST/SG/123", "123", int64(2), []interface{}{"France", "USA"}},
		),
	}}
	store.results["REGISTERED_IN"] = neo4j.EagerResult{Records: []*db.Record{
		record(
			[]string{"edge_id", "identifier", "name", "country", "orbital_band", "status", "registration_number"},
			[]interface{}{"sat-1_to_ST_SG_123", "sat-1", "SAT 1", "France", "LEO", "active", "2003-021A"},
		),
	}}

	view, err := testService(store).Query(context.Background(), model.RelRegistration, "ST/SG/123", 50)
	require.NoError(t, err)

	require.Len(t, view.Nodes, 2)
	assert.Equal(t, "document", view.Nodes[0].Type)
	assert.Equal(t, []string{"France", "USA"}, view.Nodes[0].TypeAttrs["countries"])
	require.Len(t, view.Edges, 1)
	assert.Equal(t, "sat-1", view.Edges[0].SourceID)
	assert.Equal(t, "ST_SG_123", view.Edges[0].TargetID)
}

func TestCountryViewDropsEdgesOutsideCap(t *testing.T) {
	store := newMockStore()
	store.results["MATCH (c:Country)"] = neo4j.EagerResult{Records: []*db.Record{
		record([]string{"name", "satellite_count"}, []interface{}{"USA", int64(120)}),
		record([]string{"name", "satellite_count"}, []interface{}{"China", int64(80)}),
	}}
	store.results["COUNTRY_LINK"] = neo4j.EagerResult{Records: []*db.Record{
		record(
			[]string{"edge_id", "source_name", "target_name", "relationship", "orbital_band", "strength"},
			[]interface{}{"China_USA_LEO", "China", "USA", "shared_band", "LEO", int64(200)},
		),
		record(
			[]string{"edge_id", "source_name", "target_name", "relationship", "orbital_band", "strength"},
			[]interface{}{"France_USA_LEO", "France", "USA", "shared_band", "LEO", int64(20)},
		),
	}}

	view, err := testService(store).Query(context.Background(), model.RelCountry, "", 10)
	require.NoError(t, err)

	assert.Len(t, view.Nodes, 2)
	require.Len(t, view.Edges, 1) // France is not among the returned nodes
	assert.Equal(t, "China", view.Edges[0].SourceID)
	assert.Equal(t, 200, view.Edges[0].TypeAttrs["strength"])
}

func functionRecord(id, function string) *db.Record {
	return record(
		[]string{"identifier", "name", "function", "country", "orbital_band", "launch_date", "congestion_risk"},
		[]interface{}{id, strings.ToUpper(id), function, "USA", "LEO", "2020-01-01", "low"},
	)
}

func TestFunctionViewCategorySelector(t *testing.T) {
	store := newMockStore()
	store.results["n.function AS function"] = neo4j.EagerResult{Records: []*db.Record{
		functionRecord("sat-1", "broadband communications relay"),
		functionRecord("sat-2", "telecommunications"),
		functionRecord("sat-3", "optical earth imaging"),
	}}

	view, err := testService(store).Query(context.Background(), model.RelFunction, "Communications", 100)
	require.NoError(t, err)

	require.Len(t, view.Edges, 2)
	for _, e := range view.Edges {
		assert.Equal(t, "same_function", e.TypeAttrs["relationship"])
	}
	assert.Equal(t, "Communications", view.Stats["category"])
}

func TestFunctionViewEmptySelectorListsCategories(t *testing.T) {
	store := newMockStore()
	store.results["n.function AS function"] = neo4j.EagerResult{Records: []*db.Record{
		functionRecord("sat-1", "telecommunications"),
		functionRecord("sat-2", "weather observation"),
	}}

	view, err := testService(store).Query(context.Background(), model.RelFunction, "", 100)
	require.NoError(t, err)

	require.Len(t, view.Nodes, 2)
	assert.Empty(t, view.Edges)
	for _, n := range view.Nodes {
		assert.Equal(t, "function_category", n.Type)
	}
}

func TestFunctionViewUnknownCategoryIsEmpty(t *testing.T) {
	store := newMockStore()
	store.results["n.function AS function"] = neo4j.EagerResult{Records: []*db.Record{
		functionRecord("sat-1", "telecommunications"),
	}}

	view, err := testService(store).Query(context.Background(), model.RelFunction, "Deep Space", 100)
	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
	assert.Equal(t, 0, view.Stats["count"])
}

func timelineRecord(id, date, band, country, constellation string) *db.Record {
	return record(
		[]string{"identifier", "launch_date", "orbital_band", "country", "constellation"},
		[]interface{}{id, date, band, country, constellation},
	)
}

func TestTimelineViewYearlySeries(t *testing.T) {
	store := newMockStore()
	store.results["n.launch_date AS launch_date"] = neo4j.EagerResult{Records: []*db.Record{
		timelineRecord("sat-1", "2019-05-24", "LEO", "USA", "alpha"),
		timelineRecord("sat-2", "2019-11-11", "LEO", "USA", "alpha"),
		timelineRecord("sat-3", "2020", "GEO", "China", ""),
		timelineRecord("sat-4", "not-a-date", "LEO", "USA", ""),
	}}

	view, err := testService(store).Query(context.Background(), model.RelTimeline, "", 0)
	require.NoError(t, err)

	require.Len(t, view.Nodes, 2)
	assert.Equal(t, "year:2019", view.Nodes[0].ID)
	assert.Equal(t, 2, view.Nodes[0].TypeAttrs["count"])
	assert.Equal(t, 3, view.Stats["total_satellites"])
}

func TestTimelineBreakdownSumsBounded(t *testing.T) {
	store := newMockStore()
	store.results["n.launch_date AS launch_date"] = neo4j.EagerResult{Records: []*db.Record{
		timelineRecord("sat-1", "2019-05-24", "LEO", "USA", "alpha"),
		timelineRecord("sat-2", "2019-11-11", "", "USA", "alpha"), // no band value
		timelineRecord("sat-3", "2019-03-02", "GEO", "", ""),
	}}

	view, err := testService(store).Query(context.Background(), model.RelTimeline, "2019", 0)
	require.NoError(t, err)

	total := view.Stats["total"].(int)
	assert.Equal(t, 3, total)

	sumCounts := func(key string) int {
		sum := 0
		for _, c := range view.Stats[key].([]timeline.CategoryCount) {
			sum += c.Count
		}
		return sum
	}
	// Sub-dimension sums stay bounded by the year total; missing values
	// leave them short.
	assert.Equal(t, 2, sumCounts("by_band"))
	assert.Equal(t, 2, sumCounts("by_country"))
	assert.Equal(t, 2, sumCounts("by_constellation"))
	assert.LessOrEqual(t, sumCounts("by_band"), total)
}

func TestTimelineInvalidSelectorIsEmpty(t *testing.T) {
	view, err := testService(newMockStore()).Query(context.Background(), model.RelTimeline, "soon", 0)
	require.NoError(t, err)
	assert.Empty(t, view.Nodes)
	assert.Equal(t, 0, view.Stats["count"])
}

func TestStatsAggregatesAllSections(t *testing.T) {
	store := newMockStore()
	store.results["MATCH (n:Satellite) RETURN count(n)"] = neo4j.EagerResult{Records: []*db.Record{
		record([]string{"total"}, []interface{}{int64(1200)}),
	}}
	store.results["type(e) AS rel_type"] = neo4j.EagerResult{Records: []*db.Record{
		record([]string{"rel_type", "total"}, []interface{}{"NEAR", int64(300)}),
		record([]string{"rel_type", "total"}, []interface{}{"MEMBER_OF", int64(150)}),
	}}
	store.results["n.launch_date AS launch_date"] = neo4j.EagerResult{Records: []*db.Record{
		record([]string{"launch_date"}, []interface{}{"2019-05-24"}),
		record([]string{"launch_date"}, []interface{}{"2019-06-01"}),
		record([]string{"launch_date"}, []interface{}{"1950-01-01"}), // below minimum year
	}}

	stats, err := testService(store).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1200, stats["satellites"])
	edges := stats["edges"].(map[string]int)
	assert.Equal(t, 300, edges["proximity"])
	assert.Equal(t, 150, edges["constellation"])
	byYear := stats["launches_by_year"].(map[int]int)
	assert.Equal(t, 2, byYear[2019])
	assert.Zero(t, byYear[1950])
}
