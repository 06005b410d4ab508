package model

import "time"

// RelationshipType names one of the derived edge/aggregation kinds.
type RelationshipType string

const (
	RelConstellation RelationshipType = "constellation"
	RelProximity     RelationshipType = "proximity"
	RelRegistration  RelationshipType = "registration"
	RelCountry       RelationshipType = "country"
	RelFunction      RelationshipType = "function"
	RelTimeline      RelationshipType = "timeline"
)

// RebuildableTypes lists the relationship types backed by a stored edge
// collection. Timeline and function views are aggregated at read time.
func RebuildableTypes() []RelationshipType {
	return []RelationshipType{RelConstellation, RelProximity, RelRegistration, RelCountry}
}

func ParseRelationshipType(s string) (RelationshipType, bool) {
	switch RelationshipType(s) {
	case RelConstellation, RelProximity, RelRegistration, RelCountry, RelFunction, RelTimeline:
		return RelationshipType(s), true
	}
	return "", false
}

// Edge is one typed relationship produced by a builder. TypeAttrs carry the
// type-specific payload (score, deltas, constellation name, ...).
type Edge struct {
	ID        string                 `json:"id"`
	SourceID  string                 `json:"source_id"`
	TargetID  string                 `json:"target_id"`
	Type      RelationshipType       `json:"type"`
	TypeAttrs map[string]interface{} `json:"type_attrs,omitempty"`
}

// Node is the stable node shape the query service returns for every
// relationship type.
type Node struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"display_name"`
	Type        string                 `json:"type"`
	TypeAttrs   map[string]interface{} `json:"type_attrs,omitempty"`
}

// GraphView is one bounded subgraph response.
type GraphView struct {
	Nodes []Node                 `json:"nodes"`
	Edges []Edge                 `json:"edges"`
	Stats map[string]interface{} `json:"stats"`
}

// EmptyView is the explicit zero result for an unmatched selector.
func EmptyView() *GraphView {
	return &GraphView{
		Nodes: []Node{},
		Edges: []Edge{},
		Stats: map[string]interface{}{"count": 0},
	}
}

// Envelope wraps every API response.
type Envelope struct {
	Data        interface{} `json:"data"`
	GeneratedAt time.Time   `json:"generated_at"`
	Message     string      `json:"message,omitempty"`
}
