package merge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/orbitwatch/orbitgraph/internal/core/model"
)

// ValidationError reports a rejected merge input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Identity and temporal fields resolved source-by-source. Each canonical
// field takes the value of the highest-priority source exposing it.
var stringFields = []string{
	"name",
	"country_of_origin",
	"status",
	"orbital_band",
	"congestion_risk",
	"function",
	"constellation",
	"registration_number",
	"registration_document",
	"launch_date",
}

var orbitalFields = []string{"apogee_km", "perigee_km", "inclination_degrees"}

// Merger resolves canonical satellite views from per-source payloads. The
// priority list is explicit configuration, not a hidden global.
type Merger struct {
	priority []string
}

func NewMerger(priority []string) *Merger {
	return &Merger{priority: priority}
}

// Merge upserts payload under source on the given satellite (nil means a new
// record) and recomputes the canonical view. Re-merging identical input is a
// no-op: the returned satellite compares equal to the input.
func (m *Merger) Merge(existing *model.Satellite, identifier, source string, payload model.SourcePayload) (*model.Satellite, error) {
	if identifier == "" {
		return nil, &ValidationError{Field: "identifier", Reason: "must not be empty"}
	}
	if source == "" {
		return nil, &ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if len(payload) == 0 {
		return nil, &ValidationError{Field: "payload", Reason: "must be a non-empty structured mapping"}
	}

	now := time.Now().UTC()
	sat := existing
	if sat == nil {
		sat = &model.Satellite{
			Identifier: identifier,
			Sources:    map[string]model.SourcePayload{},
			Metadata: model.Metadata{
				CreatedAt:      now,
				LastUpdatedAt:  now,
				SourcePriority: append([]string(nil), m.priority...),
			},
		}
	}

	prev, seen := sat.Sources[source]
	changed := !seen || !reflect.DeepEqual(prev, payload)
	sat.Sources[source] = payload
	if !seen {
		sat.Metadata.SourcesAvailable = append(sat.Metadata.SourcesAvailable, source)
	}
	if changed {
		sat.Metadata.LastUpdatedAt = now
	}

	m.resolveCanonical(sat)
	return sat, nil
}

// resolveCanonical recomputes every canonical field from scratch. Sources the
// priority list does not name rank after every listed one, in the order they
// first appeared.
func (m *Merger) resolveCanonical(sat *model.Satellite) {
	order := effectivePriority(m.priority, sat.Metadata.SourcesAvailable)
	sat.Metadata.SourcePriority = order

	prov := map[string]string{}
	canonical := model.Canonical{}

	for _, field := range stringFields {
		for _, src := range order {
			if v, ok := stringValue(sat.Sources[src], field); ok {
				setStringField(&canonical, field, v)
				prov[field] = src
				break
			}
		}
	}

	for _, field := range orbitalFields {
		for _, src := range order {
			if v, ok := floatValue(sat.Sources[src], field); ok {
				setOrbitField(&canonical.Orbit, field, v)
				prov[field] = src
				break
			}
		}
	}

	sat.Canonical = canonical
	sat.Metadata.Provenance = prov
}

func effectivePriority(configured, available []string) []string {
	avail := make(map[string]bool, len(available))
	for _, s := range available {
		avail[s] = true
	}
	listed := make(map[string]bool, len(configured))
	var order []string
	for _, s := range configured {
		listed[s] = true
		if avail[s] {
			order = append(order, s)
		}
	}
	for _, s := range available {
		if !listed[s] {
			order = append(order, s)
		}
	}
	return order
}

func stringValue(p model.SourcePayload, field string) (string, bool) {
	if p == nil {
		return "", false
	}
	raw, ok := p[field]
	if !ok || raw == nil {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func floatValue(p model.SourcePayload, field string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	raw, ok := p[field]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func setStringField(c *model.Canonical, field, v string) {
	switch field {
	case "name":
		c.Name = v
	case "country_of_origin":
		c.Country = v
	case "status":
		c.Status = v
	case "orbital_band":
		c.OrbitalBand = v
	case "congestion_risk":
		c.CongestionRisk = v
	case "function":
		c.Function = v
	case "constellation":
		c.Constellation = v
	case "registration_number":
		c.RegistrationNumber = v
	case "registration_document":
		c.RegistrationDocument = v
	case "launch_date":
		c.LaunchDate = v
	}
}

func setOrbitField(o *model.Orbit, field string, v float64) {
	switch field {
	case "apogee_km":
		o.ApogeeKm = &v
	case "perigee_km":
		o.PerigeeKm = &v
	case "inclination_degrees":
		o.InclinationDeg = &v
	}
}
