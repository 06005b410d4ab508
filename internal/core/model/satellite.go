package model

import "time"

// SourcePayload is the raw attribute map one provider reported for a
// satellite. Values are whatever the ingestion job handed over.
type SourcePayload map[string]interface{}

// Orbit holds the three parameters the proximity builder compares. Pointers
// distinguish "not reported" from zero.
type Orbit struct {
	ApogeeKm       *float64 `json:"apogee_km,omitempty"`
	PerigeeKm      *float64 `json:"perigee_km,omitempty"`
	InclinationDeg *float64 `json:"inclination_degrees,omitempty"`
}

// Complete reports whether all three orbital parameters are present.
func (o Orbit) Complete() bool {
	return o.ApogeeKm != nil && o.PerigeeKm != nil && o.InclinationDeg != nil
}

// Canonical is the merged best-available attribute view for a satellite,
// derived from its source payloads by priority.
type Canonical struct {
	Name                 string `json:"name,omitempty"`
	Country              string `json:"country_of_origin,omitempty"`
	Status               string `json:"status,omitempty"`
	OrbitalBand          string `json:"orbital_band,omitempty"`
	CongestionRisk       string `json:"congestion_risk,omitempty"`
	Function             string `json:"function,omitempty"`
	Constellation        string `json:"constellation,omitempty"`
	RegistrationNumber   string `json:"registration_number,omitempty"`
	RegistrationDocument string `json:"registration_document,omitempty"`
	LaunchDate           string `json:"launch_date,omitempty"`
	Orbit                Orbit  `json:"orbit"`
}

// Metadata tracks where a satellite's canonical view came from.
type Metadata struct {
	CreatedAt        time.Time         `json:"created_at"`
	LastUpdatedAt    time.Time         `json:"last_updated_at"`
	SourcesAvailable []string          `json:"sources_available"`
	SourcePriority   []string          `json:"source_priority"`
	Provenance       map[string]string `json:"provenance,omitempty"` // canonical field -> winning source
}

// Satellite is one registry entity: the source payload map plus the canonical
// view resolved from it.
type Satellite struct {
	Identifier string                   `json:"identifier"`
	Canonical  Canonical                `json:"canonical"`
	Sources    map[string]SourcePayload `json:"sources"`
	Metadata   Metadata                 `json:"metadata"`
}

// DocumentNode is an auxiliary node representing one registration document
// that many satellites may link to.
type DocumentNode struct {
	Key            string    `json:"key"`
	Reference      string    `json:"reference"`
	SatelliteCount int       `json:"satellite_count"`
	Countries      []string  `json:"countries"`
	CreatedAt      time.Time `json:"created_at"`
}
