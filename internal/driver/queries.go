package driver

// Relationship labels per edge collection. Each rebuild replaces one of
// these wholesale.
const (
	RelMemberOf     = "MEMBER_OF"     // satellite -> constellation hub
	RelNear         = "NEAR"          // satellite -> satellite, directed top-K
	RelRegisteredIn = "REGISTERED_IN" // satellite -> document
	RelCountryLink  = "COUNTRY_LINK"  // country -> country
)

const (
	SaveSatelliteQuery = `
		MERGE (n:Satellite {identifier: $identifier})
		SET n.name = $name,
			n.country = $country,
			n.status = $status,
			n.orbital_band = $orbital_band,
			n.congestion_risk = $congestion_risk,
			n.function = $function,
			n.constellation = $constellation,
			n.registration_number = $registration_number,
			n.registration_document = $registration_document,
			n.launch_date = $launch_date,
			n.apogee_km = $apogee_km,
			n.perigee_km = $perigee_km,
			n.inclination_degrees = $inclination_degrees,
			n.sources_json = $sources_json,
			n.provenance_json = $provenance_json,
			n.sources_available = $sources_available,
			n.source_priority = $source_priority,
			n.created_at = $created_at,
			n.updated_at = $updated_at
		RETURN n.identifier AS identifier
	`

	satelliteReturn = `
		n.identifier AS identifier,
		n.name AS name,
		n.country AS country,
		n.status AS status,
		n.orbital_band AS orbital_band,
		n.congestion_risk AS congestion_risk,
		n.function AS function,
		n.constellation AS constellation,
		n.registration_number AS registration_number,
		n.registration_document AS registration_document,
		n.launch_date AS launch_date,
		n.apogee_km AS apogee_km,
		n.perigee_km AS perigee_km,
		n.inclination_degrees AS inclination_degrees,
		n.sources_json AS sources_json,
		n.provenance_json AS provenance_json,
		n.sources_available AS sources_available,
		n.source_priority AS source_priority,
		n.created_at AS created_at,
		n.updated_at AS updated_at
	`

	GetSatelliteQuery = `
		MATCH (n:Satellite {identifier: $identifier})
		RETURN` + satelliteReturn

	LoadSatellitesQuery = `
		MATCH (n:Satellite)
		RETURN` + satelliteReturn + `
		ORDER BY n.identifier ASC
	`

	SearchSatellitesQuery = `
		MATCH (n:Satellite)
		WHERE ($query = '' OR toLower(n.name) CONTAINS toLower($query)
			OR n.identifier CONTAINS $query
			OR n.registration_number CONTAINS $query)
		AND ($country = '' OR n.country = $country)
		AND ($status = '' OR n.status = $status)
		AND ($orbital_band = '' OR n.orbital_band = $orbital_band)
		AND ($congestion_risk = '' OR n.congestion_risk = $congestion_risk)
		RETURN` + satelliteReturn + `
		ORDER BY n.identifier ASC
		SKIP $skip
		LIMIT $limit
	`

	DistinctCountriesQuery = `
		MATCH (n:Satellite)
		WHERE n.country IS NOT NULL AND n.country <> ''
		RETURN DISTINCT n.country AS value
		ORDER BY value ASC
	`

	DistinctStatusesQuery = `
		MATCH (n:Satellite)
		WHERE n.status IS NOT NULL AND n.status <> ''
		RETURN DISTINCT n.status AS value
		ORDER BY value ASC
	`

	DistinctBandsQuery = `
		MATCH (n:Satellite)
		WHERE n.orbital_band IS NOT NULL AND n.orbital_band <> ''
		RETURN DISTINCT n.orbital_band AS value
		ORDER BY value ASC
	`

	DistinctRisksQuery = `
		MATCH (n:Satellite)
		WHERE n.congestion_risk IS NOT NULL AND n.congestion_risk <> ''
		RETURN DISTINCT n.congestion_risk AS value
		ORDER BY value ASC
	`

	DeleteConstellationEdgesQuery = `MATCH ()-[e:MEMBER_OF]->() DELETE e`
	DeleteProximityEdgesQuery     = `MATCH ()-[e:NEAR]->() DELETE e`
	DeleteRegistrationQuery       = `MATCH (d:Document) DETACH DELETE d`
	DeleteCountryQuery            = `MATCH (c:Country) DETACH DELETE c`

	InsertConstellationEdgesQuery = `
		UNWIND $edges AS edge
		MATCH (s:Satellite {identifier: edge.source})
		MATCH (t:Satellite {identifier: edge.target})
		CREATE (s)-[e:MEMBER_OF]->(t)
		SET e = edge.props
	`

	InsertProximityEdgesQuery = `
		UNWIND $edges AS edge
		MATCH (s:Satellite {identifier: edge.source})
		MATCH (t:Satellite {identifier: edge.target})
		CREATE (s)-[e:NEAR]->(t)
		SET e = edge.props
	`

	InsertDocumentsQuery = `
		UNWIND $docs AS doc
		CREATE (d:Document)
		SET d = doc
	`

	InsertRegistrationEdgesQuery = `
		UNWIND $edges AS edge
		MATCH (s:Satellite {identifier: edge.source})
		MATCH (d:Document {key: edge.target})
		CREATE (s)-[e:REGISTERED_IN]->(d)
		SET e = edge.props
	`

	InsertCountriesQuery = `
		UNWIND $countries AS c
		CREATE (n:Country)
		SET n = c
	`

	InsertCountryEdgesQuery = `
		UNWIND $edges AS edge
		MATCH (a:Country {name: edge.source})
		MATCH (b:Country {name: edge.target})
		CREATE (a)-[e:COUNTRY_LINK]->(b)
		SET e = edge.props
	`

	ConstellationMembersQuery = `
		MATCH (m:Satellite)-[e:MEMBER_OF]->(hub:Satellite)
		WHERE e.constellation = $constellation
		RETURN hub.identifier AS hub_identifier,
			hub.name AS hub_name,
			hub.country AS hub_country,
			hub.orbital_band AS hub_orbital_band,
			hub.status AS hub_status,
			hub.launch_date AS hub_launch_date,
			m.identifier AS identifier,
			m.name AS name,
			m.country AS country,
			m.orbital_band AS orbital_band,
			m.status AS status,
			m.launch_date AS launch_date,
			e.id AS edge_id
		ORDER BY m.identifier ASC
		LIMIT $limit
	`

	ProximityEdgesQuery = `
		MATCH (s:Satellite)-[e:NEAR]->(t:Satellite)
		WHERE e.orbital_band = $orbital_band
		RETURN e.id AS edge_id,
			e.proximity_score AS proximity_score,
			e.apogee_diff_km AS apogee_diff_km,
			e.perigee_diff_km AS perigee_diff_km,
			e.inclination_diff_degrees AS inclination_diff_degrees,
			e.risk_level AS risk_level,
			s.identifier AS source_identifier,
			s.name AS source_name,
			s.apogee_km AS source_apogee_km,
			s.perigee_km AS source_perigee_km,
			s.inclination_degrees AS source_inclination_degrees,
			s.congestion_risk AS source_congestion_risk,
			t.identifier AS target_identifier,
			t.name AS target_name,
			t.apogee_km AS target_apogee_km,
			t.perigee_km AS target_perigee_km,
			t.inclination_degrees AS target_inclination_degrees,
			t.congestion_risk AS target_congestion_risk
		ORDER BY e.proximity_score ASC
		LIMIT $limit
	`

	CountProximityEdgesQuery = `
		MATCH ()-[e:NEAR]->()
		WHERE e.orbital_band = $orbital_band
		RETURN count(e) AS total
	`

	GetDocumentQuery = `
		MATCH (d:Document {key: $key})
		RETURN d.key AS key,
			d.reference AS reference,
			d.display_name AS display_name,
			d.satellite_count AS satellite_count,
			d.countries AS countries
	`

	DocumentSatellitesQuery = `
		MATCH (s:Satellite)-[e:REGISTERED_IN]->(d:Document {key: $key})
		RETURN e.id AS edge_id,
			s.identifier AS identifier,
			s.name AS name,
			s.country AS country,
			s.orbital_band AS orbital_band,
			s.status AS status,
			s.registration_number AS registration_number
		ORDER BY s.identifier ASC
		LIMIT $limit
	`

	CountryNodesQuery = `
		MATCH (c:Country)
		RETURN c.name AS name, c.satellite_count AS satellite_count
		ORDER BY c.satellite_count DESC, c.name ASC
		LIMIT $limit
	`

	CountryEdgesQuery = `
		MATCH (a:Country)-[e:COUNTRY_LINK]->(b:Country)
		RETURN e.id AS edge_id,
			a.name AS source_name,
			b.name AS target_name,
			e.relationship AS relationship,
			e.orbital_band AS orbital_band,
			e.strength AS strength
		ORDER BY e.id ASC
	`

	FunctionSatellitesQuery = `
		MATCH (n:Satellite)
		WHERE n.function IS NOT NULL AND n.function <> ''
		RETURN n.identifier AS identifier,
			n.name AS name,
			n.function AS function,
			n.country AS country,
			n.orbital_band AS orbital_band,
			n.launch_date AS launch_date,
			n.congestion_risk AS congestion_risk
		ORDER BY n.identifier ASC
	`

	TimelineRecordsQuery = `
		MATCH (n:Satellite)
		WHERE n.launch_date IS NOT NULL AND n.launch_date <> ''
		RETURN n.identifier AS identifier,
			n.launch_date AS launch_date,
			n.orbital_band AS orbital_band,
			n.country AS country,
			n.constellation AS constellation
	`

	CountSatellitesQuery    = `MATCH (n:Satellite) RETURN count(n) AS total`
	CountDocumentsQuery     = `MATCH (d:Document) RETURN count(d) AS total`
	CountCountryNodesQuery  = `MATCH (c:Country) RETURN count(c) AS total`
	CountEdgesByTypeQuery   = `MATCH ()-[e]->() RETURN type(e) AS rel_type, count(e) AS total`
	ProximityByBandQuery    = `
		MATCH ()-[e:NEAR]->()
		RETURN e.orbital_band AS orbital_band, count(e) AS total
		ORDER BY total DESC
	`
	ConstellationSizesQuery = `
		MATCH ()-[e:MEMBER_OF]->()
		RETURN e.constellation AS constellation, count(e) AS members
		ORDER BY members DESC
	`
	TopDocumentsQuery = `
		MATCH (d:Document)
		RETURN d.key AS key, d.reference AS reference, d.satellite_count AS satellite_count, d.countries AS countries
		ORDER BY d.satellite_count DESC
		LIMIT 10
	`
	LaunchYearsQuery = `
		MATCH (n:Satellite)
		WHERE n.launch_date IS NOT NULL AND n.launch_date <> ''
		RETURN n.launch_date AS launch_date
	`
)
