package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type StoreConfig struct {
	URI            string `toml:"uri"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Database       string `toml:"database"`
	MaxPoolSize    int    `toml:"max_pool_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	Mode           string   `toml:"mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type CacheConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type MergeConfig struct {
	// SourcePriority orders sources from most to least authoritative.
	// Sources not listed here rank below every listed one.
	SourcePriority []string `toml:"source_priority"`
}

type ProximityConfig struct {
	ApogeeThresholdKm       float64 `toml:"apogee_threshold_km"`
	PerigeeThresholdKm      float64 `toml:"perigee_threshold_km"`
	InclinationThresholdDeg float64 `toml:"inclination_threshold_deg"`
	MaxEdgesPerSatellite    int     `toml:"max_edges_per_satellite"`
	ChunkSize               int     `toml:"chunk_size"`
}

type CountryConfig struct {
	MinSatellites int `toml:"min_satellites"`
	MaxCountries  int `toml:"max_countries"`
	SharedBandMin int `toml:"shared_band_min"`
}

type TimelineConfig struct {
	MinYear        int `toml:"min_year"`
	BreakdownLimit int `toml:"breakdown_limit"`
}

type ClassifyRule struct {
	Category string   `toml:"category"`
	Keywords []string `toml:"keywords"`
}

type ClassifyConfig struct {
	Rules []ClassifyRule `toml:"rules"`
}

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Cache     CacheConfig     `toml:"cache"`
	Merge     MergeConfig     `toml:"merge"`
	Proximity ProximityConfig `toml:"proximity"`
	Country   CountryConfig   `toml:"country"`
	Timeline  TimelineConfig  `toml:"timeline"`
	Classify  ClassifyConfig  `toml:"classify"`
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{
			URI:            "bolt://localhost:7687",
			User:           "neo4j",
			MaxPoolSize:    50,
			TimeoutSeconds: 10,
		},
		Server: ServerConfig{
			Port: "8080",
			Mode: "dev",
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Merge: MergeConfig{
			SourcePriority: []string{"unoosa", "celestrak", "tleapi", "kaggle"},
		},
		Proximity: ProximityConfig{
			ApogeeThresholdKm:       50,
			PerigeeThresholdKm:      50,
			InclinationThresholdDeg: 5,
			MaxEdgesPerSatellite:    10,
			ChunkSize:               500,
		},
		Country: CountryConfig{
			MinSatellites: 50,
			MaxCountries:  10,
			SharedBandMin: 10,
		},
		Timeline: TimelineConfig{
			MinYear:        1957,
			BreakdownLimit: 10,
		},
	}
}

// Load reads a TOML config file on top of defaults, then applies env-var
// overrides for deployment values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STORE_URI"); v != "" {
		c.Store.URI = v
	}
	if v := os.Getenv("STORE_USER"); v != "" {
		c.Store.User = v
	}
	if v := os.Getenv("STORE_PASSWORD"); v != "" {
		c.Store.Password = v
	}
	if v := os.Getenv("STORE_DATABASE"); v != "" {
		c.Store.Database = v
	}
	if v := os.Getenv("STORE_MAX_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Store.MaxPoolSize = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("SERVER_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
}
