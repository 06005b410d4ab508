package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/orbitwatch/orbitgraph/internal/config"
	"github.com/orbitwatch/orbitgraph/internal/logger"
)

// BoltStore talks to Neo4j or Memgraph over the Bolt protocol.
type BoltStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// NewBoltStore connects and verifies connectivity. The store is required:
// callers treat a failure here as fatal at startup.
func NewBoltStore(cfg config.StoreConfig, log *logger.Logger) (*BoltStore, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	d, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""), func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		c.SocketConnectTimeout = timeout
	})
	if err != nil {
		return nil, fmt.Errorf("init bolt driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	log.Info("connected to graph store", "uri", cfg.URI)
	return &BoltStore{driver: d, database: cfg.Database, log: log}, nil
}

func (s *BoltStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *BoltStore) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return *result, nil
}

// WriteBatch runs all statements inside one managed write transaction.
func (s *BoltStore) WriteBatch(ctx context.Context, statements []Statement) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		for _, stmt := range statements {
			res, err := tx.Run(ctx, stmt.Query, stmt.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *BoltStore) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Satellite(identifier);",
		"CREATE INDEX ON :Satellite(orbital_band);",
		"CREATE INDEX ON :Satellite(country);",
		"CREATE INDEX ON :Satellite(constellation);",
		"CREATE INDEX ON :Satellite(registration_number);",
		"CREATE INDEX ON :Document(key);",
		"CREATE INDEX ON :Country(name);",
	}

	for _, q := range queries {
		if _, err := s.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist.
			s.log.Warn("failed to create index", "query", q, "error", err)
		}
	}
	return nil
}
