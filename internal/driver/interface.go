package driver

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrUnavailable marks store connectivity failures so callers can surface a
// service-unavailable condition instead of crashing.
var ErrUnavailable = errors.New("graph store unavailable")

// Statement is one parameterized query inside a write batch.
type Statement struct {
	Query  string
	Params map[string]interface{}
}

// GraphStore is the abstract keyed-store + edge-collection capability the
// engine and query service run against. WriteBatch executes every statement
// in a single transaction, which is what makes per-relationship-type edge
// replacement atomic: a concurrent reader sees the old edge set or the new
// one, never a partial mix.
type GraphStore interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	WriteBatch(ctx context.Context, statements []Statement) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
