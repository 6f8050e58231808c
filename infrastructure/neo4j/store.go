// Package neo4j implements the graph storage collaborator over the Neo4j
// bolt driver. The store owns the driver lifecycle; the application core
// only sees the read/write query interface.
package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Store is the Neo4j-backed graph store.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewStore connects to Neo4j and verifies connectivity.
func NewStore(ctx context.Context, uri, username, password, database string, logger *zap.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to graph store", zap.String("uri", uri), zap.String("database", database))

	return &Store{
		driver:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Read executes a read-only query in a read transaction.
func (s *Store) Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return collect(ctx, tx, query, params)
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]interface{}), nil
}

// Write executes a mutating query in a write transaction. Vote mutations
// rely on this running as one transaction: the merge of the vote
// relationship and the counter recount commit atomically.
func (s *Store) Write(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		return collect(ctx, tx, query, params)
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]interface{}), nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]interface{}) (interface{}, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, len(records))
	for i, record := range records {
		rows[i] = record.AsMap()
	}
	return rows, nil
}
