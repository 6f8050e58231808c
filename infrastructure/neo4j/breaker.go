package neo4j

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
)

// BreakerStore wraps a graph store with a circuit breaker so a failing
// store trips fast instead of stacking timeouts. Tripped calls surface as
// collaborator errors and flow into the aggregation's partial-failure
// handling.
type BreakerStore struct {
	inner   ports.GraphStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps the store.
func NewBreakerStore(inner ports.GraphStore, logger *zap.Logger) *BreakerStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "graph-store",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Graph store circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerStore{inner: inner, breaker: breaker}
}

// Read implements ports.GraphStore.
func (b *BreakerStore) Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Read(ctx, query, params)
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]interface{}), nil
}

// Write implements ports.GraphStore.
func (b *BreakerStore) Write(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Write(ctx, query, params)
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]interface{}), nil
}
