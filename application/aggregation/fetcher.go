package aggregation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/observability"
)

// Fetcher fans out one fetch per requested content type and joins the
// results. A failed or timed-out type contributes an empty slice so a broken
// source never takes the whole aggregation down with it.
type Fetcher struct {
	sources map[content.NodeType]ports.NodeSource
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewFetcher creates a fetcher over the given per-type sources.
func NewFetcher(
	sources []ports.NodeSource,
	timeout time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Fetcher {
	byType := make(map[content.NodeType]ports.NodeSource, len(sources))
	for _, src := range sources {
		byType[src.Type()] = src
	}
	return &Fetcher{
		sources: byType,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchAll fetches every requested type concurrently and returns the merged
// node list plus the types whose fetch failed. The per-type filter keeps a
// low floor so pending and borderline-rejected content stays visible.
func (f *Fetcher) FetchAll(
	ctx context.Context,
	types []content.NodeType,
	filter ports.NodeFilter,
) ([]*content.Node, []content.NodeType) {
	results := make([][]*content.Node, len(types))
	failed := make([]bool, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, nodeType := range types {
		i, nodeType := i, nodeType
		g.Go(func() error {
			source, ok := f.sources[nodeType]
			if !ok {
				f.logger.Warn("No source registered for content type",
					zap.String("type", string(nodeType)),
				)
				failed[i] = true
				return nil
			}

			fetchCtx, cancel := context.WithTimeout(gctx, f.timeout)
			defer cancel()

			nodes, err := source.FindAll(fetchCtx, filter)
			if err != nil {
				// Partial-failure tolerance: one broken type must not make
				// the other types unavailable.
				f.logger.Warn("Per-type fetch failed, contributing empty result",
					zap.String("type", string(nodeType)),
					zap.Error(err),
				)
				f.metrics.ObserveFetchFailure(string(nodeType))
				failed[i] = true
				return nil
			}
			results[i] = nodes
			return nil
		})
	}
	// Goroutines only ever return nil; the group is used for the join.
	_ = g.Wait()

	var merged []*content.Node
	var failedTypes []content.NodeType
	for i, nodes := range results {
		if failed[i] {
			failedTypes = append(failedTypes, types[i])
			continue
		}
		merged = append(merged, nodes...)
	}

	return merged, failedTypes
}
