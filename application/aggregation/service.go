package aggregation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/observability"
)

// Aggregator is the composition root for a graph aggregation call:
// fetch fan-out, filter, sort, paginate, enrich, consolidate. It is
// stateless per request; nothing mutable survives a call.
type Aggregator struct {
	fetcher      *Fetcher
	consolidator *Consolidator
	enricher     *Enricher
	interactions ports.InteractionReader
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// NewAggregator wires the aggregation pipeline.
func NewAggregator(
	fetcher *Fetcher,
	consolidator *Consolidator,
	enricher *Enricher,
	interactions ports.InteractionReader,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Aggregator {
	return &Aggregator{
		fetcher:      fetcher,
		consolidator: consolidator,
		enricher:     enricher,
		interactions: interactions,
		logger:       logger,
		metrics:      metrics,
	}
}

// Aggregate runs the full pipeline. The only fatal paths are a malformed
// request and a failed user-filter lookup; per-type fetch and enrichment
// failures degrade per component.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		a.metrics.ObserveAggregation("invalid", time.Since(start))
		return nil, err
	}

	types := req.EffectiveTypes()
	if len(types) == 0 {
		a.metrics.ObserveAggregation("ok", time.Since(start))
		return emptyResponse(), nil
	}

	// Fan-out across types; failures contribute empty slices.
	nodes, failedTypes := a.fetcher.FetchAll(ctx, types, ports.NodeFilter{})
	if len(failedTypes) > 0 {
		a.logger.Warn("Aggregation proceeding with partial type coverage",
			zap.Int("failedTypes", len(failedTypes)),
		)
	}

	voted, interacted, err := a.userFilterSets(ctx, req)
	if err != nil {
		a.metrics.ObserveAggregation("error", time.Since(start))
		return nil, err
	}

	filtered := FiltersFromRequest(req, voted, interacted).Apply(nodes)

	SortNodes(filtered, req.SortBy, req.SortDirection)

	page := Paginate(filtered, req.Offset, req.Limit)

	a.enricher.Enrich(ctx, req.RequestingUserID, page.Nodes)

	var consolidation ConsolidationResult
	if req.IncludeRelationships {
		consolidation = a.consolidator.Consolidate(page.Nodes, req.WantsEdgeType)
	} else {
		consolidation = ConsolidationResult{Edges: []content.Edge{}}
	}

	response := &Response{
		Nodes:         page.Nodes,
		Relationships: consolidation.Edges,
		TotalCount:    page.TotalCount,
		HasMore:       page.HasMore,
		Metrics:       buildMetrics(page.Nodes, consolidation),
	}

	a.metrics.ObserveAggregation("ok", time.Since(start))
	a.logger.Debug("Aggregation complete",
		zap.Int("totalCount", response.TotalCount),
		zap.Int("pageSize", len(response.Nodes)),
		zap.Int("relationships", len(response.Relationships)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return response, nil
}

// userFilterSets fetches the id-sets the voted/interacted filter modes need.
// Unlike enrichment, a failure here is fatal: silently treating the sets as
// empty would turn the requested filter into a lie.
func (a *Aggregator) userFilterSets(ctx context.Context, req Request) (voted, interacted map[string]bool, err error) {
	switch req.UserFilterMode {
	case UserFilterVoted:
		voted, err = a.interactions.VotedNodeIDs(ctx, req.UserID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(err, "user vote lookup failed")
		}
	case UserFilterInteracted:
		interacted, err = a.interactions.InteractedNodeIDs(ctx, req.UserID)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(err, "user interaction lookup failed")
		}
	}
	return voted, interacted, nil
}

func buildMetrics(nodes []*content.Node, consolidation ConsolidationResult) PerformanceMetrics {
	metrics := PerformanceMetrics{
		NodeCount:          len(nodes),
		RelationshipCount:  len(consolidation.Edges),
		ConsolidationRatio: 1.0,
	}

	if len(nodes) > 1 {
		maxPossible := len(nodes) * (len(nodes) - 1) / 2
		metrics.RelationshipDensity = float64(len(consolidation.Edges)) / float64(maxPossible)
	}

	// True raw-to-consolidated quotient, not a placeholder: three shared
	// keywords collapsing into one edge yields a ratio of 3.
	if len(consolidation.Edges) > 0 {
		metrics.ConsolidationRatio = float64(consolidation.RawMatches) / float64(len(consolidation.Edges))
	}

	return metrics
}

func emptyResponse() *Response {
	return &Response{
		Nodes:         []*content.Node{},
		Relationships: []content.Edge{},
		Metrics:       PerformanceMetrics{ConsolidationRatio: 1.0},
	}
}
