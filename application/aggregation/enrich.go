package aggregation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

// Enricher attaches the requesting user's vote state and visibility
// preference to a paginated page via two batched lookups. Enrichment never
// fails a request: on lookup failure the nodes go out with community
// defaults only.
type Enricher struct {
	reader  ports.UserStateReader
	timeout time.Duration
	logger  *zap.Logger
}

// NewEnricher creates an enricher over the user-state reader.
func NewEnricher(reader ports.UserStateReader, timeout time.Duration, logger *zap.Logger) *Enricher {
	return &Enricher{
		reader:  reader,
		timeout: timeout,
		logger:  logger,
	}
}

// Enrich fills each node's UserContext in place. Anonymous requests get the
// community defaults with no vote state lookups.
func (e *Enricher) Enrich(ctx context.Context, userID string, nodes []*content.Node) {
	if len(nodes) == 0 {
		return
	}

	if userID == "" {
		for _, node := range nodes {
			node.User = &content.UserContext{
				InclusionVote:    votes.VoteNone,
				ContentVote:      votes.VoteNone,
				Visible:          node.Visible,
				VisibilitySource: content.VisibilityFromCommunity,
			}
		}
		return
	}

	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var voteStates map[string]ports.UserVotes
	var visibilityPrefs map[string]bool

	// The two lookup kinds are independent; run them in parallel and let
	// each degrade on its own.
	g, gctx := errgroup.WithContext(lookupCtx)
	g.Go(func() error {
		states, err := e.reader.VoteStates(gctx, userID, ids)
		if err != nil {
			e.logger.Warn("Vote state lookup failed, returning nodes without vote state",
				zap.String("userID", userID),
				zap.Error(err),
			)
			return nil
		}
		voteStates = states
		return nil
	})
	g.Go(func() error {
		prefs, err := e.reader.VisibilityPrefs(gctx, userID, ids)
		if err != nil {
			e.logger.Warn("Visibility preference lookup failed, falling back to community defaults",
				zap.String("userID", userID),
				zap.Error(err),
			)
			return nil
		}
		visibilityPrefs = prefs
		return nil
	})
	_ = g.Wait()

	for _, node := range nodes {
		userCtx := &content.UserContext{
			InclusionVote:    votes.VoteNone,
			ContentVote:      votes.VoteNone,
			Visible:          node.Visible,
			VisibilitySource: content.VisibilityFromCommunity,
		}

		if state, ok := voteStates[node.ID]; ok {
			if state.Inclusion != "" {
				userCtx.InclusionVote = state.Inclusion
			}
			if state.Content != "" {
				userCtx.ContentVote = state.Content
			}
		}
		if visible, ok := visibilityPrefs[node.ID]; ok {
			userCtx.Visible = visible
			userCtx.VisibilitySource = content.VisibilityFromUser
		}

		node.User = userCtx
	}
}
