package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// voteQuery records the user's vote and recounts all four counters from the
// vote relationships inside the same write. The counters are never computed
// at the application layer: re-voting flips the existing relationship, and
// the recount sees the post-merge state atomically.
const voteQueryTemplate = `MATCH (n:%s {%s: $id})
MERGE (u:User {id: $user_id})
MERGE (u)-[v:VOTED_ON {kind: $kind}]->(n)
SET v.positive = $positive, v.updated_at = $now
WITH n
WITH n,
     size([(n)<-[x:VOTED_ON {kind: 'inclusion'}]-(:User) WHERE x.positive | x]) AS ip,
     size([(n)<-[x:VOTED_ON {kind: 'inclusion'}]-(:User) WHERE NOT x.positive | x]) AS ineg,
     size([(n)<-[x:VOTED_ON {kind: 'content'}]-(:User) WHERE x.positive | x]) AS cp,
     size([(n)<-[x:VOTED_ON {kind: 'content'}]-(:User) WHERE NOT x.positive | x]) AS cneg
SET n.inclusion_positive = ip, n.inclusion_negative = ineg, n.inclusion_net = ip - ineg,
    n.content_positive = cp, n.content_negative = cneg, n.content_net = cp - cneg
RETURN n.inclusion_positive AS inclusion_positive, n.inclusion_negative AS inclusion_negative,
       n.inclusion_net AS inclusion_net, n.content_positive AS content_positive,
       n.content_negative AS content_negative, n.content_net AS content_net`

const removeVoteQueryTemplate = `MATCH (n:%s {%s: $id})
OPTIONAL MATCH (:User {id: $user_id})-[v:VOTED_ON {kind: $kind}]->(n)
DELETE v
WITH n
WITH n,
     size([(n)<-[x:VOTED_ON {kind: 'inclusion'}]-(:User) WHERE x.positive | x]) AS ip,
     size([(n)<-[x:VOTED_ON {kind: 'inclusion'}]-(:User) WHERE NOT x.positive | x]) AS ineg,
     size([(n)<-[x:VOTED_ON {kind: 'content'}]-(:User) WHERE x.positive | x]) AS cp,
     size([(n)<-[x:VOTED_ON {kind: 'content'}]-(:User) WHERE NOT x.positive | x]) AS cneg
SET n.inclusion_positive = ip, n.inclusion_negative = ineg, n.inclusion_net = ip - ineg,
    n.content_positive = cp, n.content_negative = cneg, n.content_net = cp - cneg
RETURN n.inclusion_positive AS inclusion_positive, n.inclusion_negative AS inclusion_negative,
       n.inclusion_net AS inclusion_net, n.content_positive AS content_positive,
       n.content_negative AS content_negative, n.content_net AS content_net`

// VoteInclusion records or changes the user's inclusion vote on a node.
func (r *ContentRepository) VoteInclusion(ctx context.Context, id, userID string, positive bool) (votes.Tally, error) {
	return r.castVote(ctx, id, userID, votes.KindInclusion, positive)
}

// VoteContent records or changes the user's content vote. It consults the
// voting policy first and fails with a policy error when content voting is
// not open for the node's type and lifecycle state.
func (r *ContentRepository) VoteContent(ctx context.Context, id, userID string, positive bool) (votes.Tally, error) {
	node, err := r.FindByID(ctx, id)
	if err != nil {
		return votes.Tally{}, err
	}

	if !r.descriptor.ContentVotingAvailable(node.Votes.InclusionNet) {
		r.metrics.ObserveVote(string(votes.KindContent), "rejected")
		if !r.descriptor.HasContentVoting {
			return votes.Tally{}, pkgerrors.NewPolicyError(
				fmt.Sprintf("%s content does not take content votes", r.descriptor.Type))
		}
		return votes.Tally{}, pkgerrors.NewPolicyError(
			fmt.Sprintf("%s must pass inclusion before content voting opens", r.descriptor.Type))
	}

	return r.castVote(ctx, id, userID, votes.KindContent, positive)
}

// RemoveVote withdraws the user's vote of the given kind and returns the
// recounted tally. Removing an absent vote is a no-op recount.
func (r *ContentRepository) RemoveVote(ctx context.Context, id, userID string, kind votes.VoteKind) (votes.Tally, error) {
	if id == "" || userID == "" {
		return votes.Tally{}, pkgerrors.NewValidationError("node and user identifiers are required")
	}

	query := fmt.Sprintf(removeVoteQueryTemplate, r.descriptor.Label, r.descriptor.IDField)
	records, err := r.store.Write(ctx, query, map[string]interface{}{
		"id":      id,
		"user_id": userID,
		"kind":    string(kind),
	})
	if err != nil {
		return votes.Tally{}, pkgerrors.NewDatabaseError("remove_vote", err)
	}
	if len(records) == 0 {
		return votes.Tally{}, pkgerrors.NewNotFoundError(r.descriptor.Label)
	}

	r.metrics.ObserveVote(string(kind), "removed")
	return tallyFromRecord(records[0]), nil
}

func (r *ContentRepository) castVote(ctx context.Context, id, userID string, kind votes.VoteKind, positive bool) (votes.Tally, error) {
	if id == "" || userID == "" {
		return votes.Tally{}, pkgerrors.NewValidationError("node and user identifiers are required")
	}

	query := fmt.Sprintf(voteQueryTemplate, r.descriptor.Label, r.descriptor.IDField)
	records, err := r.store.Write(ctx, query, map[string]interface{}{
		"id":       id,
		"user_id":  userID,
		"kind":     string(kind),
		"positive": positive,
		"now":      r.now().Format(time.RFC3339),
	})
	if err != nil {
		r.metrics.ObserveVote(string(kind), "error")
		return votes.Tally{}, pkgerrors.NewDatabaseError("vote", err)
	}
	if len(records) == 0 {
		return votes.Tally{}, pkgerrors.NewNotFoundError(r.descriptor.Label)
	}

	r.metrics.ObserveVote(string(kind), "cast")
	r.logger.Debug("Vote recorded",
		zap.String("type", string(r.descriptor.Type)),
		zap.String("id", id),
		zap.String("kind", string(kind)),
		zap.Bool("positive", positive),
	)

	return tallyFromRecord(records[0]), nil
}

func tallyFromRecord(record map[string]interface{}) votes.Tally {
	return votes.Tally{
		InclusionPositive: recordInt(record, "inclusion_positive"),
		InclusionNegative: recordInt(record, "inclusion_negative"),
		InclusionNet:      recordInt(record, "inclusion_net"),
		ContentPositive:   recordInt(record, "content_positive"),
		ContentNegative:   recordInt(record, "content_negative"),
		ContentNet:        recordInt(record, "content_net"),
	}
}
