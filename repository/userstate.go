package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// UserStateStore serves the batched per-user lookups: vote state and
// visibility preferences for enrichment, and the voted/interacted id-sets
// for the creator filter. Implements ports.UserStateReader and
// ports.InteractionReader.
type UserStateStore struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewUserStateStore creates the user-state reader.
func NewUserStateStore(store ports.GraphStore, logger *zap.Logger) *UserStateStore {
	return &UserStateStore{store: store, logger: logger}
}

// VoteStates implements ports.UserStateReader.
func (s *UserStateStore) VoteStates(ctx context.Context, userID string, nodeIDs []string) (map[string]ports.UserVotes, error) {
	if userID == "" || len(nodeIDs) == 0 {
		return map[string]ports.UserVotes{}, nil
	}

	query := `MATCH (:User {id: $user_id})-[v:VOTED_ON]->(n)
WHERE n.id IN $node_ids
RETURN n.id AS id, v.kind AS kind, v.positive AS positive`

	records, err := s.store.Read(ctx, query, map[string]interface{}{
		"user_id":  userID,
		"node_ids": nodeIDs,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("vote_states", err)
	}

	states := make(map[string]ports.UserVotes, len(records))
	for _, record := range records {
		id, _ := record["id"].(string)
		if id == "" {
			continue
		}
		state := votes.VoteNegative
		if positive, _ := record["positive"].(bool); positive {
			state = votes.VotePositive
		}

		entry := states[id]
		switch record["kind"] {
		case string(votes.KindInclusion):
			entry.Inclusion = state
		case string(votes.KindContent):
			entry.Content = state
		}
		states[id] = entry
	}
	return states, nil
}

// VisibilityPrefs implements ports.UserStateReader.
func (s *UserStateStore) VisibilityPrefs(ctx context.Context, userID string, nodeIDs []string) (map[string]bool, error) {
	if userID == "" || len(nodeIDs) == 0 {
		return map[string]bool{}, nil
	}

	query := `MATCH (:User {id: $user_id})-[p:VISIBILITY_PREF]->(n)
WHERE n.id IN $node_ids
RETURN n.id AS id, p.visible AS visible`

	records, err := s.store.Read(ctx, query, map[string]interface{}{
		"user_id":  userID,
		"node_ids": nodeIDs,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("visibility_prefs", err)
	}

	prefs := make(map[string]bool, len(records))
	for _, record := range records {
		id, _ := record["id"].(string)
		if id == "" {
			continue
		}
		visible, _ := record["visible"].(bool)
		prefs[id] = visible
	}
	return prefs, nil
}

// SetVisibilityPref stores the user's explicit visibility override for a
// node.
func (s *UserStateStore) SetVisibilityPref(ctx context.Context, userID, nodeID string, visible bool) error {
	if userID == "" || nodeID == "" {
		return pkgerrors.NewValidationError("node and user identifiers are required")
	}

	query := `MATCH (n {id: $node_id})
MERGE (u:User {id: $user_id})
MERGE (u)-[p:VISIBILITY_PREF]->(n)
SET p.visible = $visible
RETURN n.id AS id`

	records, err := s.store.Write(ctx, query, map[string]interface{}{
		"user_id": userID,
		"node_id": nodeID,
		"visible": visible,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("set_visibility_pref", err)
	}
	if len(records) == 0 {
		return pkgerrors.NewNotFoundError("node")
	}
	return nil
}

// VotedNodeIDs implements ports.InteractionReader.
func (s *UserStateStore) VotedNodeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	return s.relatedNodeIDs(ctx, userID, `MATCH (:User {id: $user_id})-[:VOTED_ON]->(n)
RETURN DISTINCT n.id AS id`)
}

// InteractedNodeIDs implements ports.InteractionReader: voted or commented.
func (s *UserStateStore) InteractedNodeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	return s.relatedNodeIDs(ctx, userID, `MATCH (:User {id: $user_id})-[:VOTED_ON|COMMENTED_ON]->(n)
RETURN DISTINCT n.id AS id`)
}

func (s *UserStateStore) relatedNodeIDs(ctx context.Context, userID, query string) (map[string]bool, error) {
	if userID == "" {
		return map[string]bool{}, nil
	}

	records, err := s.store.Read(ctx, query, map[string]interface{}{"user_id": userID})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("user_interactions", err)
	}

	ids := make(map[string]bool, len(records))
	for _, record := range records {
		if id, _ := record["id"].(string); id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}
