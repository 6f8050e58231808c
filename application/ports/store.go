// Package ports declares the interfaces the application core consumes.
// Implementations live in infrastructure and repository; the core never
// owns connection lifecycle, transactions or schema.
package ports

import (
	"context"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

// GraphStore is the property-graph storage collaborator. Queries are
// declarative pattern-matching statements; records come back as flat
// property maps.
type GraphStore interface {
	// Read executes a read-only query.
	Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)

	// Write executes a mutating query and returns any records it produces.
	Write(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// NodeFilter narrows a per-type FindAll fetch at the storage layer.
type NodeFilter struct {
	// MinInclusionNet drops nodes below the floor. Nil means no floor, so
	// pending and borderline-rejected content stays visible for browsing.
	MinInclusionNet *int
	// Keywords restricts to nodes carrying at least one of the words.
	Keywords []string
	// Categories restricts to nodes belonging to at least one category.
	Categories []string
	// CreatedBy restricts to nodes created by the user.
	CreatedBy string
	// Limit caps the result size; zero means no cap.
	Limit int
}

// NodeSource fetches normalized nodes of a single content type. The graph
// fetcher fans out over one source per requested type.
type NodeSource interface {
	Type() content.NodeType
	FindAll(ctx context.Context, filter NodeFilter) ([]*content.Node, error)
}

// UserVotes is one user's vote state on one node.
type UserVotes struct {
	Inclusion votes.VoteState
	Content   votes.VoteState
}

// UserStateReader supplies the batched per-user lookups used by result
// enrichment. Both are keyed by the paginated page's node-id list.
type UserStateReader interface {
	// VoteStates returns the user's votes for each listed node. Nodes the
	// user never voted on may be absent from the map.
	VoteStates(ctx context.Context, userID string, nodeIDs []string) (map[string]UserVotes, error)

	// VisibilityPrefs returns the user's explicit visibility overrides for
	// the listed nodes. Nodes without an override are absent.
	VisibilityPrefs(ctx context.Context, userID string, nodeIDs []string) (map[string]bool, error)
}

// InteractionReader answers the creator-filter questions that cannot be
// derived from the node record itself.
type InteractionReader interface {
	// VotedNodeIDs returns ids of nodes the user has cast any inclusion or
	// content vote on.
	VotedNodeIDs(ctx context.Context, userID string) (map[string]bool, error)

	// InteractedNodeIDs returns ids of nodes the user has voted on or
	// commented on.
	InteractedNodeIDs(ctx context.Context, userID string) (map[string]bool, error)
}
