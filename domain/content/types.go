// Package content defines the canonical cross-type shapes the aggregation
// engine works over: the normalized node, relationship edges, and the static
// per-type capability descriptors.
package content

import (
	"time"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

// NodeType identifies a concrete content variant.
type NodeType string

const (
	TypeQuestion  NodeType = "question"
	TypeStatement NodeType = "statement"
	TypeAnswer    NodeType = "answer"
	TypeQuantity  NodeType = "quantity"
	TypeEvidence  NodeType = "evidence"
	TypeCategory  NodeType = "category"
)

// KeywordSource records where a keyword came from.
type KeywordSource string

const (
	// KeywordSourceUser marks keywords supplied by the creator.
	KeywordSourceUser KeywordSource = "user"
	// KeywordSourceSystem marks keywords extracted from the content text.
	KeywordSourceSystem KeywordSource = "system"
)

// Keyword is a tagged word carried by a node, used for shared-keyword edge
// discovery.
type Keyword struct {
	Word      string        `json:"word"`
	Frequency int           `json:"frequency"`
	Source    KeywordSource `json:"source"`
}

// CategoryRef is a node's membership in a category. InclusionNet is the
// category's own inclusion tally, needed to gate shared-category edges on
// category approval.
type CategoryRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	InclusionNet int    `json:"inclusion_net"`
}

// VisibilitySource records whether a visibility value came from the user's
// own preference or the community default.
type VisibilitySource string

const (
	VisibilityFromUser      VisibilitySource = "user"
	VisibilityFromCommunity VisibilitySource = "community"
)

// UserContext is the requesting user's state for one node, attached by
// enrichment. Transient; never persisted on the node itself.
type UserContext struct {
	InclusionVote    votes.VoteState  `json:"inclusion_vote"`
	ContentVote      votes.VoteState  `json:"content_vote"`
	Visible          bool             `json:"visible"`
	VisibilitySource VisibilitySource `json:"visibility_source"`
}

// Node is the normalized cross-type record the aggregation engine operates
// on: a superset union of the concrete variants' fields plus a type tag and
// a metadata bag for type-specific extras. Constructed fresh per request,
// never persisted.
type Node struct {
	ID           string                 `json:"id"`
	Type         NodeType               `json:"type"`
	CreatedBy    string                 `json:"created_by"`
	Content      string                 `json:"content"`
	Visible      bool                   `json:"visible"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Keywords     []Keyword              `json:"keywords,omitempty"`
	Categories   []CategoryRef          `json:"categories,omitempty"`
	DiscussionID string                 `json:"discussion_id,omitempty"`
	ParentID     string                 `json:"parent_id,omitempty"`
	ParentType   NodeType               `json:"parent_type,omitempty"`
	Votes        votes.Tally            `json:"votes"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`

	// User is the requesting user's state, filled by enrichment.
	User *UserContext `json:"user_context,omitempty"`
}

// Lifecycle returns the node's approval state derived from its inclusion
// tally.
func (n *Node) Lifecycle() votes.LifecycleState {
	return votes.Lifecycle(n.Votes.InclusionNet)
}

// HasKeyword reports whether the node carries the given (lowercased) word.
func (n *Node) HasKeyword(word string) bool {
	for _, kw := range n.Keywords {
		if kw.Word == word {
			return true
		}
	}
	return false
}

// HasCategory reports whether the node belongs to the given category.
func (n *Node) HasCategory(id string) bool {
	for _, c := range n.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// EdgeType identifies a relationship variant between normalized nodes.
type EdgeType string

const (
	// EdgeSharedKeyword connects two nodes that carry common keywords.
	EdgeSharedKeyword EdgeType = "shared_keyword"
	// EdgeSharedCategory connects two nodes that share approved categories.
	EdgeSharedCategory EdgeType = "shared_category"
	// EdgeParent is a structural link already present on a node, e.g.
	// answer to question or evidence to the node it supports.
	EdgeParent EdgeType = "parent"
	// EdgeCategorized is a node-to-category membership edge.
	EdgeCategorized EdgeType = "categorized_as"
)

// AllEdgeTypes lists every relationship variant the consolidator can emit.
func AllEdgeTypes() []EdgeType {
	return []EdgeType{EdgeSharedKeyword, EdgeSharedCategory, EdgeParent, EdgeCategorized}
}

// Edge is a consolidated relationship between two nodes. At most one edge
// exists per (source, target, type) triple; multiple raw matches collapse
// into a single edge carrying aggregate weight and contributor metadata.
type Edge struct {
	ID       string                 `json:"id"`
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Type     EdgeType               `json:"type"`
	Weight   float64                `json:"weight"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
