// Package aggregation implements the cross-type graph aggregation engine:
// parallel per-type fetch, compound filtering, global sort, pagination,
// per-user enrichment and relationship consolidation.
package aggregation

import (
	"github.com/go-playground/validator/v10"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// MatchMode selects any/all semantics for a term filter.
type MatchMode string

const (
	// MatchAny keeps nodes carrying at least one listed term.
	MatchAny MatchMode = "any"
	// MatchAll keeps nodes carrying every listed term.
	MatchAll MatchMode = "all"
)

// UserFilterMode selects how the user filter relates nodes to a user.
type UserFilterMode string

const (
	UserFilterAll        UserFilterMode = "all"
	UserFilterCreated    UserFilterMode = "created"
	UserFilterVoted      UserFilterMode = "voted"
	UserFilterInteracted UserFilterMode = "interacted"
)

// SortBy selects the primary sort key.
type SortBy string

const (
	SortByInclusionNet SortBy = "inclusion_net"
	SortByContentNet   SortBy = "content_net"
	SortByCreatedAt    SortBy = "created_at"
	SortByUpdatedAt    SortBy = "updated_at"
	SortByParticipants SortBy = "participants"
)

// SortDirection orders ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const maxLimit = 1000

// Request is the aggregation configuration object. Decode JSON over
// DefaultRequest so omitted include flags keep their inclusive defaults.
type Request struct {
	NodeTypes        []content.NodeType `json:"node_types" validate:"dive,oneof=question statement answer quantity evidence category"`
	IncludeNodeTypes bool               `json:"include_node_types"`

	Categories              []string  `json:"categories"`
	IncludeCategoriesFilter bool      `json:"include_categories_filter"`
	CategoryMode            MatchMode `json:"category_mode" validate:"oneof=any all"`

	Keywords              []string  `json:"keywords"`
	IncludeKeywordsFilter bool      `json:"include_keywords_filter"`
	KeywordMode           MatchMode `json:"keyword_mode" validate:"oneof=any all"`

	UserID         string         `json:"user_id"`
	UserFilterMode UserFilterMode `json:"user_filter_mode" validate:"oneof=all created voted interacted"`

	Limit  int `json:"limit" validate:"min=1"`
	Offset int `json:"offset" validate:"min=0"`

	SortBy        SortBy        `json:"sort_by" validate:"oneof=inclusion_net content_net created_at updated_at participants"`
	SortDirection SortDirection `json:"sort_direction" validate:"oneof=asc desc"`

	IncludeRelationships bool               `json:"include_relationships"`
	RelationshipTypes    []content.EdgeType `json:"relationship_types" validate:"dive,oneof=shared_keyword shared_category parent categorized_as"`

	// RequestingUserID is resolved by the identity collaborator; empty for
	// anonymous requests.
	RequestingUserID string `json:"-"`
}

// DefaultRequest returns a request with the inclusive defaults: all types,
// no term filters, net-vote ordering, relationships on.
func DefaultRequest() Request {
	return Request{
		IncludeNodeTypes:        true,
		IncludeCategoriesFilter: true,
		CategoryMode:            MatchAny,
		IncludeKeywordsFilter:   true,
		KeywordMode:             MatchAny,
		UserFilterMode:          UserFilterAll,
		Limit:                   200,
		Offset:                  0,
		SortBy:                  SortByInclusionNet,
		SortDirection:           SortDesc,
		IncludeRelationships:    true,
		RelationshipTypes:       content.AllEdgeTypes(),
	}
}

var validate = validator.New()

// Validate rejects a malformed request before any fetch begins. This is the
// only fatal error path in an aggregation.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if r.Limit > maxLimit {
		return pkgerrors.NewValidationError("limit exceeds maximum of 1000")
	}
	if r.UserFilterMode != UserFilterAll && r.UserID == "" {
		return pkgerrors.NewValidationError("user_filter_mode requires user_id")
	}
	return nil
}

// EffectiveTypes resolves the node-type filter to the concrete set of types
// to fetch: the listed set when including, the universe minus it when
// excluding, and the whole universe when no set was given.
func (r Request) EffectiveTypes() []content.NodeType {
	if len(r.NodeTypes) == 0 {
		// An empty list filters nothing in either mode.
		return content.AllTypes()
	}

	listed := make(map[content.NodeType]bool, len(r.NodeTypes))
	for _, t := range r.NodeTypes {
		listed[t] = true
	}

	if r.IncludeNodeTypes {
		return r.NodeTypes
	}

	var effective []content.NodeType
	for _, t := range content.AllTypes() {
		if !listed[t] {
			effective = append(effective, t)
		}
	}
	return effective
}

// WantsEdgeType reports whether the request asked for the given
// relationship variant.
func (r Request) WantsEdgeType(t content.EdgeType) bool {
	for _, rt := range r.RelationshipTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// PerformanceMetrics summarizes the aggregation's output shape.
type PerformanceMetrics struct {
	NodeCount           int     `json:"node_count"`
	RelationshipCount   int     `json:"relationship_count"`
	RelationshipDensity float64 `json:"relationship_density"`
	ConsolidationRatio  float64 `json:"consolidation_ratio"`
}

// Response is the aggregation result.
type Response struct {
	Nodes         []*content.Node    `json:"nodes"`
	Relationships []content.Edge     `json:"relationships"`
	TotalCount    int                `json:"total_count"`
	HasMore       bool               `json:"has_more"`
	Metrics       PerformanceMetrics `json:"performance_metrics"`
}
