// Package repository provides the generic content data-access layer. One
// implementation serves every content type, parameterized by an injected
// type descriptor instead of a per-type class hierarchy.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
	"github.com/rob-hayward/ProjectZer0-sub005/pkg/observability"
)

const maxCategoriesPerNode = 3

// ContentRepository is the generic per-type data access object. All
// operations go through the storage collaborator's read/write query
// interface; the repository owns no connections or transactions.
type ContentRepository struct {
	descriptor content.TypeDescriptor
	store      ports.GraphStore
	logger     *zap.Logger
	metrics    *observability.Metrics

	now func() time.Time
}

// New creates a repository for one content type.
func New(
	descriptor content.TypeDescriptor,
	store ports.GraphStore,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *ContentRepository {
	return &ContentRepository{
		descriptor: descriptor,
		store:      store,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewAll creates one repository per registered content type.
func NewAll(store ports.GraphStore, logger *zap.Logger, metrics *observability.Metrics) map[content.NodeType]*ContentRepository {
	repos := make(map[content.NodeType]*ContentRepository)
	for _, t := range content.AllTypes() {
		descriptor, err := content.DescriptorFor(t)
		if err != nil {
			continue
		}
		repos[t] = New(descriptor, store, logger, metrics)
	}
	return repos
}

// Type implements ports.NodeSource.
func (r *ContentRepository) Type() content.NodeType {
	return r.descriptor.Type
}

// Descriptor returns the repository's type configuration.
func (r *ContentRepository) Descriptor() content.TypeDescriptor {
	return r.descriptor
}

// returnFragment projects a node and its keyword/category neighborhoods into
// the flat record shape the descriptor mappers consume. The label is static
// per-descriptor configuration, never derived from request input.
func (r *ContentRepository) returnFragment() string {
	return `RETURN n.id AS id, n.created_by AS created_by, n.content AS content,
       n.visible AS visible, n.created_at AS created_at, n.updated_at AS updated_at,
       n.discussion_id AS discussion_id, n.parent_id AS parent_id, n.parent_type AS parent_type,
       n.name AS name, n.url AS url, n.evidence_type AS evidence_type,
       n.unit_category_id AS unit_category_id, n.default_unit_id AS default_unit_id,
       n.inclusion_positive AS inclusion_positive, n.inclusion_negative AS inclusion_negative,
       n.inclusion_net AS inclusion_net, n.content_positive AS content_positive,
       n.content_negative AS content_negative, n.content_net AS content_net,
       [(n)-[t:TAGGED]->(w:Word) | {word: w.word, frequency: t.frequency, source: t.source}] AS keywords,
       [(n)-[:CATEGORIZED_AS]->(c:Category) | {id: c.id, name: c.name, inclusion_net: c.inclusion_net}] AS categories`
}

// FindByID fetches one node.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*content.Node, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("identifier cannot be empty")
	}

	query := fmt.Sprintf("MATCH (n:%s {%s: $id})\n%s",
		r.descriptor.Label, r.descriptor.IDField, r.returnFragment())

	records, err := r.store.Read(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("find", err)
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNotFoundError(r.descriptor.Label)
	}

	return r.descriptor.MapRecord(records[0])
}

// FindAll implements ports.NodeSource: it fetches every node of this type
// that passes the storage-level filter and normalizes the records.
func (r *ContentRepository) FindAll(ctx context.Context, filter ports.NodeFilter) ([]*content.Node, error) {
	var conditions []string
	params := map[string]interface{}{}

	if filter.MinInclusionNet != nil {
		conditions = append(conditions, "n.inclusion_net >= $min_inclusion")
		params["min_inclusion"] = *filter.MinInclusionNet
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, "n.created_by = $created_by")
		params["created_by"] = filter.CreatedBy
	}
	if len(filter.Keywords) > 0 {
		conditions = append(conditions,
			"any(word IN [(n)-[:TAGGED]->(w:Word) | w.word] WHERE word IN $keywords)")
		params["keywords"] = filter.Keywords
	}
	if len(filter.Categories) > 0 {
		conditions = append(conditions,
			"any(cid IN [(n)-[:CATEGORIZED_AS]->(c:Category) | c.id] WHERE cid IN $categories)")
		params["categories"] = filter.Categories
	}

	query := fmt.Sprintf("MATCH (n:%s)", r.descriptor.Label)
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n" + r.returnFragment() + "\nORDER BY n.created_at DESC"
	if filter.Limit > 0 {
		query += "\nLIMIT $limit"
		params["limit"] = filter.Limit
	}

	records, err := r.store.Read(ctx, query, params)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("find_all", err)
	}

	nodes := make([]*content.Node, 0, len(records))
	for _, record := range records {
		node, err := r.descriptor.MapRecord(record)
		if err != nil {
			r.logger.Warn("Skipping unmappable record",
				zap.String("type", string(r.descriptor.Type)),
				zap.Error(err),
			)
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// CreatePayload carries the caller-supplied fields for a new node.
type CreatePayload struct {
	CreatedBy  string
	Content    string
	Keywords   []string // user-supplied; system keywords are extracted from the content
	Categories []string // category ids, at most 3
	ParentID   string
	ParentType content.NodeType
	Properties map[string]interface{} // type-specific extras (unit, url, ...)

	// AttachDiscussion provisions a discussion thread id alongside the node.
	AttachDiscussion bool
}

// Create validates the payload, enforces the child-creation gate for
// parented types, and writes the node with its keyword and category edges
// in one query.
func (r *ContentRepository) Create(ctx context.Context, payload CreatePayload) (*content.Node, error) {
	if payload.CreatedBy == "" {
		return nil, pkgerrors.NewValidationError("creator identifier is required")
	}
	if strings.TrimSpace(payload.Content) == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if len(payload.Categories) > maxCategoriesPerNode {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("a node may belong to at most %d categories", maxCategoriesPerNode))
	}

	if payload.ParentID != "" {
		if err := r.checkParentGate(ctx, payload.ParentType, payload.ParentID); err != nil {
			return nil, err
		}
	}

	id := uuid.New().String()
	now := r.now().Format(time.RFC3339)

	props := map[string]interface{}{
		"id":                 id,
		"created_by":         payload.CreatedBy,
		"content":            payload.Content,
		"visible":            true,
		"created_at":         now,
		"updated_at":         now,
		"inclusion_positive": 0,
		"inclusion_negative": 0,
		"inclusion_net":      0,
		"content_positive":   0,
		"content_negative":   0,
		"content_net":        0,
	}
	if payload.ParentID != "" {
		props["parent_id"] = payload.ParentID
		props["parent_type"] = string(payload.ParentType)
	}
	if payload.AttachDiscussion {
		props["discussion_id"] = uuid.New().String()
	}
	for _, field := range r.descriptor.UpdatableFields {
		if v, ok := payload.Properties[field]; ok {
			props[field] = v
		}
	}

	keywords := mergeKeywords(payload.Keywords, ExtractKeywords(payload.Content))

	query := fmt.Sprintf(`CREATE (n:%s $props)
WITH n
UNWIND CASE WHEN size($keywords) = 0 THEN [null] ELSE $keywords END AS kw
FOREACH (_ IN CASE WHEN kw IS NULL THEN [] ELSE [1] END |
  MERGE (w:Word {word: kw.word})
  MERGE (n)-[t:TAGGED]->(w)
  SET t.frequency = kw.frequency, t.source = kw.source)
WITH DISTINCT n
UNWIND CASE WHEN size($categories) = 0 THEN [null] ELSE $categories END AS cid
OPTIONAL MATCH (c:Category {id: cid})
FOREACH (_ IN CASE WHEN c IS NULL THEN [] ELSE [1] END |
  MERGE (n)-[:CATEGORIZED_AS]->(c))
WITH DISTINCT n
%s`, r.descriptor.Label, r.returnFragment())

	records, err := r.store.Write(ctx, query, map[string]interface{}{
		"props":      props,
		"keywords":   keywordParams(keywords),
		"categories": payload.Categories,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("create", err)
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewInternalError("create returned no record")
	}

	r.logger.Info("Content node created",
		zap.String("type", string(r.descriptor.Type)),
		zap.String("id", id),
		zap.String("createdBy", payload.CreatedBy),
	)

	return r.descriptor.MapRecord(records[0])
}

// checkParentGate enforces that child content may only be created under an
// approved parent.
func (r *ContentRepository) checkParentGate(ctx context.Context, parentType content.NodeType, parentID string) error {
	parentDescriptor, err := content.DescriptorFor(parentType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("MATCH (p:%s {%s: $id}) RETURN p.inclusion_net AS inclusion_net",
		parentDescriptor.Label, parentDescriptor.IDField)

	records, err := r.store.Read(ctx, query, map[string]interface{}{"id": parentID})
	if err != nil {
		return pkgerrors.NewDatabaseError("parent_lookup", err)
	}
	if len(records) == 0 {
		return pkgerrors.NewNotFoundError(parentDescriptor.Label)
	}

	net := recordInt(records[0], "inclusion_net")
	if !votes.ChildCreationAllowed(net) {
		return pkgerrors.NewPolicyError(
			fmt.Sprintf("%s must pass inclusion before it can receive %s content",
				strings.ToLower(parentDescriptor.Label), r.descriptor.Type))
	}
	return nil
}

// Update patches the node's updatable fields. Unknown fields are rejected so
// property names always come from the descriptor's fixed configuration.
func (r *ContentRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*content.Node, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("identifier cannot be empty")
	}
	if len(patch) == 0 {
		return nil, pkgerrors.NewValidationError("update patch cannot be empty")
	}

	allowed := make(map[string]bool, len(r.descriptor.UpdatableFields))
	for _, field := range r.descriptor.UpdatableFields {
		allowed[field] = true
	}
	for field := range patch {
		if !allowed[field] {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("field %q is not updatable", field))
		}
	}

	query := fmt.Sprintf(`MATCH (n:%s {%s: $id})
SET n += $patch, n.updated_at = $now
%s`, r.descriptor.Label, r.descriptor.IDField, r.returnFragment())

	records, err := r.store.Write(ctx, query, map[string]interface{}{
		"id":    id,
		"patch": patch,
		"now":   r.now().Format(time.RFC3339),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("update", err)
	}
	if len(records) == 0 {
		return nil, pkgerrors.NewNotFoundError(r.descriptor.Label)
	}

	return r.descriptor.MapRecord(records[0])
}

// Delete removes the node, its relationship edges, and any keyword nodes the
// node was the last holder of.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.NewValidationError("identifier cannot be empty")
	}

	// Bare pattern predicates are only legal in WHERE; the orphan check needs
	// an existential subquery to survive the Neo4j 5 parser.
	query := fmt.Sprintf(`MATCH (n:%s {%s: $id})
OPTIONAL MATCH (n)-[:TAGGED]->(w:Word)
WITH n, n.%s AS deleted_id, collect(w) AS words
DETACH DELETE n
WITH deleted_id, words
UNWIND CASE WHEN size(words) = 0 THEN [null] ELSE words END AS w
FOREACH (_ IN CASE WHEN w IS NULL OR EXISTS { (w)<-[:TAGGED]-() } THEN [] ELSE [1] END |
  DELETE w)
RETURN DISTINCT deleted_id AS id`,
		r.descriptor.Label, r.descriptor.IDField, r.descriptor.IDField)

	records, err := r.store.Write(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete", err)
	}
	if len(records) == 0 {
		return pkgerrors.NewNotFoundError(r.descriptor.Label)
	}

	r.logger.Info("Content node deleted",
		zap.String("type", string(r.descriptor.Type)),
		zap.String("id", id),
	)
	return nil
}

func recordInt(record map[string]interface{}, key string) int {
	switch v := record[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
