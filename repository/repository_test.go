package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// fakeStore replays canned records and captures the queries it was given.
type fakeStore struct {
	readRecords  []map[string]interface{}
	writeRecords []map[string]interface{}
	readErr      error
	writeErr     error

	reads  []string
	writes []string
	params []map[string]interface{}
}

func (s *fakeStore) Read(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	s.reads = append(s.reads, query)
	s.params = append(s.params, params)
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.readRecords, nil
}

func (s *fakeStore) Write(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	s.writes = append(s.writes, query)
	s.params = append(s.params, params)
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return s.writeRecords, nil
}

func newTestRepo(t *testing.T, nodeType content.NodeType, store *fakeStore) *ContentRepository {
	t.Helper()
	descriptor, err := content.DescriptorFor(nodeType)
	require.NoError(t, err)
	repo := New(descriptor, store, zap.NewNop(), nil)
	repo.now = func() time.Time { return time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC) }
	return repo
}

func nodeRecord(id string, inclusionNet int) map[string]interface{} {
	return map[string]interface{}{
		"id":                 id,
		"created_by":         "user-1",
		"content":            "some content",
		"visible":            true,
		"created_at":         "2025-04-01T00:00:00Z",
		"updated_at":         "2025-04-01T00:00:00Z",
		"inclusion_positive": int64(inclusionNet),
		"inclusion_negative": int64(0),
		"inclusion_net":      int64(inclusionNet),
		"content_positive":   int64(0),
		"content_negative":   int64(0),
		"content_net":        int64(0),
	}
}

func TestFindByID(t *testing.T) {
	store := &fakeStore{readRecords: []map[string]interface{}{nodeRecord("st-1", 3)}}
	repo := newTestRepo(t, content.TypeStatement, store)

	node, err := repo.FindByID(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, "st-1", node.ID)
	assert.Equal(t, content.TypeStatement, node.Type)
	assert.Contains(t, store.reads[0], "MATCH (n:Statement {id: $id})")
}

func TestFindByID_NotFound(t *testing.T) {
	store := &fakeStore{}
	repo := newTestRepo(t, content.TypeStatement, store)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFindByID_EmptyID(t *testing.T) {
	repo := newTestRepo(t, content.TypeStatement, &fakeStore{})

	_, err := repo.FindByID(context.Background(), "")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFindAll_BuildsFilterConditions(t *testing.T) {
	store := &fakeStore{}
	repo := newTestRepo(t, content.TypeQuestion, store)

	floor := 0
	_, err := repo.FindAll(context.Background(), ports.NodeFilter{
		MinInclusionNet: &floor,
		CreatedBy:       "user-1",
		Keywords:        []string{"ocean"},
		Limit:           50,
	})
	require.NoError(t, err)

	query := store.reads[0]
	assert.Contains(t, query, "n.inclusion_net >= $min_inclusion")
	assert.Contains(t, query, "n.created_by = $created_by")
	assert.Contains(t, query, "LIMIT $limit")
	assert.Equal(t, 50, store.params[0]["limit"])
}

func TestFindAll_SkipsUnmappableRecords(t *testing.T) {
	store := &fakeStore{readRecords: []map[string]interface{}{
		nodeRecord("q-1", 1),
		{"content": "record without an id"},
	}}
	repo := newTestRepo(t, content.TypeQuestion, store)

	nodes, err := repo.FindAll(context.Background(), ports.NodeFilter{})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "q-1", nodes[0].ID)
}

func TestCreate_Validation(t *testing.T) {
	repo := newTestRepo(t, content.TypeStatement, &fakeStore{})

	_, err := repo.Create(context.Background(), CreatePayload{Content: "no creator"})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = repo.Create(context.Background(), CreatePayload{CreatedBy: "u", Content: "   "})
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = repo.Create(context.Background(), CreatePayload{
		CreatedBy:  "u",
		Content:    "too many categories",
		Categories: []string{"a", "b", "c", "d"},
	})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCreate_WritesNodeWithTags(t *testing.T) {
	store := &fakeStore{writeRecords: []map[string]interface{}{nodeRecord("st-new", 0)}}
	repo := newTestRepo(t, content.TypeStatement, store)

	node, err := repo.Create(context.Background(), CreatePayload{
		CreatedBy: "user-1",
		Content:   "Oceans regulate global temperature patterns",
		Keywords:  []string{"climate"},
	})
	require.NoError(t, err)
	assert.Equal(t, "st-new", node.ID)

	require.Len(t, store.writes, 1)
	assert.Contains(t, store.writes[0], "CREATE (n:Statement $props)")
	assert.Contains(t, store.writes[0], "MERGE (w:Word {word: kw.word})")

	params := store.params[0]
	props := params["props"].(map[string]interface{})
	assert.Equal(t, "user-1", props["created_by"])
	assert.Equal(t, 0, props["inclusion_net"])
	assert.Equal(t, true, props["visible"])

	keywords := params["keywords"].([]map[string]interface{})
	require.NotEmpty(t, keywords)
	assert.Equal(t, "climate", keywords[0]["word"])
	assert.Equal(t, "user", keywords[0]["source"])
}

func TestCreate_ParentGate(t *testing.T) {
	// Parent question still pending: child creation is refused before any
	// write happens.
	store := &fakeStore{readRecords: []map[string]interface{}{
		{"inclusion_net": int64(0)},
	}}
	repo := newTestRepo(t, content.TypeAnswer, store)

	_, err := repo.Create(context.Background(), CreatePayload{
		CreatedBy:  "user-1",
		Content:    "an answer",
		ParentID:   "q-1",
		ParentType: content.TypeQuestion,
	})
	assert.True(t, pkgerrors.IsPolicy(err))
	assert.Empty(t, store.writes)
}

func TestCreate_ParentGatePasses(t *testing.T) {
	store := &fakeStore{
		readRecords:  []map[string]interface{}{{"inclusion_net": int64(2)}},
		writeRecords: []map[string]interface{}{nodeRecord("an-1", 0)},
	}
	repo := newTestRepo(t, content.TypeAnswer, store)

	node, err := repo.Create(context.Background(), CreatePayload{
		CreatedBy:  "user-1",
		Content:    "an answer",
		ParentID:   "q-1",
		ParentType: content.TypeQuestion,
	})
	require.NoError(t, err)
	assert.Equal(t, "an-1", node.ID)
	require.Len(t, store.writes, 1)
}

func TestCreate_ParentNotFound(t *testing.T) {
	store := &fakeStore{}
	repo := newTestRepo(t, content.TypeAnswer, store)

	_, err := repo.Create(context.Background(), CreatePayload{
		CreatedBy:  "user-1",
		Content:    "an answer",
		ParentID:   "missing",
		ParentType: content.TypeQuestion,
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCreate_AttachesDiscussion(t *testing.T) {
	store := &fakeStore{writeRecords: []map[string]interface{}{nodeRecord("st-1", 0)}}
	repo := newTestRepo(t, content.TypeStatement, store)

	_, err := repo.Create(context.Background(), CreatePayload{
		CreatedBy:        "user-1",
		Content:          "with a discussion thread",
		AttachDiscussion: true,
	})
	require.NoError(t, err)

	props := store.params[0]["props"].(map[string]interface{})
	assert.NotEmpty(t, props["discussion_id"])
}

func TestUpdate_RejectsUnknownFields(t *testing.T) {
	repo := newTestRepo(t, content.TypeStatement, &fakeStore{})

	_, err := repo.Update(context.Background(), "st-1", map[string]interface{}{
		"inclusion_net": 99,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.True(t, strings.Contains(err.Error(), "inclusion_net"))
}

func TestUpdate_PatchesAllowedFields(t *testing.T) {
	store := &fakeStore{writeRecords: []map[string]interface{}{nodeRecord("st-1", 1)}}
	repo := newTestRepo(t, content.TypeStatement, store)

	node, err := repo.Update(context.Background(), "st-1", map[string]interface{}{
		"content": "revised wording",
	})
	require.NoError(t, err)
	assert.Equal(t, "st-1", node.ID)
	assert.Contains(t, store.writes[0], "SET n += $patch")
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepo(t, content.TypeStatement, &fakeStore{})

	_, err := repo.Update(context.Background(), "missing", map[string]interface{}{"content": "x"})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	store := &fakeStore{writeRecords: []map[string]interface{}{{"id": "st-1"}}}
	repo := newTestRepo(t, content.TypeStatement, store)

	require.NoError(t, repo.Delete(context.Background(), "st-1"))
	assert.Contains(t, store.writes[0], "DETACH DELETE n")
}

func TestDelete_OrphanCleanupUsesExistentialSubquery(t *testing.T) {
	// Pattern expressions are only valid as WHERE predicates in Neo4j 5; the
	// orphan-Word check inside the FOREACH CASE must use EXISTS {} or the
	// server rejects the whole query at parse time.
	store := &fakeStore{writeRecords: []map[string]interface{}{{"id": "st-1"}}}
	repo := newTestRepo(t, content.TypeStatement, store)

	require.NoError(t, repo.Delete(context.Background(), "st-1"))

	query := store.writes[0]
	assert.Contains(t, query, "EXISTS { (w)<-[:TAGGED]-() }")
	assert.NotContains(t, query, "OR (w)<-[:TAGGED]-()")
}

func TestDelete_NotFound(t *testing.T) {
	repo := newTestRepo(t, content.TypeStatement, &fakeStore{})

	err := repo.Delete(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestNewAll_CoversEveryType(t *testing.T) {
	repos := NewAll(&fakeStore{}, zap.NewNop(), nil)

	assert.Len(t, repos, len(content.AllTypes()))
	for _, nodeType := range content.AllTypes() {
		require.Contains(t, repos, nodeType)
		assert.Equal(t, nodeType, repos[nodeType].Type())
	}
}
