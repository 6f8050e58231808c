package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

func TestVoteStates_GroupsByNodeAndKind(t *testing.T) {
	store := &fakeStore{readRecords: []map[string]interface{}{
		{"id": "n1", "kind": "inclusion", "positive": true},
		{"id": "n1", "kind": "content", "positive": false},
		{"id": "n2", "kind": "inclusion", "positive": false},
	}}
	s := NewUserStateStore(store, zap.NewNop())

	states, err := s.VoteStates(context.Background(), "user-1", []string{"n1", "n2"})
	require.NoError(t, err)

	require.Contains(t, states, "n1")
	assert.Equal(t, votes.VotePositive, states["n1"].Inclusion)
	assert.Equal(t, votes.VoteNegative, states["n1"].Content)

	require.Contains(t, states, "n2")
	assert.Equal(t, votes.VoteNegative, states["n2"].Inclusion)
	assert.Empty(t, states["n2"].Content)
}

func TestVoteStates_EmptyInputsShortCircuit(t *testing.T) {
	store := &fakeStore{}
	s := NewUserStateStore(store, zap.NewNop())

	states, err := s.VoteStates(context.Background(), "", []string{"n1"})
	require.NoError(t, err)
	assert.Empty(t, states)

	states, err = s.VoteStates(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, states)

	assert.Empty(t, store.reads, "no query runs for empty inputs")
}

func TestVisibilityPrefs(t *testing.T) {
	store := &fakeStore{readRecords: []map[string]interface{}{
		{"id": "n1", "visible": false},
	}}
	s := NewUserStateStore(store, zap.NewNop())

	prefs, err := s.VisibilityPrefs(context.Background(), "user-1", []string{"n1", "n2"})
	require.NoError(t, err)

	visible, ok := prefs["n1"]
	require.True(t, ok)
	assert.False(t, visible)
	assert.NotContains(t, prefs, "n2", "nodes without an override stay absent")
}

func TestSetVisibilityPref(t *testing.T) {
	store := &fakeStore{writeRecords: []map[string]interface{}{{"id": "n1"}}}
	s := NewUserStateStore(store, zap.NewNop())

	require.NoError(t, s.SetVisibilityPref(context.Background(), "user-1", "n1", false))
	assert.Contains(t, store.writes[0], "MERGE (u)-[p:VISIBILITY_PREF]->(n)")
	assert.Equal(t, false, store.params[0]["visible"])
}

func TestSetVisibilityPref_NodeNotFound(t *testing.T) {
	s := NewUserStateStore(&fakeStore{}, zap.NewNop())

	err := s.SetVisibilityPref(context.Background(), "user-1", "missing", true)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestVotedAndInteractedNodeIDs(t *testing.T) {
	store := &fakeStore{readRecords: []map[string]interface{}{
		{"id": "n1"},
		{"id": "n2"},
	}}
	s := NewUserStateStore(store, zap.NewNop())

	voted, err := s.VotedNodeIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, voted["n1"])
	assert.True(t, voted["n2"])
	assert.Contains(t, store.reads[0], "[:VOTED_ON]")

	interacted, err := s.InteractedNodeIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, interacted, 2)
	assert.Contains(t, store.reads[1], "VOTED_ON|COMMENTED_ON")
}

func TestRelatedNodeIDs_StoreError(t *testing.T) {
	store := &fakeStore{readErr: assert.AnError}
	s := NewUserStateStore(store, zap.NewNop())

	_, err := s.VotedNodeIDs(context.Background(), "user-1")
	assert.Error(t, err)
}
