package aggregation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

func TestEnrich_Anonymous(t *testing.T) {
	reader := &fakeUserState{}
	e := NewEnricher(reader, time.Second, zap.NewNop())

	node := testNode("n1", content.TypeStatement, "u")
	e.Enrich(context.Background(), "", []*content.Node{node})

	require.NotNil(t, node.User)
	assert.Equal(t, votes.VoteNone, node.User.InclusionVote)
	assert.Equal(t, votes.VoteNone, node.User.ContentVote)
	assert.True(t, node.User.Visible)
	assert.Equal(t, content.VisibilityFromCommunity, node.User.VisibilitySource)
}

func TestEnrich_AttachesVotesAndPreferences(t *testing.T) {
	reader := &fakeUserState{
		voteStates: map[string]ports.UserVotes{
			"n1": {Inclusion: votes.VotePositive, Content: votes.VoteNegative},
		},
		visibilityPrefs: map[string]bool{"n2": false},
	}
	e := NewEnricher(reader, time.Second, zap.NewNop())

	voted := testNode("n1", content.TypeStatement, "u")
	hidden := testNode("n2", content.TypeStatement, "u")
	e.Enrich(context.Background(), "user-1", []*content.Node{voted, hidden})

	require.NotNil(t, voted.User)
	assert.Equal(t, votes.VotePositive, voted.User.InclusionVote)
	assert.Equal(t, votes.VoteNegative, voted.User.ContentVote)
	assert.Equal(t, content.VisibilityFromCommunity, voted.User.VisibilitySource)

	require.NotNil(t, hidden.User)
	assert.False(t, hidden.User.Visible)
	assert.Equal(t, content.VisibilityFromUser, hidden.User.VisibilitySource)
	assert.Equal(t, votes.VoteNone, hidden.User.InclusionVote)
}

func TestEnrich_LookupFailureDegradesToDefaults(t *testing.T) {
	reader := &fakeUserState{
		voteStatesErr: errStoreDown,
		prefsErr:      errStoreDown,
	}
	e := NewEnricher(reader, time.Second, zap.NewNop())

	node := testNode("n1", content.TypeStatement, "u")
	e.Enrich(context.Background(), "user-1", []*content.Node{node})

	require.NotNil(t, node.User, "enrichment failure never drops the node")
	assert.Equal(t, votes.VoteNone, node.User.InclusionVote)
	assert.Equal(t, content.VisibilityFromCommunity, node.User.VisibilitySource)
}

func TestEnrich_EmptyPage(t *testing.T) {
	e := NewEnricher(&fakeUserState{}, time.Second, zap.NewNop())
	e.Enrich(context.Background(), "user-1", nil)
}
