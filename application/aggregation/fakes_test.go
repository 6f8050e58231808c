package aggregation

import (
	"context"
	"errors"

	"github.com/rob-hayward/ProjectZer0-sub005/application/ports"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
)

// fakeSource serves canned nodes for one content type.
type fakeSource struct {
	nodeType content.NodeType
	nodes    []*content.Node
	err      error
	calls    int
}

func (s *fakeSource) Type() content.NodeType { return s.nodeType }

func (s *fakeSource) FindAll(ctx context.Context, filter ports.NodeFilter) ([]*content.Node, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.nodes, nil
}

// fakeUserState implements both the enrichment reader and the interaction
// reader.
type fakeUserState struct {
	voteStates      map[string]ports.UserVotes
	visibilityPrefs map[string]bool
	votedIDs        map[string]bool
	interactedIDs   map[string]bool

	voteStatesErr error
	prefsErr      error
	votedErr      error
}

func (f *fakeUserState) VoteStates(ctx context.Context, userID string, nodeIDs []string) (map[string]ports.UserVotes, error) {
	if f.voteStatesErr != nil {
		return nil, f.voteStatesErr
	}
	return f.voteStates, nil
}

func (f *fakeUserState) VisibilityPrefs(ctx context.Context, userID string, nodeIDs []string) (map[string]bool, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	return f.visibilityPrefs, nil
}

func (f *fakeUserState) VotedNodeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if f.votedErr != nil {
		return nil, f.votedErr
	}
	return f.votedIDs, nil
}

func (f *fakeUserState) InteractedNodeIDs(ctx context.Context, userID string) (map[string]bool, error) {
	return f.interactedIDs, nil
}

var errStoreDown = errors.New("store unavailable")
