package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

func ids(nodes []*content.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestSortNodes_InclusionNet(t *testing.T) {
	nodes := []*content.Node{
		testNode("low", content.TypeStatement, "u", withTally(votes.Tally{InclusionPositive: 1, InclusionNet: 1})),
		testNode("high", content.TypeQuestion, "u", withTally(votes.Tally{InclusionPositive: 9, InclusionNet: 9})),
		testNode("mid", content.TypeAnswer, "u", withTally(votes.Tally{InclusionPositive: 5, InclusionNet: 5})),
	}

	SortNodes(nodes, SortByInclusionNet, SortDesc)
	assert.Equal(t, []string{"high", "mid", "low"}, ids(nodes))

	SortNodes(nodes, SortByInclusionNet, SortAsc)
	assert.Equal(t, []string{"low", "mid", "high"}, ids(nodes))
}

func TestSortNodes_ContentNetFallback(t *testing.T) {
	// Questions have no content votes, so their inclusion net substitutes as
	// the content sort key.
	question := testNode("question", content.TypeQuestion, "u",
		withTally(votes.Tally{InclusionPositive: 7, InclusionNet: 7}))
	statement := testNode("statement", content.TypeStatement, "u",
		withTally(votes.Tally{InclusionPositive: 1, InclusionNet: 1, ContentPositive: 3, ContentNet: 3}))

	nodes := []*content.Node{statement, question}
	SortNodes(nodes, SortByContentNet, SortDesc)

	assert.Equal(t, []string{"question", "statement"}, ids(nodes))
}

func TestSortNodes_TieBreaksByCreatedAtDesc(t *testing.T) {
	older := testNode("older", content.TypeStatement, "u",
		withTally(votes.Tally{InclusionPositive: 2, InclusionNet: 2}),
		withCreated(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	newer := testNode("newer", content.TypeStatement, "u",
		withTally(votes.Tally{InclusionPositive: 2, InclusionNet: 2}),
		withCreated(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	for _, direction := range []SortDirection{SortAsc, SortDesc} {
		nodes := []*content.Node{older, newer}
		SortNodes(nodes, SortByInclusionNet, direction)
		require.Equal(t, []string{"newer", "older"}, ids(nodes),
			"tie-break is createdAt desc regardless of direction %s", direction)
	}
}

func TestSortNodes_Participants(t *testing.T) {
	quiet := testNode("quiet", content.TypeStatement, "u",
		withTally(votes.Tally{InclusionPositive: 1, InclusionNet: 1}))
	busy := testNode("busy", content.TypeStatement, "u",
		withTally(votes.Tally{InclusionPositive: 2, InclusionNegative: 2, ContentPositive: 3, ContentNegative: 1, ContentNet: 2}))

	nodes := []*content.Node{quiet, busy}
	SortNodes(nodes, SortByParticipants, SortDesc)
	assert.Equal(t, []string{"busy", "quiet"}, ids(nodes))
}

func TestSortNodes_Chronological(t *testing.T) {
	first := testNode("first", content.TypeStatement, "u",
		withCreated(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	second := testNode("second", content.TypeQuestion, "u",
		withCreated(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))

	nodes := []*content.Node{first, second}
	SortNodes(nodes, SortByCreatedAt, SortAsc)
	assert.Equal(t, []string{"first", "second"}, ids(nodes))

	SortNodes(nodes, SortByCreatedAt, SortDesc)
	assert.Equal(t, []string{"second", "first"}, ids(nodes))
}
