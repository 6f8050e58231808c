package votes

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		net      int
		expected LifecycleState
	}{
		{"positive net approves", 1, StateApproved},
		{"large positive net approves", 42, StateApproved},
		{"zero net stays pending", 0, StatePending},
		{"negative net rejects", -1, StateRejected},
		{"large negative net rejects", -10, StateRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lifecycle(tt.net))
		})
	}
}

func TestContentVotingAvailable(t *testing.T) {
	tests := []struct {
		name             string
		hasContentVoting bool
		unlocks          Unlock
		inclusionNet     int
		expected         bool
	}{
		{"type without content voting never allows it", false, UnlockChildCreation, 100, false},
		{"approval-gated type closed while pending", true, UnlockContentVoting, 0, false},
		{"approval-gated type closed when rejected", true, UnlockContentVoting, -3, false},
		{"approval-gated type opens once approved", true, UnlockContentVoting, 1, true},
		{"always-on type open while pending", true, UnlockNone, 0, true},
		{"always-on type open even when rejected", true, UnlockNone, -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentVotingAvailable(tt.hasContentVoting, tt.unlocks, tt.inclusionNet)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestChildCreationAllowed(t *testing.T) {
	assert.True(t, ChildCreationAllowed(1))
	assert.False(t, ChildCreationAllowed(0))
	assert.False(t, ChildCreationAllowed(-1))
}

func TestTally_Valid(t *testing.T) {
	valid := Tally{
		InclusionPositive: 5, InclusionNegative: 2, InclusionNet: 3,
		ContentPositive: 1, ContentNegative: 4, ContentNet: -3,
	}
	assert.True(t, valid.Valid())

	badNet := valid
	badNet.InclusionNet = 4
	assert.False(t, badNet.Valid())

	negative := valid
	negative.ContentPositive = -1
	assert.False(t, negative.Valid())
}

func TestTally_ValidOverRandomCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		tally := Tally{
			InclusionPositive: rng.Intn(100),
			InclusionNegative: rng.Intn(100),
			ContentPositive:   rng.Intn(100),
			ContentNegative:   rng.Intn(100),
		}
		tally.InclusionNet = tally.InclusionPositive - tally.InclusionNegative
		tally.ContentNet = tally.ContentPositive - tally.ContentNegative
		assert.True(t, tally.Valid())

		tally.ContentNet++
		assert.False(t, tally.Valid())
	}
}

func TestTally_Participants(t *testing.T) {
	tally := Tally{
		InclusionPositive: 3, InclusionNegative: 1, InclusionNet: 2,
		ContentPositive: 2, ContentNegative: 2, ContentNet: 0,
	}
	assert.Equal(t, 8, tally.Participants())
}
