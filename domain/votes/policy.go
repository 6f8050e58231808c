package votes

// LifecycleState is the approval state derived from a node's inclusion net
// votes. Net votes are the sole lifecycle signal, uniform across all content
// types.
type LifecycleState string

const (
	StateApproved LifecycleState = "approved"
	StateRejected LifecycleState = "rejected"
	StatePending  LifecycleState = "pending"
)

// Unlock names the capability a positive inclusion result grants for a
// content type.
type Unlock string

const (
	// UnlockNone grants nothing beyond visibility.
	UnlockNone Unlock = "none"
	// UnlockChildCreation allows dependent child content (e.g. answers under
	// a question) once the parent is approved.
	UnlockChildCreation Unlock = "child_creation"
	// UnlockContentVoting gates content voting on approval.
	UnlockContentVoting Unlock = "content_voting"
)

// Lifecycle maps an inclusion net vote count to the node's lifecycle state.
func Lifecycle(inclusionNet int) LifecycleState {
	switch {
	case inclusionNet > 0:
		return StateApproved
	case inclusionNet < 0:
		return StateRejected
	default:
		return StatePending
	}
}

// ContentVotingAvailable reports whether content voting is currently open
// for a node. Types without content voting never allow it. Types whose
// inclusion unlock is content voting allow it only once approved; all other
// content-voting-capable types allow it unconditionally.
func ContentVotingAvailable(hasContentVoting bool, unlocks Unlock, inclusionNet int) bool {
	if !hasContentVoting {
		return false
	}
	if unlocks == UnlockContentVoting {
		return Lifecycle(inclusionNet) == StateApproved
	}
	return true
}

// ChildCreationAllowed reports whether dependent child content may be created
// under a parent with the given inclusion net votes.
func ChildCreationAllowed(parentInclusionNet int) bool {
	return Lifecycle(parentInclusionNet) == StateApproved
}
