package votes

// Tally holds the vote counters carried by every content node. The counters
// are owned by the storage layer and mutated only through its atomic vote
// primitive; this struct is a read model, never a place to do arithmetic
// that gets written back.
type Tally struct {
	InclusionPositive int `json:"inclusion_positive"`
	InclusionNegative int `json:"inclusion_negative"`
	InclusionNet      int `json:"inclusion_net"`
	ContentPositive   int `json:"content_positive"`
	ContentNegative   int `json:"content_negative"`
	ContentNet        int `json:"content_net"`
}

// Valid reports whether the tally satisfies its invariants: all counts
// non-negative and each net equal to positive minus negative.
func (t Tally) Valid() bool {
	if t.InclusionPositive < 0 || t.InclusionNegative < 0 ||
		t.ContentPositive < 0 || t.ContentNegative < 0 {
		return false
	}
	return t.InclusionNet == t.InclusionPositive-t.InclusionNegative &&
		t.ContentNet == t.ContentPositive-t.ContentNegative
}

// Participants returns the total number of votes cast across both kinds.
// Used as a sort key for "most participated" ordering.
func (t Tally) Participants() int {
	return t.InclusionPositive + t.InclusionNegative + t.ContentPositive + t.ContentNegative
}

// VoteKind distinguishes the two community vote dimensions.
type VoteKind string

const (
	// KindInclusion votes on whether the content belongs in the graph at all.
	KindInclusion VoteKind = "inclusion"
	// KindContent votes on agreement with the content's substance.
	KindContent VoteKind = "content"
)

// VoteState is a single user's recorded vote on one node and kind.
type VoteState string

const (
	VotePositive VoteState = "positive"
	VoteNegative VoteState = "negative"
	VoteNone     VoteState = "none"
)
