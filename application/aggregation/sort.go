package aggregation

import (
	"sort"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
)

// SortNodes orders the merged multi-type list in place by the requested key
// and direction. Ties break by createdAt descending so ordering is
// deterministic across requests.
func SortNodes(nodes []*content.Node, by SortBy, direction SortDirection) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]

		less, equal := compare(a, b, by)
		if equal {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if direction == SortAsc {
			return less
		}
		return !less
	})
}

func compare(a, b *content.Node, by SortBy) (less, equal bool) {
	switch by {
	case SortByCreatedAt:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return false, true
		}
		return a.CreatedAt.Before(b.CreatedAt), false
	case SortByUpdatedAt:
		if a.UpdatedAt.Equal(b.UpdatedAt) {
			return false, true
		}
		return a.UpdatedAt.Before(b.UpdatedAt), false
	case SortByParticipants:
		av, bv := a.Votes.Participants(), b.Votes.Participants()
		return av < bv, av == bv
	case SortByContentNet:
		av, bv := contentNetKey(a), contentNetKey(b)
		return av < bv, av == bv
	default: // SortByInclusionNet
		av, bv := a.Votes.InclusionNet, b.Votes.InclusionNet
		return av < bv, av == bv
	}
}

// contentNetKey returns the content net votes, transparently substituting
// inclusion net for types that have no content-vote concept.
func contentNetKey(node *content.Node) int {
	descriptor, err := content.DescriptorFor(node.Type)
	if err != nil || !descriptor.HasContentVoting {
		return node.Votes.InclusionNet
	}
	return node.Votes.ContentNet
}
