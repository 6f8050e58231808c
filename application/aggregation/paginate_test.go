package aggregation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
)

func makeNodes(n int) []*content.Node {
	nodes := make([]*content.Node, n)
	for i := range nodes {
		nodes[i] = testNode(fmt.Sprintf("n%d", i), content.TypeStatement, "u")
	}
	return nodes
}

func TestPaginate(t *testing.T) {
	nodes := makeNodes(10)

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantIDs   []string
		wantMore  bool
		wantTotal int
	}{
		{"middle page has more", 4, 4, []string{"n4", "n5", "n6", "n7"}, true, 10},
		{"trailing partial page", 8, 4, []string{"n8", "n9"}, false, 10},
		{"exact final page", 6, 4, []string{"n6", "n7", "n8", "n9"}, false, 10},
		{"offset past end", 12, 4, []string{}, false, 10},
		{"zero limit returns remainder", 3, 0, []string{"n3", "n4", "n5", "n6", "n7", "n8", "n9"}, false, 10},
		{"negative offset clamps to zero", -5, 2, []string{"n0", "n1"}, true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(nodes, tt.offset, tt.limit)
			assert.Equal(t, tt.wantIDs, ids(page.Nodes))
			assert.Equal(t, tt.wantMore, page.HasMore)
			assert.Equal(t, tt.wantTotal, page.TotalCount)
		})
	}
}

func TestPaginate_EmptyInput(t *testing.T) {
	page := Paginate(nil, 0, 10)
	assert.Empty(t, page.Nodes)
	assert.Zero(t, page.TotalCount)
	assert.False(t, page.HasMore)
}
