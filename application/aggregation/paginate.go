package aggregation

import "github.com/rob-hayward/ProjectZer0-sub005/domain/content"

// Page is one slice of the globally sorted, filtered multi-type list.
type Page struct {
	Nodes      []*content.Node
	TotalCount int
	HasMore    bool
}

// Paginate slices the sorted list by offset and limit. Pagination always
// runs after the global merge and sort; slicing per type first would yield a
// locally-correct but globally-wrong page. A non-positive limit returns
// everything from the offset.
func Paginate(nodes []*content.Node, offset, limit int) Page {
	total := len(nodes)

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Page{Nodes: []*content.Node{}, TotalCount: total, HasMore: false}
	}

	if limit <= 0 {
		return Page{Nodes: nodes[offset:], TotalCount: total, HasMore: false}
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return Page{
		Nodes:      nodes[offset:end],
		TotalCount: total,
		HasMore:    offset+limit < total,
	}
}
