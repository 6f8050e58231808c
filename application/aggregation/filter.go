package aggregation

import (
	"strings"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
)

// Filters holds the resolved filter dimensions for one aggregation call.
// Dimensions compose by intersection; each applies its own include/exclude
// and any/all logic internally.
type Filters struct {
	Keywords        []string
	IncludeKeywords bool
	KeywordMode     MatchMode

	Categories        []string
	IncludeCategories bool
	CategoryMode      MatchMode

	UserID     string
	UserMode   UserFilterMode
	Voted      map[string]bool
	Interacted map[string]bool
}

// FiltersFromRequest builds the filter set from a validated request. The
// voted/interacted id-sets are supplied by the caller since they require a
// storage lookup.
func FiltersFromRequest(req Request, voted, interacted map[string]bool) Filters {
	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return Filters{
		Keywords:          keywords,
		IncludeKeywords:   req.IncludeKeywordsFilter,
		KeywordMode:       req.KeywordMode,
		Categories:        req.Categories,
		IncludeCategories: req.IncludeCategoriesFilter,
		CategoryMode:      req.CategoryMode,
		UserID:            req.UserID,
		UserMode:          req.UserFilterMode,
		Voted:             voted,
		Interacted:        interacted,
	}
}

// Apply runs every filter dimension over the nodes and returns the
// intersection.
func (f Filters) Apply(nodes []*content.Node) []*content.Node {
	filtered := make([]*content.Node, 0, len(nodes))
	for _, node := range nodes {
		if f.matches(node) {
			filtered = append(filtered, node)
		}
	}
	return filtered
}

func (f Filters) matches(node *content.Node) bool {
	if !f.matchesKeywords(node) {
		return false
	}
	if !f.matchesCategories(node) {
		return false
	}
	return f.matchesUser(node)
}

func (f Filters) matchesKeywords(node *content.Node) bool {
	if len(f.Keywords) == 0 {
		return true
	}
	matched := matchTerms(f.Keywords, f.KeywordMode, node.HasKeyword)
	return matched == f.IncludeKeywords
}

func (f Filters) matchesCategories(node *content.Node) bool {
	if len(f.Categories) == 0 {
		return true
	}
	matched := matchTerms(f.Categories, f.CategoryMode, node.HasCategory)
	return matched == f.IncludeCategories
}

func (f Filters) matchesUser(node *content.Node) bool {
	switch f.UserMode {
	case UserFilterCreated:
		return node.CreatedBy == f.UserID
	case UserFilterVoted:
		return f.Voted[node.ID]
	case UserFilterInteracted:
		return f.Interacted[node.ID]
	default:
		return true
	}
}

// matchTerms evaluates any/all semantics for one term list against a
// membership predicate.
func matchTerms(terms []string, mode MatchMode, has func(string) bool) bool {
	if mode == MatchAll {
		for _, term := range terms {
			if !has(term) {
				return false
			}
		}
		return true
	}
	for _, term := range terms {
		if has(term) {
			return true
		}
	}
	return false
}
