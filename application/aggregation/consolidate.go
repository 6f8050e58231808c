package aggregation

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
)

// Consolidator computes relationship edges over the paginated node set.
// It never looks beyond the page: edge discovery is pairwise, so cost is
// bounded by page size rather than corpus size.
type Consolidator struct {
	minCategoryOverlap int
	logger             *zap.Logger
}

// NewConsolidator creates a consolidator. minCategoryOverlap below 1 is
// raised to the default of 1.
func NewConsolidator(minCategoryOverlap int, logger *zap.Logger) *Consolidator {
	if minCategoryOverlap < 1 {
		minCategoryOverlap = 1
	}
	return &Consolidator{
		minCategoryOverlap: minCategoryOverlap,
		logger:             logger,
	}
}

// ConsolidationResult carries the deduplicated edges plus the raw match
// count before consolidation, used for the consolidation-ratio metric.
type ConsolidationResult struct {
	Edges      []content.Edge
	RawMatches int
}

// Consolidate emits at most one edge per (source, target, type) triple.
// Multiple raw matches between a pair, such as three shared keywords,
// collapse into a single weighted edge.
func (c *Consolidator) Consolidate(nodes []*content.Node, wants func(content.EdgeType) bool) ConsolidationResult {
	result := ConsolidationResult{Edges: []content.Edge{}}
	if len(nodes) < 2 && !wants(content.EdgeParent) && !wants(content.EdgeCategorized) {
		return result
	}

	inPage := make(map[string]*content.Node, len(nodes))
	for _, node := range nodes {
		inPage[node.ID] = node
	}

	if wants(content.EdgeSharedKeyword) {
		c.sharedKeywordEdges(nodes, &result)
	}
	if wants(content.EdgeSharedCategory) {
		c.sharedCategoryEdges(nodes, &result)
	}
	if wants(content.EdgeParent) {
		c.parentEdges(nodes, inPage, &result)
	}
	if wants(content.EdgeCategorized) {
		c.categorizationEdges(nodes, inPage, &result)
	}

	return result
}

// sharedKeywordEdges emits one edge per unordered pair of nodes with common
// keywords, weighted by how many words they share.
func (c *Consolidator) sharedKeywordEdges(nodes []*content.Node, result *ConsolidationResult) {
	for i := 0; i < len(nodes); i++ {
		words := make(map[string]bool, len(nodes[i].Keywords))
		for _, kw := range nodes[i].Keywords {
			words[kw.Word] = true
		}
		if len(words) == 0 {
			continue
		}

		for j := i + 1; j < len(nodes); j++ {
			var shared []string
			for _, kw := range nodes[j].Keywords {
				if words[kw.Word] {
					shared = append(shared, kw.Word)
				}
			}
			if len(shared) == 0 {
				continue
			}
			sort.Strings(shared)

			result.RawMatches += len(shared)
			source, target := orderPair(nodes[i].ID, nodes[j].ID)
			result.Edges = append(result.Edges, content.Edge{
				ID:     edgeID(content.EdgeSharedKeyword, source, target),
				Source: source,
				Target: target,
				Type:   content.EdgeSharedKeyword,
				Weight: float64(len(shared)),
				Metadata: map[string]interface{}{
					"shared_words": shared,
				},
			})
		}
	}
}

// sharedCategoryEdges emits one edge per unordered pair sharing approved
// categories. Only categories with positive inclusion net votes count toward
// the overlap.
func (c *Consolidator) sharedCategoryEdges(nodes []*content.Node, result *ConsolidationResult) {
	for i := 0; i < len(nodes); i++ {
		approved := make(map[string]bool, len(nodes[i].Categories))
		for _, ref := range nodes[i].Categories {
			if votes.Lifecycle(ref.InclusionNet) == votes.StateApproved {
				approved[ref.ID] = true
			}
		}
		if len(approved) == 0 {
			continue
		}

		for j := i + 1; j < len(nodes); j++ {
			var shared []string
			for _, ref := range nodes[j].Categories {
				if approved[ref.ID] && votes.Lifecycle(ref.InclusionNet) == votes.StateApproved {
					shared = append(shared, ref.ID)
				}
			}
			if len(shared) < c.minCategoryOverlap {
				continue
			}
			sort.Strings(shared)

			result.RawMatches += len(shared)
			source, target := orderPair(nodes[i].ID, nodes[j].ID)
			result.Edges = append(result.Edges, content.Edge{
				ID:     edgeID(content.EdgeSharedCategory, source, target),
				Source: source,
				Target: target,
				Type:   content.EdgeSharedCategory,
				Weight: float64(len(shared)),
				Metadata: map[string]interface{}{
					"shared_categories": shared,
				},
			})
		}
	}
}

// parentEdges passes through structural links already present on the nodes,
// restricted to targets inside the page.
func (c *Consolidator) parentEdges(nodes []*content.Node, inPage map[string]*content.Node, result *ConsolidationResult) {
	for _, node := range nodes {
		if node.ParentID == "" {
			continue
		}
		if _, ok := inPage[node.ParentID]; !ok {
			continue
		}
		result.RawMatches++
		result.Edges = append(result.Edges, content.Edge{
			ID:     edgeID(content.EdgeParent, node.ID, node.ParentID),
			Source: node.ID,
			Target: node.ParentID,
			Type:   content.EdgeParent,
			Weight: 1,
			Metadata: map[string]interface{}{
				"source_type": string(node.Type),
				"target_type": string(node.ParentType),
			},
		})
	}
}

// categorizationEdges emits node-to-category membership edges when the
// category nodes themselves are part of the page.
func (c *Consolidator) categorizationEdges(nodes []*content.Node, inPage map[string]*content.Node, result *ConsolidationResult) {
	for _, node := range nodes {
		if node.Type == content.TypeCategory {
			continue
		}
		for _, ref := range node.Categories {
			target, ok := inPage[ref.ID]
			if !ok || target.Type != content.TypeCategory {
				continue
			}
			result.RawMatches++
			result.Edges = append(result.Edges, content.Edge{
				ID:     edgeID(content.EdgeCategorized, node.ID, ref.ID),
				Source: node.ID,
				Target: ref.ID,
				Type:   content.EdgeCategorized,
				Weight: 1,
				Metadata: map[string]interface{}{
					"category_name": ref.Name,
				},
			})
		}
	}
}

// orderPair orders an undirected pair so repeated computation yields the
// same (source, target) and therefore the same edge id.
func orderPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// edgeID derives a stable identifier from the (type, source, target) triple.
func edgeID(edgeType content.EdgeType, source, target string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s", edgeType, source, target)))
	return hex.EncodeToString(sum[:])[:20]
}
