package content

import (
	"fmt"
	"time"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/votes"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

// TypeDescriptor is the static configuration for one content type. The
// generic repository is parameterized by a descriptor instead of subclassing
// per type: the storage label, identifier field, record mapper, update-patch
// builder and capability flags all live here.
type TypeDescriptor struct {
	Type    NodeType
	Label   string // storage node label
	IDField string // property holding the identifier

	HasContentVoting bool
	InclusionUnlocks votes.Unlock
	ContentMeaning   string // display-only, e.g. "agreement"

	// MapRecord converts one storage record into a normalized node.
	MapRecord func(record map[string]interface{}) (*Node, error)
	// UpdatableFields names the properties an update patch may touch.
	UpdatableFields []string
}

// ContentVotingAvailable applies the voting policy to this type.
func (d TypeDescriptor) ContentVotingAvailable(inclusionNet int) bool {
	return votes.ContentVotingAvailable(d.HasContentVoting, d.InclusionUnlocks, inclusionNet)
}

// descriptors is the registry of all content types. Capability assignments:
// questions and quantities gate child creation on approval and carry no
// content voting; statements and evidence unlock content voting on approval;
// answers can only exist under an approved question, so their content voting
// is always open; categories take inclusion votes only.
var descriptors = map[NodeType]TypeDescriptor{
	TypeQuestion: {
		Type:             TypeQuestion,
		Label:            "Question",
		IDField:          "id",
		HasContentVoting: false,
		InclusionUnlocks: votes.UnlockChildCreation,
		ContentMeaning:   "",
		MapRecord:        mapQuestion,
		UpdatableFields:  []string{"content"},
	},
	TypeStatement: {
		Type:             TypeStatement,
		Label:            "Statement",
		IDField:          "id",
		HasContentVoting: true,
		InclusionUnlocks: votes.UnlockContentVoting,
		ContentMeaning:   "agreement",
		MapRecord:        mapStatement,
		UpdatableFields:  []string{"content"},
	},
	TypeAnswer: {
		Type:             TypeAnswer,
		Label:            "Answer",
		IDField:          "id",
		HasContentVoting: true,
		InclusionUnlocks: votes.UnlockNone,
		ContentMeaning:   "quality",
		MapRecord:        mapAnswer,
		UpdatableFields:  []string{"content"},
	},
	TypeQuantity: {
		Type:             TypeQuantity,
		Label:            "Quantity",
		IDField:          "id",
		HasContentVoting: false,
		InclusionUnlocks: votes.UnlockChildCreation,
		ContentMeaning:   "",
		MapRecord:        mapQuantity,
		UpdatableFields:  []string{"content", "unit_category_id", "default_unit_id"},
	},
	TypeEvidence: {
		Type:             TypeEvidence,
		Label:            "Evidence",
		IDField:          "id",
		HasContentVoting: true,
		InclusionUnlocks: votes.UnlockContentVoting,
		ContentMeaning:   "peer review",
		MapRecord:        mapEvidence,
		UpdatableFields:  []string{"content", "url", "evidence_type"},
	},
	TypeCategory: {
		Type:             TypeCategory,
		Label:            "Category",
		IDField:          "id",
		HasContentVoting: false,
		InclusionUnlocks: votes.UnlockNone,
		ContentMeaning:   "",
		MapRecord:        mapCategory,
		UpdatableFields:  []string{"content", "name"},
	},
}

// DescriptorFor returns the descriptor for a content type.
func DescriptorFor(t NodeType) (TypeDescriptor, error) {
	d, ok := descriptors[t]
	if !ok {
		return TypeDescriptor{}, pkgerrors.NewValidationError(fmt.Sprintf("unknown content type: %s", t))
	}
	return d, nil
}

// AllTypes lists every registered content type.
func AllTypes() []NodeType {
	return []NodeType{TypeQuestion, TypeStatement, TypeAnswer, TypeQuantity, TypeEvidence, TypeCategory}
}

// Per-type record mappers. Each builds on the shared base mapping and moves
// its type-specific extras into the metadata bag.

func mapQuestion(record map[string]interface{}) (*Node, error) {
	return baseNode(record, TypeQuestion)
}

func mapStatement(record map[string]interface{}) (*Node, error) {
	return baseNode(record, TypeStatement)
}

func mapAnswer(record map[string]interface{}) (*Node, error) {
	node, err := baseNode(record, TypeAnswer)
	if err != nil {
		return nil, err
	}
	node.ParentID = stringProp(record, "parent_id")
	node.ParentType = TypeQuestion
	return node, nil
}

func mapQuantity(record map[string]interface{}) (*Node, error) {
	node, err := baseNode(record, TypeQuantity)
	if err != nil {
		return nil, err
	}
	if unit := stringProp(record, "unit_category_id"); unit != "" {
		node.Metadata["unit_category_id"] = unit
	}
	if unit := stringProp(record, "default_unit_id"); unit != "" {
		node.Metadata["default_unit_id"] = unit
	}
	if responses, ok := record["response_count"]; ok {
		node.Metadata["response_count"] = intProp(responses)
	}
	return node, nil
}

func mapEvidence(record map[string]interface{}) (*Node, error) {
	node, err := baseNode(record, TypeEvidence)
	if err != nil {
		return nil, err
	}
	node.ParentID = stringProp(record, "parent_id")
	node.ParentType = NodeType(stringProp(record, "parent_type"))
	if url := stringProp(record, "url"); url != "" {
		node.Metadata["url"] = url
	}
	if et := stringProp(record, "evidence_type"); et != "" {
		node.Metadata["evidence_type"] = et
	}
	return node, nil
}

func mapCategory(record map[string]interface{}) (*Node, error) {
	node, err := baseNode(record, TypeCategory)
	if err != nil {
		return nil, err
	}
	if name := stringProp(record, "name"); name != "" {
		node.Metadata["name"] = name
	}
	return node, nil
}

// baseNode maps the fields shared by every content type.
func baseNode(record map[string]interface{}, t NodeType) (*Node, error) {
	id := stringProp(record, "id")
	if id == "" {
		return nil, pkgerrors.NewValidationError("record is missing an identifier")
	}

	node := &Node{
		ID:           id,
		Type:         t,
		CreatedBy:    stringProp(record, "created_by"),
		Content:      stringProp(record, "content"),
		Visible:      boolProp(record, "visible", true),
		CreatedAt:    timeProp(record, "created_at"),
		UpdatedAt:    timeProp(record, "updated_at"),
		DiscussionID: stringProp(record, "discussion_id"),
		Keywords:     keywordsProp(record),
		Categories:   categoriesProp(record),
		Metadata:     map[string]interface{}{},
		Votes: votes.Tally{
			InclusionPositive: intProp(record["inclusion_positive"]),
			InclusionNegative: intProp(record["inclusion_negative"]),
			InclusionNet:      intProp(record["inclusion_net"]),
			ContentPositive:   intProp(record["content_positive"]),
			ContentNegative:   intProp(record["content_negative"]),
			ContentNet:        intProp(record["content_net"]),
		},
	}

	return node, nil
}

func stringProp(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func boolProp(record map[string]interface{}, key string, fallback bool) bool {
	if v, ok := record[key].(bool); ok {
		return v
	}
	return fallback
}

func intProp(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func timeProp(record map[string]interface{}, key string) time.Time {
	switch v := record[key].(type) {
	case time.Time:
		return v
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func keywordsProp(record map[string]interface{}) []Keyword {
	raw, ok := record["keywords"].([]interface{})
	if !ok {
		return nil
	}
	keywords := make([]Keyword, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		word := stringProp(m, "word")
		if word == "" {
			continue
		}
		source := KeywordSource(stringProp(m, "source"))
		if source == "" {
			source = KeywordSourceSystem
		}
		freq := intProp(m["frequency"])
		if freq <= 0 {
			freq = 1
		}
		keywords = append(keywords, Keyword{Word: word, Frequency: freq, Source: source})
	}
	return keywords
}

func categoriesProp(record map[string]interface{}) []CategoryRef {
	raw, ok := record["categories"].([]interface{})
	if !ok {
		return nil
	}
	categories := make([]CategoryRef, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id := stringProp(m, "id")
		if id == "" {
			continue
		}
		categories = append(categories, CategoryRef{
			ID:           id,
			Name:         stringProp(m, "name"),
			InclusionNet: intProp(m["inclusion_net"]),
		})
	}
	return categories
}
