package repository

import (
	"strings"

	"github.com/rob-hayward/ProjectZer0-sub005/domain/content"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"this": true, "that": true, "these": true, "those": true, "what": true,
}

// ExtractKeywords derives system keywords from free text: lowercase, strip
// punctuation, drop stop words and short words, count frequency.
func ExtractKeywords(text string) []content.Keyword {
	frequency := map[string]int{}
	var order []string

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}#@$%^&*+=<>/\\|`~")
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		if frequency[word] == 0 {
			order = append(order, word)
		}
		frequency[word]++
	}

	keywords := make([]content.Keyword, 0, len(order))
	for _, word := range order {
		keywords = append(keywords, content.Keyword{
			Word:      word,
			Frequency: frequency[word],
			Source:    content.KeywordSourceSystem,
		})
	}
	return keywords
}

// mergeKeywords combines user-supplied keywords with extracted ones. A
// user-supplied word wins over the system extraction of the same word.
func mergeKeywords(userWords []string, extracted []content.Keyword) []content.Keyword {
	seen := map[string]bool{}
	merged := make([]content.Keyword, 0, len(userWords)+len(extracted))

	for _, word := range userWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		merged = append(merged, content.Keyword{
			Word:      word,
			Frequency: 1,
			Source:    content.KeywordSourceUser,
		})
	}
	for _, kw := range extracted {
		if seen[kw.Word] {
			continue
		}
		seen[kw.Word] = true
		merged = append(merged, kw)
	}
	return merged
}

// keywordParams converts keywords to the map shape the storage queries take.
func keywordParams(keywords []content.Keyword) []map[string]interface{} {
	params := make([]map[string]interface{}, len(keywords))
	for i, kw := range keywords {
		params[i] = map[string]interface{}{
			"word":      kw.Word,
			"frequency": kw.Frequency,
			"source":    string(kw.Source),
		}
	}
	return params
}
