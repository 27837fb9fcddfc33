package rag

import (
	"strings"
	"unicode"
)

// scopeThreshold is the share of question words that must appear in the selection.
const scopeThreshold = 0.1

var scopeStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
	"what": {}, "how": {}, "why": {}, "does": {}, "do": {}, "this": {}, "that": {},
}

// ScopeReport describes how closely a question relates to the selected text.
type ScopeReport struct {
	Appropriate  bool     `json:"is_scoped_appropriately"`
	OverlapRatio float64  `json:"overlap_ratio"`
	Suggestions  []string `json:"suggestions"`
}

// CheckScope measures the share of distinct question words that also occur in
// the selected text. Questions with no content words have a ratio of 0.
func CheckScope(selectedText, query string) ScopeReport {
	queryWords := wordSet(filterStopwords(tokenize(query)))
	textWords := wordSet(tokenize(selectedText))

	var overlap int
	for w := range queryWords {
		if _, ok := textWords[w]; ok {
			overlap++
		}
	}

	var ratio float64
	if len(queryWords) > 0 {
		ratio = float64(overlap) / float64(len(queryWords))
	}

	report := ScopeReport{
		Appropriate:  ratio > scopeThreshold,
		OverlapRatio: ratio,
		Suggestions:  []string{},
	}
	if !report.Appropriate {
		report.Suggestions = []string{
			"Consider rephrasing your question to be more specific to the selected text",
			"Your question might be too general for the selected text",
		}
	}
	return report
}

func wordSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := scopeStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
