// Package excerpt picks sentences from a document that mention words of a question.
//
// The relevance test is plain keyword containment: every whitespace-separated
// token of the question counts, stopwords included, and a sentence matches if
// its lowercase form contains any token as a substring.
package excerpt

import (
	"regexp"
	"strings"
)

// DefaultLimit is the number of sentences Find returns when limit <= 0.
const DefaultLimit = 5

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
	tokenSeparator  = regexp.MustCompile(`\s+`)
)

// Sentences splits text on sentence-ending punctuation. Trailing text without
// terminal punctuation is not a sentence and is dropped.
func Sentences(text string) []string {
	matches := sentencePattern.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		sentences = append(sentences, strings.TrimSpace(m))
	}
	return sentences
}

// Tokens lowercases the question and splits it on whitespace runs. Leading or
// trailing whitespace yields an empty token, which matches every sentence.
func Tokens(question string) []string {
	return tokenSeparator.Split(strings.ToLower(question), -1)
}

// Find returns up to limit sentences of text, in document order, that contain
// any token of question.
func Find(text, question string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	tokens := Tokens(question)

	var found []string
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		lower := strings.ToLower(sentence)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				found = append(found, strings.TrimSpace(sentence))
				break
			}
		}
		if len(found) == limit {
			break
		}
	}
	return found
}
