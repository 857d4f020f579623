package service

import (
	"strings"
	"unicode"
)

// minKeywordLen drops short tokens that match almost anything.
const minKeywordLen = 3

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "of": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "in": {}, "on": {}, "at": {}, "from": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "what": {}, "which": {},
	"who": {}, "when": {}, "where": {}, "why": {}, "how": {}, "about": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "me": {}, "my": {}, "us": {}, "our": {}, "your": {}, "their": {}, "them": {},
}

// ExtractKeywords tokenizes a topic or query into the lowercase keyword set
// used for lexical matching: word tokens only, stop-words removed, short
// tokens discarded.
func ExtractKeywords(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minKeywordLen {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
