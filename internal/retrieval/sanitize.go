package retrieval

import "strings"

// queryReserved holds the characters Lucene-style query parsers treat as
// operators. & and | are listed singly; that also covers && and ||.
const queryReserved = `+-=&|><!(){}[]^"~*?:\/`

// SanitizeQuery strips query-syntax operators from a natural-language
// question before it reaches a search engine. Reserved characters become
// spaces and runs of whitespace collapse, so a question containing quotes or
// a ? searches for its words instead of triggering phrase or wildcard
// syntax.
func SanitizeQuery(q string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(queryReserved, r) {
			return ' '
		}
		return r
	}, q)
	return strings.Join(strings.Fields(cleaned), " ")
}
