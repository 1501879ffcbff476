package search

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	quoteStripper = strings.NewReplacer(`"`, "", "'", "")
	unsafeQuery   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
)

// SanitizeQuery strips quotes and every character other than letters,
// digits, underscore, whitespace and hyphen. The result is safe to hand to
// the full-text engine; an empty result means there is nothing to match.
func SanitizeQuery(q string) string {
	q = quoteStripper.Replace(strings.TrimSpace(q))
	return strings.TrimSpace(unsafeQuery.ReplaceAllString(q, " "))
}

// queryTerms splits sanitized text into the tokens the index can match.
// Tokens made only of separators ("-", "_") are dropped.
func queryTerms(sanitized string) []string {
	var terms []string
	for _, f := range strings.Fields(sanitized) {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			terms = append(terms, f)
		}
	}
	return terms
}

// ftsExpression builds an FTS5 MATCH expression: the terms of one alternative
// are quoted phrases joined by implicit AND, alternatives are OR-ed.
//
//	[["spring-boot", "developer"], ["java"]] -> ("spring-boot" "developer") OR ("java")
func ftsExpression(alternatives [][]string) string {
	groups := make([]string, 0, len(alternatives))
	for _, terms := range alternatives {
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = `"` + t + `"`
		}
		groups = append(groups, "("+strings.Join(quoted, " ")+")")
	}
	return strings.Join(groups, " OR ")
}
