// Package skills holds the canonical skill vocabulary: alias resolution,
// list normalization and skill mining from free text.
package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// singleCharAllowed lists the one-letter surface forms that may be extracted
// from text (the R and C languages). Every other single character is noise.
var singleCharAllowed = map[string]bool{"r": true, "c": true}

// Vocabulary is an immutable alias table plus the scan orders derived from it.
// Build it once with NewVocabulary and share it freely between goroutines.
type Vocabulary struct {
	aliases map[string]string
	phrases []string // multi-word or punctuated forms, longest first
	words   []string // single-word forms, sorted
}

// NewVocabulary builds a vocabulary from a surface-form -> canonical mapping.
// Keys are lowercased and trimmed.
func NewVocabulary(aliases map[string]string) *Vocabulary {
	v := &Vocabulary{aliases: make(map[string]string, len(aliases))}
	for k, canonical := range aliases {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		v.aliases[key] = strings.ToLower(strings.TrimSpace(canonical))
	}

	for key := range v.aliases {
		if isPhrase(key) {
			v.phrases = append(v.phrases, key)
			continue
		}
		if len([]rune(key)) <= 1 && !singleCharAllowed[key] {
			continue
		}
		v.words = append(v.words, key)
	}

	sort.Slice(v.phrases, func(i, j int) bool {
		if len(v.phrases[i]) != len(v.phrases[j]) {
			return len(v.phrases[i]) > len(v.phrases[j])
		}
		return v.phrases[i] < v.phrases[j]
	})
	sort.Strings(v.words)
	return v
}

// Default is the process-wide vocabulary built from the built-in alias table.
var Default = NewVocabulary(defaultAliases)

// Normalize lowercases and trims a token and resolves it through the alias
// table. Unknown skills pass through unchanged.
func (v *Vocabulary) Normalize(token string) string {
	s := strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := v.aliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizeAll normalizes every token, dropping empties and duplicates while
// keeping first-seen order.
func (v *Vocabulary) NormalizeAll(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := v.Normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// ExtractFromText scans free text for every known surface form and returns
// the sorted set of canonical tokens found.
func (v *Vocabulary) ExtractFromText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	lower := strings.ToLower(text)
	found := make(map[string]bool)

	for _, phrase := range v.phrases {
		if strings.Contains(lower, phrase) {
			found[v.aliases[phrase]] = true
		}
	}
	for _, word := range v.words {
		if containsWord(lower, word) {
			found[v.aliases[word]] = true
		}
	}

	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Similarity is the Jaccard index of the two normalized skill sets.
func (v *Vocabulary) Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := v.set(a)
	setB := v.set(b)
	inter := 0
	for s := range setA {
		if setB[s] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Comparison is the overlap between a candidate's skills and a job's skills.
type Comparison struct {
	Matched    []string `json:"matched"`
	Missing    []string `json:"missing"`
	Extra      []string `json:"extra"`
	JobSkills  int      `json:"job_skills"`
	Percentage float64  `json:"match_percentage"`
}

// Compare normalizes both sides and splits them into matched, missing (job
// only) and extra (candidate only) sets, each sorted.
func (v *Vocabulary) Compare(candidate, job []string) Comparison {
	c := v.set(candidate)
	j := v.set(job)

	cmp := Comparison{
		Matched:   []string{},
		Missing:   []string{},
		Extra:     []string{},
		JobSkills: len(j),
	}
	for s := range j {
		if c[s] {
			cmp.Matched = append(cmp.Matched, s)
		} else {
			cmp.Missing = append(cmp.Missing, s)
		}
	}
	for s := range c {
		if !j[s] {
			cmp.Extra = append(cmp.Extra, s)
		}
	}
	sort.Strings(cmp.Matched)
	sort.Strings(cmp.Missing)
	sort.Strings(cmp.Extra)

	if len(j) > 0 {
		pct := float64(len(cmp.Matched)) / float64(len(j)) * 100
		cmp.Percentage = float64(int(pct*10+0.5)) / 10
	}
	return cmp
}

// Known reports whether token is a recognised surface form.
func (v *Vocabulary) Known(token string) bool {
	_, ok := v.aliases[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func (v *Vocabulary) set(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if n := v.Normalize(t); n != "" {
			out[n] = true
		}
	}
	return out
}

// Normalize resolves token through the default vocabulary.
func Normalize(token string) string { return Default.Normalize(token) }

// NormalizeAll normalizes tokens through the default vocabulary.
func NormalizeAll(tokens []string) []string { return Default.NormalizeAll(tokens) }

// ExtractFromText mines skills from text with the default vocabulary.
func ExtractFromText(text string) []string { return Default.ExtractFromText(text) }

// Similarity compares two skill lists with the default vocabulary.
func Similarity(a, b []string) float64 { return Default.Similarity(a, b) }

// Compare splits candidate and job skills with the default vocabulary.
func Compare(candidate, job []string) Comparison { return Default.Compare(candidate, job) }

func isPhrase(key string) bool {
	return strings.ContainsAny(key, " /.")
}

// containsWord reports whether word occurs in text delimited on both sides by
// a non-token rune or the text edge. '+' and '#' count as token runes so that
// "c" does not fire inside "c++" or "c#".
func containsWord(text, word string) bool {
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(word)
		if !tokenRuneBefore(text, start) && !tokenRuneAt(text, end) {
			return true
		}
		from = start + 1
	}
	return false
}

func tokenRuneBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isTokenRune(r)
}

func tokenRuneAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isTokenRune(r)
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '+' || r == '#'
}
