package index

import (
	"sort"
	"strings"
	"unicode"
)

// Tokenize returns the distinct lowercase runs of letters and digits in s.
func Tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[field] = struct{}{}
	}
	return tokens
}

func overlap(query, doc map[string]struct{}) int {
	n := 0
	for tok := range query {
		if _, ok := doc[tok]; ok {
			n++
		}
	}
	return n
}

// rankByKeyword scores every passage by token overlap with the query, drops
// zero scores and returns the best k. Ties keep passage order.
func rankByKeyword(passages []Passage, tokens []map[string]struct{}, query string, k int) []Passage {
	q := Tokenize(query)
	if len(q) == 0 {
		return nil
	}

	var hits []Passage
	for i, p := range passages {
		score := overlap(q, tokens[i])
		if score == 0 {
			continue
		}
		p.Score = float64(score)
		hits = append(hits, p)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
