package query

import (
	"regexp"
	"strings"
)

// Tokens is a free text query split for ranking and prefix matching
type Tokens struct {
	// RankedQuery is websearch syntax: "phrases", -exclusions and plain words; nil when blank
	RankedQuery *string `json:"ranked_query"`

	// PrefixTerms are words that were written with a trailing *
	PrefixTerms []string `json:"prefix_terms"`
}

var tokenRe = regexp.MustCompile(`"[^"]+"|-\S+|\S+`)

// Tokenize splits q left to right into phrases, exclusions and words.
// A word ending in * that is not a phrase becomes a prefix term and still ranks, unmarked.
// A bare * is dropped
func Tokenize(q string) Tokens {
	out := Tokens{PrefixTerms: []string{}}
	toks := tokenRe.FindAllString(q, -1)
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if strings.HasSuffix(t, "*") && !strings.HasPrefix(t, `"`) {
			t = strings.TrimSuffix(t, "*")
			if t == "" {
				continue
			}
			out.PrefixTerms = append(out.PrefixTerms, t)
		}
		parts = append(parts, t)
	}
	if ranked := strings.TrimSpace(strings.Join(parts, " ")); ranked != "" {
		out.RankedQuery = &ranked
	}
	return out
}
