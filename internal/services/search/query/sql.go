package query

import (
	"strconv"
	"strings"
	"unicode"
)

// Dialect picks placeholder style and text search functions
type Dialect int

// Supported dialects
const (
	Postgres Dialect = iota
	ClickHouse
)

// Where compiles preds into a WHERE body and its args.
// Postgres placeholders start after the first n args already bound by the caller.
// No predicates compiles to an always true condition
func (d Dialect) Where(preds []Predicate, n int) (string, []any) {
	b := &sqlb{d: d, n: n}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		if s := b.predicate(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if d == ClickHouse {
			return "1", b.args
		}
		return "TRUE", b.args
	}
	return strings.Join(parts, " AND "), b.args
}

type sqlb struct {
	d    Dialect
	n    int
	args []any
}

func (b *sqlb) arg(v any) string {
	b.args = append(b.args, v)
	if b.d == ClickHouse {
		return "?"
	}
	b.n++
	return "$" + strconv.Itoa(b.n)
}

func (b *sqlb) predicate(p Predicate) string {
	col := string(p.Column)
	switch p.Kind {
	case Eq:
		return col + " = " + b.arg(p.Value)
	case Contains:
		if b.d == ClickHouse {
			return "positionCaseInsensitiveUTF8(" + col + ", " + b.arg(p.Value) + ") > 0"
		}
		return col + " ILIKE " + b.arg("%"+escapeLike(toString(p.Value))+"%")
	case In:
		if b.d == ClickHouse {
			return col + " IN (" + b.arg(p.Values) + ")"
		}
		return col + " = ANY(" + b.arg(p.Values) + ")"
	case Range:
		var parts []string
		if p.Gte != nil {
			parts = append(parts, col+" >= "+b.arg(p.Gte))
		}
		if p.Lte != nil {
			parts = append(parts, col+" <= "+b.arg(p.Lte))
		}
		return strings.Join(parts, " AND ")
	case Text:
		if b.d == ClickHouse {
			return b.chText(col, p.Tokens)
		}
		return b.pgText(p.Tokens)
	}
	return ""
}

// pgText requires the phrases, words and exclusions of the query and, when any
// prefix terms were given, at least one of them. The prefix words themselves
// are left out of the websearch part so they match by prefix only
func (b *sqlb) pgText(t Tokens) string {
	var ands []string
	if rest := withoutPrefixes(t); rest != "" {
		ands = append(ands, "tsv @@ websearch_to_tsquery('simple', "+b.arg(rest)+")")
	}
	var prefixes []string
	for _, term := range PrefixLexemes(t.PrefixTerms) {
		prefixes = append(prefixes, "to_tsquery('simple', "+b.arg(term)+" || ':*')")
	}
	if len(prefixes) > 0 {
		ands = append(ands, "tsv @@ ("+strings.Join(prefixes, " || ")+")")
	}
	switch len(ands) {
	case 0:
		return ""
	case 1:
		return ands[0]
	}
	return "(" + strings.Join(ands, " AND ") + ")"
}

// withoutPrefixes rebuilds the ranked query minus one occurrence of each
// prefix word. Excluded prefix words stay, they still exclude
func withoutPrefixes(t Tokens) string {
	if t.RankedQuery == nil {
		return ""
	}
	pending := map[string]int{}
	for _, p := range t.PrefixTerms {
		if !strings.HasPrefix(p, "-") {
			pending[p]++
		}
	}
	var keep []string
	for _, tok := range tokenRe.FindAllString(*t.RankedQuery, -1) {
		if pending[tok] > 0 {
			pending[tok]--
			continue
		}
		keep = append(keep, tok)
	}
	return strings.Join(keep, " ")
}

// chText has no tsvector to lean on: every word or phrase must occur, exclusions must not
func (b *sqlb) chText(col string, t Tokens) string {
	if t.RankedQuery == nil {
		return ""
	}
	var parts []string
	for _, tok := range tokenRe.FindAllString(*t.RankedQuery, -1) {
		op := "> 0"
		if strings.HasPrefix(tok, "-") {
			op, tok = "= 0", tok[1:]
		}
		tok = strings.Trim(tok, `"`)
		if tok == "" {
			continue
		}
		parts = append(parts, "positionCaseInsensitiveUTF8("+col+", "+b.arg(tok)+") "+op)
	}
	return strings.Join(parts, " AND ")
}

// PrefixLexemes reduces prefix terms to bare lexemes safe inside to_tsquery.
// Excluded terms never widen a match and are dropped
func PrefixLexemes(terms []string) []string {
	var out []string
	for _, t := range terms {
		if strings.HasPrefix(t, "-") {
			continue
		}
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return r
			}
			return -1
		}, t)
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
