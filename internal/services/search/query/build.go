package query

import (
	"strings"
	"time"
)

// Page size bounds for interactive search
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Kind is the shape of a predicate
type Kind int

// Predicate kinds
const (
	Eq Kind = iota + 1
	Range
	In
	Contains
	Text
)

func (k Kind) String() string {
	switch k {
	case Eq:
		return "eq"
	case Range:
		return "range"
	case In:
		return "in"
	case Contains:
		return "contains"
	case Text:
		return "text"
	}
	return "unknown"
}

// Column is a filterable comment column
type Column string

// Filterable columns
const (
	ColText           Column = "comment_text"
	ColUsername       Column = "username"
	ColLevel          Column = "aggression_level"
	ColAttack         Column = "is_attack"
	ColPolarity       Column = "stance_polarity"
	ColHarassmentType Column = "harassment_type"
	ColOccurredAt     Column = "occurred_at"
	ColVideoSource    Column = "video_source"
)

// Predicate is one condition; all predicates of a spec must hold
type Predicate struct {
	Kind   Kind
	Column Column

	// Value is the operand of Eq and Contains
	Value any

	// Values is the set of In
	Values []string

	// Gte and Lte bound a Range; nil leaves that side open
	Gte any
	Lte any

	// Tokens is the operand of Text
	Tokens Tokens
}

// QuerySpec is a backend neutral search request
type QuerySpec struct {
	Page       int
	Limit      int
	Offset     int
	Text       Tokens
	Predicates []Predicate
}

// ClampLimit applies the interactive page size bounds
func ClampLimit(n int) int {
	switch {
	case n < 1:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// Build describes f with interactive pagination
func Build(f Filter) QuerySpec {
	return build(f, max(1, f.Page), ClampLimit(f.Limit))
}

// BuildAll describes f as a single page of up to limit rows, for exports
func BuildAll(f Filter, limit int) QuerySpec {
	return build(f, 1, max(1, limit))
}

func build(f Filter, page, limit int) QuerySpec {
	spec := QuerySpec{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Text:   Tokenize(f.Q),
	}

	if spec.Text.RankedQuery != nil {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: Text, Column: ColText, Tokens: spec.Text})
	}
	if u := strings.TrimSpace(f.Username); u != "" {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: Contains, Column: ColUsername, Value: u})
	}
	if f.LevelMin != nil || f.LevelMax != nil {
		p := Predicate{Kind: Range, Column: ColLevel}
		if f.LevelMin != nil {
			p.Gte = *f.LevelMin
		}
		if f.LevelMax != nil {
			p.Lte = *f.LevelMax
		}
		spec.Predicates = append(spec.Predicates, p)
	}
	if f.Attack != nil {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: Eq, Column: ColAttack, Value: *f.Attack})
	}
	if vs := nonBlank(f.Polarity); len(vs) > 0 {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: In, Column: ColPolarity, Values: vs})
	}
	if vs := nonBlank(f.HarassmentType); len(vs) > 0 {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: In, Column: ColHarassmentType, Values: vs})
	}
	from, okFrom := day(f.From)
	to, okTo := day(f.To)
	if okFrom || okTo {
		p := Predicate{Kind: Range, Column: ColOccurredAt}
		if okFrom {
			p.Gte = from
		}
		if okTo {
			// the whole last day is included
			p.Lte = to.Add(24*time.Hour - time.Microsecond)
		}
		spec.Predicates = append(spec.Predicates, p)
	}
	if v := strings.TrimSpace(f.VideoSource); v != "" {
		spec.Predicates = append(spec.Predicates, Predicate{Kind: Eq, Column: ColVideoSource, Value: v})
	}
	return spec
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// day parses YYYY-MM-DD; anything else is ignored
func day(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
