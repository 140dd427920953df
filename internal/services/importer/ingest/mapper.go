package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/maurolguin1/ig-moderation/internal/core/datefmt"
	"github.com/maurolguin1/ig-moderation/internal/core/sanitize"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// DefaultAffirmative is the leading token that marks a row as an attack ("si", "sí", "s")
const DefaultAffirmative = "s"

// RowMapper maps raw rows onto domain.Comment
// It never fails; bad cells degrade to nil plus a diagnostic
type RowMapper struct {
	aliases     Aliases
	dates       datefmt.Resolver
	affirmative string
}

var _ domain.Mapper = (*RowMapper)(nil)

// Option configures a RowMapper
type Option func(*RowMapper)

// WithAliases replaces the alias table
func WithAliases(a Aliases) Option {
	return func(m *RowMapper) {
		if a != nil {
			m.aliases = a
		}
	}
}

// WithResolver swaps the date strategy
func WithResolver(r datefmt.Resolver) Option {
	return func(m *RowMapper) {
		if r != nil {
			m.dates = r
		}
	}
}

// WithAffirmative sets the token an attack cell has to start with
func WithAffirmative(tok string) Option {
	return func(m *RowMapper) {
		if tok = strings.ToLower(strings.TrimSpace(tok)); tok != "" {
			m.affirmative = tok
		}
	}
}

// NewRowMapper builds a mapper with the default aliases and date heuristic
func NewRowMapper(opts ...Option) *RowMapper {
	m := &RowMapper{
		aliases:     DefaultAliases(),
		dates:       datefmt.New(),
		affirmative: DefaultAffirmative,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Map implements domain.Mapper
func (m *RowMapper) Map(row domain.Row) domain.Mapped {
	get := func(f Field) *string {
		v, _ := m.aliases.Lookup(row, f)
		if v == "" {
			return nil
		}
		return &v
	}

	// sanitize the cell as exported so the log keeps the untouched original
	text, _ := m.aliases.Raw(row, FieldText)
	clean := sanitize.Sanitize(text)

	dateRaw, _ := m.aliases.Lookup(row, FieldDate)
	date := m.dates.Resolve(dateRaw)

	attackRaw, _ := m.aliases.Lookup(row, FieldIsAttack)

	c := domain.Comment{
		ExternalID:         get(FieldExternalID),
		UserID:             get(FieldUserID),
		Username:           get(FieldUsername),
		ProfileURL:         get(FieldProfileURL),
		Text:               strings.TrimSpace(clean.Sanitized),
		OccurredAt:         date.Instant,
		AggressionLabel:    get(FieldAggressionLabel),
		AggressionColorHex: get(FieldAggressionColorHex),
		StancePolarity:     get(FieldStancePolarity),
		HarassmentType:     get(FieldHarassmentType),
		Notes:              get(FieldNotes),
		AggressionLevel:    parseLevel(get(FieldAggressionLevel)),
		IsAttack:           strings.HasPrefix(strings.ToLower(attackRaw), m.affirmative),
	}

	var diags []string
	if c.ExternalID == nil {
		diags = append(diags, domain.NoteMissingID)
	}
	if date.Instant == nil {
		note := date.Note
		if note == "" {
			note = datefmt.NoteMissing
		}
		diags = append(diags, note)
	}
	if clean.Changed {
		diags = append(diags, domain.NoteCharsChanged)
	}

	return domain.Mapped{
		Comment:     c,
		Diagnostics: diags,
		Original:    clean.Original,
		Changed:     clean.Changed,
	}
}

// parseLevel accepts "7", "7.0" and "7,0"; anything else is nil
func parseLevel(v *string) *int {
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(*v, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	n := int(math.Trunc(f))
	return &n
}
