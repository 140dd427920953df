// Package repo provides postgres access for comment search
package repo

import (
	"context"
	"strconv"
	"strings"

	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const commentColumns = `
	id, external_id, username, user_id, profile_url, comment_text, occurred_at, video_source,
	aggression_label, aggression_level, aggression_color_hex, stance_polarity, harassment_type,
	notes, is_attack, is_duplicate`

// Highlight markers around matched words
const (
	MarkStart = "<mark>"
	MarkStop  = "</mark>"
)

type foundRow struct {
	c     domain.Comment
	total int
}

func scanFound(r store.Row) (foundRow, error) {
	var f foundRow
	c := &f.c
	err := r.Scan(
		&c.ID, &c.ExternalID, &c.Username, &c.UserID, &c.ProfileURL, &c.Text, &c.OccurredAt, &c.VideoSource,
		&c.AggressionLabel, &c.AggressionLevel, &c.AggressionColorHex, &c.StancePolarity, &c.HarassmentType,
		&c.Notes, &c.IsAttack, &c.IsDuplicate,
		&c.Highlight, &f.total,
	)
	return f, err
}

// FindSQL renders the page query for spec; exposed for tests
func FindSQL(spec query.QuerySpec) (string, []any) {
	var (
		args      []any
		highlight = "NULL::text"
		order     = "occurred_at DESC NULLS LAST, id DESC"
	)
	if spec.Text.RankedQuery != nil {
		args = append(args, *spec.Text.RankedQuery)
		highlight = "ts_headline('simple', comment_text, websearch_to_tsquery('simple', $1), " +
			"'StartSel=" + MarkStart + ", StopSel=" + MarkStop + ", HighlightAll=true')"
		order = "ts_rank(tsv, websearch_to_tsquery('simple', $1)) DESC, " + order
	}

	where, wargs := query.Postgres.Where(spec.Predicates, len(args))
	args = append(args, wargs...)
	n := len(args)
	args = append(args, spec.Limit, spec.Offset)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(commentColumns)
	b.WriteString(",\n\t")
	b.WriteString(highlight)
	b.WriteString(", count(*) OVER () AS total\nFROM comments\nWHERE ")
	b.WriteString(where)
	b.WriteString("\nORDER BY ")
	b.WriteString(order)
	b.WriteString("\nLIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2))
	return b.String(), args
}

// Find returns one page of matches with the total match count
func (r *queries) Find(ctx context.Context, spec query.QuerySpec) ([]domain.Comment, int, error) {
	sql, args := FindSQL(spec)
	rows, err := store.Many(ctx, r.q, scanFound, sql, args...)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "search comments")
	}
	out := make([]domain.Comment, len(rows))
	for i, f := range rows {
		out[i] = f.c
	}
	if len(rows) > 0 {
		return out, rows[0].total, nil
	}
	if spec.Offset == 0 {
		return out, 0, nil
	}

	// past the last page the window count is gone; count separately
	where, wargs := query.Postgres.Where(spec.Predicates, 0)
	total, err := store.Scalar[int64](ctx, r.q, "SELECT count(*) FROM comments WHERE "+where, wargs...)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "count comments")
	}
	return out, int(total), nil
}

// Usernames returns distinct usernames starting with prefix
func (r *queries) Usernames(ctx context.Context, prefix string, limit int) ([]string, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (string, error) {
		var s string
		err := row.Scan(&s)
		return s, err
	}, `
		SELECT DISTINCT username
		FROM comments
		WHERE username IS NOT NULL AND lower(username) LIKE lower($1) || '%'
		ORDER BY username
		LIMIT $2
	`, escapeLike(prefix), limit)
	return out, perr.FromPostgres(err, "suggest usernames")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
