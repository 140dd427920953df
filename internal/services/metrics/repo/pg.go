// Package repo aggregates comments in postgres or in the clickhouse replica
package repo

import (
	"context"

	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
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

func scanLevel(r store.Row) (domain.LevelCount, error) {
	var (
		lc    domain.LevelCount
		count int64
	)
	err := r.Scan(&lc.Level, &count)
	lc.Count = int(count)
	return lc, err
}

// Tally counts matches, attacks and levels
func (r *queries) Tally(ctx context.Context, preds []query.Predicate) (domain.Tally, error) {
	where, args := query.Postgres.Where(preds, 0)

	var total, attacks int64
	err := r.q.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_attack) FROM comments WHERE `+where,
		args...,
	).Scan(&total, &attacks)
	if err != nil {
		return domain.Tally{}, perr.FromPostgres(err, "count comments")
	}

	levels, err := store.Many(ctx, r.q, scanLevel, `
		SELECT aggression_level, count(*)
		FROM comments
		WHERE `+where+` AND aggression_level IS NOT NULL
		GROUP BY aggression_level
		ORDER BY aggression_level
	`, args...)
	if err != nil {
		return domain.Tally{}, perr.FromPostgres(err, "count comments by level")
	}
	return domain.Tally{Total: int(total), Attacks: int(attacks), Levels: levels}, nil
}
