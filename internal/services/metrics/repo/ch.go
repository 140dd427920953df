package repo

import (
	"context"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// CH aggregates the clickhouse replica; FINAL folds rows re-sent by later imports
type CH struct {
	ch store.Clickhouse
}

var _ domain.StorageRepo = (*CH)(nil)

// NewCH returns a clickhouse backed repo
func NewCH(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// TallySQL renders both aggregate queries for preds; exposed for tests
func TallySQL(preds []query.Predicate) (totals, levels string, args []any) {
	where, args := query.ClickHouse.Where(preds, 0)
	totals = `SELECT count(), countIf(is_attack) FROM comments FINAL WHERE ` + where
	levels = `SELECT toInt64(assumeNotNull(aggression_level)) AS level, count()
		FROM comments FINAL
		WHERE ` + where + ` AND aggression_level IS NOT NULL
		GROUP BY level
		ORDER BY level`
	return totals, levels, args
}

// Tally counts matches, attacks and levels
func (r *CH) Tally(ctx context.Context, preds []query.Predicate) (domain.Tally, error) {
	totalsSQL, levelsSQL, args := TallySQL(preds)

	var out domain.Tally
	rows, err := r.ch.Query(ctx, totalsSQL, args...)
	if err != nil {
		return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch totals")
	}
	if rows.Next() {
		var total, attacks uint64
		if err := rows.Scan(&total, &attacks); err != nil {
			rows.Close()
			return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch scan totals")
		}
		out.Total, out.Attacks = int(total), int(attacks)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch totals")
	}

	rows, err = r.ch.Query(ctx, levelsSQL, args...)
	if err != nil {
		return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch levels")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			level int64
			count uint64
		)
		if err := rows.Scan(&level, &count); err != nil {
			return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch scan levels")
		}
		out.Levels = append(out.Levels, domain.LevelCount{Level: int(level), Count: int(count)})
	}
	if err := rows.Err(); err != nil {
		return domain.Tally{}, perr.Wrap(err, perr.ErrorCodeDB, "ch levels")
	}
	return out, nil
}
