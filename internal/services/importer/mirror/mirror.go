// Package mirror copies imported comments into the clickhouse analytics replica
package mirror

import (
	"context"
	"errors"

	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// Table is the replica table
const Table = "comments"

// CH implements domain.Mirror over a store.Clickhouse
type CH struct {
	ch store.Clickhouse
}

var _ domain.Mirror = (*CH)(nil)

// New returns a clickhouse mirror
func New(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// Comments sends rows in one batch
func (m *CH) Comments(ctx context.Context, rows []domain.Stored) error {
	if m == nil || m.ch == nil {
		return errors.New("mirror: no clickhouse")
	}
	if len(rows) == 0 {
		return nil
	}
	batch := make([][]any, len(rows))
	for i, r := range rows {
		batch[i] = Row(r)
	}
	return m.ch.Insert(ctx, Table, batch)
}

// Row flattens r in replica column order
func Row(r domain.Stored) []any {
	c := r.Comment
	var level *int32
	if c.AggressionLevel != nil {
		v := int32(*c.AggressionLevel)
		level = &v
	}
	return []any{
		r.ID, c.ExternalID, c.Username, c.UserID, c.ProfileURL, c.Text, c.OccurredAt, c.VideoSource,
		c.AggressionLabel, level, c.AggressionColorHex, c.StancePolarity, c.HarassmentType, c.Notes,
		c.IsAttack, c.IsDuplicate, r.WrittenAt.UTC(),
	}
}
