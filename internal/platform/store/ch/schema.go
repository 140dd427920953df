package ch

import (
	"context"
	"fmt"
)

// Execer is the part of a client Migrate needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// schema holds the analytics replica of comments. Rows are re-sent whole on every
// write and the newest updated_at wins at merge time, so readers use FINAL
var schema = []string{
	`CREATE TABLE IF NOT EXISTS comments (
		id                   Int64,
		external_id          Nullable(String),
		username             Nullable(String),
		user_id              Nullable(String),
		profile_url          Nullable(String),
		comment_text         String,
		occurred_at          Nullable(DateTime64(3, 'UTC')),
		video_source         Nullable(String),
		aggression_label     Nullable(String),
		aggression_level     Nullable(Int32),
		aggression_color_hex Nullable(String),
		stance_polarity      Nullable(String),
		harassment_type      Nullable(String),
		notes                Nullable(String),
		is_attack            Bool,
		is_duplicate         Bool,
		updated_at           DateTime64(3, 'UTC')
	)
	ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY id`,
}

// Migrate applies the schema statements in order
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ch: schema step %d: %w", i, err)
		}
	}
	return nil
}
