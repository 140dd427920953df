package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of a pool or tx Migrate needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS import_jobs (
		id             uuid PRIMARY KEY,
		filename       text        NOT NULL DEFAULT '',
		video_source   text,
		started_at     timestamptz DEFAULT now(),
		finished_at    timestamptz,
		duration_ms    bigint      NOT NULL DEFAULT 0,
		rows_detected  integer     NOT NULL DEFAULT 0,
		rows_inserted  integer     NOT NULL DEFAULT 0,
		rows_duplicate integer     NOT NULL DEFAULT 0,
		rows_error     integer     NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS import_jobs_started_idx ON import_jobs (started_at DESC)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id                   bigserial PRIMARY KEY,
		external_id          text,
		user_id              text,
		username             text,
		profile_url          text,
		comment_text         text        NOT NULL DEFAULT '',
		occurred_at          timestamptz,
		video_source         text,
		aggression_label     text,
		aggression_color_hex text,
		stance_polarity      text,
		harassment_type      text,
		notes                text,
		aggression_level     integer,
		is_attack            boolean     NOT NULL DEFAULT false,
		is_duplicate         boolean     NOT NULL DEFAULT false,
		created_at           timestamptz NOT NULL DEFAULT now(),
		updated_at           timestamptz NOT NULL DEFAULT now(),
		tsv tsvector GENERATED ALWAYS AS (to_tsvector('simple', comment_text)) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS comments_external_id_idx ON comments (external_id) WHERE external_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS comments_username_idx ON comments (lower(username) text_pattern_ops)`,
	`CREATE INDEX IF NOT EXISTS comments_occurred_at_idx ON comments (occurred_at)`,
	`CREATE INDEX IF NOT EXISTS comments_level_idx ON comments (aggression_level)`,
	`CREATE INDEX IF NOT EXISTS comments_tsv_idx ON comments USING gin (tsv)`,

	`CREATE TABLE IF NOT EXISTS import_logs (
		id                bigserial PRIMARY KEY,
		job_id            uuid        NOT NULL REFERENCES import_jobs (id) ON DELETE CASCADE,
		line_no           integer,
		external_id       text,
		reason            text        NOT NULL,
		original_text     text        NOT NULL DEFAULT '',
		sanitized_changed boolean     NOT NULL DEFAULT false,
		created_at        timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS import_logs_job_line_idx ON import_logs (job_id, line_no)`,
}

// Migrate applies the schema statements in order
func Migrate(ctx context.Context, db Execer) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pg: schema step %d: %w", i, err)
		}
	}
	return nil
}
