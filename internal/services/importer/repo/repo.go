// Package repo provides postgres access for import jobs, comments and the import log
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
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

const jobColumns = `
	id::text, filename, video_source, started_at, finished_at, duration_ms,
	rows_detected, rows_inserted, rows_duplicate, rows_error`

func scanJob(r store.Row) (domain.Job, error) {
	var j domain.Job
	err := r.Scan(
		&j.ID, &j.FileName, &j.VideoSource, &j.StartedAt, &j.FinishedAt, &j.DurationMs,
		&j.RowsDetected, &j.RowsInserted, &j.RowsDuplicate, &j.RowsError,
	)
	return j, err
}

// CreateJob inserts a fresh job row
func (r *queries) CreateJob(ctx context.Context, j domain.NewJob) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO import_jobs (id, filename, video_source, started_at, rows_detected)
		VALUES ($1::uuid, $2, $3, $4, $5)
	`, j.ID, j.FileName, j.VideoSource, j.StartedAt.UTC(), j.RowsDetected)
	return perr.FromPostgres(err, "create import job")
}

// GetJob loads one job
func (r *queries) GetJob(ctx context.Context, id string) (domain.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Job{}, perr.NotFoundf("import job %q not found", id)
	}
	j, err := store.One(ctx, r.q, scanJob, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1::uuid`, id)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Job{}, perr.NotFoundf("import job %q not found", id)
	}
	return j, perr.FromPostgres(err, "get import job")
}

// SetCounters overwrites the running counters
func (r *queries) SetCounters(ctx context.Context, id string, c domain.Counters) error {
	_, err := r.q.Exec(ctx, `
		UPDATE import_jobs
		SET rows_inserted = $2, rows_duplicate = $3, rows_error = $4
		WHERE id = $1::uuid
	`, id, c.Inserted, c.Duplicate, c.Error)
	return perr.FromPostgres(err, "update import counters")
}

// FinishJob stamps completion once; a finished job is left alone
func (r *queries) FinishJob(ctx context.Context, id string, fin domain.JobFinish) error {
	_, err := r.q.Exec(ctx, `
		UPDATE import_jobs
		SET finished_at = $2,
		    duration_ms = $3
		WHERE id = $1::uuid AND finished_at IS NULL
	`, id, fin.FinishedAt.UTC(), fin.DurationMs)
	return perr.FromPostgres(err, "finish import job")
}

// ListJobs returns jobs newest first
func (r *queries) ListJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	jobs, err := store.Many(ctx, r.q, scanJob, `
		SELECT `+jobColumns+`
		FROM import_jobs
		ORDER BY started_at DESC NULLS LAST, id
		LIMIT $1
	`, limit)
	return jobs, perr.FromPostgres(err, "list import jobs")
}

// FindByExternalID returns the oldest comment carrying that external id
func (r *queries) FindByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	id, err := store.One(ctx, r.q, scanID, `
		SELECT id FROM comments WHERE external_id = $1 ORDER BY id LIMIT 1
	`, externalID)
	if errors.Is(err, perr.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, perr.FromPostgres(err, "find comment")
	}
	return id, true, nil
}

// InsertComment inserts one comment and returns its row id
func (r *queries) InsertComment(ctx context.Context, c domain.Comment) (int64, error) {
	id, err := store.Scalar[int64](ctx, r.q, `
		INSERT INTO comments (
			external_id, user_id, username, profile_url, comment_text, occurred_at, video_source,
			aggression_label, aggression_color_hex, stance_polarity, harassment_type, notes,
			aggression_level, is_attack, is_duplicate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, commentArgs(c)...)
	return id, perr.FromPostgres(err, "insert comment")
}

// UpdateComment overwrites every mapped column of an existing comment
func (r *queries) UpdateComment(ctx context.Context, id int64, c domain.Comment) error {
	args := append(commentArgs(c), id)
	_, err := r.q.Exec(ctx, `
		UPDATE comments SET
			external_id = $1, user_id = $2, username = $3, profile_url = $4,
			comment_text = $5, occurred_at = $6, video_source = $7,
			aggression_label = $8, aggression_color_hex = $9, stance_polarity = $10,
			harassment_type = $11, notes = $12, aggression_level = $13,
			is_attack = $14, is_duplicate = $15, updated_at = now()
		WHERE id = $16
	`, args...)
	return perr.FromPostgres(err, "update comment")
}

// InsertLog writes one audit entry
func (r *queries) InsertLog(ctx context.Context, e domain.LogEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO import_logs (job_id, line_no, external_id, reason, original_text, sanitized_changed)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
	`, e.JobID, e.LineNo, e.ExternalID, e.Reason, e.OriginalText, e.SanitizedChanged)
	return perr.FromPostgres(err, "insert import log")
}

// JobLog returns the entries of one job by line
func (r *queries) JobLog(ctx context.Context, jobID string) ([]domain.LogEntry, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.LogEntry, error) {
		var e domain.LogEntry
		err := row.Scan(&e.JobID, &e.LineNo, &e.ExternalID, &e.Reason, &e.OriginalText, &e.SanitizedChanged)
		return e, err
	}, `
		SELECT job_id::text, line_no, external_id, reason, original_text, sanitized_changed
		FROM import_logs
		WHERE job_id = $1::uuid
		ORDER BY line_no ASC NULLS LAST, id ASC
	`, jobID)
	return out, perr.FromPostgres(err, "read import log")
}

func scanID(r store.Row) (int64, error) {
	var id int64
	err := r.Scan(&id)
	return id, err
}

func commentArgs(c domain.Comment) []any {
	var at *time.Time
	if c.OccurredAt != nil {
		u := c.OccurredAt.UTC()
		at = &u
	}
	return []any{
		c.ExternalID, c.UserID, c.Username, c.ProfileURL, c.Text, at, c.VideoSource,
		c.AggressionLabel, c.AggressionColorHex, c.StancePolarity, c.HarassmentType, c.Notes,
		c.AggressionLevel, c.IsAttack, c.IsDuplicate,
	}
}
