// Package service coordinates comment imports: job bookkeeping, per row persistence and the audit log
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	ptime "github.com/maurolguin1/ig-moderation/internal/platform/time"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/guardrails"
)

var tracer = otel.Tracer("internal/services/importer")

// Config holds configuration options for the import service
type Config struct {
	// Dedup updates rows whose external id already exists instead of inserting them again
	Dedup bool

	// Timeouts applied via guardrails
	Timeouts guardrails.Timeouts

	// Retry re-runs a row transaction that hit a deadlock or serialization failure
	Retry guardrails.Retry

	// RowsPerSec throttles row writes; <=0 disables the throttle
	RowsPerSec float64
	Burst      int
}

// Service implements domain.ServicePort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Mapper domain.Mapper
	Sheets domain.SheetReader
	Cfg    Config

	// Events is optional; nil skips job finished announcements
	Events domain.Publisher

	// Mirror is optional; nil keeps comments in postgres only
	Mirror domain.Mirror

	now     domain.Clock
	newID   func() string
	limiter *rate.Limiter
}

var _ domain.ServicePort = (*Service)(nil)

// New constructs the import service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	mapper domain.Mapper,
	sheets domain.SheetReader,
	cfg Config,
) *Service {
	if db == nil {
		panic("importer.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("importer.Service requires a non nil Repo binder")
	}
	if mapper == nil {
		panic("importer.Service requires a non nil Mapper")
	}
	s := &Service{
		DB: db, Binder: binder,
		Mapper: mapper, Sheets: sheets,
		Cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
	if cfg.RowsPerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RowsPerSec), max(cfg.Burst, 1))
	}
	return s
}

// WithEvents wires a publisher for job finished events
func (s *Service) WithEvents(p domain.Publisher) *Service {
	s.Events = p
	return s
}

// WithMirror wires a secondary store for written comments
func (s *Service) WithMirror(m domain.Mirror) *Service {
	s.Mirror = m
	return s
}

// WithClock swaps the time source
func (s *Service) WithClock(c domain.Clock) *Service {
	if c != nil {
		s.now = c
	}
	return s
}

// WithIDs swaps the job id generator
func (s *Service) WithIDs(gen func() string) *Service {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// lineRow is one row waiting to be persisted
type lineRow struct {
	line   *int
	fields domain.Row
}

// Run imports a whole file in one call
func (s *Service) Run(ctx context.Context, in domain.RunInput) (sum domain.Summary, err error) {
	ctx, span := tracer.Start(ctx, "importer.Run", trace.WithAttributes(
		attribute.String("import.file", in.FileName),
		attribute.Int("import.bytes", len(in.File)),
	))
	defer func() { endSpan(span, err) }()

	if s.Sheets == nil {
		return domain.Summary{}, perr.Newf(perr.ErrorCodeUnavailable, "importer: no sheet reader configured")
	}
	records, err := s.Sheets.Read(in.FileName, in.File)
	if err != nil {
		return domain.Summary{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %q", in.FileName)
	}

	jobID, err := s.Begin(ctx, domain.BeginInput{
		FileName:     in.FileName,
		VideoSource:  in.VideoSource,
		RowsDetected: len(records),
	})
	if err != nil {
		return domain.Summary{}, err
	}
	span.SetAttributes(attribute.String("import.job_id", jobID))

	rows := make([]lineRow, 0, len(records))
	for _, rec := range records {
		line := rec.Line
		rows = append(rows, lineRow{line: &line, fields: domain.Row(rec.Fields)})
	}

	counts, stored, procErr := s.process(ctx, jobID, strings.TrimSpace(in.VideoSource), rows)

	wctx, cancel := s.writeCtx(ctx)
	defer cancel()

	if err := s.addCounters(wctx, jobID, counts); err != nil {
		return domain.Summary{}, err
	}
	s.mirror(wctx, jobID, stored)
	total := counts.Inserted + counts.Duplicate + counts.Error
	// rows_detected stays what Begin recorded, also when ctx ended mid file
	if _, err := s.finish(wctx, jobID); err != nil {
		return domain.Summary{}, err
	}

	sum = domain.Summary{
		FileName:   in.FileName,
		Total:      total,
		Inserted:   counts.Inserted,
		Duplicates: counts.Duplicate,
		Errors:     counts.Error,
		JobID:      jobID,
	}
	return sum, procErr
}

// Begin opens a job for a chunked import
func (s *Service) Begin(ctx context.Context, in domain.BeginInput) (string, error) {
	if in.RowsDetected < 0 {
		return "", perr.InvalidArgf("rowsDetected must be >= 0")
	}
	job := domain.NewJob{
		ID:           s.newID(),
		FileName:     strings.TrimSpace(in.FileName),
		VideoSource:  optional(in.VideoSource),
		StartedAt:    s.now(),
		RowsDetected: in.RowsDetected,
	}

	jctx, cancel := guardrails.ForJob(ctx, s.Cfg.Timeouts)
	defer cancel()
	if err := s.DB.Tx(jctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).CreateJob(jctx, job)
	}); err != nil {
		return "", jobErr(err, "importer.Begin")
	}

	logger.C(logger.WithJob(ctx, job.ID)).Info().
		Str("file", job.FileName).
		Int("rows_detected", job.RowsDetected).
		Msg("importer: job started")
	return job.ID, nil
}

// BulkInsert persists one chunk of rows for an open job and folds its tallies into the job
func (s *Service) BulkInsert(ctx context.Context, jobID, videoSource string, rows []domain.BulkRow) (res domain.BulkResult, err error) {
	ctx, span := tracer.Start(ctx, "importer.BulkInsert", trace.WithAttributes(
		attribute.String("import.job_id", jobID),
		attribute.Int("import.rows", len(rows)),
	))
	defer func() { endSpan(span, err) }()

	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return domain.BulkResult{}, err
	}
	vs := strings.TrimSpace(videoSource)
	if vs == "" && job.VideoSource != nil {
		vs = *job.VideoSource
	}

	batch := make([]lineRow, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, lineRow{line: r.LineNo, fields: r.Fields})
	}
	counts, stored, procErr := s.process(ctx, jobID, vs, batch)

	wctx, cancel := s.writeCtx(ctx)
	defer cancel()
	if err := s.addCounters(wctx, jobID, counts); err != nil {
		return domain.BulkResult{}, err
	}
	s.mirror(wctx, jobID, stored)

	res = domain.BulkResult{Inserted: counts.Inserted, Duplicates: counts.Duplicate, Errors: counts.Error}
	return res, procErr
}

// Finish stamps completion on a job; finishing twice returns the job unchanged
func (s *Service) Finish(ctx context.Context, jobID string) (domain.Job, error) {
	return s.finish(ctx, jobID)
}

// ListJobs returns the most recent jobs first
func (s *Service) ListJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Job
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		jobs, err := s.Binder.Bind(q).ListJobs(ctx, limit)
		out = jobs
		return err
	})
	if err != nil {
		return nil, jobErr(err, "importer.ListJobs")
	}
	return out, nil
}

// JobLog returns the audit trail of a job ordered by line
func (s *Service) JobLog(ctx context.Context, jobID string) ([]domain.LogEntry, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	var out []domain.LogEntry
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		entries, err := s.Binder.Bind(q).JobLog(ctx, jobID)
		out = entries
		return err
	})
	if err != nil {
		return nil, jobErr(err, "importer.JobLog")
	}
	return out, nil
}

func (s *Service) finish(ctx context.Context, jobID string) (domain.Job, error) {
	ctx = logger.WithJob(ctx, jobID)
	jctx, cancel := guardrails.ForJob(ctx, s.Cfg.Timeouts)
	defer cancel()

	var (
		job     domain.Job
		already bool
	)
	err := s.DB.Tx(jctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		cur, err := repo.GetJob(jctx, jobID)
		if err != nil {
			return err
		}
		if cur.FinishedAt != nil {
			job, already = cur, true
			return nil
		}

		now := s.now()
		started := now
		if cur.StartedAt != nil {
			started = *cur.StartedAt
		}
		fin := domain.JobFinish{
			FinishedAt: now,
			DurationMs: ptime.Millis(now.Sub(started), 1),
		}
		if err := repo.FinishJob(jctx, jobID, fin); err != nil {
			return err
		}
		job, err = repo.GetJob(jctx, jobID)
		return err
	})
	if err != nil {
		return domain.Job{}, jobErr(err, "importer.Finish")
	}
	if already {
		return job, nil
	}

	logger.C(ctx).Info().
		Int("rows_detected", job.RowsDetected).
		Int("inserted", job.RowsInserted).
		Int("duplicates", job.RowsDuplicate).
		Int("errors", job.RowsError).
		Int64("duration_ms", job.DurationMs).
		Msg("importer: job finished")

	if s.Events != nil {
		if err := s.Events.JobFinished(ctx, job); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("importer: publish job finished failed")
		}
	}
	return job, nil
}

func (s *Service) getJob(ctx context.Context, jobID string) (domain.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return domain.Job{}, perr.InvalidArgf("job id is required")
	}
	var job domain.Job
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		j, err := s.Binder.Bind(q).GetJob(ctx, jobID)
		job = j
		return err
	})
	if err != nil {
		return domain.Job{}, jobErr(err, "importer.GetJob")
	}
	return job, nil
}

// addCounters folds c into the job with a read-modify-write inside one tx
func (s *Service) addCounters(ctx context.Context, jobID string, c domain.Counters) error {
	jctx, cancel := guardrails.ForJob(ctx, s.Cfg.Timeouts)
	defer cancel()
	err := s.DB.Tx(jctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		cur, err := repo.GetJob(jctx, jobID)
		if err != nil {
			return err
		}
		return repo.SetCounters(jctx, jobID, cur.Counters().Add(c))
	})
	return jobErr(err, "importer.Counters")
}

// writeCtx keeps bookkeeping alive after the caller went away so partial progress is recorded
func (s *Service) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() != nil {
		return guardrails.Detached(ctx, s.Cfg.Timeouts)
	}
	return ctx, func() {}
}

// process persists rows in order; it only stops early when ctx is done.
// Written comments are returned only when a mirror is wired
func (s *Service) process(ctx context.Context, jobID, videoSource string, rows []lineRow) (domain.Counters, []domain.Stored, error) {
	var (
		c      domain.Counters
		stored []domain.Stored
	)
	ctx = logger.WithJob(ctx, jobID)
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return c, stored, err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return c, stored, err
			}
		}
		out, st, err := s.persistRow(ctx, jobID, videoSource, r)
		if err != nil {
			return c, stored, err
		}
		switch out {
		case domain.OutcomeInserted:
			c.Inserted++
		case domain.OutcomeDuplicate:
			c.Duplicate++
		default:
			c.Error++
		}
		if st != nil {
			stored = append(stored, *st)
		}
	}
	return c, stored, nil
}

// mirror forwards written comments; the replica lagging never fails an import
func (s *Service) mirror(ctx context.Context, jobID string, rows []domain.Stored) {
	if s.Mirror == nil || len(rows) == 0 {
		return
	}
	if err := s.Mirror.Comments(ctx, rows); err != nil {
		logger.C(logger.WithJob(ctx, jobID)).Warn().Err(err).Int("rows", len(rows)).Msg("importer: mirror failed")
	}
}

// persistRow maps and stores one row. The returned error is only ever a ctx error
func (s *Service) persistRow(ctx context.Context, jobID, videoSource string, r lineRow) (domain.Outcome, *domain.Stored, error) {
	m := s.Mapper.Map(r.fields)
	cm := m.Comment
	if videoSource != "" {
		vs := videoSource
		cm.VideoSource = &vs
	}

	rctx, cancel := guardrails.ForRow(ctx, s.Cfg.Timeouts)
	defer cancel()

	var (
		outcome domain.Outcome
		rowID   int64
	)
	err := guardrails.Do(rctx, s.Cfg.Retry, perr.Retryable, func(ctx context.Context) error {
		outcome, rowID, cm.IsDuplicate = domain.OutcomeInserted, 0, false
		return s.DB.Tx(ctx, func(q repokit.Queryer) error {
			repo := s.Binder.Bind(q)
			if s.Cfg.Dedup && cm.ExternalID != nil {
				id, found, err := repo.FindByExternalID(ctx, *cm.ExternalID)
				if err != nil {
					return err
				}
				if found {
					cm.IsDuplicate = true
					outcome, rowID = domain.OutcomeDuplicate, id
					return repo.UpdateComment(ctx, id, cm)
				}
			}
			id, err := repo.InsertComment(ctx, cm)
			rowID = id
			return err
		})
	})

	entry := domain.LogEntry{
		JobID:            jobID,
		LineNo:           r.line,
		ExternalID:       cm.ExternalID,
		OriginalText:     m.Original,
		SanitizedChanged: m.Changed,
	}

	if err != nil {
		if ctx.Err() != nil {
			return domain.OutcomeError, nil, ctx.Err()
		}
		entry.Reason = domain.InsertErrorPrefix + backendMessage(err)
		ev := logger.C(ctx).Warn().Err(err)
		if r.line != nil {
			ev = ev.Int("line", *r.line)
		}
		ev.Msg("importer: row failed")
		s.writeLog(ctx, entry)
		return domain.OutcomeError, nil, nil
	}

	if len(m.Diagnostics) > 0 {
		entry.Reason = strings.Join(m.Diagnostics, "; ")
		s.writeLog(ctx, entry)
	}
	if s.Mirror == nil {
		return outcome, nil, nil
	}
	return outcome, &domain.Stored{ID: rowID, Comment: cm, WrittenAt: s.now()}, nil
}

// writeLog stores an audit entry in its own tx; a failed write is logged, never fatal
func (s *Service) writeLog(ctx context.Context, e domain.LogEntry) {
	lctx, cancel := guardrails.ForRow(ctx, s.Cfg.Timeouts)
	defer cancel()
	err := s.DB.Tx(lctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).InsertLog(lctx, e)
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("reason", e.Reason).Msg("importer: write log failed")
	}
}

// backendMessage prefers the server side message of a postgres error
func backendMessage(err error) string {
	if pg, ok := perr.ExtractPgError(err); ok && pg.Message != "" {
		return pg.Message
	}
	if e, ok := perr.As(err); ok && e.Unwrap() != nil {
		return perr.Root(err).Error()
	}
	return err.Error()
}

// jobErr keeps codes set by the repo and marks anything else as a DB failure
func jobErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := perr.As(err); ok {
		return perr.WithOp(err, op)
	}
	return perr.Wrap(err, perr.ErrorCodeDB, op)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
