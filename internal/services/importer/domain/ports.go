package domain

import (
	"context"
	"time"
)

// ServicePort is the public surface of the import module
type ServicePort interface {
	Run(ctx context.Context, in RunInput) (Summary, error)
	Begin(ctx context.Context, in BeginInput) (string, error)
	BulkInsert(ctx context.Context, jobID, videoSource string, rows []BulkRow) (BulkResult, error)
	Finish(ctx context.Context, jobID string) (Job, error)
	ListJobs(ctx context.Context, limit int) ([]Job, error)
	JobLog(ctx context.Context, jobID string) ([]LogEntry, error)
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// CreateJob inserts a fresh job row
	CreateJob(ctx context.Context, j NewJob) error

	// GetJob loads a job, NotFound when missing
	GetJob(ctx context.Context, id string) (Job, error)

	// SetCounters overwrites the running counters of a job
	SetCounters(ctx context.Context, id string, c Counters) error

	// FinishJob stamps finished_at and duration
	FinishJob(ctx context.Context, id string, fin JobFinish) error

	// ListJobs returns jobs newest first
	ListJobs(ctx context.Context, limit int) ([]Job, error)

	// FindByExternalID returns the row id of a comment with that external id
	FindByExternalID(ctx context.Context, externalID string) (id int64, found bool, err error)

	// InsertComment inserts one comment
	InsertComment(ctx context.Context, c Comment) (int64, error)

	// UpdateComment overwrites a comment in place
	UpdateComment(ctx context.Context, id int64, c Comment) error

	// InsertLog writes one audit entry
	InsertLog(ctx context.Context, e LogEntry) error

	// JobLog returns the audit entries of a job by line number
	JobLog(ctx context.Context, jobID string) ([]LogEntry, error)
}

// Mapper maps a raw row onto the canonical comment
type Mapper interface {
	Map(row Row) Mapped
}

// SheetReader turns file bytes into header keyed records
type SheetReader interface {
	Read(name string, data []byte) ([]Record, error)
}

// Publisher announces finished jobs to whoever listens
type Publisher interface {
	JobFinished(ctx context.Context, j Job) error
}

// Clock is swapped in tests
type Clock func() time.Time

// Mirror copies written comments into a secondary store
type Mirror interface {
	Comments(ctx context.Context, rows []Stored) error
}
