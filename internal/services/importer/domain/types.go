// Package domain holds the records and ports of the comment import pipeline
package domain

import "time"

// Row is one spreadsheet row keyed by its header text
type Row map[string]string

// Record is one parsed data row with its 1 based sheet line
type Record struct {
	Line   int
	Fields Row
}

// Comment is the canonical, storage ready comment
// Text is always sanitized; the raw text only survives in the import log
type Comment struct {
	ExternalID *string
	UserID     *string
	Username   *string
	ProfileURL *string

	Text       string
	OccurredAt *time.Time

	VideoSource *string

	AggressionLabel    *string
	AggressionColorHex *string
	StancePolarity     *string
	HarassmentType     *string
	Notes              *string
	AggressionLevel    *int

	IsAttack    bool
	IsDuplicate bool
}

// Mapped is the RowMapper output for a single row
type Mapped struct {
	Comment     Comment
	Diagnostics []string
	Original    string
	Changed     bool
}

// Job is one import run over one file
type Job struct {
	ID            string     `json:"id"`
	FileName      string     `json:"filename"`
	VideoSource   *string    `json:"video_source,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	RowsDetected  int        `json:"rows_detected"`
	RowsInserted  int        `json:"rows_inserted"`
	RowsDuplicate int        `json:"rows_duplicate"`
	RowsError     int        `json:"rows_error"`
}

// Counters are the running tallies of a job
type Counters struct {
	Inserted  int
	Duplicate int
	Error     int
}

// Add returns c plus o
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Inserted:  c.Inserted + o.Inserted,
		Duplicate: c.Duplicate + o.Duplicate,
		Error:     c.Error + o.Error,
	}
}

// Counters extracts the running tallies from a job
func (j Job) Counters() Counters {
	return Counters{Inserted: j.RowsInserted, Duplicate: j.RowsDuplicate, Error: j.RowsError}
}

// NewJob is what Begin persists
type NewJob struct {
	ID           string
	FileName     string
	VideoSource  *string
	StartedAt    time.Time
	RowsDetected int
}

// JobFinish stamps completion on a job
type JobFinish struct {
	FinishedAt time.Time
	DurationMs int64
}

// LogEntry is one audit line for one input row
type LogEntry struct {
	JobID            string  `json:"job_id"`
	LineNo           *int    `json:"line_no"`
	ExternalID       *string `json:"comment_id"`
	Reason           string  `json:"reason"`
	OriginalText     string  `json:"original_text"`
	SanitizedChanged bool    `json:"sanitized_changed"`
}

// Summary is returned by a single shot import
type Summary struct {
	FileName   string `json:"fileName"`
	Total      int    `json:"total"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	JobID      string `json:"jobId"`
}

// RunInput feeds a single shot import
type RunInput struct {
	File        []byte
	FileName    string
	VideoSource string
}

// BeginInput opens a chunked import
type BeginInput struct {
	FileName     string `json:"filename" validate:"max=512"`
	VideoSource  string `json:"videoSource" validate:"max=256"`
	RowsDetected int    `json:"rowsDetected" validate:"min=0"`
}

// BulkRow is one row of a chunk; LineNo is optional
type BulkRow struct {
	LineNo *int `json:"__lineNo,omitempty"`
	Fields Row  `json:"fields"`
}

// BulkResult reports the outcome of one chunk
type BulkResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Outcome of persisting one row
type Outcome int

const (
	// OutcomeInserted is a new row
	OutcomeInserted Outcome = iota
	// OutcomeDuplicate updated an existing row in place
	OutcomeDuplicate
	// OutcomeError failed to persist
	OutcomeError
)

// Log reasons written by the coordinator
const (
	NoteMissingID     = "missing field: Comment Id"
	NoteCharsChanged  = "characters normalized"
	InsertErrorPrefix = "insert error: "
)

// JobFinishedEvent is published once per job when it is finalized
type JobFinishedEvent struct {
	JobID         string    `json:"jobId"`
	FileName      string    `json:"fileName"`
	FinishedAt    time.Time `json:"finishedAt"`
	DurationMs    int64     `json:"durationMs"`
	RowsInserted  int       `json:"rowsInserted"`
	RowsDuplicate int       `json:"rowsDuplicate"`
	RowsError     int       `json:"rowsError"`
}

// Stored is a comment as it was written, with its row id
type Stored struct {
	ID        int64
	Comment   Comment
	WrittenAt time.Time
}
