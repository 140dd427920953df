package module

import (
	"net/http"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/events"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/ingest"
)

// Options holds configuration for the import pipeline
type Options struct {
	Dedup         bool
	Affirmative   string
	AliasesFile   string
	RowTimeout    time.Duration
	JobTimeout    time.Duration
	RowRetries    int
	RowsPerSec    float64
	Burst         int
	EventsSubject string

	// MirrorCH copies written comments into clickhouse when it is connected
	MirrorCH bool

	// MaxUploadBytes caps multipart uploads
	MaxUploadBytes int64

	// StatementTimeout bounds each statement of a row tx, 0 leaves the server default
	StatementTimeout time.Duration
}

// FromConfig reads the import options with CORE_IMPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	im := cfg.Prefix("CORE_IMPORT_")
	return Options{
		Dedup:          im.MayBool("DEDUP", true),
		Affirmative:    im.MayString("AFFIRMATIVE", ingest.DefaultAffirmative),
		AliasesFile:    im.MayString("ALIASES_FILE", ""),
		RowTimeout:     im.MayDuration("ROW_TIMEOUT", 5*time.Second),
		JobTimeout:     im.MayDuration("JOB_TIMEOUT", 30*time.Second),
		RowRetries:     im.MayInt("ROW_RETRIES", 3),
		RowsPerSec:     im.MayFloat64("ROWS_PER_SEC", 0),
		Burst:          im.MayInt("BURST", 50),
		EventsSubject:  im.MayString("EVENTS_SUBJECT", events.DefaultSubject),
		MirrorCH:       im.MayBool("CH_MIRROR", true),
		MaxUploadBytes: int64(im.MayInt("MAX_UPLOAD_MB", 32)) << 20,

		StatementTimeout: im.MayDuration("STATEMENT_TIMEOUT", 0),
	}
}

// Option is a configuration option for the import module
type Option = modkit.Option

// WithMiddlewares sets the middlewares for the module
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return modkit.WithMiddlewares(mw...)
}
