package module

import (
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/services/search/service"
)

// Options holds configuration for search and export
type Options struct {
	ExportMaxRows int

	// StatementTimeout bounds each query inside a search tx, 0 leaves the server default
	StatementTimeout time.Duration
}

// FromConfig reads CORE_EXPORT_ and CORE_SEARCH_ scoped options
func FromConfig(cfg config.Conf) Options {
	ex := cfg.Prefix("CORE_EXPORT_")
	se := cfg.Prefix("CORE_SEARCH_")
	return Options{
		ExportMaxRows:    ex.MayInt("MAX_ROWS", service.DefaultExportMaxRows),
		StatementTimeout: se.MayDuration("STATEMENT_TIMEOUT", 15*time.Second),
	}
}
