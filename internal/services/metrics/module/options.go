package module

import (
	"strings"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/events"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/service"
)

// Metrics sources
const (
	SourcePG = "pg"
	SourceCH = "ch"
)

// Options holds configuration for metrics
type Options struct {
	Source     string
	CacheTTL   time.Duration
	CompareMax int

	// InvalidateSubject is listened on to drop cached facets
	InvalidateSubject string
}

// FromConfig reads the metrics options with CORE_METRICS_ prefix
func FromConfig(cfg config.Conf) Options {
	m := cfg.Prefix("CORE_METRICS_")
	return Options{
		Source:            strings.ToLower(m.MayEnum("SOURCE", SourcePG, SourcePG, SourceCH)),
		CacheTTL:          m.MayDuration("CACHE_TTL", service.DefaultCacheTTL),
		CompareMax:        m.MayInt("COMPARE_MAX", service.DefaultCompareMax),
		InvalidateSubject: m.MayString("INVALIDATE_SUBJECT", events.DefaultSubject),
	}
}
