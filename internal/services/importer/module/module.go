// Package module wires the import pipeline into HTTP via modkit
package module

import (
	"github.com/maurolguin1/ig-moderation/internal/adapters/sheet"
	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/events"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/guardrails"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/ingest"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/mirror"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/repo"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/service"

	importhttp "github.com/maurolguin1/ig-moderation/internal/services/importer/http"
)

// Ports exposes the service port for cross-module lookups
type Ports struct {
	Service domain.ServicePort
}

// Module implements the import module
type Module struct {
	b   modkit.Built
	svc *service.Service
	lim importhttp.Limits
}

// New constructs the import module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("imports"), modkit.WithPrefix("/imports")}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := NewService(deps, o)

	return &Module{b: b, svc: svc, lim: importhttp.Limits{MaxUploadBytes: o.MaxUploadBytes}}
}

// NewService builds the coordinator from deps; the CLI uses it without HTTP
func NewService(deps modkit.Deps, o Options) *service.Service {
	aliases, err := ingest.LoadAliases(o.AliasesFile)
	if err != nil {
		logger.Get().Panic().Err(err).Str("file", o.AliasesFile).Msg("importer: bad aliases file")
	}
	mapper := ingest.NewRowMapper(ingest.WithAliases(aliases), ingest.WithAffirmative(o.Affirmative))

	db := repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(o.StatementTimeout))
	svc := service.New(db, repo.NewPG(), mapper, ingest.Sheets{R: sheet.NewReader()}, service.Config{
		Dedup:      o.Dedup,
		Timeouts:   guardrails.Timeouts{Job: o.JobTimeout, Row: o.RowTimeout},
		Retry:      guardrails.Retry{Attempts: o.RowRetries},
		RowsPerSec: o.RowsPerSec,
		Burst:      o.Burst,
	})
	if deps.Bus != nil {
		svc = svc.WithEvents(events.New(deps.Bus, o.EventsSubject))
	}
	if deps.CH != nil && o.MirrorCH {
		svc = svc.WithMirror(mirror.New(deps.CH))
	}
	return svc
}

// MountRoutes mounts /imports/* on r
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { importhttp.Register(rr, m.svc, m.lim) })
}

func (m *Module) Name() string { return m.b.Name }

// Ports returns Ports{Service}
func (m *Module) Ports() any { return Ports{Service: m.svc} }
