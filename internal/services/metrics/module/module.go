// Package module wires comment metrics into HTTP via modkit
package module

import (
	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/repo"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/service"

	metricshttp "github.com/maurolguin1/ig-moderation/internal/services/metrics/http"
)

// Ports exposes the service port for cross-module lookups
type Ports struct {
	Service domain.ServicePort
}

// Module implements the metrics module
type Module struct {
	b     modkit.Built
	ports Ports
	svc   *service.Service
}

// New constructs the metrics module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("metrics"), modkit.WithPrefix("/metrics")}, opts...)...)

	svc := NewService(deps, FromConfig(deps.Cfg))
	return &Module{b: b, ports: Ports{Service: svc}, svc: svc}
}

// NewService picks the aggregate source and wires the facet cache.
// Cached facets are dropped on every finished import when a bus is connected;
// the subscription lives as long as the bus
func NewService(deps modkit.Deps, o Options) *service.Service {
	log := logger.Named("metrics")

	var source domain.StorageRepo
	switch o.Source {
	case SourceCH:
		if deps.CH == nil {
			log.Panic().Msg("metrics: CORE_METRICS_SOURCE=ch needs clickhouse enabled")
		}
		source = repo.NewCH(deps.CH)
	default:
		if deps.PG == nil {
			log.Panic().Msg("metrics: postgres is required")
		}
		source = repo.NewPG().Bind(deps.PG)
	}

	svc := service.New(source, service.Config{CacheTTL: o.CacheTTL, CompareMax: o.CompareMax})
	if deps.Cache == nil {
		return svc
	}
	svc = svc.WithCache(deps.Cache)
	if deps.Bus != nil {
		if _, err := svc.InvalidateOn(deps.Bus, o.InvalidateSubject); err != nil {
			log.Warn().Err(err).Str("subject", o.InvalidateSubject).Msg("metrics: facets will only expire by ttl")
		}
	}
	return svc
}

// MountRoutes mounts /metrics/* on r
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metricshttp.Register(rr, m.svc) })
}

func (m *Module) Name() string { return m.b.Name }

// Ports returns Ports{Service}
func (m *Module) Ports() any { return m.ports }
