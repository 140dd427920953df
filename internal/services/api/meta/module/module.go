// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/module"

	metahttp "github.com/maurolguin1/ig-moderation/internal/services/api/meta/http"
)

// ServiceName is reported by /meta/health and /meta/service
const ServiceName = "igmod-api"

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	deps      modkit.Deps
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{b: b, deps: deps, startedAt: time.Now()}
}

// HandlerDeps lists the seams of deps for readiness; postgres is the only required one
func (m *Module) HandlerDeps() metahttp.Deps {
	return metahttp.Deps{
		ServiceName: ServiceName,
		StartedAt:   m.startedAt,
		Seams:       Seams(m.deps),
		Modules:     module.Names,
	}
}

// Seams maps deps onto readiness checks, leaving nil interfaces nil
func Seams(d modkit.Deps) []metahttp.Seam {
	out := []metahttp.Seam{{Name: "pg"}, {Name: "ch", Optional: true}, {Name: "redis", Optional: true}, {Name: "nats", Optional: true}}
	if d.PG != nil {
		out[0].V = d.PG
	}
	if d.CH != nil {
		out[1].V = d.CH
	}
	if d.Cache != nil {
		out[2].V = d.Cache
	}
	if d.Bus != nil {
		out[3].V = d.Bus
	}
	return out
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.HandlerDeps()) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports implements the modkit.Module interface; meta exports nothing
func (m *Module) Ports() any { return nil }
