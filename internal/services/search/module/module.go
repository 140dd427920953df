// Package module wires comment search and exports into HTTP via modkit
package module

import (
	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/repo"
	"github.com/maurolguin1/ig-moderation/internal/services/search/service"

	searchhttp "github.com/maurolguin1/ig-moderation/internal/services/search/http"
)

// Ports exposes the service port for cross-module lookups
type Ports struct {
	Service domain.ServicePort
}

// Module implements the search and export modules; they differ only in routes
type Module struct {
	b      modkit.Built
	svc    domain.ServicePort
	routes func(httpkit.Router, domain.ServicePort)
}

// New constructs the search module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return build(deps, "search", "/search", searchhttp.Register, opts)
}

// NewExport constructs the export module. A domain.ServicePort passed with
// modkit.WithPorts is reused, otherwise the module builds its own service
func NewExport(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return build(deps, "export", "/export", searchhttp.RegisterExport, opts)
}

func build(
	deps modkit.Deps,
	name, prefix string,
	routes func(httpkit.Router, domain.ServicePort),
	opts []modkit.Option,
) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName(name), modkit.WithPrefix(prefix)}, opts...)...)

	svc, _ := b.Ports.(domain.ServicePort)
	if svc == nil {
		svc = NewService(deps, FromConfig(deps.Cfg))
	}
	return &Module{b: b, svc: svc, routes: routes}
}

// NewService builds the search service from deps
func NewService(deps modkit.Deps, o Options) *service.Service {
	db := repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(o.StatementTimeout))
	return service.New(db, repo.NewPG(), service.Config{ExportMaxRows: o.ExportMaxRows})
}

// MountRoutes mounts the module's routes under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { m.routes(rr, m.svc) })
}

func (m *Module) Name() string { return m.b.Name }

// Ports returns Ports{Service}; export shares it with search
func (m *Module) Ports() any { return Ports{Service: m.svc} }
