// Package api composes the HTTP API from the service modules
package api

import (
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"

	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/module"

	metahttp "github.com/maurolguin1/ig-moderation/internal/services/api/meta/http"
	metamod "github.com/maurolguin1/ig-moderation/internal/services/api/meta/module"
	importmod "github.com/maurolguin1/ig-moderation/internal/services/importer/module"
	metricsmod "github.com/maurolguin1/ig-moderation/internal/services/metrics/module"
	searchdomain "github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	searchmod "github.com/maurolguin1/ig-moderation/internal/services/search/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules scope it themselves
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableProfiler bool
}

// StackFromConfig reads the API_ scoped middleware knobs
func StackFromConfig(cfg config.Conf) httpkit.StackOptions {
	a := cfg.Prefix("API_")
	return httpkit.StackOptions{
		Service:     a.MayString("TRACE_NAME", metamod.ServiceName),
		CORSOrigins: a.MayCSV("CORS_ORIGINS", nil),
		Slow:        a.MayDuration("SLOW_REQUEST", 2*time.Second),
		Timeout:     a.MayDuration("REQUEST_TIMEOUT", 5*time.Minute),
	}
}

// Deps maps the opened store onto module deps
func Deps(opt Options) modkit.Deps {
	d := modkit.NewDeps(opt.Config, opt.Store)
	if opt.Logger != nil {
		d.Log = *opt.Logger
	}
	return d
}

// Mount mounts /healthz, the profiler and every module under /api/v1
func Mount(r phttp.Router, opt Options) {
	deps := Deps(opt)
	ac := opt.Config.Prefix("API_")

	search := searchmod.New(deps)
	mods := []module.Module{
		metamod.New(deps),
		// uploads parse whole workbooks in memory, so only a few run at once
		importmod.New(deps, importmod.WithMiddlewares(httpkit.Throttle(
			ac.MayInt("IMPORT_MAX_INFLIGHT", 4),
			ac.MayDuration("IMPORT_THROTTLE_WAIT", 10*time.Second),
		)...)),
		search,
		// export streams through the same search service
		searchmod.NewExport(deps, modkit.WithPorts(module.MustPortsOf[searchdomain.ServicePort](search))),
		metricsmod.New(deps),
	}

	r.Get("/healthz", metahttp.Healthz(metahttp.Deps{
		ServiceName: metamod.ServiceName,
		StartedAt:   time.Now(),
		Seams:       metamod.Seams(deps),
	}))
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.Stack(StackFromConfig(opt.Config)), func(api httpkit.Router) {
		for _, m := range mods {
			// /meta/service lists what got registered here
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
