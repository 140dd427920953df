package modkit

import (
	"net/http"

	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/platform/strings"
)

// Built is the resolved option set a module keeps
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	// Ports is whatever WithPorts handed in, nil otherwise
	Ports any
}

// Build applies opts in order; module defaults go first so callers override them
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// Mount opens the module scope under Prefix, applies Mw in order, then adds routes.
// It panics on an empty name or prefix since both are wiring mistakes.
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	strings.MustString(b.Name, "module name")
	r.Route(strings.MustPrefix(b.Prefix), func(rr httpkit.Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		routes(rr)
	})
}
