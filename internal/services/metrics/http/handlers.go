// Package http provides HTTP transport for comment metrics
package http

import (
	stdhttp "net/http"

	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
)

// Register mounts metrics endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/facets", h.facets)
	httpkit.PostJSON[CompareRequest](r, "/compare", h.compare)
}

type handlers struct {
	svc domain.ServicePort
}

// CompareRequest is a bare JSON array of filters, one per cohort
type CompareRequest []domain.SearchFilter

func (h *handlers) facets(r *stdhttp.Request) (any, error) {
	return h.svc.Facets(r.Context())
}

func (h *handlers) compare(r *stdhttp.Request, in CompareRequest) (any, error) {
	return h.svc.CompareGroups(r.Context(), in)
}
