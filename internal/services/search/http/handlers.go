// Package http provides HTTP transport for comment search and exports
package http

import (
	"mime"
	stdhttp "net/http"
	"strconv"

	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
)

// Register mounts search endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.SearchFilter](r, "/", h.search)
	httpkit.Get(r, "/suggest/username", h.suggest)
}

// RegisterExport mounts the export download on the given router
func RegisterExport(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	r.Post("/", h.export)
}

type handlers struct {
	svc domain.ServicePort
}

func (h *handlers) search(r *stdhttp.Request, f domain.SearchFilter) (any, error) {
	return h.svc.Search(r.Context(), f)
}

func (h *handlers) suggest(r *stdhttp.Request) (any, error) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, perr.BadRequestf("limit must be an integer")
		}
		limit = n
	}
	return h.svc.SuggestUsernames(r.Context(), r.URL.Query().Get("q"), limit)
}

// export answers with the file itself; a missing body exports everything
func (h *handlers) export(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var f domain.SearchFilter
	if r.ContentLength != 0 {
		var err error
		if f, err = httpkit.Decode[domain.SearchFilter](r); err != nil {
			httpkit.RespondError(w, r, err)
			return
		}
	}

	file, err := h.svc.Export(r.Context(), domain.ExportInput{
		Filter: f,
		Format: domain.ExportFormat(r.URL.Query().Get("format")),
		Title:  r.URL.Query().Get("title"),
	})
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.Name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	if _, err := w.Write(file.Body); err != nil {
		logger.C(r.Context()).Warn().Err(err).Str("file", file.Name).Msg("search: export download cut short")
	}
}
