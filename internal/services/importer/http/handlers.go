// Package http provides HTTP transport for comment imports
package http

import (
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/maurolguin1/ig-moderation/internal/modkit/httpkit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
	svc "github.com/maurolguin1/ig-moderation/internal/services/importer/service"
)

// Limits bounds request sizes
type Limits struct {
	MaxUploadBytes int64
}

// lineNoKey is the optional line number carried inside a flat bulk row
const lineNoKey = "__lineNo"

// Register mounts import endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, lim Limits) {
	if lim.MaxUploadBytes <= 0 {
		lim.MaxUploadBytes = 32 << 20
	}
	h := &handlers{svc: s, lim: lim}

	httpkit.Post(r, "/", h.upload)
	httpkit.Get(r, "/", h.list)
	httpkit.PostJSON[domain.BeginInput](r, "/begin", h.begin)
	httpkit.PostJSON[BulkRequest](r, "/{id}/bulk", h.bulk, httpkit.JSONOptions{MaxBytes: lim.MaxUploadBytes})
	httpkit.Post(r, "/{id}/finish", h.finish)
	r.Get("/{id}/log", h.log)
}

type handlers struct {
	svc domain.ServicePort
	lim Limits
}

// BulkRequest is one chunk of flat rows as parsed by a client side reader
type BulkRequest struct {
	VideoSource string                       `json:"videoSource" validate:"max=256"`
	Rows        []map[string]json.RawMessage `json:"rows" validate:"required"`
}

// BeginResponse carries the id of a new job
type BeginResponse struct {
	JobID string `json:"jobId"`
}

func (h *handlers) upload(r *stdhttp.Request) (any, error) {
	r.Body = stdhttp.MaxBytesReader(nil, r.Body, h.lim.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.lim.MaxUploadBytes); err != nil {
		if tooBig := new(stdhttp.MaxBytesError); errors.As(err, &tooBig) {
			return nil, perr.Newf(perr.ErrorCodeTooLarge, "upload exceeds %d bytes", tooBig.Limit)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "multipart form expected")
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "file field is required")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read upload")
	}
	return h.svc.Run(r.Context(), domain.RunInput{
		File:        data,
		FileName:    hdr.Filename,
		VideoSource: strings.TrimSpace(r.FormValue("video_source")),
	})
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, perr.InvalidArgf("limit must be a positive integer")
		}
		limit = n
	}
	return h.svc.ListJobs(r.Context(), limit)
}

func (h *handlers) begin(r *stdhttp.Request, in domain.BeginInput) (any, error) {
	id, err := h.svc.Begin(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(BeginResponse{JobID: id}), nil
}

func (h *handlers) bulk(r *stdhttp.Request, in BulkRequest) (any, error) {
	rows := make([]domain.BulkRow, 0, len(in.Rows))
	for _, raw := range in.Rows {
		rows = append(rows, FlatRow(raw))
	}
	return h.svc.BulkInsert(r.Context(), httpkit.Param(r, "id"), in.VideoSource, rows)
}

func (h *handlers) finish(r *stdhttp.Request) (any, error) {
	return h.svc.Finish(r.Context(), httpkit.Param(r, "id"))
}

func (h *handlers) log(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id := httpkit.Param(r, "id")
	entries, err := h.svc.JobLog(r.Context(), id)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	if !strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		httpkit.Call(func(*stdhttp.Request) (any, error) { return entries, nil })(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="import-log-`+id+`.csv"`)
	if err := svc.WriteLogCSV(w, entries); err != nil {
		logger.C(r.Context()).Warn().Err(err).Str("job_id", id).Msg("importer: log download cut short")
	}
}

// FlatRow converts one client side row into a BulkRow.
// Scalars keep their literal JSON text so long numeric ids survive untouched
func FlatRow(raw map[string]json.RawMessage) domain.BulkRow {
	out := domain.BulkRow{Fields: make(domain.Row, len(raw))}
	for k, v := range raw {
		if k == lineNoKey {
			out.LineNo = lineNo(v)
			continue
		}
		if s, ok := cellString(v); ok {
			out.Fields[k] = s
		}
	}
	return out
}

func lineNo(v json.RawMessage) *int {
	s, ok := cellString(v)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return nil
	}
	return &n
}

func cellString(v json.RawMessage) (string, bool) {
	t := strings.TrimSpace(string(v))
	switch {
	case t == "" || t == "null":
		return "", false
	case strings.HasPrefix(t, `"`):
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return t, true
}
