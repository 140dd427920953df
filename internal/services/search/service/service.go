// Package service implements comment search, username suggestions and exports
package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

var tracer = otel.Tracer("internal/services/search")

// Defaults for Config
const (
	DefaultExportMaxRows = 50000
	DefaultSuggestLimit  = 10
	MaxSuggestLimit      = 50
)

// Config holds configuration options for the search service
type Config struct {
	// ExportMaxRows caps one export
	ExportMaxRows int
}

// Service implements domain.ServicePort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config
}

var _ domain.ServicePort = (*Service)(nil)

// New constructs the search service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], cfg Config) *Service {
	if db == nil {
		panic("search.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("search.Service requires a non nil Repo binder")
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = DefaultExportMaxRows
	}
	return &Service{DB: db, Binder: binder, Cfg: cfg}
}

// Search returns one page of comments matching f
func (s *Service) Search(ctx context.Context, f domain.SearchFilter) (page domain.Page, err error) {
	spec := query.Build(f)
	ctx, span := tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.Int("search.page", spec.Page),
		attribute.Int("search.limit", spec.Limit),
		attribute.Int("search.predicates", len(spec.Predicates)),
	))
	defer func() { endSpan(span, err) }()

	items, total, err := s.find(ctx, spec)
	if err != nil {
		return domain.Page{}, err
	}
	span.SetAttributes(attribute.Int("search.total", total))
	return domain.Page{Items: items, Total: total, Page: spec.Page, Limit: spec.Limit}, nil
}

// SuggestUsernames returns distinct usernames starting with q; blank q suggests nothing
func (s *Service) SuggestUsernames(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}
	switch {
	case limit < 1:
		limit = DefaultSuggestLimit
	case limit > MaxSuggestLimit:
		limit = MaxSuggestLimit
	}

	var out []string
	err := s.DB.Tx(ctx, func(tx repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(tx).Usernames(ctx, q, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, spec query.QuerySpec) ([]domain.Comment, int, error) {
	var (
		items []domain.Comment
		total int
	)
	err := s.DB.Tx(ctx, func(tx repokit.Queryer) error {
		var err error
		items, total, err = s.Binder.Bind(tx).Find(ctx, spec)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []domain.Comment{}
	}
	return items, total, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
