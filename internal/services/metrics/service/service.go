// Package service computes facets over all comments and compares filtered cohorts
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

var tracer = otel.Tracer("internal/services/metrics")

// Defaults for Config
const (
	DefaultCacheTTL   = time.Minute
	DefaultCompareMax = 5
)

// CachePrefix scopes every cache key this service writes
const CachePrefix = "metrics:"

const facetsKey = CachePrefix + "facets"

// Config holds configuration options for the metrics service
type Config struct {
	// CacheTTL bounds how stale cached facets may get; <=0 disables caching
	CacheTTL time.Duration

	// CompareMax caps the number of cohorts per comparison
	CompareMax int
}

// Service implements domain.ServicePort
type Service struct {
	Repo domain.StorageRepo
	Cfg  Config

	// Cache is optional; nil computes facets on every call
	Cache store.Cache
}

var _ domain.ServicePort = (*Service)(nil)

// New constructs the metrics service
func New(repo domain.StorageRepo, cfg Config) *Service {
	if repo == nil {
		panic("metrics.Service requires a non nil StorageRepo")
	}
	if cfg.CompareMax <= 0 {
		cfg.CompareMax = DefaultCompareMax
	}
	return &Service{Repo: repo, Cfg: cfg}
}

// WithCache wires a facet cache
func (s *Service) WithCache(c store.Cache) *Service {
	s.Cache = c
	return s
}

// Pct is part of total as a rounded whole percent; 0 when total is 0
func Pct(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Facets summarizes every stored comment
func (s *Service) Facets(ctx context.Context) (f domain.Facets, err error) {
	ctx, span := tracer.Start(ctx, "metrics.Facets")
	defer func() { endSpan(span, err) }()

	if f, ok := s.cachedFacets(ctx); ok {
		span.SetAttributes(attribute.Bool("metrics.cached", true))
		return f, nil
	}

	t, err := s.Repo.Tally(ctx, nil)
	if err != nil {
		return domain.Facets{}, err
	}
	levels := sortedLevels(t.Levels)
	f = domain.Facets{
		Total:         t.Total,
		AttackCount:   t.Attacks,
		AttackPct:     Pct(t.Attacks, t.Total),
		CountsByLevel: levels,
	}
	s.storeFacets(ctx, f)
	return f, nil
}

// CompareGroups computes one result per filter, in input order
func (s *Service) CompareGroups(ctx context.Context, filters []domain.SearchFilter) (out []domain.GroupMetrics, err error) {
	if len(filters) == 0 {
		return nil, perr.BadRequestf("at least one group is required")
	}
	if len(filters) > s.Cfg.CompareMax {
		return nil, perr.BadRequestf("at most %d groups can be compared", s.Cfg.CompareMax)
	}

	ctx, span := tracer.Start(ctx, "metrics.CompareGroups", trace.WithAttributes(
		attribute.Int("metrics.groups", len(filters)),
	))
	defer func() { endSpan(span, err) }()

	out = make([]domain.GroupMetrics, len(filters))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range filters {
		g.Go(func() error {
			t, err := s.Repo.Tally(gctx, query.Build(f).Predicates)
			if err != nil {
				return err
			}
			out[i] = domain.GroupMetrics{
				Total:       t.Total,
				Attacks:     t.Attacks,
				AttackPct:   Pct(t.Attacks, t.Total),
				LevelCounts: sortedLevels(t.Levels),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Invalidate drops cached facets
func (s *Service) Invalidate(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.DeleteByPrefix(ctx, CachePrefix)
}

func (s *Service) cachedFacets(ctx context.Context) (domain.Facets, bool) {
	if s.Cache == nil || s.Cfg.CacheTTL <= 0 {
		return domain.Facets{}, false
	}
	b, err := s.Cache.Get(ctx, facetsKey)
	if err != nil {
		if !errors.Is(err, store.ErrCacheMiss) {
			logger.C(ctx).Warn().Err(err).Msg("metrics: cache read failed")
		}
		return domain.Facets{}, false
	}
	var f domain.Facets
	if err := json.Unmarshal(b, &f); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("metrics: cached facets unreadable")
		return domain.Facets{}, false
	}
	return f, true
}

func (s *Service) storeFacets(ctx context.Context, f domain.Facets) {
	if s.Cache == nil || s.Cfg.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, facetsKey, b, s.Cfg.CacheTTL); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("metrics: cache write failed")
	}
}

// sortedLevels copies in ascending level order; never nil
func sortedLevels(in []domain.LevelCount) []domain.LevelCount {
	out := make([]domain.LevelCount, len(in))
	copy(out, in)
	slices.SortFunc(out, func(a, b domain.LevelCount) int { return a.Level - b.Level })
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
