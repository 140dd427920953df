package domain

import (
	"context"

	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// ServicePort is the public surface of comment metrics
type ServicePort interface {
	Facets(ctx context.Context) (Facets, error)
	CompareGroups(ctx context.Context, filters []SearchFilter) ([]GroupMetrics, error)
}

// StorageRepo aggregates comments matching every predicate
type StorageRepo interface {
	Tally(ctx context.Context, preds []query.Predicate) (Tally, error)
}
