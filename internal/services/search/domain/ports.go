package domain

import (
	"context"

	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// ServicePort is the public surface of comment search
type ServicePort interface {
	Search(ctx context.Context, f SearchFilter) (Page, error)
	SuggestUsernames(ctx context.Context, q string, limit int) ([]string, error)
	Export(ctx context.Context, in ExportInput) (ExportFile, error)
}

// StorageRepo reads comments for a compiled query
type StorageRepo interface {
	// Find returns the page of comments and the total match count
	Find(ctx context.Context, spec query.QuerySpec) ([]Comment, int, error)

	// Usernames returns distinct usernames starting with prefix, case insensitive
	Usernames(ctx context.Context, prefix string, limit int) ([]string, error)
}
