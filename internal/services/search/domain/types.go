// Package domain holds the search filter, result rows and ports of comment search
package domain

import (
	"time"

	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// SearchFilter narrows the comment set
type SearchFilter = query.Filter

// Comment is one stored comment as search returns it
type Comment struct {
	ID                 int64      `json:"id"`
	ExternalID         *string    `json:"comment_id"`
	Username           *string    `json:"username"`
	UserID             *string    `json:"user_id"`
	ProfileURL         *string    `json:"profile_url"`
	Text               string     `json:"comment_text"`
	OccurredAt         *time.Time `json:"date"`
	VideoSource        *string    `json:"video_source"`
	AggressionLabel    *string    `json:"aggression_label"`
	AggressionLevel    *int       `json:"aggression_level"`
	AggressionColorHex *string    `json:"aggression_color_hex"`
	StancePolarity     *string    `json:"stance_polarity"`
	HarassmentType     *string    `json:"harassment_type"`
	Notes              *string    `json:"notes"`
	IsAttack           bool       `json:"is_attack"`
	IsDuplicate        bool       `json:"is_duplicate"`

	// Highlight marks matched words when the filter carried free text
	Highlight *string `json:"highlight"`
}

// Page is one page of search results
type Page struct {
	Items []Comment `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// ExportFormat is a supported export encoding
type ExportFormat string

// Export formats
const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportInput asks for every comment matching Filter
type ExportInput struct {
	Filter SearchFilter
	Format ExportFormat
	Title  string
}

// ExportFile is a rendered export
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}
