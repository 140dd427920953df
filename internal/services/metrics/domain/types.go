// Package domain holds facet and cohort comparison types of comment metrics
package domain

import "github.com/maurolguin1/ig-moderation/internal/services/search/query"

// SearchFilter selects one cohort
type SearchFilter = query.Filter

// LevelCount is the number of comments at one aggression level
type LevelCount struct {
	Level int `json:"level"`
	Count int `json:"count"`
}

// Facets summarizes the whole comment set
type Facets struct {
	Total         int          `json:"total"`
	AttackCount   int          `json:"attack_count"`
	AttackPct     int          `json:"attack_pct"`
	CountsByLevel []LevelCount `json:"counts_by_level"`
}

// GroupMetrics summarizes one cohort
type GroupMetrics struct {
	Total       int          `json:"total"`
	Attacks     int          `json:"attacks"`
	AttackPct   int          `json:"attack_pct"`
	LevelCounts []LevelCount `json:"level_counts"`
}

// Tally is the raw aggregate a repo returns; Levels skips comments without a level
type Tally struct {
	Total   int
	Attacks int
	Levels  []LevelCount
}
