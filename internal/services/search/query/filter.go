// Package query turns search filters into a backend neutral query description
// and compiles that description to SQL
package query

// Filter narrows the comment set; zero fields impose nothing.
// Dates are inclusive YYYY-MM-DD days in UTC
type Filter struct {
	Q              string   `json:"q,omitempty"               validate:"max=512"`
	Username       string   `json:"username,omitempty"        validate:"max=256"`
	LevelMin       *int     `json:"level_min,omitempty"`
	LevelMax       *int     `json:"level_max,omitempty"`
	Attack         *bool    `json:"attack,omitempty"`
	Polarity       []string `json:"polarity,omitempty"        validate:"omitempty,max=50,dive,max=128"`
	HarassmentType []string `json:"harassment_type,omitempty" validate:"omitempty,max=50,dive,max=128"`
	From           string   `json:"from,omitempty"            validate:"omitempty,ymd" example:"2025-01-01"`
	To             string   `json:"to,omitempty"              validate:"omitempty,ymd" example:"2025-01-31"`
	VideoSource    string   `json:"video_source,omitempty"    validate:"max=256"`
	Page           int      `json:"page,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}
