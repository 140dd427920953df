package datefmt

import (
	"strings"
	"time"

	ptime "github.com/maurolguin1/ig-moderation/internal/platform/time"
)

// Layouts is a strict Resolver that only accepts the given layouts.
// It is meant for sources whose locale convention is known up front
type Layouts struct {
	Formats  []string
	Location *time.Location
}

var _ Resolver = Layouts{}

// NewLayouts builds a strict resolver; a nil location means UTC
func NewLayouts(loc *time.Location, formats ...string) Layouts {
	if loc == nil {
		loc = time.UTC
	}
	return Layouts{Formats: formats, Location: loc}
}

// Resolve tries each layout in order, no heuristics and no notes beyond a missing value
func (l Layouts) Resolve(raw any) Resolution {
	original := stringify(raw)
	s := strings.TrimSpace(original)
	if s == "" {
		return Resolution{Original: original, Note: NoteMissing}
	}

	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range l.Formats {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Resolution{Instant: ptime.UTC(t), Original: original}
		}
	}
	return Resolution{Original: original}
}
