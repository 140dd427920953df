// Package events announces finished imports on the message bus
package events

import (
	"context"
	"errors"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/domain"
)

// DefaultSubject is where finished jobs are announced
const DefaultSubject = "igmod.imports.finished"

// Publisher implements domain.Publisher over a store.Bus
type Publisher struct {
	bus     store.Bus
	subject string
}

var _ domain.Publisher = (*Publisher)(nil)

// New returns a publisher; a blank subject falls back to DefaultSubject
func New(bus store.Bus, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{bus: bus, subject: subject}
}

// Subject is where events go
func (p *Publisher) Subject() string { return p.subject }

// JobFinished publishes the final counters of j
func (p *Publisher) JobFinished(ctx context.Context, j domain.Job) error {
	if p == nil || p.bus == nil {
		return errors.New("events: no bus")
	}
	ev := domain.JobFinishedEvent{
		JobID:         j.ID,
		FileName:      j.FileName,
		DurationMs:    j.DurationMs,
		RowsInserted:  j.RowsInserted,
		RowsDuplicate: j.RowsDuplicate,
		RowsError:     j.RowsError,
	}
	if j.FinishedAt != nil {
		ev.FinishedAt = j.FinishedAt.UTC()
	} else {
		ev.FinishedAt = time.Now().UTC()
	}
	return p.bus.PublishJSON(ctx, p.subject, ev)
}
