package service

import (
	"context"
	"errors"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
)

const invalidateTimeout = 5 * time.Second

// InvalidateOn drops cached facets whenever something is published on subject
func (s *Service) InvalidateOn(bus store.Bus, subject string) (unsubscribe func() error, err error) {
	if bus == nil {
		return nil, errors.New("metrics: no bus")
	}
	return bus.Subscribe(subject, func(ctx context.Context, _ []byte) {
		ctx, cancel := context.WithTimeout(ctx, invalidateTimeout)
		defer cancel()
		if err := s.Invalidate(ctx); err != nil {
			logger.C(ctx).Warn().Err(err).Str("subject", subject).Msg("metrics: cache invalidation failed")
			return
		}
		logger.C(ctx).Debug().Str("subject", subject).Msg("metrics: facets invalidated")
	})
}
