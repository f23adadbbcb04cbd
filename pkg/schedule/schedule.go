// Package schedule runs named events, either on demand or periodically.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/animalscode/actracker/pkg/concurrent"
)

var ErrNoHandlers = errors.New("no handlers registered for event")

// Handler is called when an event fires. override is set for manual triggers.
type Handler func(ctx context.Context, override bool)

type Scheduler struct {
	handlers *concurrent.Map[string, []Handler]
	inflight singleflight.Group
}

func New() *Scheduler {
	return &Scheduler{handlers: concurrent.NewMap[string, []Handler]()}
}

// On registers h for event. Handlers run in registration order.
func (s *Scheduler) On(event string, h Handler) {
	s.handlers.Update(event, func(current []Handler, _ bool) []Handler {
		return append(current, h)
	})
}

// Fire runs the handlers of event synchronously. A fire that overlaps a
// running one with the same event and override joins it instead of running
// the handlers again.
func (s *Scheduler) Fire(ctx context.Context, event string, override bool) error {
	handlers, ok := s.handlers.Load(event)
	if !ok || len(handlers) == 0 {
		return ErrNoHandlers
	}

	key := event + ":" + strconv.FormatBool(override)
	_, _, shared := s.inflight.Do(key, func() (any, error) {
		for _, h := range handlers {
			h(ctx, override)
		}
		return nil, nil
	})
	if shared {
		slog.Debug("Joined running event", "event", event, "override", override)
	}
	return nil
}

// Every fires event once immediately and then every interval until ctx is
// done. Scheduled fires never override.
func (s *Scheduler) Every(ctx context.Context, event string, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("schedule interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Fire(ctx, event, false); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
