package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/animalscode/actracker/pkg/hooks"
	"github.com/animalscode/actracker/pkg/settings"
)

// ShouldSend reports whether a report may go out now. It never writes.
//
// Requests flagged with WithAsyncRequest never send. Otherwise a report is
// allowed when none has been sent yet, or when more than the send interval
// (one hour with override) has passed since the last one.
func (t *Tracker) ShouldSend(ctx context.Context, override bool) bool {
	ok, _ := t.decide(ctx, override)
	return ok
}

func (t *Tracker) decide(ctx context.Context, override bool) (bool, Outcome) {
	if IsAsyncRequest(ctx) {
		return false, OutcomeAsyncRequest
	}

	override = hooks.Apply(t.filters, HookSendOverride, override)

	last, sent, err := t.lastSendTime(ctx)
	if err != nil {
		t.logger.Warn("Failed to read last send time", "error", err)
		return false, OutcomeStoreFailed
	}
	if !sent {
		return true, OutcomeSent
	}

	window := OverrideCooldown
	if !override {
		window = t.sendInterval()
	}
	if t.now().Sub(last) > window {
		return true, OutcomeSent
	}
	return false, OutcomeThrottled
}

func (t *Tracker) sendInterval() time.Duration {
	return hooks.Apply(t.filters, HookLastSendInterval, t.interval)
}

// lastSendTime returns the filtered last send time; sent is false when no
// report has been recorded. A stored value that is not a timestamp counts as
// never sent, so the next send overwrites it.
func (t *Tracker) lastSendTime(ctx context.Context) (last time.Time, sent bool, err error) {
	ts, _, err := settings.GetInt64(ctx, t.store, LastSendOption)
	if errors.Is(err, settings.ErrNotInteger) {
		t.logger.Warn("Ignoring malformed last send time", "error", err)
		ts, err = 0, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ts = hooks.Apply(t.filters, HookLastSendTime, ts)
	if ts <= 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(ts, 0), true, nil
}

// Status reports the throttle state without changing it.
func (t *Tracker) Status(ctx context.Context) (Status, error) {
	last, sent, err := t.lastSendTime(ctx)
	if err != nil {
		return Status{}, err
	}

	now := t.now()
	interval := t.sendInterval()
	st := Status{
		Enabled:  t.enabled,
		Interval: interval.String(),
		NextSend: now.Unix(),
		Due:      true,
		Endpoint: t.endpoint,
		Filters:  t.filters.Names(),
	}
	if sent {
		ts := last.Unix()
		st.LastSend = &ts
		st.NextSend = last.Add(interval).Unix()
		st.Due = now.Sub(last) > interval
	}
	return st, nil
}
