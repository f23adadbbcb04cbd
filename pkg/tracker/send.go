package tracker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/animalscode/actracker/pkg/settings"
)

var tracer = otel.Tracer("github.com/animalscode/actracker/pkg/tracker")

// SendTrackingData handles SendEvent: when the gate allows it, it records the
// send time, builds a snapshot and submits it. The send time is written
// before anything goes on the wire so a slow or failing collector cannot
// cause repeated sends.
func (t *Tracker) SendTrackingData(ctx context.Context, override bool) Outcome {
	ctx, span := tracer.Start(ctx, "tracker.send_tracking_data",
		trace.WithAttributes(attribute.Bool("tracker.override", override)))
	defer span.End()

	outcome := t.sendTrackingData(ctx, override)
	span.SetAttributes(attribute.String("tracker.outcome", outcome.String()))
	return outcome
}

func (t *Tracker) sendTrackingData(ctx context.Context, override bool) Outcome {
	if !t.enabled {
		t.logger.Debug("Tracking not enabled, skipping report")
		return OutcomeDisabled
	}

	ok, outcome := t.decide(ctx, override)
	if !ok {
		t.logger.Debug("Skipping report", "reason", outcome.String(), "override", override)
		return outcome
	}

	if err := settings.SetInt64(ctx, t.store, LastSendOption, t.now().Unix()); err != nil {
		t.logger.Warn("Failed to record send time, skipping report", "error", err)
		return OutcomeStoreFailed
	}

	t.Submit(ctx, t.BuildSnapshot(ctx))
	return OutcomeSent
}
