package auth

import (
	"context"

	"github.com/goliatone/go-training/pkg/backend"
)

// BestEffortNotifier wraps a backend.Notifier so dispatch failures are
// recorded but never propagated. Secondary side effects must not fail the
// primary operation that triggered them.
type BestEffortNotifier struct {
	notifier  backend.Notifier
	telemetry Telemetry
}

// NewBestEffortNotifier wraps notifier. A nil notifier yields a wrapper
// whose Notify is a no-op.
func NewBestEffortNotifier(notifier backend.Notifier, telemetry Telemetry) *BestEffortNotifier {
	return &BestEffortNotifier{notifier: notifier, telemetry: normalizeTelemetry(telemetry)}
}

// Notify dispatches the event and swallows any error.
func (n *BestEffortNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	if n == nil || n.notifier == nil {
		return
	}
	if err := n.notifier.Notify(ctx, event, payload); err != nil {
		n.telemetry.Record(ctx, "auth.notify_error", map[string]any{
			"event": event,
			"error": err.Error(),
		})
	}
}
