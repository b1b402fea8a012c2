package notify

import (
	"context"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/pkg/logger"
)

var (
	_ ports.Notifier    = (*LogNotifier)(nil)
	_ ports.ActivityLog = (*LogActivity)(nil)
)

// LogNotifier writes notifications to the structured log. It stands in for
// the real delivery channel; delivery failure can never reach the caller.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier builds the notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(_ context.Context, msg ports.Notification) {
	n.log.Info().
		Str("kind", msg.Kind).
		Str("audience", msg.Audience).
		Str("station_id", msg.StationID).
		Str("title", msg.Title).
		Str("message", msg.Message).
		Msg("notification emitted")
}

// LogActivity records audit entries to the structured log.
type LogActivity struct {
	log *logger.Logger
}

// NewLogActivity builds the activity log.
func NewLogActivity(log *logger.Logger) *LogActivity {
	return &LogActivity{log: log}
}

// Record logs one audit entry.
func (a *LogActivity) Record(_ context.Context, actor, action, detail string) {
	a.log.Info().
		Str("actor", actor).
		Str("action", action).
		Str("detail", detail).
		Msg("activity")
}
