package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/pewbar/internal/dbus"
)

// Reconnect policy for the bus source.
const (
	maxConnectAttempts = 5
	baseConnectDelay   = time.Second
)

// Source bridges the D-Bus monitor to the module's event channel,
// reconnecting with bounded backoff if the bus is unavailable or the
// connection drops. When the attempt budget is exhausted the source
// gives up and the module stays in its empty, non-urgent state.
type Source struct {
	logger *slog.Logger
	events chan<- Event
}

// NewSource creates a source feeding events into the given channel.
func NewSource(events chan<- Event, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{logger: logger, events: events}
}

// Run connects to the bus and forwards notifications until ctx is
// cancelled or the reconnect budget runs out.
func (s *Source) Run(ctx context.Context) {
	delay := baseConnectDelay

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		monitor := dbus.NewMonitor(s.logger)

		disconnected := make(chan struct{})
		monitor.SetDisconnectHandler(func() { close(disconnected) })
		monitor.SetNotifyHandler(func(n dbus.Notification) {
			select {
			case s.events <- NewEvent(n):
			case <-ctx.Done():
			}
		})

		if err := monitor.Start(); err != nil {
			s.logger.Warn("failed to start notification monitor",
				"attempt", attempt, "error", err)
		} else {
			// Connected: spend the budget afresh on the next drop.
			attempt = 0
			delay = baseConnectDelay

			select {
			case <-ctx.Done():
				_ = monitor.Stop()
				return
			case <-disconnected:
				s.logger.Warn("notification monitor disconnected, reconnecting")
			}
		}

		select {
		case <-ctx.Done():
			_ = monitor.Stop()
			return
		case <-time.After(delay):
		}
		delay *= 2
	}

	s.logger.Error("giving up on notification bus connection",
		"attempts", maxConnectAttempts)
}
