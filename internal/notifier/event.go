// Package notifier surfaces the most recent desktop notification on
// the status line for a fixed display window.
package notifier

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/pewbar/internal/dbus"
)

// Event is one captured notification, normalized for single-line
// display.
type Event struct {
	// ID is a ULID assigned at capture time.
	ID      string
	Time    time.Time
	AppName string
	Summary string
	Body    string
}

// NewEvent builds an Event from a captured bus notification. Embedded
// newlines are joined with single spaces so multi-line notifications
// render on one bar line.
func NewEvent(n dbus.Notification) Event {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	ev := Event{
		Time:    time.Now(),
		AppName: n.AppName,
		Summary: flatten(n.Summary),
		Body:    flatten(n.Body),
	}
	if err == nil {
		ev.ID = id.String()
	}
	return ev
}

// flatten joins embedded newlines with a single space.
func flatten(s string) string {
	return strings.Join(strings.Split(s, "\n"), " ")
}
