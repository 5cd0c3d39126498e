package dbus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	notifyInterface = "org.freedesktop.Notifications"
	notifyMember    = "Notify"
)

// Monitor eavesdrops on Notify method calls without claiming ownership
// of the notification service.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onNotify     Handler
	onDisconnect func()
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{logger: logger}
}

// SetNotifyHandler sets the callback for captured notifications.
// The handler runs on the monitor's message-processing goroutine; if it
// blocks, further messages queue behind it.
func (m *Monitor) SetNotifyHandler(h Handler) {
	m.onNotify = h
}

// SetDisconnectHandler sets a callback invoked when the bus connection
// drops and the message loop exits.
func (m *Monitor) SetDisconnectHandler(fn func()) {
	m.onDisconnect = fn
}

// Start connects to the session bus and begins capturing Notify calls.
func (m *Monitor) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	// BecomeMonitor shows us all matching bus traffic. Not every D-Bus
	// version has it, so fall back to eavesdropping via a match rule.
	rules := []string{
		fmt.Sprintf("type='method_call',interface='%s',member='%s'", notifyInterface, notifyMember),
	}
	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		rules,
		uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		return m.startWithAddMatch()
	}

	m.logger.Info("started D-Bus monitor using BecomeMonitor")
	go m.processMessages()
	return nil
}

// startWithAddMatch uses the older AddMatch API for eavesdropping.
func (m *Monitor) startWithAddMatch() error {
	matchRule := fmt.Sprintf("type='method_call',interface='%s',member='%s',eavesdrop='true'",
		notifyInterface, notifyMember)

	err := m.conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch",
		0,
		matchRule,
	).Err
	if err != nil {
		return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
	}

	m.logger.Info("started D-Bus monitor using AddMatch with eavesdrop")
	go m.processMessages()
	return nil
}

// processMessages reads bus messages until the connection closes.
func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if msg.Type != dbus.TypeMethodCall {
			continue
		}
		if msg.Headers[dbus.FieldInterface].Value() != notifyInterface {
			continue
		}
		if msg.Headers[dbus.FieldMember].Value() != notifyMember {
			continue
		}
		m.handleNotify(msg)
	}

	m.logger.Warn("D-Bus message channel closed")
	if m.onDisconnect != nil {
		m.onDisconnect()
	}
}

// handleNotify extracts the consumed fields from a Notify call.
// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
func (m *Monitor) handleNotify(msg *dbus.Message) {
	if len(msg.Body) < 5 {
		m.logger.Warn("malformed Notify call", "body_len", len(msg.Body))
		return
	}

	var n Notification
	var ok bool
	if n.AppName, ok = msg.Body[0].(string); !ok {
		m.logger.Warn("invalid app_name type")
		return
	}
	if n.Summary, ok = msg.Body[3].(string); !ok {
		m.logger.Warn("invalid summary type")
		return
	}
	if n.Body, ok = msg.Body[4].(string); !ok {
		m.logger.Warn("invalid body type")
		return
	}

	m.logger.Debug("captured notification", "app", n.AppName, "summary", n.Summary)

	if m.onNotify != nil {
		m.onNotify(n)
	}
}

// Stop closes the bus connection, ending the message loop.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
