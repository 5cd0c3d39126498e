package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/jmylchreest/pewbar/internal/bar"
)

// ModuleName is the bar module identifier.
const ModuleName = "pew"

// DefaultTimeout is the display window for a captured notification.
const DefaultTimeout = 10 * time.Second

// DefaultTemplate is the render template when none is configured.
const DefaultTemplate = `{{if .Summary}}Pew! {{.Summary}}{{end}}{{if .Body}} | {{.Body}}{{end}}`

// State is the notification snapshot shown on the bar. Writers swap
// whole snapshots and readers load one pointer, so a reader can never
// observe urgent set with both text fields empty.
type State struct {
	Summary string
	Body    string
	Urgent  bool
}

// empty reports whether the snapshot holds no notification.
func (s State) empty() bool {
	return s.Summary == "" && s.Body == ""
}

// SoundPlayer plays a notification sound. Satisfied by audio.Player.
type SoundPlayer interface {
	Play(path string) error
}

// DisplayConfig holds the render-affecting settings, reloadable at
// runtime.
type DisplayConfig struct {
	// Template is a text/template over the State snapshot.
	Template string

	// Timeout is the display window before the notification is cleared.
	Timeout time.Duration

	// Sound is an optional sound file played on capture.
	Sound string
}

// Module bridges asynchronous notification events into the bar's
// pull-based render model. One background goroutine (Run) is the sole
// writer of the state snapshot.
type Module struct {
	logger  *slog.Logger
	state   atomic.Pointer[State]
	events  chan Event
	history *History
	refresh func()
	player  SoundPlayer

	mu      sync.Mutex
	tmpl    *template.Template
	timeout time.Duration
	sound   string
}

// NewModule creates the notification module.
func NewModule(cfg DisplayConfig, logger *slog.Logger) (*Module, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Module{
		logger:  logger,
		events:  make(chan Event, 64),
		history: NewHistory(DefaultHistorySize),
	}
	m.state.Store(&State{})
	if err := m.SetDisplay(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// SetDisplay applies render-affecting settings. Used at construction
// and on config hot-reload.
func (m *Module) SetDisplay(cfg DisplayConfig) error {
	text := cfg.Template
	if text == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New(ModuleName).Parse(text)
	if err != nil {
		return fmt.Errorf("invalid pew template: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	m.mu.Lock()
	m.tmpl = tmpl
	m.timeout = timeout
	m.sound = cfg.Sound
	m.mu.Unlock()
	return nil
}

// SetRefresh sets the callback used to request an out-of-band
// re-render from the engine.
func (m *Module) SetRefresh(fn func()) { m.refresh = fn }

// SetPlayer sets the optional notification sound player.
func (m *Module) SetPlayer(p SoundPlayer) { m.player = p }

// Events returns the channel the bus source feeds. Sends queue while a
// display window is held.
func (m *Module) Events() chan<- Event { return m.events }

// History returns the bounded capture ring.
func (m *Module) History() *History { return m.history }

// Snapshot returns the current notification state.
func (m *Module) Snapshot() State { return *m.state.Load() }

// Name implements bar.Module.
func (m *Module) Name() string { return ModuleName }

// Interval implements bar.Module. Zero: the module push-drives its own
// re-renders and is otherwise cached forever.
func (m *Module) Interval() time.Duration { return 0 }

// Render implements bar.Module as a pure read of the current snapshot.
func (m *Module) Render() []bar.Block {
	state := m.Snapshot()
	if state.empty() {
		return nil
	}

	m.mu.Lock()
	tmpl := m.tmpl
	m.mu.Unlock()

	var buf strings.Builder
	if err := tmpl.Execute(&buf, state); err != nil {
		m.logger.Warn("pew template failed", "error", err)
		return nil
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil
	}
	return []bar.Block{{Name: ModuleName, FullText: text, Urgent: state.Urgent}}
}

// Run consumes captured events until ctx is cancelled. Each event holds
// the display slot for the full timeout before the next one is taken:
// a burst of notifications is shown one at a time, serialized, with
// later events queueing on the channel in the meantime.
func (m *Module) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events:
			m.show(ev)

			m.mu.Lock()
			timeout := m.timeout
			m.mu.Unlock()

			timer := time.NewTimer(timeout)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			m.hide()
		}
	}
}

// show publishes an event as the current snapshot.
func (m *Module) show(ev Event) {
	m.history.Add(ev)
	m.logger.Debug("showing notification", "id", ev.ID, "app", ev.AppName, "summary", ev.Summary)

	urgent := ev.Summary != "" || ev.Body != ""
	m.state.Store(&State{Summary: ev.Summary, Body: ev.Body, Urgent: urgent})
	m.refreshNow()

	m.mu.Lock()
	sound := m.sound
	m.mu.Unlock()
	if sound != "" && m.player != nil {
		go func() {
			if err := m.player.Play(sound); err != nil {
				m.logger.Debug("failed to play notification sound", "file", sound, "error", err)
			}
		}()
	}
}

// hide clears the snapshot after the display window elapses.
func (m *Module) hide() {
	m.state.Store(&State{})
	m.refreshNow()
}

func (m *Module) refreshNow() {
	if m.refresh != nil {
		m.refresh()
	}
}
