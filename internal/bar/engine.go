package bar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// header is the protocol preamble emitted once before the block stream.
type header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events"`
}

// cacheEntry holds a module's last rendered blocks and when they expire.
type cacheEntry struct {
	blocks  []Block
	expires time.Time // zero = cache forever
}

// Engine drives the status line. It renders modules on their intervals,
// accepts out-of-band refresh requests, and writes protocol frames.
type Engine struct {
	mu      sync.Mutex
	logger  *slog.Logger
	w       io.Writer
	modules []Module
	cache   map[string]*cacheEntry

	refreshCh chan string
	first     bool
}

// NewEngine creates an engine writing protocol frames to w.
func NewEngine(w io.Writer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:    logger,
		w:         w,
		cache:     make(map[string]*cacheEntry),
		refreshCh: make(chan string, 16),
		first:     true,
	}
}

// Register adds a module to the end of the status line.
// Modules must be registered before Run is called.
func (e *Engine) Register(m Module) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modules = append(e.modules, m)
}

// Refresh asks the engine to re-render the named module and emit a new
// frame. Safe to call from any goroutine; drops the request if the
// engine is saturated rather than blocking the caller.
func (e *Engine) Refresh(name string) {
	select {
	case e.refreshCh <- name:
	default:
		e.logger.Debug("refresh request dropped", "module", name)
	}
}

// RefreshFunc returns a refresh callback bound to the given module name.
func (e *Engine) RefreshFunc(name string) func() {
	return func() { e.Refresh(name) }
}

// Run emits the protocol header and then frames until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.writeHeader(); err != nil {
		return err
	}

	// Initial render of everything.
	e.renderAll(time.Now())
	if err := e.writeFrame(); err != nil {
		return err
	}

	for {
		now := time.Now()
		wait := e.nextDue(now)

		var timer *time.Timer
		var timerCh <-chan time.Time
		if wait >= 0 {
			timer = time.NewTimer(wait)
			timerCh = timer.C
		}

		var err error
		select {
		case <-ctx.Done():
			err = ctx.Err()

		case name := <-e.refreshCh:
			e.renderOne(name, time.Now())
			err = e.writeFrame()

		case <-timerCh:
			e.renderDue(time.Now())
			err = e.writeFrame()
		}

		if timer != nil {
			timer.Stop()
		}
		if err != nil {
			return err
		}
	}
}

// nextDue returns how long until the earliest cache expiry, or a
// negative duration when every module caches forever.
func (e *Engine) nextDue(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	var earliest time.Time
	for _, entry := range e.cache {
		if entry.expires.IsZero() {
			continue
		}
		if earliest.IsZero() || entry.expires.Before(earliest) {
			earliest = entry.expires
		}
	}
	if earliest.IsZero() {
		return -1
	}
	wait := earliest.Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

// renderAll renders every registered module.
func (e *Engine) renderAll(now time.Time) {
	for _, m := range e.modules {
		e.render(m, now)
	}
}

// renderDue re-renders modules whose cache has expired.
func (e *Engine) renderDue(now time.Time) {
	for _, m := range e.modules {
		e.mu.Lock()
		entry := e.cache[m.Name()]
		due := entry == nil || (!entry.expires.IsZero() && !entry.expires.After(now))
		e.mu.Unlock()
		if due {
			e.render(m, now)
		}
	}
}

// renderOne re-renders a single module by name.
func (e *Engine) renderOne(name string, now time.Time) {
	for _, m := range e.modules {
		if m.Name() == name {
			e.render(m, now)
			return
		}
	}
	e.logger.Debug("refresh for unknown module", "module", name)
}

// render invokes a module and stores its blocks with a fresh expiry.
func (e *Engine) render(m Module, now time.Time) {
	blocks := m.Render()

	entry := &cacheEntry{blocks: blocks}
	if iv := m.Interval(); iv > 0 {
		entry.expires = now.Add(iv)
	}

	e.mu.Lock()
	e.cache[m.Name()] = entry
	e.mu.Unlock()
}

// writeHeader emits the protocol header and opens the infinite array.
func (e *Engine) writeHeader() error {
	data, err := json.Marshal(header{Version: 1})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "%s\n[\n", data); err != nil {
		return fmt.Errorf("failed to write protocol header: %w", err)
	}
	return nil
}

// writeFrame emits one array of blocks in module registration order.
func (e *Engine) writeFrame() error {
	e.mu.Lock()
	var blocks []Block
	for _, m := range e.modules {
		if entry := e.cache[m.Name()]; entry != nil {
			blocks = append(blocks, entry.blocks...)
		}
	}
	first := e.first
	e.first = false
	e.mu.Unlock()

	if blocks == nil {
		blocks = []Block{}
	}

	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}

	prefix := ""
	if !first {
		prefix = ","
	}
	if _, err := fmt.Fprintf(e.w, "%s%s\n", prefix, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
