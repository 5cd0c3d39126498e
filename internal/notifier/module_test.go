package notifier

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pewbar/internal/dbus"
)

func newTestModule(t *testing.T, cfg DisplayConfig) *Module {
	t.Helper()
	m, err := NewModule(cfg, nil)
	require.NoError(t, err)
	return m
}

func TestModule_RenderEmptyState(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})
	assert.Nil(t, m.Render())
}

func TestModule_RenderDefaultTemplate(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})
	m.show(Event{Summary: "Pizza's here!", Body: "Get it while it's hot"})

	blocks := m.Render()
	require.Len(t, blocks, 1)
	assert.Equal(t, "Pew! Pizza's here! | Get it while it's hot", blocks[0].FullText)
	assert.True(t, blocks[0].Urgent)

	m.hide()
	assert.Nil(t, m.Render())
}

func TestModule_RenderSummaryOnly(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})
	m.show(Event{Summary: "ding"})

	blocks := m.Render()
	require.Len(t, blocks, 1)
	assert.Equal(t, "Pew! ding", blocks[0].FullText)
}

func TestModule_UrgentImpliesText(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})

	// An event with no text yields a non-urgent snapshot and no block.
	m.show(Event{AppName: "empty-app"})
	state := m.Snapshot()
	assert.False(t, state.Urgent)
	assert.Nil(t, m.Render())

	m.show(Event{Body: "just a body"})
	state = m.Snapshot()
	assert.True(t, state.Urgent)
	assert.False(t, state.Summary == "" && state.Body == "")
}

func TestModule_CustomTemplate(t *testing.T) {
	m := newTestModule(t, DisplayConfig{Template: `[{{.Summary}}]`})
	m.show(Event{Summary: "hello"})

	blocks := m.Render()
	require.Len(t, blocks, 1)
	assert.Equal(t, "[hello]", blocks[0].FullText)
}

func TestModule_InvalidTemplate(t *testing.T) {
	_, err := NewModule(DisplayConfig{Template: `{{.Summary`}, nil)
	assert.Error(t, err)
}

func TestModule_SetDisplayKeepsStateIntact(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})
	m.show(Event{Summary: "still here"})

	require.NoError(t, m.SetDisplay(DisplayConfig{Template: `>> {{.Summary}}`}))
	blocks := m.Render()
	require.Len(t, blocks, 1)
	assert.Equal(t, ">> still here", blocks[0].FullText)
}

func TestModule_MultilineBodyFlattened(t *testing.T) {
	m := newTestModule(t, DisplayConfig{})
	ev := NewEvent(dbus.Notification{
		AppName: "signal",
		Summary: "Mom",
		Body:    "Cops just left.\nYou can come in now.",
	})
	m.show(ev)

	blocks := m.Render()
	require.Len(t, blocks, 1)
	assert.Equal(t, "Pew! Mom | Cops just left. You can come in now.", blocks[0].FullText)
}

func TestModule_RunSerializesBurst(t *testing.T) {
	m := newTestModule(t, DisplayConfig{Timeout: 20 * time.Millisecond})

	var refreshes atomic.Int32
	m.SetRefresh(func() { refreshes.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Two events back to back. The second must wait out the first's
	// display window before it is shown.
	m.Events() <- Event{ID: "1", Summary: "first"}
	m.Events() <- Event{ID: "2", Summary: "second"}

	waitFor(t, func() bool { return m.Snapshot().Summary == "first" })
	waitFor(t, func() bool { return m.Snapshot().Summary == "second" })
	waitFor(t, func() bool { return m.Snapshot().Summary == "" })

	// show+hide per event: at least four refreshes.
	assert.GreaterOrEqual(t, refreshes.Load(), int32(4))
	assert.Equal(t, 2, m.History().Len())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestModule_RunClearsAfterTimeout(t *testing.T) {
	m := newTestModule(t, DisplayConfig{Timeout: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.Events() <- Event{Summary: "transient"}
	waitFor(t, func() bool { return m.Snapshot().Summary == "transient" })
	waitFor(t, func() bool { return m.Snapshot().empty() })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
