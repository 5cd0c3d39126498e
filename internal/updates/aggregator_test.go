package updates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner returns canned results keyed by the command's binary.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, argv []string) (string, error) {
	bin := argv[0]
	f.calls = append(f.calls, bin)
	if err, ok := f.errs[bin]; ok {
		return "", err
	}
	return f.outputs[bin], nil
}

func backendsFor(t *testing.T, names ...string) []Backend {
	t.Helper()
	backends := ActiveBackends(names, func(Spec) bool { return true })
	require.Len(t, backends, len(names))
	return backends
}

func TestAggregator_Poll(t *testing.T) {
	backends := backendsFor(t, "pacman", "apt")
	agg := NewAggregator(backends, nil)
	agg.SetRunner(&fakeRunner{outputs: map[string]string{
		"checkupdates": "pkg-a 1.0 -> 1.1\npkg-b 2.0 -> 2.1\n",
		"apt":          "Listing... Done\nlibfoo/stable [upgradable]\n",
	}})

	report := agg.Poll(context.Background())
	assert.Equal(t, Report{"pacman": 2, "apt": 1}, report)
}

func TestAggregator_BackendFailureIsIsolated(t *testing.T) {
	backends := backendsFor(t, "pacman", "apt")
	agg := NewAggregator(backends, nil)
	agg.SetRunner(&fakeRunner{
		outputs: map[string]string{"apt": "header\na\nb\n"},
		errs: map[string]error{
			"checkupdates": &RunError{ExitCode: 2, Err: errors.New("exit status 2")},
		},
	})

	report := agg.Poll(context.Background())
	// The broken backend reports zero; the other is unaffected.
	assert.Equal(t, Report{"pacman": 0, "apt": 2}, report)
}

func TestAggregator_CommandNotFoundIsZero(t *testing.T) {
	backends := backendsFor(t, "apt")
	agg := NewAggregator(backends, nil)
	agg.SetRunner(&fakeRunner{
		errs: map[string]error{"apt": errors.New(`exec: "apt": executable file not found in $PATH`)},
	})

	report := agg.Poll(context.Background())
	assert.Equal(t, Report{"apt": 0}, report)
}

func TestAggregator_CowerListOnStderr(t *testing.T) {
	backends := backendsFor(t, "cower")
	agg := NewAggregator(backends, nil)

	// Non-zero exit with a 5-line payload on stderr means 5 updates.
	agg.SetRunner(&fakeRunner{errs: map[string]error{
		"cower": &RunError{
			ExitCode: 1,
			Stderr:   "aur-a\naur-b\naur-c\naur-d\naur-e\n",
			Err:      errors.New("exit status 1"),
		},
	}})
	assert.Equal(t, Report{"cower": 5}, agg.Poll(context.Background()))

	// A clean exit with empty output means zero updates.
	agg.SetRunner(&fakeRunner{outputs: map[string]string{"cower": ""}})
	assert.Equal(t, Report{"cower": 0}, agg.Poll(context.Background()))
}

func TestAggregator_PollIsIdempotent(t *testing.T) {
	backends := backendsFor(t, "pacman", "apt", "eopkg")
	agg := NewAggregator(backends, nil)
	agg.SetRunner(&fakeRunner{outputs: map[string]string{
		"checkupdates": "a\nb\nc\n",
		"apt":          "header\nx\n",
		"eopkg":        "No packages to upgrade.\n",
	}})

	first := agg.Poll(context.Background())
	second := agg.Poll(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, Report{"pacman": 3, "apt": 1, "eopkg": 0}, first)
}

func TestAggregator_ReportRebuiltEachPoll(t *testing.T) {
	backends := backendsFor(t, "pacman")
	agg := NewAggregator(backends, nil)

	runner := &fakeRunner{outputs: map[string]string{"checkupdates": "a\nb\n"}}
	agg.SetRunner(runner)
	assert.Equal(t, Report{"pacman": 2}, agg.Poll(context.Background()))

	runner.outputs["checkupdates"] = ""
	assert.Equal(t, Report{"pacman": 0}, agg.Poll(context.Background()))
}
