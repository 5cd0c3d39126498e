package updates

import (
	"context"
	"errors"
	"log/slog"
)

// Report maps backend name to pending update count. It is rebuilt from
// scratch on every poll; no stale entries survive between polls.
type Report map[string]int

// Aggregator polls a fixed set of backends and merges their counts.
// Each poll is a synchronous sequence of child-process invocations;
// there is no background task and no state carried across polls.
type Aggregator struct {
	backends []Backend
	runner   Runner
	logger   *slog.Logger
}

// NewAggregator creates an aggregator over the given backends.
func NewAggregator(backends []Backend, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		backends: backends,
		runner:   NewRunner(),
		logger:   logger,
	}
}

// SetRunner replaces the command runner. Used by tests.
func (a *Aggregator) SetRunner(r Runner) { a.runner = r }

// Backends returns the immutable backend set in selection order.
func (a *Aggregator) Backends() []Backend { return a.backends }

// Poll queries every backend and returns the merged report. Backends
// are fault-isolated: a broken or vanished command contributes a zero
// count and never aborts the poll.
func (a *Aggregator) Poll(ctx context.Context) Report {
	report := make(Report, len(a.backends))
	for _, b := range a.backends {
		report[b.name] = a.count(ctx, b)
	}
	return report
}

// count runs one backend's command and applies its parse rule.
func (a *Aggregator) count(ctx context.Context, b Backend) int {
	out, err := a.runner.Run(ctx, b.command)

	if b.stderrList {
		// The command fails when updates exist, with the list on stderr.
		// A clean exit means nothing is pending.
		if err == nil {
			return 0
		}
		var runErr *RunError
		if errors.As(err, &runErr) {
			return b.parse(runErr.Stderr)
		}
		a.logger.Debug("backend query failed", "backend", b.name, "error", err)
		return 0
	}

	if err != nil {
		a.logger.Debug("backend query failed", "backend", b.name, "error", err)
		out = ""
	}
	return b.parse(out)
}
