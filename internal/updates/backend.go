// Package updates aggregates pending-update counts from the package
// managers present on the system.
//
// Each supported package manager is a backend: a fixed query command
// plus a rule for turning its output into a count. Backends are
// selected once at startup (binary presence probe plus, when a custom
// template is configured, the set of names the template references)
// and are immutable afterwards; only the command output changes
// between polls.
package updates

import (
	"os/exec"
	"strings"
)

// ParseFunc turns a backend's captured output into an update count.
// Implementations must tolerate empty output and stray blank lines and
// report zero rather than failing.
type ParseFunc func(output string) int

// Spec describes one registry entry.
type Spec struct {
	// Name is the stable backend identifier, used as the report key and
	// the template placeholder.
	Name string

	// Command is the query argv, executed without a shell.
	Command []string

	// Parse is the count-extraction rule. Nil selects the generic
	// line-count rule.
	Parse ParseFunc

	// StderrList marks backends (cower) whose command is expected to
	// fail when updates exist, carrying the list on stderr. A clean exit
	// means zero updates.
	StderrList bool

	// Disabled marks registered-but-unimplemented backends (pkg). They
	// never become active.
	Disabled bool
}

// Registry returns the known backends in display order.
func Registry() []Spec {
	return []Spec{
		{Name: "pacman", Command: []string{"checkupdates"}},
		{Name: "cower", Command: []string{"cower", "-u"}, StderrList: true},
		{Name: "yay", Command: []string{"yay", "--query", "--upgrades", "--aur"}},
		{Name: "apk", Command: []string{"apk", "version", "-l", `"<"`}, Parse: parseSkipHeader},
		{Name: "apt", Command: []string{"apt", "list", "--upgradeable"}, Parse: parseSkipHeader},
		{Name: "eopkg", Command: []string{"eopkg", "list-upgrades"}, Parse: parseEopkg},
		{Name: "pkg", Command: []string{"pkg", "upgrade", "--dry-run", "--quiet"}, Disabled: true},
		{Name: "xbps", Command: []string{"xbps-install", "--update", "--dry-run"}},
		{Name: "zypper", Command: []string{"zypper", "list-updates"}, Parse: parseZypper},
	}
}

// Backend is one selected package-manager query.
type Backend struct {
	name       string
	command    []string
	parse      ParseFunc
	stderrList bool
}

// Name returns the backend's identifier.
func (b Backend) Name() string { return b.name }

// Command returns the backend's query argv.
func (b Backend) Command() []string { return b.command }

// newBackend builds a Backend from a registry entry, falling back to
// the generic line-count rule when no custom parser is registered.
func newBackend(spec Spec) Backend {
	parse := spec.Parse
	if parse == nil {
		parse = CountLines
	}
	return Backend{
		name:       spec.Name,
		command:    spec.Command,
		parse:      parse,
		stderrList: spec.StderrList,
	}
}

// lookPath is swappable in tests.
var lookPath = exec.LookPath

// Available reports whether the backend's binary is on PATH.
func Available(spec Spec) bool {
	if len(spec.Command) == 0 {
		return false
	}
	_, err := lookPath(spec.Command[0])
	return err == nil
}

// ActiveBackends selects the backends to poll. refs is the set of
// backend names a custom template references; nil means no template is
// configured and every present, enabled registry entry is selected in
// registry order. avail is the binary presence probe.
func ActiveBackends(refs []string, avail func(Spec) bool) []Backend {
	var wanted map[string]bool
	if refs != nil {
		wanted = make(map[string]bool, len(refs))
		for _, name := range refs {
			wanted[name] = true
		}
	}

	var backends []Backend
	for _, spec := range Registry() {
		if spec.Disabled {
			continue
		}
		if wanted != nil && !wanted[spec.Name] {
			continue
		}
		if !avail(spec) {
			continue
		}
		backends = append(backends, newBackend(spec))
	}
	return backends
}

// splitLines splits output the way the parse rules count it: a single
// trailing newline does not produce an extra line, and empty output has
// no lines at all.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// CountLines is the generic parse rule: one update per output line.
func CountLines(output string) int {
	return len(splitLines(output))
}

// parseSkipHeader drops one header line before counting (apt, apk).
func parseSkipHeader(output string) int {
	n := CountLines(output)
	if n > 0 {
		n--
	}
	return n
}

// parseEopkg treats the "nothing to do" sentinel as zero updates.
func parseEopkg(output string) int {
	if strings.Contains(output, "No packages to upgrade.") {
		return 0
	}
	return CountLines(output)
}

// parseZypper drops blank lines and the 4-line table header, then
// counts the remaining rows.
func parseZypper(output string) int {
	var rows int
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows++
	}
	rows -= 4 // header and separator rows
	if rows < 0 {
		rows = 0
	}
	return rows
}
