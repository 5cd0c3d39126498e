package updates

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/jmylchreest/pewbar/internal/bar"
)

// ModuleName is the bar module identifier.
const ModuleName = "updates"

// DefaultInterval is how long a poll result stays cached.
const DefaultInterval = 600 * time.Second

// NoUpdatesText is shown when every backend reports zero.
const NoUpdatesText = "No Updates"

// DisplayConfig holds the render-affecting settings. These may change
// on config hot-reload; the backend set never does.
type DisplayConfig struct {
	// Template is an optional text/template over {Counts, Colors}. Empty
	// selects the auto-derived per-backend block rendering.
	Template string

	// Interval is the poll cache lifetime.
	Interval time.Duration

	// Thresholds is the count-to-color table.
	Thresholds Thresholds
}

// Module renders pending update counts as status line blocks.
type Module struct {
	logger *slog.Logger
	agg    *Aggregator

	mu         sync.Mutex
	tmpl       *template.Template // nil = auto rendering
	colorRefs  []string
	interval   time.Duration
	thresholds Thresholds
}

// templateData is what custom templates execute against.
type templateData struct {
	Counts Report
	Colors map[string]string
}

// tmplRefPattern matches backend names referenced by a custom template,
// e.g. {{.Counts.apt}} or {{.Colors.pacman}}.
var tmplRefPattern = regexp.MustCompile(`\.(Counts|Colors)\.([A-Za-z0-9_]+)`)

// TemplateRefs returns the backend names a template's count
// placeholders reference.
func TemplateRefs(text string) []string {
	return refsOf(text, "Counts")
}

// ColorRefs returns the backend names a template's color placeholders
// reference.
func ColorRefs(text string) []string {
	return refsOf(text, "Colors")
}

func refsOf(text, field string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, m := range tmplRefPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != field || seen[m[2]] {
			continue
		}
		seen[m[2]] = true
		refs = append(refs, m[2])
	}
	return refs
}

// NewModule creates the updates module over an already-selected
// aggregator. cfg.Template must reference only valid template syntax;
// backend names it mentions that have no active backend simply render
// as zero.
func NewModule(agg *Aggregator, cfg DisplayConfig, logger *slog.Logger) (*Module, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Module{
		logger: logger,
		agg:    agg,
	}
	if err := m.SetDisplay(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// SetDisplay applies render-affecting settings. Used at construction
// and on config hot-reload.
func (m *Module) SetDisplay(cfg DisplayConfig) error {
	var tmpl *template.Template
	var colorRefs []string
	if cfg.Template != "" {
		t, err := template.New(ModuleName).Parse(cfg.Template)
		if err != nil {
			return fmt.Errorf("invalid updates template: %w", err)
		}
		tmpl = t
		colorRefs = ColorRefs(cfg.Template)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	thresholds := cfg.Thresholds
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	if err := thresholds.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.tmpl = tmpl
	m.colorRefs = colorRefs
	m.interval = interval
	m.thresholds = thresholds
	m.mu.Unlock()
	return nil
}

// Name implements bar.Module.
func (m *Module) Name() string { return ModuleName }

// Interval implements bar.Module.
func (m *Module) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// Render polls every backend and formats the merged report.
func (m *Module) Render() []bar.Block {
	report := m.agg.Poll(context.Background())

	m.mu.Lock()
	tmpl := m.tmpl
	colorRefs := m.colorRefs
	thresholds := m.thresholds
	m.mu.Unlock()

	if tmpl == nil {
		return autoBlocks(report, m.agg.Backends(), thresholds)
	}
	return m.templateBlocks(tmpl, colorRefs, report, thresholds)
}

// autoBlocks renders the derived format: a label block and a colored
// count block per backend with pending updates, in registry order, with
// a fallback when nothing is pending.
func autoBlocks(report Report, backends []Backend, thresholds Thresholds) []bar.Block {
	var blocks []bar.Block
	for _, b := range backends {
		count := report[b.name]
		if count == 0 {
			continue
		}
		blocks = append(blocks,
			bar.Block{
				Name:      ModuleName,
				Instance:  b.name,
				FullText:  capitalize(b.name) + " ",
				Separator: bar.NoSeparator(),
			},
			bar.Block{
				Name:     ModuleName,
				Instance: b.name,
				FullText: fmt.Sprintf("%d", count),
				Color:    thresholds.Resolve(count),
			},
		)
	}
	if blocks == nil {
		blocks = []bar.Block{{Name: ModuleName, FullText: NoUpdatesText}}
	}
	return blocks
}

// templateBlocks renders a custom template into a single block.
func (m *Module) templateBlocks(tmpl *template.Template, colorRefs []string, report Report, thresholds Thresholds) []bar.Block {
	colors := make(map[string]string, len(colorRefs))
	for _, name := range colorRefs {
		if count, ok := report[name]; ok {
			colors[name] = thresholds.Resolve(count)
		}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, templateData{Counts: report, Colors: colors}); err != nil {
		m.logger.Warn("updates template failed", "error", err)
		return nil
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		text = NoUpdatesText
	}
	return []bar.Block{{Name: ModuleName, FullText: text}}
}

// capitalize upper-cases the first letter of a backend name for its
// display label.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
