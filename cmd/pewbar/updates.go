package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/pewbar/internal/updates"
)

var updatesOpts struct {
	output string
}

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Query package managers for pending updates",
	Long: `Polls every available package-manager backend once and prints the
pending update count per backend.

With a custom template configured, only the backends the template
references are polled, matching what pewbard shows on the bar.`,
	RunE: runUpdates,
}

func init() {
	updatesCmd.Flags().StringVarP(&updatesOpts.output, "output", "o", "plain",
		"Output format: plain, json, or yaml")
	rootCmd.AddCommand(updatesCmd)
}

func runUpdates(cmd *cobra.Command, args []string) error {
	var refs []string
	if cfg.Updates.Template != "" {
		refs = updates.TemplateRefs(cfg.Updates.Template)
	}

	backends := updates.ActiveBackends(refs, updates.Available)
	if len(backends) == 0 {
		fmt.Println("no package-manager backends available")
		return nil
	}

	agg := updates.NewAggregator(backends, logger)
	report := agg.Poll(context.Background())

	switch updatesOpts.output {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	case "plain":
		printReport(backends, report)
	default:
		return fmt.Errorf("unknown output format: %s", updatesOpts.output)
	}
	return nil
}

// printReport renders counts with the configured threshold colors.
func printReport(backends []updates.Backend, report updates.Report) {
	thresholds := cfg.UpdatesThresholds()
	nameStyle := lipgloss.NewStyle().Bold(true).Width(8)

	total := 0
	for _, b := range backends {
		count := report[b.Name()]
		total += count

		countStyle := lipgloss.NewStyle()
		if hex := thresholds.Resolve(count); hex != "" {
			countStyle = countStyle.Foreground(lipgloss.Color(hex))
		}
		fmt.Printf("%s %s\n", nameStyle.Render(b.Name()), countStyle.Render(fmt.Sprintf("%d", count)))
	}

	if total == 0 {
		fmt.Println(updates.NoUpdatesText)
	}
}
