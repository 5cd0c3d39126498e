package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pewbar/internal/updates"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List known package-manager backends and their availability",
	RunE:  runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	nameStyle := lipgloss.NewStyle().Bold(true).Width(8)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	missingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cmdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	for _, spec := range updates.Registry() {
		status := missingStyle.Render("not found")
		switch {
		case spec.Disabled:
			status = missingStyle.Render("not implemented")
		case updates.Available(spec):
			status = okStyle.Render("available")
		}

		fmt.Printf("%s %-16s %s\n",
			nameStyle.Render(spec.Name),
			status,
			cmdStyle.Render(strings.Join(spec.Command, " ")))
	}
	return nil
}
