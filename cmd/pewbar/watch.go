package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pewbar/internal/dbus"
	"github.com/jmylchreest/pewbar/internal/notifier"
	"github.com/jmylchreest/pewbar/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch desktop notifications live in the terminal",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	events := make(chan notifier.Event, 64)

	monitor := dbus.NewMonitor(logger)
	monitor.SetNotifyHandler(func(n dbus.Notification) {
		events <- notifier.NewEvent(n)
	})
	if err := monitor.Start(); err != nil {
		return fmt.Errorf("failed to start notification monitor: %w", err)
	}
	defer func() { _ = monitor.Stop() }()

	program := tea.NewProgram(tui.New(events), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
