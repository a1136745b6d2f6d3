package cmd

import (
	"fmt"
	"io"

	"labscrub/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive TUI (same as default)",
	Long: `Start the Terminal User Interface (TUI) for the cleanup passes.
This provides an interactive interface for analyzing courses, flagging the
registry, running cleanup profiles, verifying and restoring the backup.

Note: This is the same as running the program without any commands.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	model, err := tui.NewModel(cfg)
	if err != nil {
		return err
	}

	// results are rendered on screen; log lines would tear the alt screen
	out := log.StandardLogger().Out
	log.SetOutput(io.Discard)
	defer log.SetOutput(out)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
