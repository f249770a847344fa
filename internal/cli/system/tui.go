package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	lapsed, err := ctx.Tracker.ValidateAll(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to validate streaks: %w", err)
	}

	p := tea.NewProgram(tui.NewModel(ctx.Context(), ctx.Tracker, lapsed), tea.WithAltScreen(), tea.WithContext(ctx.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI exited with error: %w", err)
	}
	return nil
}
