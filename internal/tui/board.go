package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShawrmaM8/Tracktion/internal/engine"
)

// RunBoard opens the interactive view of the given date's plan.
func RunBoard(ctx context.Context, svc *engine.Service, date string, out io.Writer) error {
	m := newPlanModel(ctx, svc, date)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
