package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songscan/internal/pipeline"
	"github.com/desertthunder/songscan/internal/ui"
)

// Tui runs an interactive scan of an audio file in the terminal.
func (r *Runner) Tui(ctx context.Context, path string) error {
	upload, err := pipeline.AcceptFile(path)
	if err != nil {
		return err
	}

	r.ensureHistory()
	model := ui.NewModel(ctx, r.engine, upload)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(ui.Model); ok {
		if _, runErr := m.Result(); runErr != nil {
			return runErr
		}
	}
	return nil
}
