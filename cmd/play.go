package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/vincentsto199-blip/Comic/internal/player"
	"github.com/vincentsto199-blip/Comic/internal/shared"
	"github.com/vincentsto199-blip/Comic/internal/ui"
)

// Play launches the interactive browser and player TUI.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.services(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/comictracks-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	r.library.SetLogger(fileLogger)

	bridge := player.NewBridge(r.config.Player, fileLogger)
	controller := player.NewController(bridge, r.config.Player.MountID, fileLogger)
	defer controller.Close()

	model := ui.NewModel(ctx, r.catalog, r.library, r.auth, controller, r.searches)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
