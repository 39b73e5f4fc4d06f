package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wavelet/internal/audio"
	"github.com/desertthunder/wavelet/internal/player"
	"github.com/desertthunder/wavelet/internal/repositories"
	"github.com/desertthunder/wavelet/internal/shared"
	"github.com/desertthunder/wavelet/internal/ui"
	"github.com/urfave/cli/v3"
)

// playerOptions resolves the playback policies from flags, falling back to the [player] config section.
func (r *Runner) playerOptions(cmd *cli.Command) (player.RestartOnPlayPolicy, player.TickPolicy, error) {
	restartName := cmd.String("restart")
	if restartName == "" {
		restartName = r.config.Player.RestartOnPlay
	}
	restart, err := player.ParseRestartPolicy(restartName)
	if err != nil {
		return restart, player.TickPolicy{}, err
	}

	tickName := cmd.String("tick")
	if tickName == "" {
		tickName = r.config.Player.TickMode
	}
	tick, err := player.ParseTickPolicy(tickName)
	if err != nil {
		return restart, tick, err
	}
	return restart, tick, nil
}

// Play launches the interactive player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	restart, tick, err := r.playerOptions(cmd)
	if err != nil {
		return err
	}
	if restart == player.RestartFromZero {
		r.logger.Warn("restart_on_play is \"restart\": resuming a paused track starts it from the beginning")
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.Player.LogPath
	if logPath == "" {
		logPath = "./tmp/wavelet-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	p := player.New(player.Options{
		Restart:  restart,
		Tick:     tick,
		Loader:   audio.NewProbe(audio.ProbeOpts{HTTPClient: r.httpClient, Logger: r.logger}),
		Resolver: catalog,
		Logger:   r.logger,
	})
	defer p.Close()

	bridge := player.NewBridge(r.logger)
	if err := bridge.Attach(ctx, p); err != nil {
		return err
	}
	defer bridge.Detach()

	r.logger.Info("starting player", "restart", restart, "tick", tick.Name)

	model := ui.NewModel(ctx, ui.Options{
		Catalog:  catalog,
		Handle:   bridge,
		Player:   p,
		Likes:    repositories.NewLikeRepository(db),
		Statuses: r.config.Catalog.Statuses,
		Samples:  r.config.Player.WaveformSamples,
		Logger:   r.logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
