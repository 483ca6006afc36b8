package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popui/internal/config"
	"github.com/jmylchreest/popui/internal/popup"
	"github.com/jmylchreest/popui/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Launch the interactive popup demo",
	Long: `Launch a terminal demo that exercises the popup controller.

Key bindings:
  t           Show a toast (auto-close, slide-down)
  m           Show a modal (handles back itself)
  a           Show an alert (no animation)
  esc         Back key; unhandled presses close the screen
  x           Tap the topmost popup's backdrop
  r           Remove all popups
  y           Dump registry state as YAML
  ?           Toggle help
  q           Quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctrl := popup.New(popup.Globals{
		MaskColor:       cfg.Mask.Color,
		MaskAnimatable:  cfg.Mask.Animatable,
		MaskDuration:    cfg.MaskDuration(),
		DefaultDuration: cfg.DefaultDuration(),
	}, logger)
	defer ctrl.Close()

	// Bind the package-level facade for the lifetime of the demo.
	popup.Use(ctrl)
	defer popup.Release(ctrl)

	// Re-apply mask settings when the config file changes on disk.
	cfgPath := globalOpts.configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	watcher, err := config.NewFileWatcher(cfgPath, func(next *config.Config) {
		ctrl.SetMask(next.Mask.Color, next.Mask.Animatable)
	})
	if err == nil {
		if err := watcher.Start(); err != nil {
			logger.Warn("config watcher not started", "error", err)
		}
		defer watcher.Stop()
	} else {
		logger.Warn("config watcher unavailable", "error", err)
	}

	model := tui.NewModel(cfg, ctrl)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
