package main

import (
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/filkovsp/WEB-Drawing-App/internal/config"
	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/raster"
	"github.com/filkovsp/WEB-Drawing-App/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	level, _ := cfg.Level()

	// The terminal belongs to the UI, so logs only go to a file when asked.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	newEngine := func(w, h int) (*engine.Engine, error) {
		opts := append(cfg.EngineOptions(),
			engine.WithLogger(logger),
			engine.WithSurfaceFactory(raster.Factory),
		)
		return engine.New(w, h, opts...)
	}

	p := tea.NewProgram(
		tui.New(newEngine),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
