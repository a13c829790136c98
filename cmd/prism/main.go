package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/queryprism/prism/internal/api"
	"github.com/queryprism/prism/internal/config"
	"github.com/queryprism/prism/internal/logging"
	"github.com/queryprism/prism/internal/session"
	"github.com/queryprism/prism/internal/tui"
)

func main() {
	serverURL := flag.String("server", "", "server base URL (overrides PRISM_SERVER_URL)")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("failed to load configuration:", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	// The terminal belongs to the TUI; the log goes to a file.
	logger := logging.NewFileLogger(cfg.LogFile)
	defer func() { _ = logger.Sync() }()

	client := api.New(api.Config{BaseURL: cfg.ServerURL})
	sess := session.New(session.Config{
		Auth:      client,
		Transport: client,
		Store:     session.NewStore(cfg.CredentialPath()),
		Logger:    logger,
	})
	if err := sess.Initialize(); err != nil {
		// A broken credential file means starting signed out, not crashing.
		logger.Warn("credential restore failed", zap.Error(err))
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Service:        client,
			Session:        sess,
			Logger:         logger,
			ServerURL:      cfg.ServerURL,
			TranscriptPath: cfg.TranscriptPath(),
		}),
		opts...,
	)

	sess.Subscribe(func(authenticated bool) {
		program.Send(tui.SessionMsg{Authenticated: authenticated})
	})

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
