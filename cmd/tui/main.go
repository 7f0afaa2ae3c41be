package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"codeberg.org/talespin/server/internal/client"
	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

func main() {
	cfg := config.ParseClientFlags(config.LoadClientConfig(), os.Args[1:])

	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "talespin needs an interactive terminal")
		os.Exit(1)
	}

	// the alt screen owns stdout; logs go to a file instead
	logFile, err := tea.LogToFile("talespin-tui.log", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}

	defer logFile.Close()

	logger.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := client.NewMemoryTokenStore(cfg.Token)
	api := client.New(cfg.Endpoint, tokens)

	streamURL, err := tui.StreamURL(cfg.Endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	stream := tui.NewFeedStream(streamURL, tokens.Token)
	go stream.Run(ctx)

	app := tui.NewApp(api, tui.Options{
		Reconcile:      cfg.Reconcile,
		SerializeLikes: cfg.SerializeLikes,
		Events:         stream.Events(),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	// keeps the session alive while the client runs
	if cfg.Token != "" && !cfg.DisableRefresher {
		refresher := client.NewRefresher(api, tokens, cfg.RefreshInterval)
		refresher.OnExpired(func() {
			p.Send(tui.SessionExpiredMsg{})
		})

		refresher.Start(ctx)
		defer refresher.Stop()
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running talespin: %v\n", err)
		os.Exit(1)
	}
}
