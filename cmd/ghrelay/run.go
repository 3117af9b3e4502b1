package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ghrelay/ghrelay/internal/config"
	"github.com/ghrelay/ghrelay/internal/fetch"
	"github.com/ghrelay/ghrelay/internal/ghsdk"
	"github.com/ghrelay/ghrelay/internal/logging"
	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/ghrelay/ghrelay/internal/server"
	"github.com/ghrelay/ghrelay/internal/telegram"
	"github.com/ghrelay/ghrelay/internal/version"
	"github.com/ghrelay/ghrelay/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// run wires the relay together and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	ws, err := workspace.NewWorkspace(cfg.DataDir)
	if err != nil {
		return err
	}
	if err := ws.Setup(); err != nil {
		return err
	}
	defer func() {
		if err := ws.Unlock(); err != nil {
			slog.Error("workspace unlock", "error", err)
		}
	}()

	logFile, err := ws.OpenLog()
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(logging.New(os.Stdout, logFile, level))

	slog.Info("ghrelay start", "version", version.Detailed(), "config", cfg)

	gh := ghsdk.New(cfg.GitHubAPIURL, cfg.GitHubToken)
	publisher := ghsdk.NewPublisher(gh, cfg.Repo(), cfg.GitHubReleaseTag)

	sessions := relay.NewSessions()
	pipeline := relay.NewPipeline(sessions, publisher, relay.PipelineConfig{
		SpoolDir: ws.SpoolDir,
	})
	dispatcher := relay.NewDispatcher(sessions, pipeline, fetch.New().Source, relay.DispatcherConfig{
		Repo: cfg.GitHubRepo,
		Tag:  cfg.GitHubReleaseTag,
	})

	bot := telegram.New(telegram.Config{
		AppID:       cfg.TelegramAppID,
		AppHash:     cfg.TelegramAppHash,
		BotToken:    cfg.TelegramBotToken,
		SessionPath: ws.SessionPath,
	}, dispatcher)
	health := server.New(cfg.HealthAddr)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return bot.Run(egCtx)
	})
	eg.Go(func() error {
		return health.Start(egCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
