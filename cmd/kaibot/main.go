package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kaibot/internal/agent"
	"kaibot/internal/config"
	"kaibot/internal/provider"
	"kaibot/internal/report"
	"kaibot/internal/store"
	"kaibot/internal/telegram"
	"kaibot/internal/webhook"
)

var version = "dev"

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "kaibot",
		Short:   "Telegram meal and workout tracking assistant",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "path to config file")

	root.AddCommand(initCmd(), serveCmd(), statusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config already exists at %s", configPath)
			}
			if err := config.Save(configPath, config.Defaults()); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", configPath)
			fmt.Println("Set TELEGRAM_BOT_TOKEN and OPENAI_API_KEY, then run: kaibot serve")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check config and provider connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("config:  %s (ok)\n", configPath)
			fmt.Printf("model:   %s\n", cfg.OpenAI.Model)
			fmt.Printf("webhook: %s%s\n", cfg.Webhook.Addr, cfg.Webhook.Path)

			logger := newLogger(cfg.General.LogLevel)
			oai := provider.NewOpenAI(provider.OpenAIConfig{
				APIKey:  cfg.OpenAI.APIKey,
				APIBase: cfg.OpenAI.APIBase,
				Model:   cfg.OpenAI.Model,
				Logger:  logger,
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			if err := oai.Healthy(ctx); err != nil {
				fmt.Printf("openai:  %v\n", err)
				return err
			}
			fmt.Println("openai:  ok")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger := newLogger(cfg.General.LogLevel)

	st, err := store.Open(cfg.Store.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	tg, err := telegram.NewClient(cfg.Telegram.Token, logger)
	if err != nil {
		return err
	}

	oai := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		APIBase: cfg.OpenAI.APIBase,
		Model:   cfg.OpenAI.Model,
		Logger:  logger,
	})
	whisper := provider.NewWhisper(provider.WhisperConfig{
		APIBase: cfg.OpenAI.APIBase,
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.Whisper.Model,
		Logger:  logger,
	})

	registry := agent.NewRegistry(logger)
	agent.RegisterDomainTools(registry, st, st)

	kai := agent.New(agent.Config{
		Provider: oai,
		Tools:    registry,
		Logger:   logger,
	})

	dispatcher := webhook.NewDispatcher(kai, tg, tg, whisper, st, logger)
	process := webhook.NotifyOnDelay(
		time.Duration(cfg.Webhook.DelaySeconds)*time.Second,
		tg, logger, dispatcher.Process,
	)
	server := webhook.NewServer(cfg.Webhook.Addr, cfg.Webhook.Path, process, logger)

	reports := report.NewScheduler(cfg.Reports.ChatID, tg, logger)
	if err := reports.Start(); err != nil {
		return err
	}
	defer reports.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
