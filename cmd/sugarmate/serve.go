package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sugarmate/internal/assist"
	"sugarmate/internal/bot"
	"sugarmate/internal/config"
	"sugarmate/internal/groupme"
	"sugarmate/internal/healthlog"
	"sugarmate/internal/history"
	"sugarmate/internal/llm"
	"sugarmate/internal/prefs"
	"sugarmate/internal/scheduler"
	"sugarmate/internal/server"
	"sugarmate/internal/storage"
	"sugarmate/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the GroupMe webhook server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.ReminderSweep {
		sched := scheduler.New(cfg.Location(), logger)
		sched.SetSweepFunction(handler.SweepReminders)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(handler, logger, server.WithHandleTimeout(handleBudget(cfg))).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func buildHandler(cfg *config.Config, logger *zap.Logger) (*bot.Handler, error) {
	prefsDoc, err := storage.NewJSONFile(cfg.PreferencesFilePath)
	if err != nil {
		return nil, fmt.Errorf("init preferences file: %w", err)
	}
	healthDoc, err := storage.NewJSONFile(cfg.HealthLogFilePath)
	if err != nil {
		return nil, fmt.Errorf("init health log file: %w", err)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return nil, err
	}

	deps := bot.Deps{
		BotName:  cfg.BotName,
		Prefs:    prefs.NewStore(prefsDoc, logger),
		Health:   healthlog.NewStore(healthDoc, logger),
		Notifier: notifier,
		Logger:   logger,
		Location: cfg.Location(),
	}

	var extractor bot.HealthExtractor
	if cfg.AIEnabled() {
		client, err := llm.NewFactory(cfg).CreateClient(cfg.LLMProvider)
		if err != nil {
			logger.Warn("language model unavailable, running keyword rules only", zap.Error(err))
		} else {
			historyDoc, err := storage.NewJSONFile(cfg.ChatHistoryFilePath)
			if err != nil {
				return nil, fmt.Errorf("init chat history file: %w", err)
			}
			extractor = assist.NewExtractor(client)
			deps.Responder = assist.NewResponder(client, history.NewManager(historyDoc, logger), readSystemPrompt(cfg.SystemPromptPath))
			logger.Info("language model enabled", zap.String("provider", string(cfg.LLMProvider)))
		}
	} else {
		logger.Info("no language model credentials, running keyword rules only")
	}
	deps.Classifier = bot.NewClassifier(extractor, logger)

	return bot.NewHandler(deps), nil
}

// handleBudget covers the most outbound calls one message can make: an
// extraction, a conversational reply and two deliveries.
func handleBudget(cfg *config.Config) time.Duration {
	return 4 * cfg.OutboundTimeout
}

func newNotifier(cfg *config.Config) (bot.Notifier, error) {
	switch config.NotifierKind(strings.ToLower(string(cfg.Notifier))) {
	case config.NotifierTelegram:
		n, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.OutboundTimeout)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return groupme.NewClient(cfg.GroupMeBotID, cfg.GroupMePostURL, cfg.OutboundTimeout), nil
	}
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("system prompt not loaded, using default", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(data)
}
