package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/PnL-Guardian/internal/config"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/notify"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pnlg",
	Short: "PnL Guardian - project profit and loss tracking with budget alerts",
	Long: `PnL Guardian tracks project value, expenses and milestones, derives
cost and profit figures on every read, and warns project owners as spending
crosses 50, 75, 90 and 100 percent of the project value.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pnlg/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage opens the configured storage backend.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return storage.NewPostgres(cfg.Storage.DSN)
	default:
		return storage.NewSQLite(cfg.Storage.Path)
	}
}

// initNotifiers creates delivery channels from config.
func initNotifiers(cfg *config.Config) ([]alerts.Notifier, error) {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	if cfg.Alerts.Telegram.Enabled && cfg.Alerts.Telegram.Token != "" {
		tg, err := alerts.NewTelegramNotifier(
			cfg.Alerts.Telegram.Token,
			cfg.Alerts.Telegram.ChatID,
			cfg.Alerts.Telegram.APIURL,
		)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}

	return notifiers, nil
}

// services bundles the wired components a command needs.
type services struct {
	logger  *slog.Logger
	store   storage.Storage
	inbox   *notify.Service
	tracker *tracker.ProjectTracker
}

func (s *services) Close() error {
	return s.store.Close()
}

// initServices opens storage and wires the notification service and the
// project tracker.
func initServices(cfg *config.Config) (*services, error) {
	logger := newLogger(cfg)

	notifiers, err := initNotifiers(cfg)
	if err != nil {
		return nil, fmt.Errorf("init notifiers: %w", err)
	}

	store, err := initStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	inbox := notify.NewService(store, notifiers, logger)
	return &services{
		logger:  logger,
		store:   store,
		inbox:   inbox,
		tracker: tracker.NewProjectTracker(store, inbox, logger),
	}, nil
}
