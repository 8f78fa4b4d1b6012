package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vbonduro/infratrack/internal/config"
	"github.com/vbonduro/infratrack/internal/db"
	"github.com/vbonduro/infratrack/internal/logging"
	"github.com/vbonduro/infratrack/internal/notify"
	"github.com/vbonduro/infratrack/internal/notify/local"
	mqttnotify "github.com/vbonduro/infratrack/internal/notify/mqtt"
	"github.com/vbonduro/infratrack/internal/notify/pgnotify"
	redisnotify "github.com/vbonduro/infratrack/internal/notify/redis"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "infratrack",
		Short: "Track the condition of campus infrastructure by pavilion",
		Long: `infratrack records the condition of infrastructure items (lighting,
furniture, plumbing, ...) in the locations of pavilions A to D and serves a
live-updating view of them over HTTP.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (environment variables take precedence)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newStatusCmd())
	return root
}

// app holds what every subcommand needs after startup.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

func setup(cmd *cobra.Command) (*app, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger, cleanup: cleanup}, nil
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	if cfg.TestMode {
		return db.OpenForTesting()
	}
	switch db.Driver(cfg.DBDriver) {
	case db.DriverPostgres:
		return db.Open(db.DriverPostgres, cfg.DatabaseURL)
	default:
		return db.Open(db.DriverSQLite, db.SQLiteDSN(cfg.DBPath))
	}
}

// newFeed builds the change-notification transport named by NOTIFY_BACKEND.
// The returned close func releases its connections.
func newFeed(cfg *config.Config, database *db.DB, logger *slog.Logger) (notify.Feed, func(), error) {
	switch cfg.NotifyBackend {
	case "redis":
		logger.Info("using redis change feed", "addr", cfg.RedisAddr)
		feed := redisnotify.NewFeed(
			redisnotify.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
			cfg.NotifyPrefix, logger)
		return feed, func() {
			if err := feed.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}, nil
	case "postgres":
		logger.Info("using postgres LISTEN/NOTIFY change feed")
		return pgnotify.NewFeed(database.DB, cfg.DatabaseURL, cfg.NotifyPrefix, logger), func() {}, nil
	case "mqtt":
		clientID := cfg.MQTTClientID
		if clientID == "" {
			clientID = "infratrack-" + uuid.NewString()
		}
		logger.Info("using mqtt change feed", "broker", cfg.MQTTBroker, "client_id", clientID)
		client, err := mqttnotify.Connect(cfg.MQTTBroker, clientID, cfg.MQTTUsername, cfg.MQTTPassword)
		if err != nil {
			return nil, nil, err
		}
		feed := mqttnotify.NewFeed(client, cfg.NotifyPrefix, logger)
		return feed, feed.Close, nil
	default:
		logger.Info("using in-process change feed")
		return local.NewBus(), func() {}, nil
	}
}
