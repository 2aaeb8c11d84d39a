package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/matt-steen/remindlist/pkg/clock"
	"github.com/matt-steen/remindlist/pkg/config"
	"github.com/matt-steen/remindlist/pkg/controller"
	"github.com/matt-steen/remindlist/pkg/db"
	"github.com/matt-steen/remindlist/pkg/retention"
	"github.com/matt-steen/remindlist/pkg/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	filePerms = 0o666
	dirPerms  = 0o755
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:          "remindlist",
		Short:        "Checklists with minute-precision reminders, in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.DBFilename, "db", config.EnvOr("REMINDLIST_DB", cfg.DBFilename), "Path to the sqlite db")
	flags.StringVar(&cfg.LogFilename, "log", config.EnvOr("REMINDLIST_LOG", cfg.LogFilename), "Path to the debug log")
	flags.StringVar(&cfg.LogLevel, "log-level", config.EnvOr("REMINDLIST_LOG_LEVEL", cfg.LogLevel), "Log level (debug|info|warn|error)")
	flags.StringVar(&cfg.MongoURI, "mongo-uri", config.EnvOr("REMINDLIST_MONGO_URI", ""), "Store data in MongoDB at this URI instead of sqlite")
	flags.StringVar(&cfg.MongoDB, "mongo-db", config.EnvOr("REMINDLIST_MONGO_DB", cfg.MongoDB), "MongoDB database name")
	flags.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "How often reminders and completed items are checked")
	flags.BoolVar(&cfg.PurgeUndated, "purge-undated", false, "Also sweep completed items that have no completion time")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return cfg.Validate()
	}

	cmd.AddCommand(newListCmd(&cfg))
	cmd.AddCommand(newSweepCmd(&cfg))

	return cmd
}

func newListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all lists as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			coll, _, err := store.Load(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(coll.Notes)
		},
	}
}

func newSweepCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove items completed before today and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			closeLog, err := setupLogging(*cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := openStore(ctx, *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := session.New(ctx, store, session.Options{
				Clock:        clock.System{},
				Policy:       retention.Policy{PurgeUndated: cfg.PurgeUndated},
				PollInterval: cfg.PollInterval,
			})
			if err != nil {
				return err
			}

			removed := sess.Sweep()
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d completed item(s)\n", removed)

			return nil
		},
	}
}

func runApp(ctx context.Context, cfg config.Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info().Msg("starting application...")

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	notifier, err := controller.NewNotifier(ctx, store)
	if err != nil {
		return err
	}

	sess, err := session.New(ctx, store, session.Options{
		Clock:        clock.System{},
		Notifier:     notifier,
		Policy:       retention.Policy{PurgeUndated: cfg.PurgeUndated},
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess.Start(ctx)
	defer sess.Stop()

	ctrl, err := controller.NewController(ctx, sess, notifier)
	if err != nil {
		return err
	}

	return ctrl.Go()
}

func setupLogging(cfg config.Config) (func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFilename), dirPerms); err != nil {
		return nil, fmt.Errorf("error creating log dir: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFilename, os.O_RDWR|os.O_CREATE|os.O_APPEND, fs.FileMode(filePerms))
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = log.With().Caller().Logger().Output(zerolog.ConsoleWriter{
		Out: logFile, TimeFormat: "2006-01-02_15:04:05",
	})

	return func() { logFile.Close() }, nil
}

func openStore(ctx context.Context, cfg config.Config) (*db.Store, error) {
	if cfg.UseMongo() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		kv, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}

		return db.NewStore(kv), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBFilename), dirPerms); err != nil {
		return nil, fmt.Errorf("error creating db dir: %w", err)
	}

	database, err := db.NewDatabase(ctx, cfg.DBFilename)
	if err != nil {
		return nil, err
	}

	return db.NewStore(database), nil
}
