package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"checkyourtime/internal/bot"
	"checkyourtime/internal/config"
	"checkyourtime/internal/db"
	"checkyourtime/internal/repository"
	"checkyourtime/internal/service"
	"checkyourtime/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "checkyourtime",
		Short:         "Interval-sampling time-tracking telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long-polling) until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := db.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			return database.Close()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	access, err := bot.LoadAccessIDs(cfg.AccessIDsFile)
	if err != nil {
		return err
	}

	userRepo := repository.NewSQLiteUserRepo(database)
	categoryRepo := repository.NewSQLiteCategoryRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	svc := service.NewTrackerService(userRepo, categoryRepo, sessionRepo, activityRepo, uow,
		service.NewLogUseCaseObserver(logger))
	stats := service.NewStatsService(sessionRepo, activityRepo)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	// The bot needs the manager to drive timers; the manager calls back into
	// the bot on every tick. Wire through late-bound closures.
	var b *bot.Bot
	mgr := tracker.NewManager(svc, tracker.SystemClock{}, cfg.GracePeriod,
		func(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
			b.SampleActivity(ctx, userID, sessionID, intervalSeconds)
		},
		func(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
			b.AnnounceRunning(ctx, userID, sessionID, intervalSeconds)
		}, logger)
	b = bot.New(api, mgr, svc, stats, access, cfg.Debug, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", "account", api.Self.UserName, "debug", cfg.Debug)
	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("bot stopped")
	return nil
}
