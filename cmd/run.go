package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"starsbot/bot"
	"starsbot/config"
	"starsbot/database"
	"starsbot/dialog"
	"starsbot/events"
	"starsbot/eventstream"
	"starsbot/metrics"
	"starsbot/oracle"
	"starsbot/repository"
	"starsbot/service"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting stars bot")

	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)

	if err := database.MigrateUp(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Redis connection established")

	eventBus := events.NewBus()

	m := metrics.New(prometheus.DefaultRegisterer)
	m.Subscribe(eventBus)

	if cfg.NATSURL != "" {
		nc, err := eventstream.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Drain()
		eventstream.NewMirror(nc, cfg.NATSPrefix).Subscribe(eventBus)
	}

	flyer := oracle.NewClient(cfg.FlyerAPIURL, cfg.FlyerAPIKey, cfg.OracleTimeout, m)

	api, err := bot.Connect(cfg.TelegramToken)
	if err != nil {
		return err
	}

	notifier := bot.NewNotifier(api, cfg.PublicChannelID, cfg.AdminChannelID)
	notifier.Subscribe(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	services := bot.Services{
		Ledger:       service.NewLedgerService(uowFactory, flyer),
		Redemption:   service.NewRedemptionService(uowFactory),
		Tasks:        service.NewTaskService(uowFactory, flyer, notifier),
		Withdrawals:  service.NewWithdrawalService(uowFactory, flyer, notifier),
		Gambling:     service.NewGamblingService(uowFactory, nil),
		Subscription: service.NewSubscriptionService(uowFactory, flyer, notifier),
		Admin:        service.NewAdminService(uowFactory),
		Stats:        service.NewStatsService(uowFactory),
	}
	log.Info("Services initialized")

	dialogs := dialog.NewMachine(dialog.NewRedisStore(rdb, cfg.DialogTTL), services.Admin, services.Ledger, cfg.BotUsername)

	telegramBot := bot.New(bot.Config{
		BotUsername: cfg.BotUsername,
		AdminID:     cfg.AdminID,
	}, api, services, dialogs)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return telegramBot.Run(gctx)
	})

	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.WithField("addr", cfg.MetricsAddr).Info("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("Shutdown completed")
	return err
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ConfigureLogging applies the configured level and switches to JSON output
// in production
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
