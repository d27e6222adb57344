package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/trainer_slots/internal/app"
	"github.com/Freeeeeet/trainer_slots/internal/config"
	"github.com/Freeeeeet/trainer_slots/internal/notify"
	"github.com/Freeeeeet/trainer_slots/internal/reassign"
	"github.com/Freeeeeet/trainer_slots/internal/repository"
	"github.com/Freeeeeet/trainer_slots/internal/repository/memory"
	"github.com/Freeeeeet/trainer_slots/internal/service"
	"github.com/go-redis/redis/v8"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer closeStores()

	dispatcher, closeDispatcher := newNotifier(cfg, st.Users, logger)
	defer closeDispatcher()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	deduper, closeDeduper := newDeduper(ctx, cfg, logger)
	defer closeDeduper()

	reassigner := reassign.NewDispatcher(publisher, deduper, reassign.Config{
		Workers:   cfg.ReassignWorkers,
		QueueSize: cfg.ReassignQueue,
	}, logger.Named("reassign"))

	opts := service.Options{
		Location:           cfg.Location(),
		CancellationWindow: cfg.CancellationWindow,
	}

	engine := app.NewEngine(st, dispatcher, reassigner, opts, logger)

	logger.Info("Starting slot engine",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Store),
		zap.String("timezone", cfg.Timezone),
		zap.Duration("cancellation_window", cfg.CancellationWindow))

	engine.Start(ctx)
	<-ctx.Done()
	engine.Stop()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (app.Stores, func(), error) {
	if cfg.Store == "memory" {
		logger.Warn("Using in-memory store, data is not persisted")
		mem := memory.NewStore()
		return app.Stores{Slots: mem, Users: mem.Users(), History: mem}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return app.Stores{}, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return app.Stores{}, nil, err
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		pool.Close()
		return app.Stores{}, nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return app.Stores{}, nil, err
	}

	return app.Stores{
		Slots:   repository.NewSlotRepository(pool),
		Users:   repository.NewUserRepository(pool),
		History: repository.NewSessionHistoryRepository(pool),
	}, pool.Close, nil
}

func newNotifier(cfg *config.Config, users service.UserStore, logger *zap.Logger) (service.Notifier, func()) {
	var next notify.Dispatcher = notify.NewLogDispatcher(logger.Named("notify"))

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Error("Failed to create telegram bot, falling back to log notifications", zap.Error(err))
		} else {
			next = notify.NewTelegramDispatcher(b, users, logger.Named("notify"))
		}
	}

	async := notify.NewAsync(next, logger.Named("notify"))
	return async, async.Wait
}

func newPublisher(cfg *config.Config, logger *zap.Logger) (reassign.Publisher, func()) {
	if cfg.RabbitURL == "" {
		logger.Warn("RABBIT_URL not set, reassignment events go to log")
		return reassign.NewLogPublisher(logger.Named("reassign")), func() {}
	}

	pub, err := reassign.NewAMQPPublisher(cfg.RabbitURL, cfg.ReassignExchange)
	if err != nil {
		logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
	}
	return pub, func() { _ = pub.Close() }
}

func newDeduper(ctx context.Context, cfg *config.Config, logger *zap.Logger) (reassign.Deduper, func()) {
	if cfg.RedisAddr == "" {
		return reassign.NewMemoryDeduper(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	return reassign.NewRedisDeduper(client, cfg.DedupeTTL), func() { _ = client.Close() }
}
