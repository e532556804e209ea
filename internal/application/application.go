package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"gift_autobuy/internal/config"
	"gift_autobuy/internal/domain/service/balance"
	"gift_autobuy/internal/domain/service/profile"
	"gift_autobuy/internal/domain/service/purchase"
	"gift_autobuy/internal/domain/value"
	"gift_autobuy/internal/infrastructure/botapi"
	"gift_autobuy/internal/infrastructure/events"
	"gift_autobuy/internal/infrastructure/notifier"
	"gift_autobuy/internal/infrastructure/telegram"
	"gift_autobuy/internal/server"
	"gift_autobuy/internal/worker"
	"gift_autobuy/pkg/application/connectors"
	"gift_autobuy/pkg/application/modules"
	"gift_autobuy/pkg/logx"
	"gift_autobuy/pkg/lox"
)

const httpServerReadHeaderTimeout = 5 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	// 1. Storage
	storage, err := OpenStorage(ctx, cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Close(context.WithoutCancel(ctx))

	store := storage.Store

	if err = PrepareOwners(ctx, store, cfg.Bot.OwnerIDs...); err != nil {
		return fmt.Errorf("prepare owners: %w", err)
	}

	logger(ctx).Info("storage ready", slog.String("backend", cfg.Storage.Backend))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	g, ctx := errgroup.WithContext(ctx)

	// 2. Bot API
	bot, err := botapi.NewBot(cfg.Bot.Token, cfg.Bot.LogRequests, cfg.HTTP.LogFieldMaxLen)
	if err != nil {
		return fmt.Errorf("botapi.NewBot: %w", err)
	}

	botClient := botapi.NewClient(bot).WithUnlimited(cfg.Worker.IncludeUnlimited)

	router := purchase.NewRouter().WithExecutor(value.SenderBot, botClient)
	balanceService := balance.NewService(store, botClient).WithTTL(cfg.Worker.BalanceCacheTTL)

	var inventory worker.Inventory = botClient

	userbotReady := func() bool { return false }

	// 3. Userbot
	if cfg.Telegram.Enabled {
		userbot, err := telegram.NewClient(cfg.Telegram)
		if err != nil {
			return fmt.Errorf("telegram.NewClient: %w", err)
		}

		userbot = userbot.
			WithCatalogTTL(cfg.Worker.UserbotCatalogTTL).
			WithUnlimited(cfg.Worker.IncludeUnlimited)

		router = router.WithExecutor(value.SenderUserbot, userbot)
		balanceService = balanceService.WithUserbot(userbot)
		userbotReady = userbot.Ready

		if cfg.Worker.InventorySource == config.InventorySourceUserbot {
			inventory = userbot
		}

		g.Go(func() error {
			err := userbot.Start(ctx, nil)
			if err == nil || ctx.Err() != nil {
				return nil
			}

			if cfg.Worker.InventorySource == config.InventorySourceUserbot {
				return fmt.Errorf("userbot.Start: %w", err)
			}

			// без юзербота закупка продолжается через бота
			logger(ctx).Error("userbot stopped", logx.Error(err))

			return nil
		})
	}

	// 4. Purchase events
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConnector := &connectors.Kafka{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}
		defer kafkaConnector.Close(context.WithoutCancel(ctx))

		router = router.WithEvents(events.NewKafkaPublisher(kafkaConnector.Writer(ctx)))
	} else {
		router = router.WithEvents(events.NopPublisher{})
	}

	// 5. Notifications
	direct := notifier.NewTelegramBot(bot)

	var notify worker.Notifier = direct

	if cfg.Notify.Queued {
		redisConnection := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DatabaseNumber,
		}

		queueClient := asynq.NewClient(redisConnection)
		defer queueClient.Close()

		notify = notifier.NewQueueNotifier(queueClient, cfg.Notify.Queue)

		modules.AsynqServer{
			RedisUsername: cfg.Redis.Username,
			RedisPassword: cfg.Redis.Password,
			RedisAddress:  cfg.Redis.Address,
			RedisDB:       cfg.Redis.DatabaseNumber,
		}.Run(ctx, g, modules.AsynqQueues{cfg.Notify.Queue: 1}, notifier.NewSendMessageHandler(direct))
	}

	// 6. Workers
	metrics := worker.NewMetrics(registry)

	group := worker.NewGroup(lox.Map(cfg.Bot.OwnerIDs, func(ownerID int64) *worker.PurchaseWorker {
		return worker.NewPurchaseWorker(ownerID, store, inventory, router, notify).
			WithBalance(balanceService).
			WithMetrics(metrics).
			WithCooldown(cfg.Worker.PurchaseCooldown).
			WithIntervals(cfg.Worker.IdleInterval, cfg.Worker.CycleInterval, cfg.Worker.ErrorDelay)
	})...)

	g.Go(func() error {
		if err := group.Run(ctx); err != nil {
			return fmt.Errorf("group.Run: %w", err)
		}

		return nil
	})

	logger(ctx).Info("purchase workers started", slog.Any("owners", group.UserIDs()))

	// 7. Admin API, probe, metrics
	if cfg.HTTP.Enabled {
		srv := server.NewServer(
			server.NewConfigServer(profile.NewService(store), balanceService).WithUserbotReady(userbotReady),
			server.NewWorkerServer(group),
			cfg.Bot.OwnerIDs...,
		)

		httpServer := &http.Server{
			//nolint:exhaustruct
			Addr:              cfg.HTTP.ListenAddress,
			Handler:           server.NewRouter(srv, cfg.HTTP.LogFieldMaxLen),
			ReadHeaderTimeout: httpServerReadHeaderTimeout,
			BaseContext: func(net.Listener) context.Context {
				return ctx
			},
		}

		modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	}

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
		Ready: func() bool {
			return !cfg.Telegram.Enabled || userbotReady()
		},
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.Metrics.ListenAddress,
		Gatherer:      registry,
	}.Run(ctx, g)

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger(ctx).Info("application stopped")

	return nil
}
