package notification

import (
	"context"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/notification/domain"
	"github.com/luciodale/booking-portal-sub002/internal/notification/queue"
	"github.com/luciodale/booking-portal-sub002/internal/notification/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(newNotifier),
)

// WorkerModule runs the asynq server that delivers queued notices.
var WorkerModule = fx.Module("notification.worker",
	fx.Invoke(runWorker),
)

func redisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func newSender(cfg config.Config) (domain.Sender, error) {
	return webhook.NewSender(cfg.Notification.WebhookURL, nil)
}

func newNotifier(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (domain.Notifier, error) {
	log = log.Named("notification")
	switch cfg.Notification.Mode {
	case config.NotificationModeQueue:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			log.Warn("notification queue requested without redis, notices disabled")
			return domain.Noop{}, nil
		}
		client := asynq.NewClient(redisOpt(cfg))
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return queue.NewNotifier(client, log), nil
	case config.NotificationModeWebhook:
		sender, err := newSender(cfg)
		if err != nil {
			return nil, err
		}
		return webhook.NewNotifier(sender), nil
	default:
		return domain.Noop{}, nil
	}
}

func runWorker(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) error {
	log = log.Named("notification.worker")
	if cfg.Notification.Mode != config.NotificationModeQueue {
		log.Info("notification mode is not queue, worker idle", zap.String("mode", cfg.Notification.Mode))
		return nil
	}
	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	concurrency := cfg.Notification.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue.QueueName: 1},
		Logger:      log.Sugar(),
	})
	mux := queue.NewServeMux(queue.NewHandler(sender, log))

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting notification worker", zap.Int("concurrency", concurrency))
			return srv.Start(mux)
		},
		OnStop: func(context.Context) error {
			srv.Shutdown()
			return nil
		},
	})
	return nil
}
