package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/arbiter"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/config"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/fanout"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/feed"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/http/handlers"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/http/router"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/metrics"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/presence"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/repository"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/retry"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerBus(container); err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the container for the push worker binary
func (b *ContainerBuilder) MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

// MustBuildWorkerContainer builds and returns the worker dig container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorkerContainer(ctx)
}

// registerCounter exposes a counter on the default registry, reusing the
// existing collector when the same container is built twice in one process.
func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
	}
	return c
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		func() *log.Logger { return log.Default() },
		config.Load,
		NewLogger,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

func registerBus(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *redis.Client {
			return bus.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
		},
		bus.NewRedisBus,
		func(cfg *config.Config) (*kafka.Producer, error) {
			return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PushTopic)
		},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewDeliveryRepo,
		repository.NewApprovalRepo,
		repository.NewNotificationRepo,
		repository.NewMessageRepo,
		repository.NewDealerRepo,
		func(cfg *config.Config, logger logx.Logger) *retry.Retrier {
			return retry.New(retry.Policy{
				MaxAttempts: cfg.Retry.MaxAttempts,
				BaseDelay:   cfg.Retry.BaseDelay,
				MaxDelay:    cfg.Retry.MaxDelay,
			}, logger, registerCounter(metrics.NewRetryAttemptsTotal()))
		},
		func(
			notifications *repository.NotificationRepo,
			messages *repository.MessageRepo,
			producer *kafka.Producer,
			retrier *retry.Retrier,
			logger logx.Logger,
		) *fanout.Service {
			return fanout.NewService(
				notifications, messages, producer, retrier,
				registerCounter(metrics.NewFanoutFailuresTotal()), logger,
			)
		},
		func(
			deliveries *repository.DeliveryRepo,
			approvals *repository.ApprovalRepo,
			rb *bus.RedisBus,
			notifier *fanout.Service,
			logger logx.Logger,
		) *arbiter.Service {
			return arbiter.NewService(
				deliveries, approvals, rb, notifier,
				registerCounter(metrics.NewClaimLostRacesTotal()), 3*time.Second, logger,
			)
		},
		func(
			cfg *config.Config,
			deliveries *repository.DeliveryRepo,
			approvals *repository.ApprovalRepo,
			dealers *repository.DealerRepo,
			rb *bus.RedisBus,
			producer *kafka.Producer,
			logger logx.Logger,
		) *feed.Manager {
			mc := feed.ManagerConfig{
				Feed:            rb,
				Fetcher:         feed.NewStoreFetcher(deliveries),
				Names:           dealers,
				Approvals:       approvals,
				PollInterval:    cfg.Feed.PollInterval,
				ReconnectDelay:  cfg.Feed.ReconnectDelay,
				Reconciliations: registerCounter(metrics.NewFeedReconciliationsTotal()),
				PollTicks:       registerCounter(metrics.NewFeedPollTicksTotal()),
				Logger:          logger,
			}
			if producer != nil {
				mc.Alerts = producer
			} else {
				mc.Alerts = push.NewLogSink(logger)
			}
			return feed.NewManager(mc)
		},
		func(cfg *config.Config, rb *bus.RedisBus, logger logx.Logger) *presence.Hub {
			return presence.NewHub(rb, cfg.Presence.TypingTimeout, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		handlers.NewDispatchUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewFeedUsecase,
		handlers.NewFeedHandler,
		func(cfg *config.Config, base *handlers.Handlers, hub *presence.Hub, rb *bus.RedisBus) *handlers.PresenceHandler {
			return handlers.NewPresenceHandler(base, handlers.NewPresenceUsecase(hub, rb), cfg.Presence.Staleness)
		},
		handlers.NewNotificationUsecase,
		handlers.NewNotificationHandler,
		router.New,
		serverProvider,
	)
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		push.NewLogSink,
		func(cfg *config.Config, sink *push.LogSink) (*kafka.Consumer, error) {
			return kafka.NewConsumer(
				cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PushTopic,
				makePushHandler(sink),
			)
		},
	)
}
