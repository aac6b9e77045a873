// Package di wires the application together with google/wire. The
// providers here translate configuration into the concrete cache,
// service, and HTTP components.
package di

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"inkpress-backend/interfaces/http/rest"
	"inkpress-backend/interfaces/http/rest/handlers"
	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/config"
	"inkpress-backend/internal/jobs"
	"inkpress-backend/internal/observability"
	"inkpress-backend/internal/repository"
	"inkpress-backend/internal/service"
)

// Container aggregates the long-lived components the entrypoint needs
// to start loops and shut down cleanly.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Collector
	Queue    *cache.EventQueue
	L0       *cache.L0Store
	L1       *cache.L1Store
	Registry *cache.Registry
	Consumer *cache.Consumer
	Trigger  *cache.WarmTrigger
	Router   *rest.Router
}

func provideCollector() *observability.Collector {
	return observability.NewCollector("inkpress")
}

func provideEventQueue(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *cache.EventQueue {
	return cache.NewEventQueue(cfg.Cache.EventQueueCapacity, metrics, logger)
}

func provideL0Store(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *cache.L0Store {
	return cache.NewL0Store(cache.L0Config{
		Enabled:           cfg.Cache.EnableL0,
		PostByIDCap:       cfg.Cache.L0PostByIDCap,
		PostBySlugCap:     cfg.Cache.L0PostBySlugCap,
		PageByIDCap:       cfg.Cache.L0PageByIDCap,
		PageBySlugCap:     cfg.Cache.L0PageBySlugCap,
		APIKeyByPrefixCap: cfg.Cache.L0APIKeyByPrefixCap,
		PostListCap:       cfg.Cache.L0PostListCap,
	}, metrics, logger)
}

func provideL1Store(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) *cache.L1Store {
	return cache.NewL1Store(cache.L1Config{
		Enabled:       cfg.Cache.EnableL1,
		ResponseLimit: cfg.Cache.L1ResponseLimit,
		MaxBodyBytes:  cfg.Cache.L1MaxBodyBytes,
	}, metrics, logger)
}

func provideRegistry() *cache.Registry {
	return cache.NewRegistry()
}

func provideWarmTrigger(cfg *config.Config, enqueuer jobs.Enqueuer, metrics *observability.Collector, logger *zap.Logger) *cache.WarmTrigger {
	breaking := jobs.NewBreakerEnqueuer(enqueuer, logger)
	return cache.NewWarmTrigger(cfg.Cache.WarmDebounce, breaking, metrics, logger)
}

func provideConsumer(
	cfg *config.Config,
	queue *cache.EventQueue,
	registry *cache.Registry,
	l0 *cache.L0Store,
	l1 *cache.L1Store,
	trigger *cache.WarmTrigger,
	metrics *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *cache.Consumer {
	return cache.NewConsumer(cache.ConsumerConfig{
		Interval:   cfg.Cache.AutoConsumeInterval,
		BatchLimit: cfg.Cache.ConsumeBatchLimit,
	}, queue, registry, l0, l1, trigger, metrics, tracer, logger)
}

func provideContentService(
	posts repository.PostRepository,
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	apiKeys repository.APIKeyRepository,
	l0 *cache.L0Store,
	registry *cache.Registry,
	logger *zap.Logger,
) *service.ContentService {
	return service.NewContentService(posts, pages, settings, apiKeys, l0, registry, logger)
}

func provideAdminService(
	posts repository.PostRepository,
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	apiKeys repository.APIKeyRepository,
	queue *cache.EventQueue,
	consumer *cache.Consumer,
	logger *zap.Logger,
) *service.AdminService {
	return service.NewAdminService(posts, pages, settings, apiKeys, queue, consumer, logger)
}

func provideContentHandler(content *service.ContentService, logger *zap.Logger) *handlers.ContentHandler {
	return handlers.NewContentHandler(content, logger)
}

func provideAdminHandler(admin *service.AdminService, trigger *cache.WarmTrigger, logger *zap.Logger) *handlers.AdminHandler {
	return handlers.NewAdminHandler(admin, trigger, logger)
}

func provideRouter(
	cfg *config.Config,
	content *handlers.ContentHandler,
	admin *handlers.AdminHandler,
	l1 *cache.L1Store,
	registry *cache.Registry,
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, content, admin, l1, registry, metrics, logger)
}

func provideContainer(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Collector,
	queue *cache.EventQueue,
	l0 *cache.L0Store,
	l1 *cache.L1Store,
	registry *cache.Registry,
	consumer *cache.Consumer,
	trigger *cache.WarmTrigger,
	router *rest.Router,
) *Container {
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Queue:    queue,
		L0:       l0,
		L1:       l1,
		Registry: registry,
		Consumer: consumer,
		Trigger:  trigger,
		Router:   router,
	}
}
