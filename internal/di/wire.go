//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"inkpress-backend/internal/config"
	"inkpress-backend/internal/jobs"
	"inkpress-backend/internal/repository"
)

// CacheSet provides the cache-consistency core.
var CacheSet = wire.NewSet(
	provideCollector,
	provideEventQueue,
	provideL0Store,
	provideL1Store,
	provideRegistry,
	provideWarmTrigger,
	provideConsumer,
)

// ApplicationSet provides the services and HTTP surface.
var ApplicationSet = wire.NewSet(
	provideContentService,
	provideAdminService,
	provideContentHandler,
	provideAdminHandler,
	provideRouter,
)

// InitializeContainer builds the full application graph. The
// repositories, job enqueuer, tracer, and logger are externally
// constructed collaborators injected by the caller.
func InitializeContainer(
	cfg *config.Config,
	logger *zap.Logger,
	tracer trace.Tracer,
	posts repository.PostRepository,
	pages repository.PageRepository,
	settings repository.SettingsRepository,
	apiKeys repository.APIKeyRepository,
	enqueuer jobs.Enqueuer,
) *Container {
	wire.Build(
		CacheSet,
		ApplicationSet,
		provideContainer,
	)
	return nil
}
