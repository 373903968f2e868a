package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"koubei/internal/bootstrap/config"
	"koubei/internal/bootstrap/database"
	"koubei/internal/bootstrap/logging"
	cacheinfra "koubei/internal/infrastructure/cache"
	"koubei/internal/infrastructure/gateway"
	"koubei/internal/infrastructure/httpapi"
	sqliterepo "koubei/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "koubei/internal/infrastructure/persistence/sqlite/uow"
	"koubei/internal/ports"
	"koubei/internal/usecase/wall"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewTestimonialRepository,
			fx.As(new(ports.TestimonialRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideGatewayClient),
	fx.Provide(wall.NewService),
	fx.Provide(httpapi.NewHub),
	fx.Provide(provideServer),
	fx.Provide(provideBroadcaster),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideGatewayClient(ctx context.Context, cfg config.Config) ports.Gateway {
	return gateway.NewClient(ctx, cfg.Gateway)
}

func provideServer(repo ports.TestimonialRepository, uow ports.UnitOfWork, hub *httpapi.Hub, cfg config.Config) *httpapi.Server {
	return httpapi.NewServer(repo, uow, hub, httpapi.ServerOptions{
		Table:     cfg.Gateway.Table,
		AccessKey: cfg.Server.AccessKey,
	})
}

func provideBroadcaster(repo ports.TestimonialRepository, cache ports.Cache, hub *httpapi.Hub, cfg config.Config) *httpapi.Broadcaster {
	return httpapi.NewBroadcaster(repo, cache, hub, cfg.Server.FeedInterval)
}
