package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	libredis "fleetcheck/backend/libs/redis"
	"fleetcheck/backend/services/checkin-bot/internal/chat"
	appconfig "fleetcheck/backend/services/checkin-bot/internal/config"
	"fleetcheck/backend/services/checkin-bot/internal/conversation"
	"fleetcheck/backend/services/checkin-bot/internal/db"
	"fleetcheck/backend/services/checkin-bot/internal/handlers"
	httpserver "fleetcheck/backend/services/checkin-bot/internal/http"
	httphandlers "fleetcheck/backend/services/checkin-bot/internal/http/handlers"
	"fleetcheck/backend/services/checkin-bot/internal/http/middleware"
	"fleetcheck/backend/services/checkin-bot/internal/metrics"
	"fleetcheck/backend/services/checkin-bot/internal/password"
	redisstore "fleetcheck/backend/services/checkin-bot/internal/redis"
	"fleetcheck/backend/services/checkin-bot/internal/repository"
	"fleetcheck/backend/services/checkin-bot/internal/service"
	"fleetcheck/backend/services/checkin-bot/internal/telegram"
	"fleetcheck/backend/services/checkin-bot/internal/ws"
)

// App wires dependencies for the check-in bot.
type App struct {
	bot      *telegram.Bot
	server   *httpserver.Server
	checkins *service.CheckinService
	hub      *ws.Hub
	db       *sql.DB
	redis    *goredis.Client
	logger   *zap.Logger
}

// New builds application graph. ctx bounds the lifetime of live feed connections.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	zone, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	pins, err := password.NewPinBook(cfg.Access.Pins)
	if err != nil {
		return nil, fmt.Errorf("driver pins: %w", err)
	}
	logger.Info("driver pins loaded", zap.Strings("aliases", pins.Aliases()))

	sqlDB, err := db.NewPostgres(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a := &App{db: sqlDB, logger: logger}
	if err := repository.EnsureSchema(ctx, sqlDB); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var cache service.ActivityCache
	if cfg.Redis.Addr != "" {
		client, err := libredis.NewRedisClient(ctx, libredis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		cache = redisstore.NewStore(client, cfg.RedisTTL())
	} else {
		logger.Info("redis not configured, driver activity cache disabled")
	}

	api, err := telegram.NewAPI(cfg.Bot.Token, cfg.PollTimeout())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	logger.Info("telegram authorized", zap.String("bot", api.Self.UserName))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("checkin", registry)

	drivers := repository.NewDriverRepository(sqlDB)
	events := repository.NewEventRepository(sqlDB)
	settings := repository.NewSettingsRepository(sqlDB)
	messenger := telegram.NewMessenger(api)
	admins := service.NewAdminSet(cfg.Access.AdminIDs)
	a.hub = ws.NewHub(m, logger)

	a.checkins = service.NewCheckinService(service.CheckinDeps{
		Drivers:   drivers,
		Events:    events,
		Settings:  settings,
		Cache:     cache,
		Feed:      a.hub,
		Messenger: messenger,
		Metrics:   m,
	}, cfg.Dispatch.ChatID, cfg.NotifyTimeout(), logger)
	adminSvc := service.NewAdminService(drivers, events, settings, cache, logger)

	machine := conversation.NewMachine(pins, conversation.Options{Zone: zone, StrictPhotoDone: cfg.Form.StrictPhotoDone})
	engine := conversation.NewEngine(machine, conversation.NewSessionStore(), a.checkins, messenger, m, logger)

	adminOnly := handlers.AdminOnly(admins, logger)
	router := chat.NewRouter(logger)
	router.Register("start", engine.Start)
	router.Register("setdispatch", handlers.NewSetDispatchHandler(adminSvc, messenger, logger), adminOnly)
	router.Register("drivers", handlers.NewDriversHandler(adminSvc, messenger, logger), adminOnly)
	router.Register("exportcsv", handlers.NewExportCSVHandler(adminSvc, messenger, logger), adminOnly)
	router.Fallback(engine.Handle)
	a.bot = telegram.NewBot(api, router.Route, cfg.Bot.Workers, cfg.PollTimeout(), m, logger)

	routes := httpserver.Routes{
		Health:  httphandlers.NewHealthHandler(),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if cfg.HTTP.JWTSecret != "" {
		tokens := service.NewTokenService(cfg.HTTP.JWTSecret, cfg.JWTExpiration())
		routes.Auth = middleware.AdminAuth(tokens, admins, logger)
		routes.Drivers = httphandlers.NewDriversHandler(adminSvc, logger)
		routes.Export = httphandlers.NewExportHandler(adminSvc, logger)
		routes.Feed = ws.NewServer(ctx, a.hub, 0, logger).HandleWS
	} else {
		logger.Info("CHECKIN_JWT_SECRET not set, admin http routes disabled")
	}
	a.server = httpserver.NewServer(cfg.HTTPAddress(), httpserver.NewRouter(routes), logger)

	return a, nil
}

// Run polls Telegram and serves HTTP until ctx is cancelled or either side fails.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.bot.Run(ctx)
	})
	group.Go(func() error {
		return a.server.Run(ctx)
	})
	err := group.Wait()
	a.checkins.Wait()
	return err
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
