package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/deskgate/server/internal/adapter/outbound/helpdesk"
	"github.com/deskgate/server/internal/infra/events"
	"github.com/deskgate/server/internal/module/kb"
	"github.com/deskgate/server/internal/module/session"
	"github.com/deskgate/server/internal/module/ticket"
	"github.com/deskgate/server/internal/shared/cache"
	"github.com/deskgate/server/internal/shared/config"
	"github.com/deskgate/server/internal/shared/logger"
	"github.com/deskgate/server/internal/shared/metrics"
)

// App wires the gateway together: config, logger, the tiered cache
// store, the helpdesk transport, the per-resource services, and the
// HTTP surface the widget talks to.
type App struct {
	config  *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	redis   redis.UniversalClient
	store   *cache.Store
	bus     *events.Bus
	router  *gin.Engine

	sessionManager *session.JWTManager
	ticketService  *ticket.Service
	kbService      *kb.Service

	ticketHandler  *ticket.Handler
	kbHandler      *kb.Handler
	sessionHandler *session.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	app := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("deskgate"),
	}

	// Durable tier is optional: without Redis the gateway runs with
	// the volatile tier only and loses its cache on restart.
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, durable cache tier disabled", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	} else {
		log.Info("no redis configured, durable cache tier disabled")
	}

	app.store = cache.NewStore(cache.Config{
		DurablePrefix:   cfg.Cache.DurablePrefix,
		CleanupInterval: cfg.Cache.CleanupInterval,
	}, app.redis, nil, log, app.metrics)

	app.bus = events.NewBus(log)
	app.registerEventHandlers()

	transport := helpdesk.NewTransport(helpdesk.TransportConfig{
		BaseURL:                    cfg.Upstream.BaseURL,
		Token:                      cfg.Upstream.Token,
		Timeout:                    cfg.Upstream.Timeout,
		RetryAttempts:              cfg.Upstream.RetryAttempts,
		RetryDelay:                 cfg.Upstream.RetryDelay,
		BreakerEnabled:             cfg.Upstream.Breaker.Enabled,
		BreakerConsecutiveFailures: cfg.Upstream.Breaker.ConsecutiveFailures,
		BreakerOpenTimeout:         cfg.Upstream.Breaker.OpenTimeout,
	}, log, app.metrics)
	client := helpdesk.NewClient(transport)

	app.sessionManager = session.NewJWTManager(&session.JWTConfig{
		Secret:   cfg.Session.JWTSecret,
		TokenTTL: cfg.Session.TokenTTL,
	})

	app.ticketService = ticket.NewService(app.store, client, ticket.ServiceConfig{
		Rules:           ticket.NewTTLRules(cfg.Cache.TTL),
		RequestTypesTTL: cfg.Cache.TTL.RequestTypes,
	}, app.bus, log)

	app.kbService = kb.NewService(app.store, client, kb.ServiceConfig{
		MinQueryLength: cfg.KB.MinQueryLength,
		SearchTTL:      cfg.Cache.TTL.Search,
		ArticleTTL:     cfg.Cache.TTL.Article,
	}, log)

	app.ticketHandler = ticket.NewHandler(app.ticketService)
	app.kbHandler = kb.NewHandler(app.kbService)
	app.sessionHandler = session.NewHandler(app.sessionManager, cfg.Session.DemoTokens)

	app.router = app.setupRouter()

	return app, nil
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("cache store close failed", zap.Error(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// registerEventHandlers hooks the operational consumers onto the bus:
// an event counter for the metrics endpoint and an audit log line per
// ticket mutation.
func (a *App) registerEventHandlers() {
	ticketEvents := []string{
		events.TicketCreatedType,
		events.TicketUpdatedType,
		events.TicketClosedType,
	}

	a.bus.Register(events.NewHandlerFunc(ticketEvents, func(e events.Event) error {
		a.metrics.RecordTicketEvent(e.EventType())
		return nil
	}))

	a.bus.Register(events.NewHandlerFunc(ticketEvents, func(e events.Event) error {
		a.logger.Info("ticket event",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("ticket_id", e.AggregateID()),
		)
		return nil
	}))
}
