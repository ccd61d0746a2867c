// Package prospects provides the prospect lifecycle bounded context module.
// This file defines the module that encapsulates all prospects setup and
// route registration.
package prospects

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"autoplaza_backend/internal/events"
	apphttp "autoplaza_backend/internal/http"
	"autoplaza_backend/internal/prospects/cache"
	"autoplaza_backend/internal/prospects/handler"
	"autoplaza_backend/internal/prospects/repository"
	"autoplaza_backend/internal/prospects/service"
	platformcache "autoplaza_backend/platform/cache"
	"autoplaza_backend/platform/clock"
	"autoplaza_backend/platform/config"
	"autoplaza_backend/platform/logger"
	"autoplaza_backend/platform/storage"
	"autoplaza_backend/platform/validator"
)

// Module is the prospects bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	query   *service.QueryService
	manage  *service.ManageService
}

// NewModule creates and initializes the prospects module with all its
// dependencies. Redis and the object store are optional: without Redis the
// stats cache degrades to the database, without a store attachment routes
// report the feature as unavailable.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	store storage.Service,
	val *validator.Validator,
	cfg *config.Config,
	log *logger.Logger,
	clk clock.Clock,
	reminders service.ReminderScheduler,
) (*Module, error) {
	repo := repository.New(pool)

	var redisCache *platformcache.Cache
	if cfg.GetRedisURL() != "" {
		c, err := platformcache.New(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
		if err != nil {
			return nil, err
		}
		redisCache = c
	}
	statsCache := cache.NewStatsCache(repo, redisCache, cfg.GetStatsCacheTTL(), log)

	querySvc := service.NewQueryService(repo, statsCache, clk)
	manageSvc := service.NewManageService(repo, statsCache, eventBus, clk, service.AllowAllPolicy{}, reminders, log)
	attachmentSvc := service.NewAttachmentService(repo, store, cfg.GetMinIOBucketProspectAttachments(), log)

	h := handler.New(querySvc, manageSvc, attachmentSvc, val)

	return &Module{
		handler: h,
		query:   querySvc,
		manage:  manageSvc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "prospects"
}

// QueryService returns the read-side service for external use.
func (m *Module) QueryService() *service.QueryService {
	return m.query
}

// ManageService returns the write-side service for external use.
func (m *Module) ManageService() *service.ManageService {
	return m.manage
}

// RegisterRoutes mounts prospects routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All prospect routes require authentication.
	group := ctx.Protected.Group("/prospects")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
