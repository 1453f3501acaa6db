package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fleetsync/internal/config"
	"fleetsync/internal/db"
	httpserver "fleetsync/internal/http"
	"fleetsync/internal/http/handlers"
	"fleetsync/internal/ingest"
	"fleetsync/internal/metrics"
	"fleetsync/internal/progress"
	"fleetsync/internal/repository"
)

// App wires the ingestion service dependencies. The database pool is created
// here and handed down; nothing below this layer owns connection lifecycle.
type App struct {
	server  *httpserver.Server
	pool    *sql.DB
	logger  *zap.Logger
	service *ingest.Service

	clients  *repository.ClientRepository
	vehicles *repository.VehicleRepository
	records  *repository.RecordRepository
	history  *repository.HistoryRepository
}

// New constructs application components and applies the schema.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngest(registry)

	clients := repository.NewClientRepository(pool)
	vehicles := repository.NewVehicleRepository(pool)
	records := repository.NewRecordRepository(pool)
	history := repository.NewHistoryRepository(pool)

	service := ingest.NewService(clients, vehicles, records, history,
		cfg.Ingest.BatchSize, logger, ingestMetrics)

	var progressStore *progress.Store
	if cfg.Redis.Addr != "" {
		client, err := progress.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Warn("redis unavailable, progress polling disabled", zap.Error(err))
		} else {
			progressStore = progress.NewStore(client, time.Duration(cfg.Ingest.ProgressTTL))
		}
	}

	routes := httpserver.Routes{
		Ingest:   handlers.NewIngestHandler(service, progressStore, logger),
		Records:  handlers.NewRecordsHandler(records, logger),
		Summary:  handlers.NewSummaryHandler(records, logger),
		History:  handlers.NewHistoryHandler(history, logger),
		Clients:  handlers.NewClientsHandler(clients, logger),
		Vehicles: handlers.NewVehiclesHandler(vehicles, logger),
		Health:   handlers.NewHealthHandler(pool),
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if progressStore != nil {
		routes.Progress = handlers.NewProgressHandler(progressStore, logger)
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:   server,
		pool:     pool,
		logger:   logger,
		service:  service,
		clients:  clients,
		vehicles: vehicles,
		records:  records,
		history:  history,
	}, nil
}

// Run starts serving HTTP requests.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Ingest returns the ingestion orchestrator for CLI use.
func (a *App) Ingest() *ingest.Service {
	return a.service
}

// Records returns the record repository.
func (a *App) Records() *repository.RecordRepository {
	return a.records
}

// History returns the history repository.
func (a *App) History() *repository.HistoryRepository {
	return a.history
}

// Close releases resources.
func (a *App) Close() {
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
