// Package main is the entrypoint for the Chainwatch API server and agent.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/chainwatch/internal/agent"
	"github.com/kiranshivaraju/chainwatch/internal/analysis"
	"github.com/kiranshivaraju/chainwatch/internal/api"
	"github.com/kiranshivaraju/chainwatch/internal/api/handler"
	mw "github.com/kiranshivaraju/chainwatch/internal/api/middleware"
	"github.com/kiranshivaraju/chainwatch/internal/cache"
	"github.com/kiranshivaraju/chainwatch/internal/config"
	"github.com/kiranshivaraju/chainwatch/internal/llm"
	"github.com/kiranshivaraju/chainwatch/internal/plan"
	"github.com/kiranshivaraju/chainwatch/internal/source"
	"github.com/kiranshivaraju/chainwatch/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "llm_provider", cfg.LLM.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create LLM client; nil means deterministic analysis only
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	if llmClient != nil {
		slog.Info("LLM client initialized", "provider", llmClient.Name())
	} else {
		slog.Info("no LLM provider configured, using deterministic analysis")
	}

	// 6. Create store and source registry
	pgStore := store.NewPostgresStore(pool)

	registry := source.NewRegistry(ctx,
		source.NewWeatherConnector(nil),
		source.NewNewsConnector(nil),
		source.NewTrafficConnector(nil),
		source.NewMarketConnector(nil),
		source.NewShippingConnector(nil),
	).WithCache(redisCache, cfg.Agent.SourceCacheTTL)

	// 7. Wire the agent
	engine := analysis.NewEngine(llmClient)
	planner := plan.NewGenerator(llmClient)
	coordinator := agent.NewCoordinator(pgStore, registry, engine, planner)

	if cfg.Agent.ScheduleEnabled {
		scheduler := agent.NewScheduler(coordinator, cfg.Agent.ScheduleInterval)
		go scheduler.Run(ctx)
	} else {
		slog.Info("agent schedule disabled, cycles run on trigger only")
	}

	// 8. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: handler.NewHealthHandler(pgStore, redisCache),

		AgentTrigger: handler.NewAgentTriggerHandler(coordinator),
		AgentStatus:  handler.NewAgentStatusHandler(pgStore, redisCache),

		ListTenants:  handler.NewListTenantsHandler(pgStore),
		CreateTenant: handler.NewCreateTenantHandler(pgStore),
		GetTenant:    handler.NewGetTenantHandler(pgStore),
		UpdateTenant: handler.NewUpdateTenantHandler(pgStore),
		DeleteTenant: handler.NewDeleteTenantHandler(pgStore),
		LatestScore:  handler.NewLatestScoreHandler(pgStore),
		ScoreHistory: handler.NewScoreHistoryHandler(pgStore),

		ListSuppliers:   handler.NewListSuppliersHandler(pgStore),
		CreateSupplier:  handler.NewCreateSupplierHandler(pgStore),
		ImportSuppliers: handler.NewImportSuppliersHandler(pgStore),
		GetSupplier:     handler.NewGetSupplierHandler(pgStore),
		UpdateSupplier:  handler.NewUpdateSupplierHandler(pgStore),
		DeleteSupplier:  handler.NewDeleteSupplierHandler(pgStore),

		ListRisks:        handler.NewListRisksHandler(pgStore),
		GetRisk:          handler.NewGetRiskHandler(pgStore),
		UpdateRiskStatus: handler.NewUpdateRiskStatusHandler(pgStore),

		ListOpportunities:       handler.NewListOpportunitiesHandler(pgStore),
		GetOpportunity:          handler.NewGetOpportunityHandler(pgStore),
		UpdateOpportunityStatus: handler.NewUpdateOpportunityStatusHandler(pgStore),

		ListPlans:        handler.NewListPlansHandler(pgStore),
		GetPlan:          handler.NewGetPlanHandler(pgStore),
		UpdatePlanStatus: handler.NewUpdatePlanStatusHandler(pgStore),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
