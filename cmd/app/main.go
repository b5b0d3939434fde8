// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expense-ltd/internal/config"
	"expense-ltd/internal/domain/ports/adapter"
	pg "expense-ltd/internal/infra/db/postgres"
	"expense-ltd/internal/infra/identity"
	"expense-ltd/internal/infra/logging"
	"expense-ltd/internal/infra/metrics"
	red "expense-ltd/internal/infra/redis"
	"expense-ltd/internal/infra/sched"
	"expense-ltd/internal/infra/web"
	"expense-ltd/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop identity provider)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	idemCache := red.NewIdempotencyCache(redisClient, cfg.Redemption.IdempotencyTTL)

	// ---- Identity ----
	var idp adapter.IdentityProvider
	if cfg.Runtime.Dev {
		idp = identity.NewNoopProvider()
	} else {
		idp = identity.NewSupabaseProvider(&cfg.Identity, logger)
	}

	// ---- Repositories ----
	codeRepo := pg.NewCodeRepo(pool)
	redemptionRepo := pg.NewRedemptionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	validatorUC := usecase.NewCodeValidatorUseCase(codeRepo, redemptionRepo,
		cfg.Redemption.HeuristicPlanFallback, logger)
	redeemUC := usecase.NewRedemptionUseCase(codeRepo, redemptionRepo, subRepo, tm,
		idp, idemCache, cfg.Redemption.HeuristicPlanFallback, logger)

	// ---- Stats worker ----
	worker := sched.NewStatsWorker(cfg.Stats.RefreshInterval, subRepo, codeRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Pool gauge ----
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := pool.Stat()
				metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
			}
		}
	}()

	// ---- HTTP server ----
	server := web.NewServer(validatorUC, redeemUC, idp, rateLimiter, &cfg.Redemption, logger)
	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
