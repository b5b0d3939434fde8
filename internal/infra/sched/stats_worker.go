package sched

import (
	"context"
	"time"

	"expense-ltd/internal/domain/ports/repository"
	"expense-ltd/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// StatsWorker periodically refreshes the subscription and code-inventory
// gauges so operators can watch LTD uptake without querying the database.
type StatsWorker struct {
	interval time.Duration
	subs     repository.SubscriptionRepository
	codes    repository.CodeRepository
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, subs repository.SubscriptionRepository, codes repository.CodeRepository, logger *zerolog.Logger) *StatsWorker {
	statsLog := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		subs:     subs,
		codes:    codes,
		log:      &statsLog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	subCounts, err := w.subs.CountActiveByPlan(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats worker: subscription counts")
	} else {
		metrics.SetActiveSubscriptions(subCounts)
	}

	codeCounts, err := w.codes.CountByStatus(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats worker: code counts")
	} else {
		metrics.SetCodeCounts(codeCounts)
	}
}
