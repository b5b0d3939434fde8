package metrics

import (
	"expense-ltd/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	enroll(
		redemptionsTotal,
		rollbackFailuresTotal,
		activeSubscriptions,
		availableCodes,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltd_redemptions_total",
			Help: "Total redemption attempts by outcome kind.",
		},
		[]string{"outcome"}, // 'success' or an error kind
	)

	rollbackFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ltd_rollback_failures_total",
			Help: "Redemptions whose compensating rollback failed and need manual reconciliation.",
		},
	)

	activeSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ltd_active_subscriptions",
			Help: "Current number of active subscriptions by plan.",
		},
		[]string{"plan"},
	)

	availableCodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ltd_codes",
			Help: "Current number of known codes by status.",
		},
		[]string{"status"},
	)
)

func IncRedemption(res *model.RedemptionResult) {
	outcome := "success"
	if !res.Success {
		outcome = string(res.Kind)
	}
	redemptionsTotal.WithLabelValues(outcome).Inc()
	if res.Kind == model.KindRollbackFailed {
		rollbackFailuresTotal.Inc()
	}
}

func SetActiveSubscriptions(counts map[model.PlanType]int) {
	for _, plan := range model.KnownPlanTypes {
		if count, ok := counts[plan]; ok {
			activeSubscriptions.WithLabelValues(string(plan)).Set(float64(count))
		}
	}
}

func SetCodeCounts(counts map[model.CodeStatus]int) {
	for status, count := range counts {
		availableCodes.WithLabelValues(string(status)).Set(float64(count))
	}
}
