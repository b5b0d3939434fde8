package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { enroll(pgxPoolConns) }

var pgxPoolConns = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "ltd_pgx_pool_connections",
		Help: "Connections in the pgx pool by state.",
	},
	[]string{"state"}, // 'total', 'idle', 'acquired'
)

func SetDBPoolStats(total, idle, acquired int32) {
	pgxPoolConns.WithLabelValues("total").Set(float64(total))
	pgxPoolConns.WithLabelValues("idle").Set(float64(idle))
	pgxPoolConns.WithLabelValues("acquired").Set(float64(acquired))
}
