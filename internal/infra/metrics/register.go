package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// enroll queues collectors declared in this package's init funcs until
// MustRegister commits them.
func enroll(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister commits every enrolled collector to the default Prometheus
// registry. Safe to call more than once; only the first call registers.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}
