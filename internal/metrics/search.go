package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semsearch",
			Name:      "search_requests_total",
			Help:      "Total search pipeline invocations by outcome",
		},
		[]string{"outcome"}, // ok / cache_hit / invalid / rate_limited / embedding_error / backend_error
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semsearch",
			Name:      "search_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// RegisterSearchMetrics registers search metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(SearchRequestsTotal, SearchCacheTotal)
}
