package handlers

import "github.com/prometheus/client_golang/prometheus"

var (
	recommendationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Recommendation requests by outcome",
	}, []string{"status"})

	recommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_duration_seconds",
		Help:    "Time spent running the recommendation pipeline",
		Buckets: prometheus.DefBuckets,
	})

	reviewSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "review_submissions_total",
		Help: "Review submissions by outcome",
	}, []string{"status"})
)

func init() {
	for _, collector := range []prometheus.Collector{
		recommendationRequests,
		recommendationDuration,
		reviewSubmissions,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
