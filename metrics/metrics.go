package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the application's Prometheus instruments
type Collector struct {
	registry *prometheus.Registry

	PredictionsSaved  *prometheus.CounterVec
	PredictionsScored prometheus.Counter
	MatchesScored     prometheus.Counter
	StatsRecomputed   *prometheus.CounterVec
	GroupsCreated     prometheus.Counter
	Invitations       *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers all instruments on a fresh registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		PredictionsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "predictions_saved_total",
			Help:      "Predictions written, by whether the row was created or updated.",
		}, []string{"action"}),
		PredictionsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "predictions_scored_total",
			Help:      "Predictions whose points were persisted by the scorer.",
		}),
		MatchesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "matches_scored_total",
			Help:      "Finished matches processed by the scorer.",
		}),
		StatsRecomputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "stats_recomputed_total",
			Help:      "Membership and profile statistics recomputations.",
		}, []string{"subject"}),
		GroupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "groups_created_total",
			Help:      "Prediction groups created.",
		}),
		Invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "football",
			Name:      "invitations_total",
			Help:      "Invitation transitions by resulting status.",
		}, []string{"status"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "football",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "football",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	c.registry.MustRegister(
		c.PredictionsSaved,
		c.PredictionsScored,
		c.MatchesScored,
		c.StatsRecomputed,
		c.GroupsCreated,
		c.Invitations,
		c.HTTPRequests,
		c.HTTPDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request
func (c *Collector) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
