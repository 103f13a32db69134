package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightdelay_predictions_served_total",
		Help: "Total number of predictions returned to clients.",
	})
	PredictionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightdelay_predictions_rejected_total",
		Help: "Total number of prediction requests rejected, by reason.",
	}, []string{"reason"})
	PredictionsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightdelay_predictions_published_total",
		Help: "Total number of prediction events published to Redis.",
	})
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightdelay_predictions_publish_failed_total",
		Help: "Total number of prediction events that failed to publish.",
	})
	DelayProbability = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightdelay_delay_probability",
		Help:    "Distribution of served delay probabilities.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightdelay_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"method", "route", "status"})
)
