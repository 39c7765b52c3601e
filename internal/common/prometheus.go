package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	ChangeEventPublished       = "change_event_published_total"
	EnrichLookupFailure        = "enrich_lookup_failure_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		ChangeEventPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChangeEventPublished,
			Help: "Count of published like and follow change events",
		}, []string{"topic"}),
		EnrichLookupFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EnrichLookupFailure,
			Help: "Count of media items enriched with defaults after a failed lookup",
		}, []string{"lookup"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
