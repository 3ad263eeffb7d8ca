package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	VotesCastTotal             = "votes_cast_total"
	RotationTotal              = "rotation_total"
	MintEventTotal             = "mint_events_total"
	StreamConnections          = "leaderboard_stream_connections"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		StreamConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: StreamConnections,
			Help: "Number of open leaderboard stream connections",
		}, []string{"timeframe"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		VotesCastTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: VotesCastTotal,
			Help: "Count of votes cast, by outcome",
		}, []string{"status"}),
		RotationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RotationTotal,
			Help: "Count of daily rotations, by outcome",
		}, []string{"status"}),
		MintEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MintEventTotal,
			Help: "Count of mint events credited by source",
		}, []string{"event_type"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
