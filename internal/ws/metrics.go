package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drawguess_ws_events_total",
			Help: "Inbound websocket events by type",
		},
		[]string{"type"},
	)
	wsEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drawguess_ws_events_dropped_total",
			Help: "Inbound websocket events dropped by the per-connection limiter",
		},
	)
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "drawguess_ws_connections",
			Help: "Open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(wsEvents, wsEventsDropped, wsConnections)
}
