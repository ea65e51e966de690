package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the source dimension.
const (
	sourceGameLog  = "game_log"
	sourceEventLog = "event_log"
)

var (
	bytesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factorio_relay",
		Name:      "bytes_read_total",
		Help:      "Bytes delivered by the log tail readers",
	}, []string{"source"})

	linesRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factorio_relay",
		Name:      "lines_total",
		Help:      "Log lines processed",
	}, []string{"source"})

	// droppedLines counts lines that produced no outbound message.
	// Reasons: untagged, structured_feed, location_tag, malformed,
	// unhandled, disabled, excluded_surface.
	droppedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factorio_relay",
		Name:      "dropped_lines_total",
		Help:      "Lines intentionally dropped, by reason",
	}, []string{"reason"})

	sinkSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factorio_relay",
		Name:      "sink_sends_total",
		Help:      "Messages delivered to an outbound sink",
	}, []string{"sink"})

	sinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "factorio_relay",
		Name:      "sink_errors_total",
		Help:      "Failed sends to an outbound sink",
	}, []string{"sink"})

	evolutionFactor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "factorio_relay",
		Name:      "evolution_factor",
		Help:      "Last observed evolution factor per surface",
	}, []string{"surface"})
)
