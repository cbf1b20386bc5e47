package rfq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParsesTotal counts completed parses.
	// Labels: strategy (pattern, semantic, fallback)
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfqd",
			Subsystem: "parser",
			Name:      "parses_total",
			Help:      "Total number of parsed RFQ messages by extraction strategy",
		},
		[]string{"strategy"},
	)

	// FallbacksTotal counts semantic calls that fell back to patterns.
	FallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rfqd",
			Subsystem: "parser",
			Name:      "semantic_fallbacks_total",
			Help:      "Total number of semantic extraction failures answered by the pattern extractor",
		},
	)

	// ValidationFindingsTotal counts validation findings.
	// Labels: severity (ERROR, WARNING, INFO)
	ValidationFindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfqd",
			Subsystem: "parser",
			Name:      "validation_findings_total",
			Help:      "Total number of validation findings recorded on parsed requests",
		},
		[]string{"severity"},
	)

	// ParseDuration tracks end-to-end parse latency.
	ParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfqd",
			Subsystem: "parser",
			Name:      "parse_duration_seconds",
			Help:      "Duration of single RFQ parses in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	// ConfidenceScore tracks the distribution of result confidence.
	ConfidenceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rfqd",
			Subsystem: "parser",
			Name:      "confidence_score",
			Help:      "Confidence score of parsed requests",
			Buckets:   []float64{0, 0.2, 0.4, 0.5, 0.6, 0.8, 0.9, 1},
		},
	)
)

// Strategy labels.
const (
	StrategyPattern  = "pattern"
	StrategySemantic = "semantic"
	StrategyFallback = "fallback"
)
