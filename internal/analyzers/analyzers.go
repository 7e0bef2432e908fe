// Package analyzers contains the pure per-metric-family analysis functions.
// Each analyzer maps a possibly sparse input to a single MetricInsight and
// must be total: empty or degenerate input yields a low-confidence neutral
// insight, never an error.
package analyzers

import "github.com/formlens/insight-engine/internal/models"

// Sample thresholds shared by most analyzers: twenty data points grade high,
// five grade medium.
const (
	highSampleThreshold   = 20
	mediumSampleThreshold = 5
)

func confidenceForSamples(n int) models.Confidence {
	switch {
	case n >= highSampleThreshold:
		return models.ConfidenceHigh
	case n >= mediumSampleThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func notEnoughData(topic string) models.MetricInsight {
	return models.MetricInsight{
		Insight:    "Not enough data yet to analyze " + topic + ".",
		Suggestion: "Collect more responses and check back.",
		Confidence: models.ConfidenceLow,
	}
}
