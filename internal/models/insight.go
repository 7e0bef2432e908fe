package models

// Confidence grades how much data backs an insight.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MetricInsight is the output of a single analyzer: a short natural-language
// statement, a suggested follow-up, and a confidence grade. Insights are
// immutable and recreated on every run.
type MetricInsight struct {
	Insight    string     `json:"insight"`
	Suggestion string     `json:"suggestion"`
	Confidence Confidence `json:"confidence,omitempty"`
}

// MetricEngineResult aggregates one MetricInsight per analyzer actually run.
// Analyzers whose input was absent leave their field nil. Results are
// read-only after creation; changed inputs produce a new result under a new
// cache key.
type MetricEngineResult struct {
	Completion *MetricInsight `json:"completion,omitempty"`
	Time       *MetricInsight `json:"time,omitempty"`
	Devices    *MetricInsight `json:"devices,omitempty"`
	Traffic    *MetricInsight `json:"traffic,omitempty"`
	Geography  *MetricInsight `json:"geography,omitempty"`
	Questions  *MetricInsight `json:"questions,omitempty"`
	Activity   *MetricInsight `json:"activity,omitempty"`
	Sentiment  *MetricInsight `json:"sentiment,omitempty"`

	OverallSummary string `json:"overallSummary"`
	CacheKey       string `json:"cacheKey"`
	UpdatedAt      int64  `json:"updatedAt"` // epoch ms
	ExpiresAt      int64  `json:"expiresAt"` // epoch ms
}
