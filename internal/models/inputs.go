package models

// ModularInputs carries the per-metric payloads assembled by the analytics
// layer. Every field is optional; a nil field means "do not run that
// analyzer".
type ModularInputs struct {
	Completion *CompletionInput `json:"completion,omitempty"`
	Time       *TimingInput     `json:"time,omitempty"`
	Devices    *DeviceInput     `json:"devices,omitempty"`
	Traffic    *TrafficInput    `json:"traffic,omitempty"`
	Geography  *GeographyInput  `json:"geography,omitempty"`
	Questions  *QuestionInput   `json:"questions,omitempty"`
	Activity   *ActivityInput   `json:"activity,omitempty"`
	Sentiment  *SentimentInput  `json:"sentiment,omitempty"`
}

// CompletionInput holds response counts for the completion-rate analyzer.
// ThisWeek/LastWeek are optional period counts for the week-over-week delta.
type CompletionInput struct {
	TotalResponses int `json:"totalResponses"`
	Complete       int `json:"complete"`
	ThisWeek       int `json:"thisWeek,omitempty"`
	LastWeek       int `json:"lastWeek,omitempty"`
}

// TimingInput holds duration samples in milliseconds. AverageMs may be
// supplied precomputed when raw samples are unavailable.
type TimingInput struct {
	DurationsMs []float64 `json:"durationsMs,omitempty"`
	AverageMs   float64   `json:"averageMs,omitempty"`
}

// DeviceInput holds per-device response counts and optional average
// completion times used for the cross-device speed comparison.
type DeviceInput struct {
	Desktop      int     `json:"desktop"`
	Mobile       int     `json:"mobile"`
	Tablet       int     `json:"tablet"`
	AvgDesktopMs float64 `json:"avgDesktopMs,omitempty"`
	AvgMobileMs  float64 `json:"avgMobileMs,omitempty"`
}

// TrafficInput maps a traffic source (referrer key or URL) to a visit count.
type TrafficInput struct {
	Sources map[string]int `json:"sources"`
}

// GeographyInput maps a country name to a response count.
type GeographyInput struct {
	Countries map[string]int `json:"countries"`
}

// QuestionInput holds per-question skip and dwell statistics.
type QuestionInput struct {
	Questions []QuestionStat `json:"questions"`
}

// QuestionStat describes how respondents interacted with one question.
type QuestionStat struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Views      int     `json:"views"`
	Skips      int     `json:"skips"`
	AvgDwellMs float64 `json:"avgDwellMs,omitempty"`
}

// ActivityInput holds either a 24-bucket hourly histogram or raw response
// timestamps (epoch milliseconds) from which the histogram is derived.
type ActivityInput struct {
	Hourly     []int   `json:"hourly,omitempty"`
	Timestamps []int64 `json:"timestamps,omitempty"`
}

// SentimentInput holds free-text response samples.
type SentimentInput struct {
	Samples []string `json:"samples"`
}
