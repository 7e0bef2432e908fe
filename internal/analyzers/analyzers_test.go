package analyzers

import (
	"strings"
	"testing"
	"time"

	"github.com/formlens/insight-engine/internal/models"
)

func TestAnalyzeCompletionRateEmptyInput(t *testing.T) {
	insight := AnalyzeCompletionRate(models.CompletionInput{TotalResponses: 0, Complete: 0})
	if insight.Confidence != models.ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", insight.Confidence)
	}
	if strings.Contains(insight.Insight, "NaN") || strings.Contains(insight.Insight, "Inf") {
		t.Fatalf("division artifact leaked into insight: %s", insight.Insight)
	}
	if insight.Insight == "" || insight.Suggestion == "" {
		t.Fatalf("neutral insight must still carry text")
	}
}

func TestAnalyzeCompletionRateThresholds(t *testing.T) {
	cases := []struct {
		name     string
		complete int
		total    int
		wantWord string
	}{
		{"strong", 90, 100, "strong"},
		{"corrective", 40, 100, "drop out"},
		{"moderate", 70, 100, "moderate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AnalyzeCompletionRate(models.CompletionInput{TotalResponses: tc.total, Complete: tc.complete})
			if !strings.Contains(got.Suggestion, tc.wantWord) {
				t.Fatalf("suggestion %q missing %q", got.Suggestion, tc.wantWord)
			}
			if got.Confidence != models.ConfidenceHigh {
				t.Fatalf("100 responses should grade high, got %s", got.Confidence)
			}
		})
	}
}

func TestAnalyzeCompletionRateWeekOverWeek(t *testing.T) {
	got := AnalyzeCompletionRate(models.CompletionInput{
		TotalResponses: 50, Complete: 40, ThisWeek: 30, LastWeek: 20,
	})
	if !strings.Contains(got.Insight, "up 50.0% week over week") {
		t.Fatalf("expected simple percentage delta, got %q", got.Insight)
	}

	down := AnalyzeCompletionRate(models.CompletionInput{
		TotalResponses: 50, Complete: 40, ThisWeek: 10, LastWeek: 20,
	})
	if !strings.Contains(down.Insight, "down 50.0% week over week") {
		t.Fatalf("expected downward delta, got %q", down.Insight)
	}
}

func TestAnalyzeCompletionTime(t *testing.T) {
	got := AnalyzeCompletionTime(models.TimingInput{DurationsMs: []float64{60000, 120000, 180000}})
	if !strings.Contains(got.Insight, "2m 0s") {
		t.Fatalf("expected humanized mean, got %q", got.Insight)
	}

	precomputed := AnalyzeCompletionTime(models.TimingInput{AverageMs: 95000})
	if !strings.Contains(precomputed.Insight, "1m 35s") {
		t.Fatalf("expected precomputed average, got %q", precomputed.Insight)
	}
	if precomputed.Confidence != models.ConfidenceMedium {
		t.Fatalf("precomputed average should grade medium, got %s", precomputed.Confidence)
	}

	if empty := AnalyzeCompletionTime(models.TimingInput{}); empty.Confidence != models.ConfidenceLow {
		t.Fatalf("empty timing input should grade low")
	}
}

func TestAnalyzeDeviceMixSpeedDelta(t *testing.T) {
	in := models.DeviceInput{Desktop: 10, Mobile: 10, AvgDesktopMs: 100000, AvgMobileMs: 80000}
	got := AnalyzeDeviceMix(in)
	if !strings.Contains(got.Insight, "Mobile users finish noticeably faster") {
		t.Fatalf("expected mobile-faster note, got %q", got.Insight)
	}

	// 5% relative difference sits under the 8% threshold.
	close := models.DeviceInput{Desktop: 10, Mobile: 10, AvgDesktopMs: 100000, AvgMobileMs: 95000}
	if got := AnalyzeDeviceMix(close); strings.Contains(got.Insight, "noticeably faster") {
		t.Fatalf("delta under threshold should not produce a speed note: %q", got.Insight)
	}
}

func TestAnalyzeDeviceMixEmpty(t *testing.T) {
	if got := AnalyzeDeviceMix(models.DeviceInput{}); got.Confidence != models.ConfidenceLow {
		t.Fatalf("expected low confidence for empty device mix")
	}
}

func TestAnalyzeTrafficSources(t *testing.T) {
	got := AnalyzeTrafficSources(models.TrafficInput{Sources: map[string]int{
		"google": 40, "direct": 10,
	}})
	if !strings.Contains(got.Insight, "Google Search") {
		t.Fatalf("expected prettified label, got %q", got.Insight)
	}

	url := AnalyzeTrafficSources(models.TrafficInput{Sources: map[string]int{
		"https://www.example.com/launch?ref=1": 7,
	}})
	if !strings.Contains(url.Insight, "example.com") {
		t.Fatalf("expected extracted domain, got %q", url.Insight)
	}

	if empty := AnalyzeTrafficSources(models.TrafficInput{}); empty.Confidence != models.ConfidenceLow {
		t.Fatalf("empty traffic should grade low")
	}
}

func TestAnalyzeGeographyTopTwo(t *testing.T) {
	got := AnalyzeGeography(models.GeographyInput{Countries: map[string]int{
		"Germany": 30, "France": 20, "Spain": 5,
	}})
	if !strings.Contains(got.Insight, "Germany") || !strings.Contains(got.Insight, "France") {
		t.Fatalf("expected top two countries, got %q", got.Insight)
	}
	if strings.Contains(got.Insight, "Spain") {
		t.Fatalf("third country should not appear, got %q", got.Insight)
	}
}

func TestAnalyzeQuestionPerformance(t *testing.T) {
	got := AnalyzeQuestionPerformance(models.QuestionInput{Questions: []models.QuestionStat{
		{ID: "q1", Label: "How did you hear about us?", Views: 100, Skips: 5},
		{ID: "q4", Label: "What is your annual budget?", Views: 100, Skips: 45},
	}})
	if !strings.Contains(got.Insight, "What is your annual budget?") {
		t.Fatalf("expected worst question by skip rate, got %q", got.Insight)
	}
	if !strings.Contains(got.Insight, "45%") {
		t.Fatalf("expected skip rate percentage, got %q", got.Insight)
	}

	if empty := AnalyzeQuestionPerformance(models.QuestionInput{}); empty.Confidence != models.ConfidenceLow {
		t.Fatalf("empty question stats should grade low")
	}
}

func TestAnalyzeHourlyActivityHistogram(t *testing.T) {
	hourly := make([]int, 24)
	hourly[15] = 12
	hourly[9] = 3
	got := AnalyzeHourlyActivity(models.ActivityInput{Hourly: hourly})
	if !strings.Contains(got.Insight, "3 PM") {
		t.Fatalf("expected peak at 3 PM, got %q", got.Insight)
	}
}

func TestAnalyzeHourlyActivityFromTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	timestamps := []int64{
		base.UnixMilli(),
		base.Add(10 * time.Minute).UnixMilli(),
		base.Add(20 * time.Minute).UnixMilli(),
		base.Add(-3 * time.Hour).UnixMilli(),
	}
	got := AnalyzeHourlyActivity(models.ActivityInput{Timestamps: timestamps})
	if !strings.Contains(got.Insight, "2 PM") {
		t.Fatalf("expected peak derived from timestamps, got %q", got.Insight)
	}

	if empty := AnalyzeHourlyActivity(models.ActivityInput{}); empty.Confidence != models.ConfidenceLow {
		t.Fatalf("empty activity should grade low")
	}
}

func TestAnalyzeSentimentScenario(t *testing.T) {
	got := AnalyzeSentiment(models.SentimentInput{Samples: []string{
		"Great form!", "Love the flow", "Too long", "Confusing question 4",
	}})
	if !strings.Contains(got.Insight, "%") {
		t.Fatalf("expected percentage in insight, got %q", got.Insight)
	}
	if !strings.Contains(got.Insight, "50%") {
		t.Fatalf("expected two of four positive, got %q", got.Insight)
	}
}

func TestAnalyzeSentimentMajorities(t *testing.T) {
	pos := AnalyzeSentiment(models.SentimentInput{Samples: []string{"love it", "so easy", "meh"}})
	if !strings.Contains(pos.Insight, "skews positive") {
		t.Fatalf("expected positive majority, got %q", pos.Insight)
	}

	neg := AnalyzeSentiment(models.SentimentInput{Samples: []string{"confusing", "way too long", "fine"}})
	if !strings.Contains(neg.Insight, "skews negative") {
		t.Fatalf("expected negative majority, got %q", neg.Insight)
	}

	if empty := AnalyzeSentiment(models.SentimentInput{}); empty.Confidence != models.ConfidenceLow {
		t.Fatalf("no samples should grade low")
	}
}
