package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/formlens/insight-engine/internal/cache"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/stable"
	"github.com/formlens/insight-engine/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.KV) {
	t.Helper()
	kv := store.NewMemory()
	e := New(nil, cache.NewResultCache(kv, time.Hour, nil))
	return e, kv
}

func sampleInputs() models.ModularInputs {
	return models.ModularInputs{
		Completion: &models.CompletionInput{TotalResponses: 40, Complete: 36, ThisWeek: 25, LastWeek: 15},
		Devices:    &models.DeviceInput{Desktop: 30, Mobile: 10},
	}
}

func TestAnalyzeAllMetricsRunsOnlyPresentAnalyzers(t *testing.T) {
	e, _ := newTestEngine(t)

	result := e.AnalyzeAllMetrics(context.Background(), sampleInputs(), AnalyzeOptions{FormID: "form-1"})

	if result.Completion == nil || result.Devices == nil {
		t.Fatalf("present analyzers must produce insights: %+v", result)
	}
	if result.Time != nil || result.Traffic != nil || result.Geography != nil ||
		result.Questions != nil || result.Activity != nil || result.Sentiment != nil {
		t.Fatalf("absent inputs must leave result fields nil: %+v", result)
	}
	if result.UpdatedAt == 0 || result.ExpiresAt <= result.UpdatedAt {
		t.Fatalf("cache metadata not stamped: updatedAt=%d expiresAt=%d", result.UpdatedAt, result.ExpiresAt)
	}
}

func TestAnalyzeAllMetricsCacheKeyIgnoresMapOrder(t *testing.T) {
	a := models.ModularInputs{Traffic: &models.TrafficInput{Sources: map[string]int{
		"google": 10, "direct": 5, "twitter": 2,
	}}}
	b := models.ModularInputs{Traffic: &models.TrafficInput{Sources: map[string]int{
		"twitter": 2, "direct": 5, "google": 10,
	}}}

	if stable.Hash(stable.Stringify(a)) != stable.Hash(stable.Stringify(b)) {
		t.Fatalf("identical inputs must hash identically regardless of map order")
	}
}

func TestAnalyzeAllMetricsSecondCallServedFromCache(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first := e.AnalyzeAllMetrics(ctx, sampleInputs(), AnalyzeOptions{FormID: "form-1"})

	// Advance the clock; a cached result keeps the original timestamps.
	e.now = func() time.Time { return time.UnixMilli(first.UpdatedAt).Add(10 * time.Minute) }
	second := e.AnalyzeAllMetrics(ctx, sampleInputs(), AnalyzeOptions{FormID: "form-1"})

	if second.UpdatedAt != first.UpdatedAt || second.CacheKey != first.CacheKey {
		t.Fatalf("expected cached result, got recompute: first=%d second=%d", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestAnalyzeAllMetricsForceRefreshRecomputes(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first := e.AnalyzeAllMetrics(ctx, sampleInputs(), AnalyzeOptions{FormID: "form-1"})
	e.now = func() time.Time { return time.UnixMilli(first.UpdatedAt).Add(10 * time.Minute) }
	second := e.AnalyzeAllMetrics(ctx, sampleInputs(), AnalyzeOptions{FormID: "form-1", ForceRefresh: true})

	if second.UpdatedAt == first.UpdatedAt {
		t.Fatalf("force refresh must recompute")
	}
	if second.CacheKey != first.CacheKey {
		t.Fatalf("same inputs must keep the same cache key")
	}
}

func TestAnalyzeAllMetricsEmptyInputsFallbackSummary(t *testing.T) {
	e, _ := newTestEngine(t)

	result := e.AnalyzeAllMetrics(context.Background(), models.ModularInputs{}, AnalyzeOptions{FormID: "form-1"})
	if result.OverallSummary != fallbackSummary {
		t.Fatalf("empty inputs should yield fallback summary, got %q", result.OverallSummary)
	}
}

func TestAnalyzeAllMetricsWithoutCache(t *testing.T) {
	e := New(nil, nil)
	result := e.AnalyzeAllMetrics(context.Background(), sampleInputs(), AnalyzeOptions{FormID: "form-1"})
	if result.Completion == nil {
		t.Fatalf("nil cache must not disable analysis")
	}
}

func TestBuildOverallSummaryOrder(t *testing.T) {
	result := models.MetricEngineResult{
		Time:       &models.MetricInsight{Insight: "timing clause."},
		Completion: &models.MetricInsight{Insight: "completion clause."},
		Devices:    &models.MetricInsight{Insight: "device clause."},
	}
	summary := buildOverallSummary(result)
	if !strings.HasPrefix(summary, "completion clause.") {
		t.Fatalf("completion must lead the summary: %q", summary)
	}
	if strings.Index(summary, "device clause.") > strings.Index(summary, "timing clause.") {
		t.Fatalf("device clause must precede timing: %q", summary)
	}
}
