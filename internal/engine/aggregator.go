// Package engine holds the insight aggregator, the rebuild eligibility gate
// and the heuristic plan builder. All computation here is synchronous and
// pure; the injected cache and plan store are the only side effects, and both
// are best-effort.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/formlens/insight-engine/internal/analyzers"
	"github.com/formlens/insight-engine/internal/cache"
	"github.com/formlens/insight-engine/internal/metrics"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/stable"
)

const summaryClauseLimit = 5

const fallbackSummary = "Still building up data for this form. Check back once more responses come in."

// Engine aggregates per-metric analyzer output behind a content-addressed
// result cache.
type Engine struct {
	logger *slog.Logger
	cache  *cache.ResultCache
	now    func() time.Time
}

// New constructs an Engine. A nil cache disables caching (every call
// recomputes); a nil logger falls back to slog.Default().
func New(logger *slog.Logger, resultCache *cache.ResultCache) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, cache: resultCache, now: time.Now}
}

// AnalyzeOptions control one aggregation call.
type AnalyzeOptions struct {
	FormID       string
	ForceRefresh bool
}

// AnalyzeAllMetrics runs exactly the analyzers whose input is present and
// wraps their output with cache metadata. The call is total: analyzer
// computation cannot fail, and storage failures silently degrade to a
// recompute.
func (e *Engine) AnalyzeAllMetrics(ctx context.Context, inputs models.ModularInputs, opts AnalyzeOptions) models.MetricEngineResult {
	signature := stable.Hash(stable.Stringify(inputs))
	key := cache.Key(opts.FormID, signature)

	if !opts.ForceRefresh && e.cache != nil {
		if result, ok := e.cache.Get(ctx, key); ok {
			metrics.ObserveAnalysis(0, metrics.OutcomeCached)
			return result
		}
	}

	started := e.now()
	result := e.runAnalyzers(inputs)
	result.CacheKey = key
	result.UpdatedAt = started.UnixMilli()

	ttl := cache.DefaultTTL
	if e.cache != nil {
		ttl = e.cache.TTL()
	}
	result.ExpiresAt = started.Add(ttl).UnixMilli()
	result.OverallSummary = buildOverallSummary(result)

	if e.cache != nil {
		e.cache.Set(ctx, key, result)
	}
	metrics.ObserveAnalysis(e.now().Sub(started), metrics.OutcomeComputed)
	e.logger.Debug("metrics analyzed",
		slog.String("form_id", opts.FormID),
		slog.String("signature", signature),
		slog.Bool("force_refresh", opts.ForceRefresh))
	return result
}

// runAnalyzers dispatches to each analyzer whose input key is present.
// Skipped analyzers leave their result field nil, never a placeholder.
func (e *Engine) runAnalyzers(inputs models.ModularInputs) models.MetricEngineResult {
	var result models.MetricEngineResult
	if inputs.Completion != nil {
		insight := analyzers.AnalyzeCompletionRate(*inputs.Completion)
		result.Completion = &insight
	}
	if inputs.Time != nil {
		insight := analyzers.AnalyzeCompletionTime(*inputs.Time)
		result.Time = &insight
	}
	if inputs.Devices != nil {
		insight := analyzers.AnalyzeDeviceMix(*inputs.Devices)
		result.Devices = &insight
	}
	if inputs.Traffic != nil {
		insight := analyzers.AnalyzeTrafficSources(*inputs.Traffic)
		result.Traffic = &insight
	}
	if inputs.Geography != nil {
		insight := analyzers.AnalyzeGeography(*inputs.Geography)
		result.Geography = &insight
	}
	if inputs.Questions != nil {
		insight := analyzers.AnalyzeQuestionPerformance(*inputs.Questions)
		result.Questions = &insight
	}
	if inputs.Activity != nil {
		insight := analyzers.AnalyzeHourlyActivity(*inputs.Activity)
		result.Activity = &insight
	}
	if inputs.Sentiment != nil {
		insight := analyzers.AnalyzeSentiment(*inputs.Sentiment)
		result.Sentiment = &insight
	}
	return result
}

// buildOverallSummary concatenates up to five analyzer clauses in a fixed
// priority order: completion, device, questions, timing, traffic.
func buildOverallSummary(result models.MetricEngineResult) string {
	ordered := []*models.MetricInsight{
		result.Completion,
		result.Devices,
		result.Questions,
		result.Time,
		result.Traffic,
	}
	clauses := make([]string, 0, summaryClauseLimit)
	for _, insight := range ordered {
		if insight == nil || insight.Insight == "" {
			continue
		}
		clauses = append(clauses, insight.Insight)
		if len(clauses) == summaryClauseLimit {
			break
		}
	}
	if len(clauses) == 0 {
		return fallbackSummary
	}
	return strings.Join(clauses, " ")
}
