package analyzers

import (
	"fmt"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// AnalyzeQuestionPerformance finds the question respondents skip most often.
func AnalyzeQuestionPerformance(in models.QuestionInput) models.MetricInsight {
	var (
		worst     models.QuestionStat
		worstRate float64
		sampled   int
		found     bool
	)
	for _, q := range in.Questions {
		if q.Views <= 0 {
			continue
		}
		sampled += q.Views
		rate := utils.Clamp01(float64(q.Skips) / float64(q.Views))
		if !found || rate > worstRate {
			worst = q
			worstRate = rate
			found = true
		}
	}
	if !found {
		return notEnoughData("question performance")
	}

	label := worst.Label
	if label == "" {
		label = worst.ID
	}

	var suggestion string
	switch {
	case worstRate >= 0.3:
		suggestion = fmt.Sprintf("%q loses a lot of respondents. Reword it or make it optional.", label)
	case worstRate >= 0.1:
		suggestion = fmt.Sprintf("Keep an eye on %q; its skip rate is above the rest.", label)
	default:
		suggestion = "No question stands out as a problem."
	}

	return models.MetricInsight{
		Insight:    fmt.Sprintf("%q has the highest skip rate at %s.", label, utils.FormatPercent(worstRate)),
		Suggestion: suggestion,
		Confidence: confidenceForSamples(sampled),
	}
}
