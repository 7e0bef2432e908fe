package analyzers

import (
	"fmt"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// AnalyzeCompletionRate reports the share of respondents who finished the
// survey, with an optional week-over-week delta when both period counts are
// present.
func AnalyzeCompletionRate(in models.CompletionInput) models.MetricInsight {
	if in.TotalResponses <= 0 {
		return notEnoughData("completion rate")
	}

	rate := utils.Clamp01(float64(in.Complete) / float64(in.TotalResponses))
	insight := fmt.Sprintf("%s of respondents complete the survey (%d of %d).",
		utils.FormatPercent(rate), in.Complete, in.TotalResponses)

	if in.LastWeek > 0 {
		change := (float64(in.ThisWeek) - float64(in.LastWeek)) / float64(in.LastWeek) * 100
		direction := "up"
		if change < 0 {
			direction = "down"
			change = -change
		}
		insight += fmt.Sprintf(" Completions are %s %.1f%% week over week.", direction, change)
	}

	var suggestion string
	switch {
	case rate >= 0.85:
		suggestion = "Completion is strong. Keep the current structure."
	case rate <= 0.5:
		suggestion = "Over half of respondents drop out. Shorten the survey or simplify early questions."
	default:
		suggestion = "Completion is moderate. Review where respondents stop to find friction."
	}

	return models.MetricInsight{
		Insight:    insight,
		Suggestion: suggestion,
		Confidence: confidenceForSamples(in.TotalResponses),
	}
}
