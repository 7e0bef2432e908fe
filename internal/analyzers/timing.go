package analyzers

import (
	"fmt"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

const longSurveyMs = 7 * 60 * 1000

// AnalyzeCompletionTime reports the average time respondents spend finishing
// the survey, from raw duration samples or a precomputed average.
func AnalyzeCompletionTime(in models.TimingInput) models.MetricInsight {
	avg := in.AverageMs
	samples := len(in.DurationsMs)
	if samples > 0 {
		sum := 0.0
		for _, d := range in.DurationsMs {
			sum += d
		}
		avg = sum / float64(samples)
	}
	if avg <= 0 {
		return notEnoughData("completion time")
	}

	confidence := confidenceForSamples(samples)
	if samples == 0 {
		// Precomputed average with unknown sample size.
		confidence = models.ConfidenceMedium
	}

	var suggestion string
	switch {
	case avg > longSurveyMs:
		suggestion = "Respondents take a long time. Consider trimming questions or splitting into sections."
	case avg < 30*1000:
		suggestion = "Responses come in quickly. There may be room for a follow-up question or two."
	default:
		suggestion = "Completion time looks healthy."
	}

	return models.MetricInsight{
		Insight:    fmt.Sprintf("Average completion time is %s.", utils.FormatDurationMs(avg)),
		Suggestion: suggestion,
		Confidence: confidence,
	}
}
