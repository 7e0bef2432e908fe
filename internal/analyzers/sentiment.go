package analyzers

import (
	"fmt"
	"strings"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

var positiveKeywords = []string{
	"great", "love", "like", "good", "easy", "smooth", "awesome", "excellent",
	"nice", "helpful", "clear", "fast", "simple", "perfect", "enjoy", "intuitive",
}

var negativeKeywords = []string{
	"bad", "hate", "confus", "slow", "difficult", "hard", "too long", "long",
	"boring", "annoy", "frustrat", "unclear", "broken", "worst", "poor", "tedious",
}

// AnalyzeSentiment classifies free-text samples by keyword vote and reports
// the majority share. This is a bounded heuristic, not a language model.
func AnalyzeSentiment(in models.SentimentInput) models.MetricInsight {
	positive, negative, neutral := 0, 0, 0
	for _, sample := range in.Samples {
		switch classifySample(sample) {
		case 1:
			positive++
		case -1:
			negative++
		default:
			neutral++
		}
	}
	total := positive + negative + neutral
	if total <= 0 {
		return notEnoughData("sentiment")
	}

	var (
		insight    string
		suggestion string
	)
	switch {
	case positive > negative:
		share := utils.Clamp01(float64(positive) / float64(total))
		insight = fmt.Sprintf("Feedback skews positive: %s of %d comments read positive.",
			utils.FormatPercent(share), total)
		suggestion = "Respondents like the experience. Surface a testimonial or keep iterating as is."
	case negative > positive:
		share := utils.Clamp01(float64(negative) / float64(total))
		insight = fmt.Sprintf("Feedback skews negative: %s of %d comments read negative.",
			utils.FormatPercent(share), total)
		suggestion = "Read the critical comments for recurring complaints and address the top one."
	default:
		share := utils.Clamp01(float64(positive) / float64(total))
		insight = fmt.Sprintf("Feedback is mixed: %s of %d comments read positive.",
			utils.FormatPercent(share), total)
		suggestion = "Sentiment is split. Look for the themes dividing respondents."
	}

	return models.MetricInsight{
		Insight:    insight,
		Suggestion: suggestion,
		Confidence: confidenceForSamples(total),
	}
}

// classifySample returns 1 for positive, -1 for negative, 0 for neutral.
func classifySample(sample string) int {
	text := strings.ToLower(sample)
	score := 0
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			score--
		}
	}
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return 0
	}
}
