package analyzers

import (
	"fmt"
	"sort"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// AnalyzeGeography reports the top one or two countries by response count.
func AnalyzeGeography(in models.GeographyInput) models.MetricInsight {
	type countryCount struct {
		name  string
		count int
	}
	total := 0
	ranked := make([]countryCount, 0, len(in.Countries))
	for name, count := range in.Countries {
		if count <= 0 || name == "" {
			continue
		}
		total += count
		ranked = append(ranked, countryCount{name: name, count: count})
	}
	if total <= 0 {
		return notEnoughData("geography")
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})

	topShare := utils.Clamp01(float64(ranked[0].count) / float64(total))
	insight := fmt.Sprintf("%s leads with %s of responses.", ranked[0].name, utils.FormatPercent(topShare))
	if len(ranked) > 1 {
		secondShare := utils.Clamp01(float64(ranked[1].count) / float64(total))
		insight = fmt.Sprintf("%s and %s lead with %s and %s of responses.",
			ranked[0].name, ranked[1].name, utils.FormatPercent(topShare), utils.FormatPercent(secondShare))
	}

	suggestion := "Audience is concentrated. Check the survey language matches your top regions."
	if topShare < 0.5 {
		suggestion = "Responses are spread across regions. Consider localized versions of the survey."
	}

	return models.MetricInsight{
		Insight:    insight,
		Suggestion: suggestion,
		Confidence: confidenceForSamples(total),
	}
}
