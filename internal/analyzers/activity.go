package analyzers

import (
	"fmt"
	"time"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// AnalyzeHourlyActivity finds the peak response hour from a 24-bucket
// histogram, deriving the histogram from raw timestamps when necessary.
func AnalyzeHourlyActivity(in models.ActivityInput) models.MetricInsight {
	hourly := in.Hourly
	if len(hourly) != 24 {
		hourly = histogramFromTimestamps(in.Timestamps)
	}
	if hourly == nil {
		return notEnoughData("hourly activity")
	}

	total := 0
	peakHour := 0
	peakCount := 0
	for hour, count := range hourly {
		if count < 0 {
			continue
		}
		total += count
		if count > peakCount {
			peakHour = hour
			peakCount = count
		}
	}
	if total <= 0 {
		return notEnoughData("hourly activity")
	}

	peakShare := utils.Clamp01(float64(peakCount) / float64(total))
	return models.MetricInsight{
		Insight: fmt.Sprintf("Responses peak around %s (%s of daily activity).",
			utils.FormatHour(peakHour), utils.FormatPercent(peakShare)),
		Suggestion: fmt.Sprintf("Schedule reminders and shares shortly before %s to catch the peak.", utils.FormatHour(peakHour)),
		Confidence: confidenceForSamples(total),
	}
}

func histogramFromTimestamps(timestamps []int64) []int {
	if len(timestamps) == 0 {
		return nil
	}
	hourly := make([]int, 24)
	for _, ts := range timestamps {
		if ts <= 0 {
			continue
		}
		hour := time.UnixMilli(ts).UTC().Hour()
		hourly[hour]++
	}
	return hourly
}
