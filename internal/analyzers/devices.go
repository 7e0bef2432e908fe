package analyzers

import (
	"fmt"
	"math"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// speedDeltaThreshold is the relative difference above which one device
// class is called out as noticeably faster.
const speedDeltaThreshold = 0.08

// AnalyzeDeviceMix reports the desktop/mobile/tablet share and, when average
// completion times per device are supplied, whether one class is noticeably
// faster than the other.
func AnalyzeDeviceMix(in models.DeviceInput) models.MetricInsight {
	total := in.Desktop + in.Mobile + in.Tablet
	if total <= 0 {
		return notEnoughData("device mix")
	}

	desktopShare := utils.Clamp01(float64(in.Desktop) / float64(total))
	mobileShare := utils.Clamp01(float64(in.Mobile) / float64(total))
	tabletShare := utils.Clamp01(float64(in.Tablet) / float64(total))

	insight := fmt.Sprintf("Device mix: %s desktop, %s mobile, %s tablet.",
		utils.FormatPercent(desktopShare), utils.FormatPercent(mobileShare), utils.FormatPercent(tabletShare))

	if note := speedNote(in.AvgDesktopMs, in.AvgMobileMs); note != "" {
		insight += " " + note
	}

	var suggestion string
	switch {
	case mobileShare >= 0.6:
		suggestion = "Most respondents are on mobile. Keep questions short and controls touch-friendly."
	case desktopShare >= 0.6:
		suggestion = "Most respondents are on desktop. Longer question formats are fine here."
	default:
		suggestion = "Traffic is split across devices. Test the survey on both desktop and mobile."
	}

	return models.MetricInsight{
		Insight:    insight,
		Suggestion: suggestion,
		Confidence: confidenceForSamples(total),
	}
}

func speedNote(desktopMs, mobileMs float64) string {
	if desktopMs <= 0 || mobileMs <= 0 {
		return ""
	}
	slower := math.Max(desktopMs, mobileMs)
	relDiff := math.Abs(desktopMs-mobileMs) / slower
	if relDiff < speedDeltaThreshold {
		return ""
	}
	if mobileMs < desktopMs {
		return "Mobile users finish noticeably faster than desktop users."
	}
	return "Desktop users finish noticeably faster than mobile users."
}
