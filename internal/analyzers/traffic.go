package analyzers

import (
	"fmt"
	"strings"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

var sourceLabels = map[string]string{
	"google":    "Google Search",
	"bing":      "Bing",
	"facebook":  "Facebook",
	"instagram": "Instagram",
	"twitter":   "Twitter/X",
	"x":         "Twitter/X",
	"linkedin":  "LinkedIn",
	"tiktok":    "TikTok",
	"youtube":   "YouTube",
	"email":     "email campaigns",
	"newsletter": "email campaigns",
	"qr":        "QR codes",
	"direct":    "direct links",
}

// AnalyzeTrafficSources reports the dominant referrer, prettifying known
// source keys and falling back to domain extraction for URLs.
func AnalyzeTrafficSources(in models.TrafficInput) models.MetricInsight {
	total := 0
	topSource := ""
	topCount := 0
	for source, count := range in.Sources {
		if count <= 0 {
			continue
		}
		total += count
		if count > topCount || (count == topCount && source < topSource) {
			topSource = source
			topCount = count
		}
	}
	if total <= 0 {
		return notEnoughData("traffic sources")
	}

	share := utils.Clamp01(float64(topCount) / float64(total))
	label := prettySourceLabel(topSource)

	var suggestion string
	if share >= 0.7 {
		suggestion = fmt.Sprintf("Nearly all traffic comes from %s. Try promoting the form on another channel.", label)
	} else {
		suggestion = fmt.Sprintf("%s performs best. Consider investing more there.", capitalize(label))
	}

	return models.MetricInsight{
		Insight:    fmt.Sprintf("Most responses arrive via %s (%s of traffic).", label, utils.FormatPercent(share)),
		Suggestion: suggestion,
		Confidence: confidenceForSamples(total),
	}
}

func prettySourceLabel(source string) string {
	key := strings.ToLower(strings.TrimSpace(source))
	if label, ok := sourceLabels[key]; ok {
		return label
	}
	if strings.Contains(key, "://") || strings.Contains(key, "www.") || strings.Contains(key, ".") {
		return extractDomain(key)
	}
	if key == "" {
		return "unknown sources"
	}
	return key
}

func extractDomain(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return raw
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
