package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/stable"
)

// NormalizeInsights coerces whatever the external summarizer produced into
// the canonical AIInsights shape. Absent or malformed fields become empty
// defaults; this function never fails, and downstream code only ever sees the
// normalized type.
func NormalizeInsights(raw any) models.AIInsights {
	normalized := models.AIInsights{
		KeyInsights:     []string{},
		Recommendations: []string{},
	}

	switch v := raw.(type) {
	case nil:
		return normalized
	case models.AIInsights:
		normalized.Summary = v.Summary
		normalized.KeyInsights = cleanStrings(v.KeyInsights)
		normalized.Recommendations = cleanStrings(v.Recommendations)
		normalized.Details = v.Details
		return normalized
	case *models.AIInsights:
		if v == nil {
			return normalized
		}
		return NormalizeInsights(*v)
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			// Bare text becomes the summary.
			normalized.Summary = v
			return normalized
		}
		return NormalizeInsights(decoded)
	case json.RawMessage:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return normalized
		}
		return NormalizeInsights(decoded)
	case map[string]any:
		if s, ok := v["summary"].(string); ok {
			normalized.Summary = s
		}
		normalized.KeyInsights = anySlice(v["keyInsights"])
		if len(normalized.KeyInsights) == 0 {
			normalized.KeyInsights = anySlice(v["key_insights"])
		}
		normalized.Recommendations = anySlice(v["recommendations"])
		if details, ok := v["details"].(map[string]any); ok {
			normalized.Details = details
		}
		return normalized
	default:
		return normalized
	}
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func anySlice(raw any) []string {
	out := []string{}
	switch v := raw.(type) {
	case []string:
		return cleanStrings(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// InsightsHash fingerprints normalized insights. Semantically identical
// insights hash identically regardless of key order.
func InsightsHash(insights models.AIInsights) string {
	return stable.Hash(stable.Stringify(insights))
}

var questionRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)question\s*(\d+)`),
	regexp.MustCompile(`(?i)\bq\s*(\d+)\b`),
}

type questionRef struct {
	Index int
	Label string
}

// extractQuestionRefs pulls "question 4" / "q4" style references out of the
// corpus, deduplicated by numeric index.
func extractQuestionRefs(corpus string) []questionRef {
	seen := make(map[int]struct{})
	refs := make([]questionRef, 0, 4)
	for _, pattern := range questionRefPatterns {
		for _, match := range pattern.FindAllStringSubmatch(corpus, -1) {
			index, err := strconv.Atoi(match[1])
			if err != nil || index <= 0 {
				continue
			}
			if _, ok := seen[index]; ok {
				continue
			}
			seen[index] = struct{}{}
			refs = append(refs, questionRef{Index: index, Label: fmt.Sprintf("Question %d", index)})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs
}

// resolveQuestionID maps a textual reference to a real question identifier
// via the caller-supplied lookup, trying the common key spellings. An empty
// return means no mapping exists.
func resolveQuestionID(idMap map[string]string, ref questionRef) string {
	if len(idMap) == 0 {
		return ""
	}
	for _, key := range []string{
		fmt.Sprintf("Q%d", ref.Index),
		ref.Label,
		strconv.Itoa(ref.Index),
	} {
		if id, ok := idMap[key]; ok && id != "" {
			return id
		}
	}
	return ""
}

// PlanOptions parameterize plan construction.
type PlanOptions struct {
	FormID        string
	QuestionIDMap map[string]string
	MinInterval   time.Duration
	ExtraRules    []rebuildRule
	Now           time.Time
}

// BuildAutoRebuildPlan turns normalized insights into a prioritized action
// plan by running the ordered heuristic rule table over the insight text.
// It is called only after eligibility passes and never mutates survey data.
func BuildAutoRebuildPlan(insights models.AIInsights, opts PlanOptions) models.AutoRebuildPlan {
	insights = NormalizeInsights(insights)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	corpusParts := make([]string, 0, len(insights.KeyInsights)+len(insights.Recommendations)+1)
	corpusParts = append(corpusParts, insights.KeyInsights...)
	corpusParts = append(corpusParts, insights.Recommendations...)
	corpusParts = append(corpusParts, insights.Summary)
	corpus := strings.ToLower(strings.Join(corpusParts, "\n"))

	rctx := ruleContext{
		corpus:   corpus,
		insights: insights,
		refs:     extractQuestionRefs(corpus),
		idMap:    opts.QuestionIDMap,
	}

	actions := make([]models.PlannedAction, 0, 8)
	for _, rule := range builtinRules {
		if rule.applies(rctx) {
			actions = append(actions, rule.actions(rctx)...)
		}
	}
	for _, rule := range opts.ExtraRules {
		if rule.applies(rctx) {
			actions = append(actions, rule.actions(rctx)...)
		}
	}
	if len(actions) == 0 && len(insights.Recommendations) > 0 {
		actions = append(actions, models.PlannedAction{
			Type:     models.ActionClarifyInstruction,
			Priority: models.PriorityLow,
			Reason:   "Recommendations exist but none matched a concrete rebuild signal",
			Preview:  "Review the AI recommendations and tighten the survey intro accordingly.",
		})
	}

	return models.AutoRebuildPlan{
		PlanID:              uuid.NewString(),
		FormID:              opts.FormID,
		CreatedAt:           now.UnixMilli(),
		Eligible:            true,
		Reason:              "significant changes detected",
		Actions:             actions,
		InsightsHash:        InsightsHash(insights),
		ScheduleNextCheckAt: now.Add(minInterval).UTC().Format(time.RFC3339),
	}
}
