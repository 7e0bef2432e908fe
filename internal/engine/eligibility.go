package engine

import (
	"fmt"
	"time"

	"github.com/formlens/insight-engine/internal/utils"
)

const (
	// DefaultMinInterval is the cooldown between rebuild plans for a form.
	DefaultMinInterval = 24 * time.Hour
	// MinResponseCount is the sample size required before planning.
	MinResponseCount = 10
)

// EligibilityInput carries everything one gating decision needs.
type EligibilityInput struct {
	FormID        string
	ResponseCount int
	LastRunAt     int64 // epoch ms; 0 means never run
	MinInterval   time.Duration
	LastPlanHash  string
	InsightsHash  string
	Now           time.Time
}

// EligibilityDecision is the structured outcome of one gating evaluation.
// Ineligibility is a state, not an error.
type EligibilityDecision struct {
	Eligible    bool
	Reason      string
	NextCheckAt time.Time
}

// EvaluateEligibility decides whether a new rebuild plan may be proposed.
// Checks run in a fixed order and the first failing one wins: form identity,
// sample size, cooldown, then change detection against the last plan's hash.
func EvaluateEligibility(in EligibilityInput) EligibilityDecision {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	minInterval := in.MinInterval
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	if in.FormID == "" {
		return EligibilityDecision{
			Reason:      "Missing formId",
			NextCheckAt: now.Add(minInterval),
		}
	}

	if in.ResponseCount < MinResponseCount {
		return EligibilityDecision{
			Reason: fmt.Sprintf("Need at least %d responses before planning a rebuild (have %d)",
				MinResponseCount, in.ResponseCount),
			NextCheckAt: now.Add(minInterval),
		}
	}

	if in.LastRunAt > 0 {
		elapsed := now.Sub(time.UnixMilli(in.LastRunAt))
		if elapsed < minInterval {
			remaining := minInterval - elapsed
			return EligibilityDecision{
				Reason: fmt.Sprintf("Rebuild was checked recently; try again in %d minutes",
					utils.MinutesUntil(remaining)),
				NextCheckAt: time.UnixMilli(in.LastRunAt).Add(minInterval),
			}
		}
	}

	if in.LastPlanHash != "" && in.InsightsHash == in.LastPlanHash {
		return EligibilityDecision{
			Reason:      "no significant changes since the last plan",
			NextCheckAt: now.Add(minInterval),
		}
	}

	return EligibilityDecision{
		Eligible:    true,
		Reason:      "significant changes detected",
		NextCheckAt: now.Add(minInterval),
	}
}
