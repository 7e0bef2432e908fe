package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formlens/insight-engine/internal/metrics"
	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/plans"
)

// freePlanActionCap limits how much of a plan free-tier users see.
const freePlanActionCap = 3

// Planner runs the full trigger flow: normalize insights, gate on
// eligibility, build the action plan and persist it.
type Planner struct {
	logger      *slog.Logger
	plans       *plans.Store
	minInterval time.Duration
	extraRules  []rebuildRule
	now         func() time.Time
}

// NewPlanner constructs a Planner. A nil plan store disables persistence and
// history-based gating; extraRules extend the built-in rule table.
func NewPlanner(logger *slog.Logger, planStore *plans.Store, minInterval time.Duration, extraRules []rebuildRule) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Planner{
		logger:      logger,
		plans:       planStore,
		minInterval: minInterval,
		extraRules:  extraRules,
		now:         time.Now,
	}
}

// TriggerOptions carry per-call context for one rebuild trigger.
type TriggerOptions struct {
	FormID        string
	ResponseCount int
	// LastRunAt overrides the persisted last-run stamp when > 0.
	LastRunAt int64
	// MinInterval overrides the planner-wide cooldown when > 0.
	MinInterval time.Duration
	// UserPlan gates plan depth; "free" sees a truncated action list.
	UserPlan string
	// LastPlanHash overrides the persisted hash when non-empty.
	LastPlanHash  string
	QuestionIDMap map[string]string
	// OnPlanned fires after an eligible plan is built and persisted.
	OnPlanned func(models.AutoRebuildPlan)
}

// TriggerSurveyRebuildIfNeeded evaluates one trigger end to end. Ineligible
// triggers return a ghost plan: eligible=false, the gating reason, and no
// actions. Ghost plans are never persisted and never stamp the last run.
func (p *Planner) TriggerSurveyRebuildIfNeeded(ctx context.Context, raw any, opts TriggerOptions) models.AutoRebuildPlan {
	now := p.now()
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = p.minInterval
	}

	insights := NormalizeInsights(raw)
	insightsHash := InsightsHash(insights)

	lastRunAt := opts.LastRunAt
	lastPlanHash := opts.LastPlanHash
	if p.plans != nil && opts.FormID != "" {
		if lastRunAt == 0 {
			lastRunAt = p.plans.LastRunAt(ctx, opts.FormID)
		}
		if lastPlanHash == "" {
			if previous := p.plans.LastPlan(ctx, opts.FormID); previous != nil {
				lastPlanHash = previous.InsightsHash
			}
		}
	}

	decision := EvaluateEligibility(EligibilityInput{
		FormID:        opts.FormID,
		ResponseCount: opts.ResponseCount,
		LastRunAt:     lastRunAt,
		MinInterval:   minInterval,
		LastPlanHash:  lastPlanHash,
		InsightsHash:  insightsHash,
		Now:           now,
	})

	if !decision.Eligible {
		metrics.ObservePlan(false)
		p.logger.Info("rebuild trigger skipped",
			slog.String("form_id", opts.FormID),
			slog.String("reason", decision.Reason))
		return models.AutoRebuildPlan{
			PlanID:              uuid.NewString(),
			FormID:              opts.FormID,
			CreatedAt:           now.UnixMilli(),
			Eligible:            false,
			Reason:              decision.Reason,
			Actions:             []models.PlannedAction{},
			InsightsHash:        insightsHash,
			ScheduleNextCheckAt: decision.NextCheckAt.UTC().Format(time.RFC3339),
		}
	}

	plan := BuildAutoRebuildPlan(insights, PlanOptions{
		FormID:        opts.FormID,
		QuestionIDMap: opts.QuestionIDMap,
		MinInterval:   minInterval,
		ExtraRules:    p.extraRules,
		Now:           now,
	})
	if opts.UserPlan == "free" && len(plan.Actions) > freePlanActionCap {
		plan.Actions = plan.Actions[:freePlanActionCap]
	}

	if p.plans != nil {
		p.plans.SavePlan(ctx, opts.FormID, plan)
	}
	metrics.ObservePlan(true)
	p.logger.Info("rebuild plan created",
		slog.String("form_id", opts.FormID),
		slog.String("plan_id", plan.PlanID),
		slog.Int("actions", len(plan.Actions)))
	if opts.OnPlanned != nil {
		opts.OnPlanned(plan)
	}
	return plan
}
