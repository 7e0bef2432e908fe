package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/plans"
	"github.com/formlens/insight-engine/internal/store"
)

func newTestPlanner(t *testing.T) (*Planner, *plans.Store) {
	t.Helper()
	planStore := plans.NewStore(store.NewMemory(), nil)
	return NewPlanner(nil, planStore, 0, nil), planStore
}

func dropOffInsights() models.AIInsights {
	return models.AIInsights{
		Summary:     "Completion is sliding",
		KeyInsights: []string{"Users drop off around Question 3"},
	}
}

func TestTriggerPersistsEligiblePlan(t *testing.T) {
	planner, planStore := newTestPlanner(t)
	ctx := context.Background()

	var hooked *models.AutoRebuildPlan
	plan := planner.TriggerSurveyRebuildIfNeeded(ctx, dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 25,
		OnPlanned:     func(p models.AutoRebuildPlan) { hooked = &p },
	})

	if !plan.Eligible || len(plan.Actions) == 0 {
		t.Fatalf("expected an eligible plan with actions: %+v", plan)
	}
	if hooked == nil || hooked.PlanID != plan.PlanID {
		t.Fatalf("OnPlanned hook not invoked with the persisted plan")
	}

	stored := planStore.LastPlan(ctx, "form-1")
	if stored == nil || stored.PlanID != plan.PlanID {
		t.Fatalf("plan not persisted: %+v", stored)
	}
	if planStore.LastRunAt(ctx, "form-1") != plan.CreatedAt {
		t.Fatalf("last run not stamped")
	}
}

func TestTriggerGhostPlanNotPersisted(t *testing.T) {
	planner, planStore := newTestPlanner(t)
	ctx := context.Background()

	plan := planner.TriggerSurveyRebuildIfNeeded(ctx, dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 4,
	})

	if plan.Eligible || len(plan.Actions) != 0 {
		t.Fatalf("ineligible trigger must return a ghost plan: %+v", plan)
	}
	if !strings.Contains(plan.Reason, "Need at least 10 responses") {
		t.Fatalf("reason = %q", plan.Reason)
	}
	if planStore.LastPlan(ctx, "form-1") != nil || planStore.LastRunAt(ctx, "form-1") != 0 {
		t.Fatalf("ghost plans must never touch the store")
	}
}

func TestTriggerDedupesUnchangedInsights(t *testing.T) {
	planner, _ := newTestPlanner(t)
	ctx := context.Background()

	first := planner.TriggerSurveyRebuildIfNeeded(ctx, dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 25,
	})
	if !first.Eligible {
		t.Fatalf("first trigger should plan: %+v", first)
	}

	// Second trigger with identical insights. Skip the cooldown via an
	// explicit old last-run so the hash check is what gates.
	second := planner.TriggerSurveyRebuildIfNeeded(ctx, dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 30,
		LastRunAt:     time.Now().Add(-48 * time.Hour).UnixMilli(),
	})
	if second.Eligible {
		t.Fatalf("unchanged insights must dedup: %+v", second)
	}
	if second.Reason != "no significant changes since the last plan" {
		t.Fatalf("reason = %q", second.Reason)
	}
}

func TestTriggerCooldownUsesPersistedLastRun(t *testing.T) {
	planner, _ := newTestPlanner(t)
	ctx := context.Background()

	first := planner.TriggerSurveyRebuildIfNeeded(ctx, dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 25,
	})
	if !first.Eligible {
		t.Fatalf("first trigger should plan")
	}

	second := planner.TriggerSurveyRebuildIfNeeded(ctx, models.AIInsights{
		KeyInsights: []string{"Brand new signal about Question 9 skips"},
	}, TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 30,
	})
	if second.Eligible {
		t.Fatalf("persisted last-run must enforce the cooldown: %+v", second)
	}
	if !strings.Contains(second.Reason, "try again in") {
		t.Fatalf("reason = %q", second.Reason)
	}
}

func TestTriggerFreePlanCapsActions(t *testing.T) {
	planner, _ := newTestPlanner(t)

	// Drop-off with two question refs produces four actions.
	insights := models.AIInsights{
		KeyInsights: []string{"Users skip Question 2 and Question 5 constantly"},
	}
	plan := planner.TriggerSurveyRebuildIfNeeded(context.Background(), insights, TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 25,
		UserPlan:      "free",
	})
	if !plan.Eligible {
		t.Fatalf("expected eligible plan: %+v", plan)
	}
	if len(plan.Actions) != freePlanActionCap {
		t.Fatalf("free plan should cap at %d actions, got %d", freePlanActionCap, len(plan.Actions))
	}
}

func TestTriggerWithoutStore(t *testing.T) {
	planner := NewPlanner(nil, nil, time.Hour, nil)
	plan := planner.TriggerSurveyRebuildIfNeeded(context.Background(), dropOffInsights(), TriggerOptions{
		FormID:        "form-1",
		ResponseCount: 25,
	})
	if !plan.Eligible {
		t.Fatalf("nil store must not block planning: %+v", plan)
	}
}
