package plans

import (
	"context"
	"testing"
	"time"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/store"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(store.NewMemory(), nil)
	ctx := context.Background()

	if got := s.LastPlan(ctx, "form-1"); got != nil {
		t.Fatalf("expected nil before save, got %+v", got)
	}
	if got := s.LastRunAt(ctx, "form-1"); got != 0 {
		t.Fatalf("expected 0 before save, got %d", got)
	}

	createdAt := time.Now().UnixMilli()
	plan := models.AutoRebuildPlan{
		PlanID:       "plan-1",
		FormID:       "form-1",
		CreatedAt:    createdAt,
		Eligible:     true,
		Reason:       "significant changes detected",
		Actions:      []models.PlannedAction{{Type: models.ActionShortenSurvey, Priority: models.PriorityMedium, Reason: "survey runs long"}},
		InsightsHash: "cafe1234",
	}
	s.SavePlan(ctx, "form-1", plan)

	got := s.LastPlan(ctx, "form-1")
	if got == nil {
		t.Fatalf("expected stored plan")
	}
	if got.InsightsHash != "cafe1234" || len(got.Actions) != 1 {
		t.Fatalf("plan mismatch: %+v", got)
	}
	if s.LastRunAt(ctx, "form-1") != createdAt {
		t.Fatalf("last run not stamped from plan CreatedAt")
	}

	s.Clear(ctx, "form-1")
	if s.LastPlan(ctx, "form-1") != nil || s.LastRunAt(ctx, "form-1") != 0 {
		t.Fatalf("clear should remove plan and last-run stamp")
	}
}

func TestStoreMalformedRecordsReadAsAbsent(t *testing.T) {
	kv := store.NewMemory()
	s := NewStore(kv, nil)
	ctx := context.Background()

	if err := kv.Set(ctx, "insight-engine:plans:form-2", []byte("{broken"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := kv.Set(ctx, "insight-engine:plans:lastrun:form-2", []byte("not-a-number"), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if got := s.LastPlan(ctx, "form-2"); got != nil {
		t.Fatalf("malformed plan must read as nil, got %+v", got)
	}
	if got := s.LastRunAt(ctx, "form-2"); got != 0 {
		t.Fatalf("malformed stamp must read as 0, got %d", got)
	}
}

func TestStoreEmptyFormIDIsNoop(t *testing.T) {
	s := NewStore(store.NewMemory(), nil)
	ctx := context.Background()

	s.SavePlan(ctx, "", models.AutoRebuildPlan{FormID: ""})
	if got := s.LastPlan(ctx, ""); got != nil {
		t.Fatalf("empty form id should never resolve a plan")
	}
	s.Clear(ctx, "")
}
