package engine

import (
	"testing"
	"time"

	"github.com/formlens/insight-engine/internal/models"
)

func TestNormalizeInsightsShapes(t *testing.T) {
	tests := []struct {
		name        string
		raw         any
		wantSummary string
		wantKeys    int
	}{
		{"nil", nil, "", 0},
		{"typed", models.AIInsights{Summary: "ok", KeyInsights: []string{"a", ""}}, "ok", 1},
		{"typed pointer", &models.AIInsights{Summary: "ptr"}, "ptr", 0},
		{"json string", `{"summary":"from json","keyInsights":["x","y"]}`, "from json", 2},
		{"bare text", "plain words", "plain words", 0},
		{"map snake case", map[string]any{"summary": "m", "key_insights": []any{"one"}}, "m", 1},
		{"wrong types", map[string]any{"summary": 42, "keyInsights": "not-a-list"}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeInsights(tt.raw)
			if got.Summary != tt.wantSummary {
				t.Fatalf("summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if len(got.KeyInsights) != tt.wantKeys {
				t.Fatalf("keyInsights = %v, want %d entries", got.KeyInsights, tt.wantKeys)
			}
			if got.KeyInsights == nil || got.Recommendations == nil {
				t.Fatalf("normalized slices must never be nil")
			}
		})
	}
}

func TestInsightsHashIgnoresFieldNoise(t *testing.T) {
	a := NormalizeInsights(map[string]any{"summary": "s", "keyInsights": []any{"k"}})
	b := NormalizeInsights(`{"keyInsights":["k"],"summary":"s"}`)
	if InsightsHash(a) != InsightsHash(b) {
		t.Fatalf("equivalent insights must hash identically")
	}
}

func TestExtractQuestionRefs(t *testing.T) {
	refs := extractQuestionRefs("90% of users skipped question 4. q2 also underperforms. Question 4 again.")
	if len(refs) != 2 {
		t.Fatalf("expected deduplicated refs, got %+v", refs)
	}
	if refs[0].Index != 2 || refs[1].Index != 4 {
		t.Fatalf("refs should sort by index: %+v", refs)
	}
	if refs[1].Label != "Question 4" {
		t.Fatalf("label = %q", refs[1].Label)
	}
}

func TestBuildAutoRebuildPlanDropOffRule(t *testing.T) {
	insights := models.AIInsights{
		KeyInsights: []string{"90% of users skipped Question 4"},
	}
	plan := BuildAutoRebuildPlan(insights, PlanOptions{
		FormID:        "form-1",
		QuestionIDMap: map[string]string{"Q4": "q_abc123"},
		Now:           time.Now(),
	})

	if !plan.Eligible || plan.PlanID == "" || plan.FormID != "form-1" {
		t.Fatalf("plan header malformed: %+v", plan)
	}
	if len(plan.Actions) < 3 {
		t.Fatalf("drop-off rule should emit tweak + section break + progress indicator: %+v", plan.Actions)
	}

	tweak := plan.Actions[0]
	if tweak.Type != models.ActionTweakQuestionCopy || tweak.Priority != models.PriorityHigh {
		t.Fatalf("first action should be a high-priority copy tweak: %+v", tweak)
	}
	if tweak.QuestionLabel != "Question 4" || tweak.QuestionID != "q_abc123" {
		t.Fatalf("question reference not resolved: %+v", tweak)
	}

	var haveBreak, haveProgress bool
	for _, action := range plan.Actions {
		switch action.Type {
		case models.ActionInsertSectionBreak:
			haveBreak = true
		case models.ActionAddProgressIndicator:
			haveProgress = true
		}
	}
	if !haveBreak || !haveProgress {
		t.Fatalf("structural follow-ups missing: %+v", plan.Actions)
	}
}

func TestBuildAutoRebuildPlanDeviceRules(t *testing.T) {
	plan := BuildAutoRebuildPlan(models.AIInsights{
		KeyInsights: []string{"Mobile users complete the form faster than desktop"},
	}, PlanOptions{FormID: "form-1"})

	if len(plan.Actions) != 1 || plan.Actions[0].Type != models.ActionImproveDesktopUX {
		t.Fatalf("mobile-outperforms should target desktop UX: %+v", plan.Actions)
	}

	plan = BuildAutoRebuildPlan(models.AIInsights{
		KeyInsights: []string{"Desktop completion is higher than mobile"},
	}, PlanOptions{FormID: "form-1"})

	if len(plan.Actions) != 1 || plan.Actions[0].Type != models.ActionOptimizeMobile {
		t.Fatalf("desktop-outperforms should target mobile: %+v", plan.Actions)
	}
	if plan.Actions[0].Priority != models.PriorityHigh {
		t.Fatalf("mobile fixes rank high priority: %+v", plan.Actions[0])
	}
}

func TestBuildAutoRebuildPlanLengthAndConfusion(t *testing.T) {
	plan := BuildAutoRebuildPlan(models.AIInsights{
		KeyInsights: []string{"Respondents say the survey is too long"},
	}, PlanOptions{FormID: "form-1"})
	if len(plan.Actions) != 1 || plan.Actions[0].Type != models.ActionShortenSurvey {
		t.Fatalf("length signal should shorten the survey: %+v", plan.Actions)
	}

	plan = BuildAutoRebuildPlan(models.AIInsights{
		KeyInsights: []string{"Several respondents were confused by the wording"},
	}, PlanOptions{FormID: "form-1"})
	if len(plan.Actions) != 1 || plan.Actions[0].Type != models.ActionClarifyInstruction {
		t.Fatalf("confusion without refs should clarify instructions: %+v", plan.Actions)
	}
}

func TestBuildAutoRebuildPlanFallbackAction(t *testing.T) {
	plan := BuildAutoRebuildPlan(models.AIInsights{
		Recommendations: []string{"Consider refreshing the theme"},
	}, PlanOptions{FormID: "form-1"})
	if len(plan.Actions) != 1 || plan.Actions[0].Type != models.ActionClarifyInstruction {
		t.Fatalf("unmatched recommendations should fall back to a low-priority clarify: %+v", plan.Actions)
	}
	if plan.Actions[0].Priority != models.PriorityLow {
		t.Fatalf("fallback priority must be low: %+v", plan.Actions[0])
	}
}

func TestBuildAutoRebuildPlanEmptyInsights(t *testing.T) {
	plan := BuildAutoRebuildPlan(models.AIInsights{}, PlanOptions{FormID: "form-1"})
	if len(plan.Actions) != 0 {
		t.Fatalf("no signals and no recommendations should yield no actions: %+v", plan.Actions)
	}
	if plan.InsightsHash == "" || plan.ScheduleNextCheckAt == "" {
		t.Fatalf("plan metadata must still be stamped: %+v", plan)
	}
}
