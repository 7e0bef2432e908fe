package models

// AIInsights is the normalized shape of the free-form insight text produced
// by the external summarizer. Malformed or partial input is coerced into this
// shape with empty defaults; downstream code never sees anything else.
type AIInsights struct {
	Summary         string         `json:"summary"`
	KeyInsights     []string       `json:"keyInsights"`
	Recommendations []string       `json:"recommendations"`
	Details         map[string]any `json:"details,omitempty"`
}

// ActionType enumerates the kinds of survey edits a plan may propose.
type ActionType string

const (
	ActionTweakQuestionCopy    ActionType = "tweak_question_copy"
	ActionInsertSectionBreak   ActionType = "insert_section_break"
	ActionAddProgressIndicator ActionType = "add_progress_indicator"
	ActionImproveDesktopUX     ActionType = "improve_desktop_ux"
	ActionOptimizeMobile       ActionType = "optimize_mobile"
	ActionShortenSurvey        ActionType = "shorten_survey"
	ActionClarifyInstruction   ActionType = "clarify_instruction"
	ActionReorderQuestions     ActionType = "reorder_questions"
	ActionSimplifyOptions      ActionType = "simplify_options"
)

// ValidActionType reports whether s names a known action kind.
func ValidActionType(s string) bool {
	switch ActionType(s) {
	case ActionTweakQuestionCopy, ActionInsertSectionBreak, ActionAddProgressIndicator,
		ActionImproveDesktopUX, ActionOptimizeMobile, ActionShortenSurvey,
		ActionClarifyInstruction, ActionReorderQuestions, ActionSimplifyOptions:
		return true
	}
	return false
}

// Priority ranks a planned action for human review.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PlannedAction is one atomic, human-reviewable suggestion. Actions are never
// executed automatically.
type PlannedAction struct {
	Type          ActionType `json:"type"`
	Priority      Priority   `json:"priority"`
	Reason        string     `json:"reason"`
	QuestionID    string     `json:"questionId,omitempty"`
	QuestionLabel string     `json:"questionLabel,omitempty"`
	Preview       string     `json:"preview,omitempty"`
}

// AutoRebuildPlan is the unit of plan persistence. A plan with Eligible=false
// and no actions is a valid "ghost" state communicating why planning is
// gated; it is never stored as the latest plan.
type AutoRebuildPlan struct {
	PlanID              string          `json:"planId"`
	FormID              string          `json:"formId"`
	CreatedAt           int64           `json:"createdAt"` // epoch ms
	Eligible            bool            `json:"eligible"`
	Reason              string          `json:"reason"`
	Actions             []PlannedAction `json:"actions"`
	InsightsHash        string          `json:"insightsHash"`
	ScheduleNextCheckAt string          `json:"scheduleNextCheckAt,omitempty"` // RFC3339
}
