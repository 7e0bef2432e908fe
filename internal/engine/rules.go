package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/formlens/insight-engine/internal/models"
)

// ruleContext is the read-only view a rule sees: the lowercased insight text,
// the normalized insights, and the question references already extracted.
type ruleContext struct {
	corpus   string
	insights models.AIInsights
	refs     []questionRef
	idMap    map[string]string
}

// rebuildRule is one entry in the ordered heuristic table. Rules append
// actions; they never remove or reorder actions another rule produced.
type rebuildRule struct {
	name    string
	applies func(ruleContext) bool
	actions func(ruleContext) []models.PlannedAction
}

var (
	mobileOutperformsPattern  = regexp.MustCompile(`(?i)mobile[^.!?\n]*(faster|better|higher)`)
	desktopOutperformsPattern = regexp.MustCompile(`(?i)desktop[^.!?\n]*(faster|better|higher)`)
)

func corpusHasAny(corpus string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(corpus, kw) {
			return true
		}
	}
	return false
}

// builtinRules run in order. The per-question rule fires once per referenced
// question; the structural follow-ups fire at most once per plan.
var builtinRules = []rebuildRule{
	{
		name: "drop-off",
		applies: func(rc ruleContext) bool {
			return corpusHasAny(rc.corpus, "drop-off", "drop off", "dropoff", "skip", "abandon")
		},
		actions: func(rc ruleContext) []models.PlannedAction {
			actions := make([]models.PlannedAction, 0, len(rc.refs)+2)
			for _, ref := range rc.refs {
				actions = append(actions, models.PlannedAction{
					Type:          models.ActionTweakQuestionCopy,
					Priority:      models.PriorityHigh,
					Reason:        fmt.Sprintf("%s shows an elevated drop-off or skip signal", ref.Label),
					QuestionID:    resolveQuestionID(rc.idMap, ref),
					QuestionLabel: ref.Label,
					Preview:       "Rewrite the question in plainer language and cut optional qualifiers.",
				})
			}
			actions = append(actions,
				models.PlannedAction{
					Type:     models.ActionInsertSectionBreak,
					Priority: models.PriorityMedium,
					Reason:   "Breaking the form into shorter sections reduces mid-form abandonment",
				},
				models.PlannedAction{
					Type:     models.ActionAddProgressIndicator,
					Priority: models.PriorityMedium,
					Reason:   "A visible progress indicator keeps respondents oriented through longer forms",
				},
			)
			return actions
		},
	},
	{
		name: "mobile-outperforms",
		applies: func(rc ruleContext) bool {
			return mobileOutperformsPattern.MatchString(rc.corpus)
		},
		actions: func(rc ruleContext) []models.PlannedAction {
			return []models.PlannedAction{{
				Type:     models.ActionImproveDesktopUX,
				Priority: models.PriorityMedium,
				Reason:   "Mobile respondents outperform desktop; the desktop layout likely adds friction",
				Preview:  "Tighten the desktop layout: narrower column, larger inputs, fewer fields per row.",
			}}
		},
	},
	{
		name: "desktop-outperforms",
		applies: func(rc ruleContext) bool {
			return desktopOutperformsPattern.MatchString(rc.corpus)
		},
		actions: func(rc ruleContext) []models.PlannedAction {
			return []models.PlannedAction{{
				Type:     models.ActionOptimizeMobile,
				Priority: models.PriorityHigh,
				Reason:   "Desktop respondents outperform mobile; the mobile experience needs work",
				Preview:  "Audit tap targets, input types and keyboard handling on small screens.",
			}}
		},
	},
	{
		name: "length",
		applies: func(rc ruleContext) bool {
			return corpusHasAny(rc.corpus, "too long", "lengthy", "length", "complexity", "complex", "fatigue")
		},
		actions: func(rc ruleContext) []models.PlannedAction {
			return []models.PlannedAction{{
				Type:     models.ActionShortenSurvey,
				Priority: models.PriorityMedium,
				Reason:   "Respondents signal the survey runs long",
				Preview:  "Remove or merge low-signal questions and defer nice-to-have fields.",
			}}
		},
	},
	{
		name: "confusion",
		applies: func(rc ruleContext) bool {
			if len(rc.refs) > 0 {
				return false
			}
			for _, insight := range rc.insights.KeyInsights {
				lower := strings.ToLower(insight)
				if strings.Contains(lower, "clarif") || strings.Contains(lower, "confus") {
					return true
				}
			}
			return false
		},
		actions: func(rc ruleContext) []models.PlannedAction {
			return []models.PlannedAction{{
				Type:     models.ActionClarifyInstruction,
				Priority: models.PriorityMedium,
				Reason:   "Respondents report confusion but no specific question was identified",
				Preview:  "Add a short instruction block before the sections respondents stumble on.",
			}}
		},
	},
}
