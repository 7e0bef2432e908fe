package engine

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/formlens/insight-engine/internal/models"
	"github.com/formlens/insight-engine/internal/utils"
)

// rulePackFile is the on-disk shape of an operator-supplied rule pack.
// Packs extend the built-in table; they cannot override or disable it.
type rulePackFile struct {
	Rules []rulePackEntry `yaml:"rules"`
}

type rulePackEntry struct {
	ID    string `yaml:"id"`
	Match struct {
		AnyOf []string `yaml:"any_of"`
	} `yaml:"match"`
	Action struct {
		Type     string `yaml:"type"`
		Priority string `yaml:"priority"`
		Reason   string `yaml:"reason"`
		Preview  string `yaml:"preview"`
	} `yaml:"action"`
}

// LoadRulePack reads extra rebuild rules from a YAML file. An empty path
// means no pack is configured and returns nil rules without error.
func LoadRulePack(path string) ([]rebuildRule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("rulepack.load", "read rule pack", err)
	}
	var file rulePackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, utils.NewAppError("rulepack.load", "parse rule pack", err)
	}

	rules := make([]rebuildRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		if entry.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		if len(entry.Match.AnyOf) == 0 {
			return nil, fmt.Errorf("rule %q: match.any_of is empty", entry.ID)
		}
		if !models.ValidActionType(entry.Action.Type) {
			return nil, fmt.Errorf("rule %q: unknown action type %q", entry.ID, entry.Action.Type)
		}
		priority := models.Priority(entry.Action.Priority)
		switch priority {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		case "":
			priority = models.PriorityMedium
		default:
			return nil, fmt.Errorf("rule %q: unknown priority %q", entry.ID, entry.Action.Priority)
		}

		keywords := make([]string, 0, len(entry.Match.AnyOf))
		for _, kw := range entry.Match.AnyOf {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		action := models.PlannedAction{
			Type:     models.ActionType(entry.Action.Type),
			Priority: priority,
			Reason:   entry.Action.Reason,
			Preview:  entry.Action.Preview,
		}
		if action.Reason == "" {
			action.Reason = fmt.Sprintf("Matched rule %q", entry.ID)
		}

		rules = append(rules, rebuildRule{
			name: entry.ID,
			applies: func(rc ruleContext) bool {
				return corpusHasAny(rc.corpus, keywords...)
			},
			actions: func(rc ruleContext) []models.PlannedAction {
				return []models.PlannedAction{action}
			},
		})
	}
	return rules, nil
}
