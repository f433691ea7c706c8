package classify

import (
	"strings"
	"unicode"

	"billing-backend/internal/constants"
	"billing-backend/internal/storage"
)

// Rule is one classification step. Rules are tried in slice order and the
// first match wins, so priority is data, not control flow.
type Rule struct {
	Name     string
	Match    func(rec storage.WorkRecord) bool
	Activity func(rec storage.WorkRecord) constants.Activity
}

// Classifier maps one work record to exactly one activity code. Pure and
// total: an unmatched record is normal work, never an error.
type Classifier struct {
	rules []Rule
}

func New() *Classifier {
	return &Classifier{rules: defaultRules()}
}

func (c *Classifier) Classify(rec storage.WorkRecord) constants.Activity {
	for _, rule := range c.rules {
		if rule.Match(rec) {
			return rule.Activity(rec)
		}
	}
	return constants.ActivityNormal
}

// Rules exposes the ordered rule names, mostly for tests and debugging.
func (c *Classifier) Rules() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return names
}

// Priority order is contractual: trainee beats inspection beats machine.
func defaultRules() []Rule {
	return []Rule{
		{
			Name: "trainee_name",
			Match: func(rec storage.WorkRecord) bool {
				return isTraineeName(rec.WorkerName)
			},
			Activity: func(storage.WorkRecord) constants.Activity {
				return constants.ActivityTrainee
			},
		},
		{
			Name: "inspection_keyword",
			Match: func(rec storage.WorkRecord) bool {
				return strings.Contains(rec.Description, constants.InspectionKeyword)
			},
			Activity: func(storage.WorkRecord) constants.Activity {
				return constants.ActivityInspection
			},
		},
		{
			Name: "dedicated_machine",
			Match: func(rec storage.WorkRecord) bool {
				_, ok := constants.MachineActivities[rec.MachineName]
				return ok
			},
			Activity: func(rec storage.WorkRecord) constants.Activity {
				return constants.MachineActivities[rec.MachineName]
			},
		},
	}
}

// isTraineeName matches trainees, who are entered with katakana-only display names.
func isTraineeName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}

	for _, r := range trimmed {
		if unicode.IsSpace(r) || r == '・' || r == 'ー' {
			continue
		}
		if !unicode.In(r, unicode.Katakana) {
			return false
		}
	}
	return true
}
