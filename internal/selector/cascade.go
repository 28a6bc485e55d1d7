package selector

import "github.com/vitrine-app/vitrine/internal/model"

// Rule names the cascade step that produced a selection.
type Rule string

const (
	RuleCrossDevice Rule = "cross_device"
	RuleDefault     Rule = "default"
	RuleSameDevice  Rule = "same_device"
	RuleOwner       Rule = "owner"
	RuleFirst       Rule = "first"
	RuleNone        Rule = "none"
)

// Signals are the stored hints the cascade consults, "" when absent.
type Signals struct {
	// LastSelected is the cross-device last-selected collection.
	LastSelected string
	// Default is the user's default collection.
	Default string
	// SameDevice is the last pick cached on this device.
	SameDevice string
}

// Cascade picks the active collection from accessible, taking the first rule
// that applies. Hints naming collections outside accessible are skipped.
func Cascade(accessible []model.AccessibleCollection, sig Signals) (string, Rule) {
	if len(accessible) == 0 {
		return "", RuleNone
	}

	ids := make(map[string]struct{}, len(accessible))
	for _, c := range accessible {
		ids[c.CollectionID] = struct{}{}
	}
	has := func(id string) bool {
		if id == "" {
			return false
		}
		_, ok := ids[id]
		return ok
	}

	switch {
	case has(sig.LastSelected):
		return sig.LastSelected, RuleCrossDevice
	case has(sig.Default):
		return sig.Default, RuleDefault
	case has(sig.SameDevice):
		return sig.SameDevice, RuleSameDevice
	}
	for _, c := range accessible {
		if c.Role == model.RoleOwner {
			return c.CollectionID, RuleOwner
		}
	}
	return accessible[0].CollectionID, RuleFirst
}

func indexOf(accessible []model.AccessibleCollection, id string) int {
	if id == "" {
		return -1
	}
	for i, c := range accessible {
		if c.CollectionID == id {
			return i
		}
	}
	return -1
}
