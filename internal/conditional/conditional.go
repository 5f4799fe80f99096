// Package conditional evaluates configuration rule trees against entry
// field values. No business logic beyond rule matching lives here.
package conditional

import (
	"strconv"
	"strings"

	"pdfgate/internal/model"
)

// Matches reports whether the given logic applies to the entry.
// A nil logic always matches (no logic configured). Present-but-empty logic
// is evaluated like any other: zero rules satisfy "all", so an empty "show"
// matches and an empty "hide" does not.
func Matches(logic *model.ConditionalLogic, entry *model.Entry) bool {
	if logic == nil {
		return true
	}

	matched := evalRules(logic, entry)
	if strings.EqualFold(logic.ActionType, "hide") {
		return !matched
	}
	return matched
}

func evalRules(logic *model.ConditionalLogic, entry *model.Entry) bool {
	any := strings.EqualFold(logic.LogicType, "any")

	if any {
		for _, r := range logic.Rules {
			if evalRule(r, entry) {
				return true
			}
		}
		return false
	}

	// "all" (the default): every rule must hold; zero rules hold vacuously.
	for _, r := range logic.Rules {
		if !evalRule(r, entry) {
			return false
		}
	}
	return true
}

func evalRule(rule model.ConditionalRule, entry *model.Entry) bool {
	field := entry.Field(rule.FieldID)
	target := rule.Value

	switch strings.ToLower(rule.Operator) {
	case "is":
		return equalsLoose(field, target)
	case "isnot":
		return !equalsLoose(field, target)
	case "greater_than":
		return compareNumeric(field, target) > 0
	case "less_than":
		return compareNumeric(field, target) < 0
	case "contains":
		return strings.Contains(field, target)
	case "starts_with":
		return strings.HasPrefix(field, target)
	case "ends_with":
		return strings.HasSuffix(field, target)
	default:
		return false
	}
}

// equalsLoose compares case-insensitively, numerically when both sides are
// numbers ("1.0" is "1").
func equalsLoose(a, b string) bool {
	if fa, errA := strconv.ParseFloat(a, 64); errA == nil {
		if fb, errB := strconv.ParseFloat(b, 64); errB == nil {
			return fa == fb
		}
	}
	return strings.EqualFold(a, b)
}

// compareNumeric returns -1, 0 or 1 comparing field against target.
// Non-numeric input falls back to string ordering.
func compareNumeric(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
