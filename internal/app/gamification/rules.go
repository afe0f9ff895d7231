package gamification

import (
	"sort"

	"github.com/salescoach/coach/internal/domain"
)

// defaultRules is the shipped XP reward table.
var defaultRules = domain.XPRules{
	domain.EventCreateLead:      {XP: 10, Label: "New lead", Description: "Create a new lead"},
	domain.EventFollowupOnTime:  {XP: 15, Label: "On-time follow-up", Description: "Complete a follow-up before it is due"},
	domain.EventFixMissingField: {XP: 5, Label: "Data quality fix", Description: "Fill in a missing field on a lead"},
	domain.EventDailyStreak:     {XP: 20, Label: "Daily streak bonus", Description: "Be active on consecutive days"},
	domain.EventWinOpportunity:  {XP: 25, Label: "Opportunity won", Description: "Close an opportunity as won"},
	domain.EventAdvancePhase:    {XP: 10, Label: "Phase advanced", Description: "Move an opportunity to its next phase"},
}

// DefaultRules returns a copy of the shipped XP reward table.
func DefaultRules() domain.XPRules {
	return copyRules(defaultRules)
}

// RuleOverride replaces parts of one XP rule. Nil XP and empty strings keep
// the base value.
type RuleOverride struct {
	XP          *int64 `toml:"xp"`
	Label       string `toml:"label"`
	Description string `toml:"description"`
}

// MergeRules returns base with the given overrides applied. Overrides for
// unknown event types, or with negative XP, are skipped and reported back.
func MergeRules(base domain.XPRules, overrides map[string]RuleOverride) (domain.XPRules, []string) {
	out := copyRules(base)
	var ignored []string
	for name, rule := range overrides {
		et := domain.XPEventType(name)
		if !et.Valid() {
			ignored = append(ignored, name)
			continue
		}
		if rule.XP != nil && *rule.XP < 0 {
			ignored = append(ignored, name)
			continue
		}
		merged := out[et]
		if rule.XP != nil {
			merged.XP = *rule.XP
		}
		if rule.Label != "" {
			merged.Label = rule.Label
		}
		if rule.Description != "" {
			merged.Description = rule.Description
		}
		out[et] = merged
	}
	sort.Strings(ignored)
	return out, ignored
}

// RewardFor returns the base XP for eventType, or 0 if it is not configured.
func RewardFor(rules domain.XPRules, eventType domain.XPEventType) int64 {
	return rules[eventType].XP
}

func copyRules(in domain.XPRules) domain.XPRules {
	out := make(domain.XPRules, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
