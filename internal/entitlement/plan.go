// Package entitlement maps a user's plan tier to a daily swipe quota and
// feature gates, and answers "can this user act right now".
package entitlement

import "strings"

// Plan is a tier stored in users.account_status.
type Plan string

// Tiers from lowest to highest.
const (
	PlanFree     Plan = "free"
	PlanSparsh   Plan = "sparsh"
	PlanSangam   Plan = "sangam"
	PlanSamarpan Plan = "samarpan"
)

// Unlimited is the daily limit of tiers without a swipe quota.
const Unlimited = -1

var planRank = map[Plan]int{
	PlanFree:     0,
	PlanSparsh:   1,
	PlanSangam:   2,
	PlanSamarpan: 3,
}

// ParsePlan normalizes s. Unknown or empty tiers resolve to free and ok=false
// so callers fail closed.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := planRank[p]; !ok {
		return PlanFree, false
	}
	return p, true
}

// Rank orders tiers; unknown tiers rank as free.
func (p Plan) Rank() int {
	return planRank[p]
}

// AtLeast reports whether p is lowest or a higher tier.
func (p Plan) AtLeast(lowest Plan) bool {
	return p.Rank() >= lowest.Rank()
}

// Feature is a plan-gated capability.
type Feature string

const (
	FeatureUndo              Feature = "undo"
	FeatureInstantMatch      Feature = "instant_match"
	FeatureUnlimitedSwipes   Feature = "unlimited_swipes"
	FeatureMessageHighlights Feature = "message_highlights"
)

// featureMinPlan is the lowest tier carrying each feature. Gating by a
// minimum tier keeps features monotonic in the tier order.
var featureMinPlan = map[Feature]Plan{
	FeatureUndo:              PlanSparsh,
	FeatureMessageHighlights: PlanSparsh,
	FeatureInstantMatch:      PlanSangam,
	FeatureUnlimitedSwipes:   PlanSangam,
}

// HasFeature reports whether plan includes f. Unknown features are denied.
func HasFeature(plan Plan, f Feature) bool {
	lowest, ok := featureMinPlan[f]
	if !ok {
		return false
	}
	return plan.AtLeast(lowest)
}

// Limits are the configurable quotas of the metered tiers.
type Limits struct {
	FreeDailySwipes   int
	SparshDailySwipes int
}

// DefaultLimits match the configuration defaults.
var DefaultLimits = Limits{FreeDailySwipes: 20, SparshDailySwipes: 50}

// Entitlement is what a plan unlocks. It is derived, never stored.
type Entitlement struct {
	Plan            Plan
	DailySwipeLimit int // Unlimited (-1) for unmetered tiers
	CanUndo         bool
	CanInstantMatch bool
	CanHighlight    bool
}

// For derives the entitlement of plan.
func For(plan Plan, limits Limits) Entitlement {
	e := Entitlement{
		Plan:            plan,
		CanUndo:         HasFeature(plan, FeatureUndo),
		CanInstantMatch: HasFeature(plan, FeatureInstantMatch),
		CanHighlight:    HasFeature(plan, FeatureMessageHighlights),
	}
	switch {
	case HasFeature(plan, FeatureUnlimitedSwipes):
		e.DailySwipeLimit = Unlimited
	case plan.AtLeast(PlanSparsh):
		e.DailySwipeLimit = limits.SparshDailySwipes
	default:
		e.DailySwipeLimit = limits.FreeDailySwipes
	}
	return e
}
