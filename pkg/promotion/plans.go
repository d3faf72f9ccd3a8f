package promotion

import (
	"sort"
	"time"
)

type PlanType string

const (
	BasicPlan   PlanType = "basic"
	PlusPlan    PlanType = "plus"
	PremiumPlan PlanType = "premium"
)

// Currency is what Stripe charges in; listing prices stay in IQD.
const Currency = "usd"

type Plan struct {
	Type       PlanType `json:"type"`
	Name       string   `json:"name"`
	Days       int      `json:"days"`
	PriceCents int64    `json:"price_cents"`
	Currency   string   `json:"currency"`
}

var Plans = map[PlanType]Plan{
	BasicPlan: {
		Type:       BasicPlan,
		Name:       "Basic",
		Days:       7,
		PriceCents: 500,
		Currency:   Currency,
	},
	PlusPlan: {
		Type:       PlusPlan,
		Name:       "Plus",
		Days:       14,
		PriceCents: 900,
		Currency:   Currency,
	},
	PremiumPlan: {
		Type:       PremiumPlan,
		Name:       "Premium",
		Days:       30,
		PriceCents: 1700,
		Currency:   Currency,
	},
}

func GetPlan(planType string) (Plan, bool) {
	plan, ok := Plans[PlanType(planType)]
	return plan, ok
}

// List returns the plans ordered by duration.
func List() []Plan {
	plans := make([]Plan, 0, len(Plans))
	for _, p := range Plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Days < plans[j].Days })
	return plans
}

// ExtendFeatured adds days to the later of now and the current expiry, so
// buying while still featured stacks instead of overlapping.
func ExtendFeatured(current *time.Time, now time.Time, days int) time.Time {
	start := now
	if current != nil && current.After(now) {
		start = *current
	}
	return start.AddDate(0, 0, days)
}
