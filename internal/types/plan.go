package types

import "strings"

// PlanTier is the internal normalized entitlement level derived from a
// marketplace plan id.
type PlanTier string

const (
	PlanTierFree       PlanTier = "free"
	PlanTierPro        PlanTier = "pro"
	PlanTierEnterprise PlanTier = "enterprise"
)

// DefaultPlanTier applies when a tenant has no activated subscription
// or carries an unrecognized plan id.
const DefaultPlanTier = PlanTierFree

// planTierByID is the single place where plan-id spelling variants are
// normalized. Marketplace offers have shipped several spellings of the
// same commercial tier over time.
var planTierByID = map[string]PlanTier{
	"free":       PlanTierFree,
	"starter":    PlanTierFree,
	"tier1":      PlanTierFree,
	"pro":        PlanTierPro,
	"premium":    PlanTierPro,
	"tier2":      PlanTierPro,
	"enterprise": PlanTierEnterprise,
	"tier3":      PlanTierEnterprise,
}

// ResolvePlanTier maps a marketplace plan id to a tier. Unrecognized
// ids fall back to the default tier.
func ResolvePlanTier(planID string) PlanTier {
	if tier, ok := planTierByID[strings.ToLower(strings.TrimSpace(planID))]; ok {
		return tier
	}
	return DefaultPlanTier
}

// IsKnownPlanID reports whether the plan id maps to a tier without
// falling back.
func IsKnownPlanID(planID string) bool {
	_, ok := planTierByID[strings.ToLower(strings.TrimSpace(planID))]
	return ok
}

// QuotaCategory is the kind of quota-consuming action being gated.
type QuotaCategory string

const (
	QuotaCategorySurveyCreation QuotaCategory = "survey_creation"
)

// WeeklyLimit returns the per-week allowance for a quota category at a
// given tier. A negative value means unlimited.
func (t PlanTier) WeeklyLimit(category QuotaCategory) int {
	switch category {
	case QuotaCategorySurveyCreation:
		switch t {
		case PlanTierPro:
			return 50
		case PlanTierEnterprise:
			return -1
		default:
			return 3
		}
	}
	return 0
}

// ResponseLimit returns the per-survey response cap. Only the lowest
// tier is gated on responses.
func (t PlanTier) ResponseLimit() int {
	if t == PlanTierFree {
		return 100
	}
	return -1
}
