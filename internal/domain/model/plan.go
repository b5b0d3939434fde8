package model

// PlanType identifies a lifetime-deal tier.
type PlanType string

const (
	PlanBasicLTD    PlanType = "basic_ltd"
	PlanPremiumLTD  PlanType = "premium_ltd"
	PlanUltimateLTD PlanType = "ultimate_ltd"
)

// KnownPlanTypes lists every tier this service can activate, lowest first.
var KnownPlanTypes = []PlanType{PlanBasicLTD, PlanPremiumLTD, PlanUltimateLTD}

func (p PlanType) Valid() bool {
	switch p {
	case PlanBasicLTD, PlanPremiumLTD, PlanUltimateLTD:
		return true
	}
	return false
}

// SupportTier is the support level granted by a plan.
type SupportTier string

const (
	SupportStandard SupportTier = "standard"
	SupportPriority SupportTier = "priority"
	SupportPremium  SupportTier = "premium"
)

// Unlimited marks a numeric feature limit as unbounded.
const Unlimited = -1

// FeatureSet is the entitlement derived from a plan type. It is never
// persisted; it is recomputed from the static table in plan_features.go.
type FeatureSet struct {
	ExpenseLimit      int         `json:"expense_limit"`
	DocumentLimit     int         `json:"document_limit"`
	AIQueriesPerMonth int         `json:"ai_queries_per_month"`
	CustomCategories  int         `json:"custom_categories"`
	SupportTier       SupportTier `json:"support_tier"`
	AdvancedAnalytics bool        `json:"advanced_analytics"`
	DataExport        bool        `json:"data_export"`
	APIAccess         bool        `json:"api_access"`
}
