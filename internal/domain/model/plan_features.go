package model

// planFeatureTable is the single source of truth for LTD entitlements.
// Each tier is a strict superset of the previous one.
var planFeatureTable = map[PlanType]FeatureSet{
	PlanBasicLTD: {
		ExpenseLimit:      1000,
		DocumentLimit:     50,
		AIQueriesPerMonth: 100,
		CustomCategories:  10,
		SupportTier:       SupportStandard,
	},
	PlanPremiumLTD: {
		ExpenseLimit:      5000,
		DocumentLimit:     200,
		AIQueriesPerMonth: 500,
		CustomCategories:  50,
		SupportTier:       SupportPriority,
		AdvancedAnalytics: true,
		DataExport:        true,
	},
	PlanUltimateLTD: {
		ExpenseLimit:      Unlimited,
		DocumentLimit:     Unlimited,
		AIQueriesPerMonth: Unlimited,
		CustomCategories:  Unlimited,
		SupportTier:       SupportPremium,
		AdvancedAnalytics: true,
		DataExport:        true,
		APIAccess:         true,
	},
}

// Features resolves the feature set for a plan type. Unknown plan types fall
// back to the least privileged tier; callers that care should check the second
// return value and log.
func Features(plan PlanType) (FeatureSet, bool) {
	fs, ok := planFeatureTable[plan]
	if !ok {
		return planFeatureTable[PlanBasicLTD], false
	}
	return fs, true
}
