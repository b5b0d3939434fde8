//go:build !integration

package usecase_test

import (
	"testing"

	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/usecase"
)

func TestPlanFeatures(t *testing.T) {
	t.Run("tiers are strict supersets", func(t *testing.T) {
		basic := usecase.PlanFeatures(model.PlanBasicLTD, newTestLogger())
		premium := usecase.PlanFeatures(model.PlanPremiumLTD, newTestLogger())
		ultimate := usecase.PlanFeatures(model.PlanUltimateLTD, newTestLogger())

		if basic.AdvancedAnalytics || basic.DataExport || basic.APIAccess {
			t.Errorf("basic tier carries premium flags: %+v", basic)
		}
		if !premium.AdvancedAnalytics || !premium.DataExport || premium.APIAccess {
			t.Errorf("unexpected premium flags: %+v", premium)
		}
		if ultimate.ExpenseLimit != model.Unlimited || !ultimate.APIAccess {
			t.Errorf("unexpected ultimate features: %+v", ultimate)
		}
		if !(basic.ExpenseLimit < premium.ExpenseLimit) {
			t.Errorf("premium should allow more expenses than basic")
		}
	})

	t.Run("unknown plan resolves to the least privileged tier", func(t *testing.T) {
		got := usecase.PlanFeatures(model.PlanType("enterprise_ltd"), newTestLogger())
		want := usecase.PlanFeatures(model.PlanBasicLTD, newTestLogger())
		if got != want {
			t.Errorf("unknown plan = %+v, want basic tier %+v", got, want)
		}
	})
}
