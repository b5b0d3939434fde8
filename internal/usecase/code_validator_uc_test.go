//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/repository"
	"expense-ltd/internal/usecase"
)

func seedCode(t *testing.T, repo *MockCodeRepo, code string, plan model.PlanType, expiresAt *time.Time) {
	t.Helper()
	err := repo.Save(context.Background(), nil, &model.LTDCode{
		ID:        "code-" + code,
		Code:      code,
		PlanType:  plan,
		Status:    model.CodeStatusAvailable,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("seed code %s: %v", code, err)
	}
}

func TestCodeValidator_ValidateCode(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("should reject malformed codes without touching the store", func(t *testing.T) {
		mockCodeRepo := NewMockCodeRepo()
		mockCodeRepo.FindByCodeFunc = func(ctx context.Context, tx repository.Tx, code string) (*model.LTDCode, error) {
			t.Fatal("store must not be queried for malformed codes")
			return nil, nil
		}
		uc := usecase.NewCodeValidatorUseCase(mockCodeRepo, NewMockRedemptionRepo(), false, testLogger)

		cases := []string{"", "AS-AB", "as_123456", "TOOSHORT", "AS-lower!case", "ABCDEFGHIJKLMNOP"}
		for _, raw := range cases {
			res, err := uc.ValidateCode(ctx, raw)
			if err != nil {
				t.Fatalf("ValidateCode(%q) returned error: %v", raw, err)
			}
			if res.IsValid {
				t.Errorf("expected %q to be invalid", raw)
			}
		}
	})

	t.Run("should accept both code formats after normalization", func(t *testing.T) {
		mockCodeRepo := NewMockCodeRepo()
		seedCode(t, mockCodeRepo, "AS-ABC123", model.PlanBasicLTD, nil)
		seedCode(t, mockCodeRepo, "XK7P9QRS2TUV4WY", model.PlanPremiumLTD, nil)
		uc := usecase.NewCodeValidatorUseCase(mockCodeRepo, NewMockRedemptionRepo(), false, testLogger)

		for raw, wantPlan := range map[string]model.PlanType{
			"  as-abc123  ":   model.PlanBasicLTD,
			"xk7p9qrs2tuv4wy": model.PlanPremiumLTD,
		} {
			res, err := uc.ValidateCode(ctx, raw)
			if err != nil {
				t.Fatalf("ValidateCode(%q) returned error: %v", raw, err)
			}
			if !res.IsValid || res.PlanType != wantPlan {
				t.Errorf("ValidateCode(%q) = %+v, want valid %s", raw, res, wantPlan)
			}
		}
	})

	t.Run("should flag an already redeemed code", func(t *testing.T) {
		mockCodeRepo := NewMockCodeRepo()
		seedCode(t, mockCodeRepo, "AS-USED01", model.PlanBasicLTD, nil)
		mockRedemptionRepo := NewMockRedemptionRepo()
		mockRedemptionRepo.Claim(ctx, nil, &model.Redemption{
			ID: "r1", Code: "AS-USED01", UserID: "u1",
			PlanType: model.PlanBasicLTD, Status: model.RedemptionStatusActive, RedeemedAt: time.Now(),
		})
		uc := usecase.NewCodeValidatorUseCase(mockCodeRepo, mockRedemptionRepo, false, testLogger)

		res, err := uc.ValidateCode(ctx, "AS-USED01")
		if err != nil {
			t.Fatalf("ValidateCode failed: %v", err)
		}
		if !res.IsValid || !res.IsRedeemed {
			t.Errorf("expected valid+redeemed, got %+v", res)
		}
	})

	t.Run("should reject an expired code", func(t *testing.T) {
		mockCodeRepo := NewMockCodeRepo()
		past := time.Now().Add(-time.Hour)
		seedCode(t, mockCodeRepo, "AS-OLD123", model.PlanBasicLTD, &past)
		uc := usecase.NewCodeValidatorUseCase(mockCodeRepo, NewMockRedemptionRepo(), false, testLogger)

		res, err := uc.ValidateCode(ctx, "AS-OLD123")
		if err != nil {
			t.Fatalf("ValidateCode failed: %v", err)
		}
		if res.IsValid {
			t.Errorf("expected expired code to be invalid, got %+v", res)
		}
	})

	t.Run("unknown code is invalid when the heuristic is off", func(t *testing.T) {
		uc := usecase.NewCodeValidatorUseCase(NewMockCodeRepo(), NewMockRedemptionRepo(), false, testLogger)

		res, err := uc.ValidateCode(ctx, "AS-LBL10KERHR5SSG8")
		if err != nil {
			t.Fatalf("ValidateCode failed: %v", err)
		}
		if res.IsValid {
			t.Errorf("expected unknown code to be invalid with heuristic off, got %+v", res)
		}
	})

	t.Run("heuristic resolves an unknown code into a stable bucket", func(t *testing.T) {
		uc := usecase.NewCodeValidatorUseCase(NewMockCodeRepo(), NewMockRedemptionRepo(), true, testLogger)

		res, err := uc.ValidateCode(ctx, "AS-LBL10KERHR5SSG8")
		if err != nil {
			t.Fatalf("ValidateCode failed: %v", err)
		}
		if !res.IsValid || res.PlanType != model.PlanBasicLTD {
			t.Errorf("expected valid basic_ltd, got %+v", res)
		}

		// The bucket is a pure function of the code.
		again, _ := uc.ValidateCode(ctx, "as-lbl10kerhr5ssg8")
		if again.PlanType != res.PlanType {
			t.Errorf("heuristic not stable: %s vs %s", again.PlanType, res.PlanType)
		}
	})

	t.Run("table row wins over the heuristic", func(t *testing.T) {
		mockCodeRepo := NewMockCodeRepo()
		seedCode(t, mockCodeRepo, "AS-LBL10KERHR5SSG8", model.PlanUltimateLTD, nil)
		uc := usecase.NewCodeValidatorUseCase(mockCodeRepo, NewMockRedemptionRepo(), true, testLogger)

		res, err := uc.ValidateCode(ctx, "AS-LBL10KERHR5SSG8")
		if err != nil {
			t.Fatalf("ValidateCode failed: %v", err)
		}
		if res.PlanType != model.PlanUltimateLTD {
			t.Errorf("expected table plan ultimate_ltd, got %s", res.PlanType)
		}
	})
}
