//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
)

func TestCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewCodeRepo(testPool)

	t.Run("should create, find and redeem a code", func(t *testing.T) {
		cleanup(t)

		code := &model.LTDCode{
			Code:     "AS-CODE001",
			PlanType: model.PlanPremiumLTD,
			Status:   model.CodeStatusAvailable,
			IssuedAt: time.Now(),
		}
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if code.ID == "" {
			t.Fatal("expected Save to assign an id")
		}

		found, err := repo.FindByCode(ctx, nil, "AS-CODE001")
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if found.PlanType != model.PlanPremiumLTD || found.Status != model.CodeStatusAvailable {
			t.Errorf("unexpected code row: %+v", found)
		}

		found.Status = model.CodeStatusRedeemed
		if err := repo.Save(ctx, nil, found); err != nil {
			t.Fatalf("Save (redeem) failed: %v", err)
		}
		redeemed, err := repo.FindByCode(ctx, nil, "AS-CODE001")
		if err != nil {
			t.Fatalf("FindByCode after redeem failed: %v", err)
		}
		if redeemed.Status != model.CodeStatusRedeemed {
			t.Errorf("expected redeemed status, got %s", redeemed.Status)
		}
	})

	t.Run("Create never resurrects a redeemed code", func(t *testing.T) {
		cleanup(t)

		code := &model.LTDCode{
			Code:     "AS-REIMP01",
			PlanType: model.PlanBasicLTD,
			Status:   model.CodeStatusRedeemed,
			IssuedAt: time.Now(),
		}
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		inserted, err := repo.Create(ctx, nil, &model.LTDCode{
			Code:     "AS-REIMP01",
			PlanType: model.PlanBasicLTD,
			Status:   model.CodeStatusAvailable,
			IssuedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if inserted {
			t.Error("expected duplicate import to be skipped")
		}

		found, err := repo.FindByCode(ctx, nil, "AS-REIMP01")
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if found.Status != model.CodeStatusRedeemed {
			t.Errorf("re-import flipped the status to %s", found.Status)
		}
	})

	t.Run("Create inserts unknown codes", func(t *testing.T) {
		cleanup(t)

		inserted, err := repo.Create(ctx, nil, &model.LTDCode{
			Code:     "AS-FRESH01",
			PlanType: model.PlanPremiumLTD,
			Status:   model.CodeStatusAvailable,
			IssuedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if !inserted {
			t.Error("expected a fresh code to be inserted")
		}
	})

	t.Run("missing code yields ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByCode(ctx, nil, "AS-MISSING"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("counts codes by status", func(t *testing.T) {
		cleanup(t)

		for _, c := range []*model.LTDCode{
			{Code: "AS-STAT01", PlanType: model.PlanBasicLTD, Status: model.CodeStatusAvailable, IssuedAt: time.Now()},
			{Code: "AS-STAT02", PlanType: model.PlanBasicLTD, Status: model.CodeStatusAvailable, IssuedAt: time.Now()},
			{Code: "AS-STAT03", PlanType: model.PlanBasicLTD, Status: model.CodeStatusRedeemed, IssuedAt: time.Now()},
		} {
			if err := repo.Save(ctx, nil, c); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		counts, err := repo.CountByStatus(ctx)
		if err != nil {
			t.Fatalf("CountByStatus failed: %v", err)
		}
		if counts[model.CodeStatusAvailable] != 2 || counts[model.CodeStatusRedeemed] != 1 {
			t.Errorf("unexpected counts: %+v", counts)
		}
	})
}
