package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/repository"
	"expense-ltd/internal/infra/logging"
)

// Compile-time check
var _ CodeValidatorUseCase = (*codeValidatorUC)(nil)

// CodeValidatorUseCase checks codes without mutating any state. It is safe to
// call repeatedly and concurrently.
type CodeValidatorUseCase interface {
	ValidateCode(ctx context.Context, rawCode string) (*model.CodeValidation, error)
}

type codeValidatorUC struct {
	codes             repository.CodeRepository
	redemptions       repository.RedemptionRepository
	heuristicFallback bool
	log               *zerolog.Logger
}

func NewCodeValidatorUseCase(
	codes repository.CodeRepository,
	redemptions repository.RedemptionRepository,
	heuristicFallback bool,
	logger *zerolog.Logger,
) *codeValidatorUC {
	return &codeValidatorUC{
		codes:             codes,
		redemptions:       redemptions,
		heuristicFallback: heuristicFallback,
		log:               logger,
	}
}

// ValidateCode normalizes the raw input, checks its shape, resolves the plan
// and reports whether the code was already consumed. Read-only.
func (uc *codeValidatorUC) ValidateCode(ctx context.Context, rawCode string) (*model.CodeValidation, error) {
	defer logging.TraceDuration(uc.log, "CodeValidatorUC.ValidateCode")()

	resolved, err := resolveCode(ctx, uc.codes, uc.heuristicFallback, uc.log, rawCode, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return &model.CodeValidation{
				IsValid: false,
				Message: "Invalid code format. Codes look like AS-XXXXXX or a 15-character code.",
			}, nil
		case errors.Is(err, domain.ErrExpiredCode):
			return &model.CodeValidation{
				IsValid: false,
				Message: "This code has expired.",
			}, nil
		}
		return nil, err
	}

	_, err = uc.redemptions.FindByCode(ctx, repository.NoTX, resolved.Code)
	switch {
	case err == nil:
		return &model.CodeValidation{
			IsValid:    true,
			IsRedeemed: true,
			PlanType:   resolved.Plan,
			Message:    "This code has already been redeemed.",
		}, nil
	case errors.Is(err, domain.ErrNotFound):
		return &model.CodeValidation{
			IsValid:  true,
			PlanType: resolved.Plan,
			Message:  "Valid code.",
		}, nil
	}
	return nil, err
}

// resolvedCode is the validator's view of a canonical code after plan
// resolution. Entry is nil when the plan came from the heuristic fallback.
type resolvedCode struct {
	Code  string
	Plan  model.PlanType
	Entry *model.LTDCode
}

// resolveCode normalizes and shape-checks rawCode, then resolves its plan:
// exact table lookup first, heuristic bucket only when enabled and the table
// has no row. Returns ErrInvalidCode or ErrExpiredCode for permanent failures.
func resolveCode(ctx context.Context, codes repository.CodeRepository, heuristic bool, log *zerolog.Logger, rawCode string, now time.Time) (*resolvedCode, error) {
	code := model.NormalizeCode(rawCode)
	if !model.ValidCodeFormat(code) {
		return nil, domain.ErrInvalidCode
	}

	entry, err := codes.FindByCode(ctx, repository.NoTX, code)
	switch {
	case err == nil:
		if entry.IsExpired(now) {
			return nil, domain.ErrExpiredCode
		}
		if !entry.PlanType.Valid() {
			log.Warn().Str("code", logging.Redact(code, false)).
				Str("plan_type", string(entry.PlanType)).
				Msg("code row carries unknown plan type")
			return nil, domain.ErrInvalidCode
		}
		return &resolvedCode{Code: code, Plan: entry.PlanType, Entry: entry}, nil
	case errors.Is(err, domain.ErrNotFound):
		if !heuristic {
			return nil, domain.ErrInvalidCode
		}
		plan, ok := model.HeuristicPlanForCode(code)
		if !ok {
			return nil, domain.ErrInvalidCode
		}
		log.Debug().Str("code", logging.Redact(code, false)).
			Str("plan_type", string(plan)).
			Msg("plan resolved via heuristic bucket")
		return &resolvedCode{Code: code, Plan: plan}, nil
	}
	return nil, err
}
