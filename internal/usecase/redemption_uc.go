package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/adapter"
	"expense-ltd/internal/domain/ports/repository"
	"expense-ltd/internal/infra/logging"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase drives a code through validation, the ledger claim and
// the entitlement transition. Every outcome is reported through the closed
// error taxonomy on RedemptionResult; callers match on Kind, not on error
// values.
type RedemptionUseCase interface {
	// Redeem consumes a code for the user, activating whatever plan the code
	// resolves to.
	Redeem(ctx context.Context, rawCode, userID string) *model.RedemptionResult
	// RedeemWithPlan additionally pins the plan the caller selected; a code
	// resolving to a different tier fails with PLAN_MISMATCH and mutates
	// nothing.
	RedeemWithPlan(ctx context.Context, rawCode string, plan model.PlanType, userID string) *model.RedemptionResult
	// HasActiveSubscription reports whether the user currently holds an
	// active grant.
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
	// ActiveEntitlement returns the user's active subscription and its
	// feature set, or domain.ErrNoActiveSubscription.
	ActiveEntitlement(ctx context.Context, userID string) (*model.Subscription, *model.FeatureSet, error)
	// RedemptionHistory lists the user's standing ledger claims, newest
	// first.
	RedemptionHistory(ctx context.Context, userID string) ([]*model.Redemption, error)
}

// IdempotencyCache replays a finished redemption result for a retried
// (code, user) pair so a retry never double-applies the transition. A nil
// cache is allowed; the saga is still safe without it, just slower on replay.
type IdempotencyCache interface {
	Get(ctx context.Context, code, userID string) (*model.RedemptionResult, bool, error)
	Put(ctx context.Context, code, userID string, res *model.RedemptionResult) error
}

type redemptionUC struct {
	codes             repository.CodeRepository
	redemptions       repository.RedemptionRepository
	subs              repository.SubscriptionRepository
	tm                repository.TransactionManager
	identity          adapter.IdentityProvider
	idem              IdempotencyCache
	heuristicFallback bool
	log               *zerolog.Logger
}

func NewRedemptionUseCase(
	codes repository.CodeRepository,
	redemptions repository.RedemptionRepository,
	subs repository.SubscriptionRepository,
	tm repository.TransactionManager,
	identity adapter.IdentityProvider,
	idem IdempotencyCache,
	heuristicFallback bool,
	logger *zerolog.Logger,
) *redemptionUC {
	return &redemptionUC{
		codes:             codes,
		redemptions:       redemptions,
		subs:              subs,
		tm:                tm,
		identity:          identity,
		idem:              idem,
		heuristicFallback: heuristicFallback,
		log:               logger,
	}
}

func (uc *redemptionUC) Redeem(ctx context.Context, rawCode, userID string) *model.RedemptionResult {
	return uc.redeem(ctx, rawCode, nil, userID)
}

func (uc *redemptionUC) RedeemWithPlan(ctx context.Context, rawCode string, plan model.PlanType, userID string) *model.RedemptionResult {
	return uc.redeem(ctx, rawCode, &plan, userID)
}

func (uc *redemptionUC) redeem(ctx context.Context, rawCode string, wantPlan *model.PlanType, userID string) *model.RedemptionResult {
	defer logging.TraceDuration(uc.log, "RedemptionUC.Redeem")()

	if userID == "" {
		return failureFor(domain.ErrUserNotAuthenticated, "You must be signed in to redeem a code.")
	}

	code := model.NormalizeCode(rawCode)
	if uc.idem != nil {
		if res, ok, err := uc.idem.Get(ctx, code, userID); err == nil && ok {
			return res
		}
		// Cache misses and cache errors both fall through; the claim and the
		// transition are individually idempotent for the same (code, user).
	}

	now := time.Now()
	resolved, err := resolveCode(ctx, uc.codes, uc.heuristicFallback, uc.log, rawCode, now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return failureFor(err, "Invalid code. Please check and try again.")
		case errors.Is(err, domain.ErrExpiredCode):
			return failureFor(err, "This code has expired and can no longer be redeemed.")
		}
		uc.log.Warn().Err(err).Msg("code lookup failed")
		return failureFor(domain.ErrTransientStore, "Could not look up the code. Please retry.")
	}

	if wantPlan != nil && *wantPlan != resolved.Plan {
		return failureFor(domain.ErrPlanMismatch,
			fmt.Sprintf("This code activates %s, not %s.", resolved.Plan, *wantPlan))
	}

	// Ledger claim: the single atomic insert that makes redemption
	// exactly-once. Everything before this point is read-only.
	claim := &model.Redemption{
		ID:         ulid.Make().String(),
		Code:       resolved.Code,
		UserID:     userID,
		PlanType:   resolved.Plan,
		Status:     model.RedemptionStatusActive,
		RedeemedAt: now,
	}
	if err := uc.redemptions.Claim(ctx, repository.NoTX, claim); err != nil {
		if !errors.Is(err, domain.ErrCodeAlreadyRedeemed) {
			uc.log.Warn().Err(err).Msg("ledger claim failed")
			return failureFor(domain.ErrTransientStore, "Could not record the redemption. Please retry.")
		}
		holder, ferr := uc.redemptions.FindByCode(ctx, repository.NoTX, resolved.Code)
		if ferr != nil || holder.UserID != userID {
			return failureFor(domain.ErrCodeAlreadyRedeemed, "This code has already been redeemed.")
		}
		// The same user already holds the claim: this is a retried request
		// that failed between claim and transition. Resume the saga.
	}

	res := uc.transition(ctx, resolved, userID, now)
	if res.Success && uc.idem != nil {
		if err := uc.idem.Put(ctx, code, userID, res); err != nil {
			uc.log.Debug().Err(err).Msg("idempotency cache write failed")
		}
	}
	return res
}

// transition archives the user's current grant (if any), creates the new
// lifetime grant and marks the code row redeemed, all in one transaction,
// then mirrors the entitlement onto the identity profile. A failed mirror is
// compensated so the user never ends up with zero active subscriptions.
func (uc *redemptionUC) transition(ctx context.Context, resolved *resolvedCode, userID string, now time.Time) *model.RedemptionResult {
	var (
		archived *model.Subscription
		created  *model.Subscription
		replayed bool
	)
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		cur, err := uc.subs.FindActiveByUser(ctx, tx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if cur != nil && err == nil {
			if cur.SourceCode != nil && *cur.SourceCode == resolved.Code {
				// A retry of a transition that already committed.
				created = cur
				replayed = true
				return nil
			}
			cur.Archive(fmt.Sprintf("superseded by %s redemption", resolved.Plan), now)
			if err := uc.subs.Save(ctx, tx, cur); err != nil {
				return err
			}
			archived = cur
		}

		sub, err := model.NewLifetimeSubscription(uuid.NewString(), userID, resolved.Plan, resolved.Code)
		if err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		created = sub

		if resolved.Entry != nil {
			resolved.Entry.Status = model.CodeStatusRedeemed
			if err := uc.codes.Save(ctx, tx, resolved.Entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("entitlement transition failed")
		return failureFor(domain.ErrTransientStore, "Could not complete the entitlement transition. Please retry.")
	}

	fields := adapter.EntitlementFields{
		IsLifetimeUser:   true,
		PlanTier:         string(resolved.Plan),
		SourceCode:       resolved.Code,
		RedemptionDate:   now.UTC().Format(time.RFC3339),
		SubscriptionType: string(model.SubscriptionTypeLifetime),
	}
	if err := uc.identity.UpdateUserMetadata(ctx, userID, fields); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("identity metadata update failed; compensating")
		if replayed {
			// This request changed nothing; there is nothing to undo.
			return failureFor(domain.ErrTransientStore, "Could not update the user profile. Please retry.")
		}
		if rbErr := uc.compensate(ctx, archived, created); rbErr != nil {
			uc.log.Error().Err(rbErr).
				Str("user_id", userID).
				Str("subscription_id", created.ID).
				Bool("manual_reconciliation", true).
				Msg("compensation failed; entitlement state is ambiguous")
			return failureFor(domain.ErrRollbackFailed, "Redemption failed and automatic rollback did not complete. Support has been signalled.")
		}
		return failureFor(domain.ErrTransientStore, "Could not update the user profile. Please retry.")
	}

	features := PlanFeatures(resolved.Plan, uc.log)
	uc.log.Info().
		Str("user_id", userID).
		Str("plan_type", string(resolved.Plan)).
		Bool("replayed", replayed).
		Msg("code redeemed")
	return &model.RedemptionResult{
		Success:       true,
		PlanActivated: resolved.Plan,
		Features:      &features,
		Message:       "Code successfully redeemed.",
	}
}

// compensate undoes a committed transition after the identity mirror failed:
// the created grant is removed and the superseded one reactivated, restoring
// the state from before the request.
func (uc *redemptionUC) compensate(ctx context.Context, archived, created *model.Subscription) error {
	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if created != nil {
			if err := uc.subs.Delete(ctx, tx, created.ID); err != nil {
				return err
			}
		}
		if archived != nil {
			archived.Restore()
			if err := uc.subs.Save(ctx, tx, archived); err != nil {
				return err
			}
		}
		return nil
	})
}

func (uc *redemptionUC) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	_, err := uc.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (uc *redemptionUC) ActiveEntitlement(ctx context.Context, userID string) (*model.Subscription, *model.FeatureSet, error) {
	sub, err := uc.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNoActiveSubscription
		}
		return nil, nil, err
	}
	features := PlanFeatures(sub.PlanType, uc.log)
	return sub, &features, nil
}

func (uc *redemptionUC) RedemptionHistory(ctx context.Context, userID string) ([]*model.Redemption, error) {
	return uc.redemptions.FindActiveByUser(ctx, repository.NoTX, userID)
}

// failureFor builds a failed result for a domain error through the taxonomy
// mapping. Errors outside the taxonomy fold into TRANSIENT_STORE_ERROR.
func failureFor(err error, msg string) *model.RedemptionResult {
	kind, ok := model.KindForError(err)
	if !ok {
		kind = model.KindTransientStoreError
	}
	return &model.RedemptionResult{Kind: kind, Message: msg}
}
