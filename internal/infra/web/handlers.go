package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/infra/metrics"
	"expense-ltd/internal/usecase"
)

type redeemRequest struct {
	Code     string `json:"code"`
	PlanType string `json:"plan_type,omitempty"`
}

type validateRequest struct {
	Code string `json:"code"`
}

type redemptionEntry struct {
	Code       string         `json:"code"`
	PlanType   model.PlanType `json:"plan_type"`
	RedeemedAt string         `json:"redeemed_at"`
}

// validateHandler checks a code without consuming it.
func validateHandler(validatorUC usecase.CodeValidatorUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("", "Invalid request body"))
			return
		}

		res, err := validatorUC.ValidateCode(r.Context(), req.Code)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable,
				errorBody(model.KindTransientStoreError, "Could not check the code. Please retry."))
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// redeemHandler consumes a code for the authenticated user. Transient store
// failures are retried with exponential backoff before the outcome is
// surfaced; every other kind is permanent and returned as-is.
func redeemHandler(redeemUC usecase.RedemptionUseCase, maxRetries uint64, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := userIDFrom(ctx)

		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("", "Invalid request body"))
			return
		}

		var wantPlan *model.PlanType
		if req.PlanType != "" {
			plan := model.PlanType(req.PlanType)
			if !plan.Valid() {
				writeJSON(w, http.StatusBadRequest, errorBody("", "Unknown plan type"))
				return
			}
			wantPlan = &plan
		}

		var res *model.RedemptionResult
		retryable := errors.New("transient")
		op := func() error {
			if wantPlan != nil {
				res = redeemUC.RedeemWithPlan(ctx, req.Code, *wantPlan, userID)
			} else {
				res = redeemUC.Redeem(ctx, req.Code, userID)
			}
			if !res.Success && res.Kind.Retryable() {
				return retryable
			}
			return nil
		}
		b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
		if err := backoff.Retry(op, b); err != nil {
			log.Warn().Str("user_id", userID).Msg("redemption still transient after retries")
		}

		metrics.IncRedemption(res)
		writeJSON(w, statusForResult(res), res)
	}
}

// subscriptionHandler reports the caller's active entitlement and features.
func subscriptionHandler(redeemUC usecase.RedemptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := userIDFrom(ctx)

		sub, features, err := redeemUC.ActiveEntitlement(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNoActiveSubscription) {
				writeJSON(w, http.StatusNotFound, errorBody("", "No active subscription."))
				return
			}
			writeJSON(w, http.StatusServiceUnavailable,
				errorBody(model.KindTransientStoreError, "Could not load the subscription. Please retry."))
			return
		}

		// History is advisory; the entitlement answer stands without it.
		var redemptions []redemptionEntry
		if history, err := redeemUC.RedemptionHistory(ctx, userID); err == nil {
			for _, r := range history {
				redemptions = append(redemptions, redemptionEntry{
					Code:       r.Code,
					PlanType:   r.PlanType,
					RedeemedAt: r.RedeemedAt.UTC().Format(time.RFC3339),
				})
			}
		}

		response := struct {
			PlanType         model.PlanType    `json:"plan_type"`
			SubscriptionType string            `json:"subscription_type"`
			StartsAt         string            `json:"starts_at"`
			SourceCode       *string           `json:"source_code,omitempty"`
			Features         *model.FeatureSet `json:"features"`
			Redemptions      []redemptionEntry `json:"redemptions,omitempty"`
		}{
			PlanType:         sub.PlanType,
			SubscriptionType: string(sub.SubscriptionType),
			StartsAt:         sub.StartsAt.UTC().Format(time.RFC3339),
			SourceCode:       sub.SourceCode,
			Features:         features,
			Redemptions:      redemptions,
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func statusForResult(res *model.RedemptionResult) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Kind {
	case model.KindInvalidCode, model.KindExpiredCode, model.KindPlanMismatch:
		return http.StatusBadRequest
	case model.KindCodeAlreadyRedeemed:
		return http.StatusConflict
	case model.KindUserNotAuthenticated:
		return http.StatusUnauthorized
	case model.KindTransientStoreError:
		return http.StatusServiceUnavailable
	case model.KindRollbackFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Success bool            `json:"success"`
	Kind    model.ErrorKind `json:"error,omitempty"`
	Message string          `json:"message"`
}

func errorBody(kind model.ErrorKind, msg string) errorResponse {
	return errorResponse{Kind: kind, Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
