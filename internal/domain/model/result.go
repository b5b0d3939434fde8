package model

import (
	"errors"

	"expense-ltd/internal/domain"
)

// ErrorKind is the closed taxonomy surfaced to callers. The string values are
// stable identifiers; clients match on them, so they never change.
type ErrorKind string

const (
	KindInvalidCode          ErrorKind = "INVALID_CODE"
	KindExpiredCode          ErrorKind = "EXPIRED_CODE"
	KindPlanMismatch         ErrorKind = "PLAN_MISMATCH"
	KindCodeAlreadyRedeemed  ErrorKind = "CODE_ALREADY_REDEEMED"
	KindUserNotAuthenticated ErrorKind = "USER_NOT_AUTHENTICATED"
	KindTransientStoreError  ErrorKind = "TRANSIENT_STORE_ERROR"
	KindRollbackFailed       ErrorKind = "ROLLBACK_FAILED"
)

// Retryable reports whether a caller may retry the same request. Only
// transient store errors qualify; everything else is permanent, and a failed
// rollback needs manual reconciliation, not a retry.
func (k ErrorKind) Retryable() bool { return k == KindTransientStoreError }

// KindForError maps a domain error to its wire taxonomy kind.
func KindForError(err error) (ErrorKind, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		return KindInvalidCode, true
	case errors.Is(err, domain.ErrExpiredCode):
		return KindExpiredCode, true
	case errors.Is(err, domain.ErrPlanMismatch):
		return KindPlanMismatch, true
	case errors.Is(err, domain.ErrCodeAlreadyRedeemed):
		return KindCodeAlreadyRedeemed, true
	case errors.Is(err, domain.ErrUserNotAuthenticated):
		return KindUserNotAuthenticated, true
	case errors.Is(err, domain.ErrRollbackFailed):
		return KindRollbackFailed, true
	case errors.Is(err, domain.ErrTransientStore):
		return KindTransientStoreError, true
	}
	return "", false
}

// CodeValidation is the outcome of a side-effect-free code check.
type CodeValidation struct {
	IsValid    bool     `json:"is_valid"`
	IsRedeemed bool     `json:"is_redeemed"`
	PlanType   PlanType `json:"plan_type,omitempty"`
	Message    string   `json:"message"`
}

// RedemptionResult is the outcome of a redeem call.
type RedemptionResult struct {
	Success       bool        `json:"success"`
	PlanActivated PlanType    `json:"plan_activated,omitempty"`
	Features      *FeatureSet `json:"features,omitempty"`
	Kind          ErrorKind   `json:"error,omitempty"`
	Message       string      `json:"message"`
}
