package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Redemption errors
	ErrInvalidCode          = errors.New("invalid code")
	ErrExpiredCode          = errors.New("code has expired")
	ErrPlanMismatch         = errors.New("code does not match the selected plan")
	ErrCodeAlreadyRedeemed  = errors.New("code already redeemed")
	ErrUserNotAuthenticated = errors.New("user not authenticated")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrTransientStore       = errors.New("transient store error")
	ErrRollbackFailed       = errors.New("rollback of entitlement transition failed")
)
