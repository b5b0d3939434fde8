package adapter

import (
	"context"
)

// EntitlementFields are the profile flags the identity provider stores
// alongside the user after a successful redemption. A small closed set of
// named fields rather than an open map, so the update is checkable.
type EntitlementFields struct {
	IsLifetimeUser   bool
	PlanTier         string
	SourceCode       string
	RedemptionDate   string // RFC 3339
	SubscriptionType string
}

// IdentityProvider is the port to the hosted auth service. The core consults
// it only for "who is the current user" and to mirror entitlement flags onto
// the user's profile metadata.
type IdentityProvider interface {
	// VerifyToken validates an access token and returns the user id it
	// belongs to. Returns domain.ErrUserNotAuthenticated on any failure.
	VerifyToken(ctx context.Context, token string) (string, error)
	// UpdateUserMetadata mirrors entitlement flags onto the user's profile.
	UpdateUserMetadata(ctx context.Context, userID string, fields EntitlementFields) error
}
