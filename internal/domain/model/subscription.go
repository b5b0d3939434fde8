package model

import (
	"time"

	"expense-ltd/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusArchived SubscriptionStatus = "archived"
)

type SubscriptionType string

const (
	SubscriptionTypeLifetime  SubscriptionType = "lifetime"
	SubscriptionTypeRecurring SubscriptionType = "recurring"
)

// Subscription is a user's current or historical entitlement grant.
//
// Invariant: a user has at most one active subscription at any instant.
// Superseding a grant archives the old row and creates a new one inside the
// same transaction; archived rows are kept forever for audit and are only
// reactivated by an explicit compensating rollback.
type Subscription struct {
	ID               string // UUID
	UserID           string
	PlanType         PlanType
	Status           SubscriptionStatus
	SubscriptionType SubscriptionType
	StartsAt         time.Time
	ArchivedAt       *time.Time
	ArchivedReason   *string
	SourceCode       *string // canonical code this grant came from, if any
	CreatedAt        time.Time
}

// NewLifetimeSubscription creates an active lifetime grant from a redeemed code.
func NewLifetimeSubscription(id, userID string, plan PlanType, code string) (*Subscription, error) {
	if id == "" || userID == "" || !plan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:               id,
		UserID:           userID,
		PlanType:         plan,
		Status:           SubscriptionStatusActive,
		SubscriptionType: SubscriptionTypeLifetime,
		StartsAt:         now,
		SourceCode:       &code,
		CreatedAt:        now,
	}, nil
}

// Archive marks the subscription as superseded. Archived rows are immutable
// afterwards except for the compensating Restore.
func (s *Subscription) Archive(reason string, now time.Time) {
	s.Status = SubscriptionStatusArchived
	s.ArchivedAt = &now
	s.ArchivedReason = &reason
}

// Restore undoes an Archive during compensation so the user is never left
// without an active grant.
func (s *Subscription) Restore() {
	s.Status = SubscriptionStatusActive
	s.ArchivedAt = nil
	s.ArchivedReason = nil
}
