package repository

import (
	"context"

	"expense-ltd/internal/domain/model"
)

// SubscriptionRepository is the port for entitlement grants.
type SubscriptionRepository interface {
	// Save inserts or updates a subscription row.
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	// FindByID returns a subscription by id, or domain.ErrNotFound.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// FindActiveByUser returns the user's single active subscription, or
	// domain.ErrNotFound when the user has none.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	// Delete removes a row. Only the compensation path uses this, to take
	// back a grant that was created in a transition that later failed.
	Delete(ctx context.Context, tx Tx, id string) error
	// LockUser serializes entitlement transitions for one user within the
	// given transaction. Postgres uses an advisory xact lock; in-memory
	// implementations may no-op.
	LockUser(ctx context.Context, tx Tx, userID string) error

	// CountActiveByPlan returns active-subscription counts keyed by plan
	// type, for the stats worker and admin reporting.
	CountActiveByPlan(ctx context.Context) (map[model.PlanType]int, error)
}
