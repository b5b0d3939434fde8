package repository

import (
	"context"

	"expense-ltd/internal/domain/model"
)

// RedemptionRepository is the port for the redemption ledger.
type RedemptionRepository interface {
	// Claim atomically records that a code was consumed. The implementation
	// MUST be a single insert-if-absent against the unique constraint on the
	// code column; read-then-write races and is forbidden. A lost race
	// returns domain.ErrCodeAlreadyRedeemed.
	Claim(ctx context.Context, tx Tx, r *model.Redemption) error
	// FindByCode returns the ledger row for a code, or domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Redemption, error)
	// FindActiveByUser returns the user's active ledger rows, newest first.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) ([]*model.Redemption, error)
}
