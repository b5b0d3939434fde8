package repository

import (
	"context"

	"expense-ltd/internal/domain/model"
)

// CodeRepository is the port for the issued-code lookup table.
type CodeRepository interface {
	// Create inserts a code only if its canonical string is unknown and
	// reports whether a row was written. It never touches an existing row;
	// a code that was already redeemed keeps its status.
	Create(ctx context.Context, tx Tx, code *model.LTDCode) (bool, error)
	// Save creates a code or updates its status. Used by the redemption flow
	// when marking a code redeemed.
	Save(ctx context.Context, tx Tx, code *model.LTDCode) error
	// FindByCode looks up a code by its canonical string regardless of
	// status. Returns domain.ErrNotFound when absent.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.LTDCode, error)
	// CountByStatus returns code counts keyed by status, for reporting.
	CountByStatus(ctx context.Context) (map[model.CodeStatus]int, error)
}
