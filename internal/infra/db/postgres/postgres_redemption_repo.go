package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.RedemptionRepository = (*redemptionRepo)(nil)

type redemptionRepo struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepo(pool *pgxpool.Pool) *redemptionRepo {
	return &redemptionRepo{pool: pool}
}

// Claim is the correctness boundary for exactly-once redemption: a single
// insert-if-absent against the unique index on code. Exactly one concurrent
// caller wins; everyone else gets domain.ErrCodeAlreadyRedeemed. There is
// deliberately no read-before-write here.
func (r *redemptionRepo) Claim(ctx context.Context, tx repository.Tx, red *model.Redemption) error {
	const q = `
INSERT INTO ltd_redemptions (id, code, user_id, plan_type, status, redeemed_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO NOTHING;
`
	tag, err := execSQL(ctx, r.pool, tx, q,
		red.ID, red.Code, red.UserID, red.PlanType, red.Status, red.RedeemedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeAlreadyRedeemed
		}
		return fmt.Errorf("claim redemption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeAlreadyRedeemed
	}
	return nil
}

func (r *redemptionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Redemption, error) {
	const q = `
SELECT id, code, user_id, plan_type, status, redeemed_at
  FROM ltd_redemptions
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanRedemption(row)
}

func (r *redemptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Redemption, error) {
	const q = `
SELECT id, code, user_id, plan_type, status, redeemed_at
  FROM ltd_redemptions
 WHERE user_id = $1 AND status = 'active'
 ORDER BY redeemed_at DESC;
`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("find redemptions: %w", err)
	}
	defer rows.Close()

	var out []*model.Redemption
	for rows.Next() {
		var red model.Redemption
		if err := rows.Scan(&red.ID, &red.Code, &red.UserID, &red.PlanType, &red.Status, &red.RedeemedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &red)
	}
	return out, rows.Err()
}

func scanRedemption(row pgx.Row) (*model.Redemption, error) {
	var red model.Redemption
	err := row.Scan(&red.ID, &red.Code, &red.UserID, &red.PlanType, &red.Status, &red.RedeemedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &red, nil
}
