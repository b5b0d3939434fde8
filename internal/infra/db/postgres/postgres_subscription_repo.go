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
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	const q = `
INSERT INTO user_subscriptions
  (id, user_id, plan_type, status, subscription_type, starts_at, archived_at, archived_reason, source_code, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  status          = EXCLUDED.status,
  archived_at     = EXCLUDED.archived_at,
  archived_reason = EXCLUDED.archived_reason;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		sub.ID, sub.UserID, sub.PlanType, sub.Status, sub.SubscriptionType,
		sub.StartsAt, sub.ArchivedAt, sub.ArchivedReason, sub.SourceCode, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	const q = selectSubscription + ` WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = selectSubscription + ` WHERE user_id = $1 AND status = 'active';`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanSubscription(row)
}

func (r *subscriptionRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM user_subscriptions WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LockUser takes the per-user advisory xact lock that serializes entitlement
// transitions across service instances. Must run inside a transaction.
func (r *subscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	if _, ok := tx.(pgx.Tx); !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(userID))
	return err
}

func (r *subscriptionRepo) CountActiveByPlan(ctx context.Context) (map[model.PlanType]int, error) {
	const q = `
SELECT plan_type, COUNT(*)
  FROM user_subscriptions
 WHERE status = 'active'
 GROUP BY plan_type;
`
	rows, err := pickRows(ctx, r.pool, repository.NoTX, q)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	defer rows.Close()

	out := make(map[model.PlanType]int)
	for rows.Next() {
		var plan model.PlanType
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[plan] = n
	}
	return out, rows.Err()
}

const selectSubscription = `
SELECT id, user_id, plan_type, status, subscription_type, starts_at, archived_at, archived_reason, source_code, created_at
  FROM user_subscriptions`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.PlanType, &s.Status, &s.SubscriptionType,
		&s.StartsAt, &s.ArchivedAt, &s.ArchivedReason, &s.SourceCode, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &s, nil
}
