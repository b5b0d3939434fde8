package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"expense-ltd/internal/domain"
	"expense-ltd/internal/domain/model"
	"expense-ltd/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) *codeRepo {
	return &codeRepo{pool: pool}
}

// Create inserts a code only when absent. ON CONFLICT DO NOTHING keeps the
// existing row untouched, so an import never resets a redeemed code back to
// available; the return value reports whether a row was written.
func (r *codeRepo) Create(ctx context.Context, tx repository.Tx, code *model.LTDCode) (bool, error) {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	const q = `
INSERT INTO ltd_codes (id, code, plan_type, status, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO NOTHING;
`
	tag, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.PlanType, code.Status, code.IssuedAt, code.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("create code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Save creates a code or updates its status. ON CONFLICT keys on the
// canonical code string, which is globally unique.
func (r *codeRepo) Save(ctx context.Context, tx repository.Tx, code *model.LTDCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}

	const q = `
INSERT INTO ltd_codes (id, code, plan_type, status, issued_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO UPDATE SET
  status = EXCLUDED.status;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.PlanType, code.Status, code.IssuedAt, code.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

func (r *codeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.LTDCode, error) {
	const q = `
SELECT id, code, plan_type, status, issued_at, expires_at
  FROM ltd_codes
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	var c model.LTDCode
	err = row.Scan(&c.ID, &c.Code, &c.PlanType, &c.Status, &c.IssuedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *codeRepo) CountByStatus(ctx context.Context) (map[model.CodeStatus]int, error) {
	const q = `
SELECT status, COUNT(*)
  FROM ltd_codes
 GROUP BY status;
`
	rows, err := pickRows(ctx, r.pool, repository.NoTX, q)
	if err != nil {
		return nil, fmt.Errorf("count codes: %w", err)
	}
	defer rows.Close()

	out := make(map[model.CodeStatus]int)
	for rows.Next() {
		var status model.CodeStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	return out, rows.Err()
}
