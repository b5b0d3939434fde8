package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema holds the DDL for the three tables this service owns. The partial
// unique index on user_subscriptions backs the one-active-row-per-user
// invariant as a last line of defense behind the advisory-lock transaction.
const Schema = `
CREATE TABLE IF NOT EXISTS ltd_codes (
    id         UUID PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    plan_type  TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'available',
    issued_at  TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS ltd_redemptions (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL UNIQUE,
    user_id     TEXT NOT NULL,
    plan_type   TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'active',
    redeemed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ltd_redemptions_user ON ltd_redemptions (user_id);

CREATE TABLE IF NOT EXISTS user_subscriptions (
    id                UUID PRIMARY KEY,
    user_id           TEXT NOT NULL,
    plan_type         TEXT NOT NULL,
    status            TEXT NOT NULL,
    subscription_type TEXT NOT NULL,
    starts_at         TIMESTAMPTZ NOT NULL,
    archived_at       TIMESTAMPTZ,
    archived_reason   TEXT,
    source_code       TEXT,
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uniq_user_subscriptions_active
    ON user_subscriptions (user_id) WHERE status = 'active';
`

// EnsureSchema applies the DDL. Idempotent; called at startup and by the
// integration test harness.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
