package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls. The
// concrete type is infra-defined (pgx.Tx for Postgres). Repositories MUST
// accept NoTX and fall back to their pool.
type Tx interface{}

// NoTX is passed when a call should run outside any transaction.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the transaction handle via tx. It keeps use-case interfaces clean:
// no driver types leak out, and repositories detect the handle on their side.
//
// The callback's error rolls the transaction back; nil commits it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
