package repositories

import "context"

// TxFn is a function that runs within a transaction. Repositories called
// with the ctx passed to fn join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx runs fn in a transaction. The transaction commits only if fn
	// returns nil; any error or context cancellation rolls everything back.
	ExecTx(ctx context.Context, fn TxFn) error
}
