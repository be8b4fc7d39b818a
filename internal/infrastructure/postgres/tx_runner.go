package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bapperida/siperjadin/internal/application/usecase"
	"github.com/bapperida/siperjadin/internal/domain/repository"
)

// Ensure TxRunner satisfies the use case port.
var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside one PostgreSQL transaction. The
// count-then-insert of the document numbering and the read-check-write of
// every lifecycle transition each run through here, so either the whole
// unit of work commits or none of it does.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner on the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run begins a transaction, hands fn a repository bound to it and commits,
// or rolls back when fn returns an error.
func (r *TxRunner) Run(ctx context.Context, fn func(repo repository.TravelOrderRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewTravelOrderRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
