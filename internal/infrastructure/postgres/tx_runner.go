package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

// numberingLockKey clave del advisory lock que serializa la asignación de números de orden.
const numberingLockKey int64 = 0x6f7264656d // "ordem"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunOrders inicia una transacción, toma el lock de numeración y ejecuta fn con un repo atado a la tx.
// Dos altas concurrentes sin número no pueden calcular el mismo siguiente número.
func (r *TxRunner) RunOrders(ctx context.Context, fn func(repo repository.OrderRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, numberingLockKey); err != nil {
		return fmt.Errorf("lock numeración: %w", err)
	}
	if err := fn(NewOrderRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
