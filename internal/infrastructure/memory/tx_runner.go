package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

// TxRunner serializa los callbacks sobre el repo en memoria. No hay rollback:
// una escritura hecha antes de un error queda aplicada.
type TxRunner struct {
	mu   sync.Mutex
	repo *OrderRepo
}

// NewTxRunner construye el runner sobre repo.
func NewTxRunner(repo *OrderRepo) *TxRunner {
	return &TxRunner{repo: repo}
}

// RunOrders ejecuta fn con el repo mientras mantiene el lock.
func (r *TxRunner) RunOrders(_ context.Context, fn func(repo repository.OrderRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.repo)
}
