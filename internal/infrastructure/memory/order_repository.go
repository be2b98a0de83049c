// Package memory implementa los repositorios en memoria (DB_DRIVER=memory y tests).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo guarda copias de las órdenes en un mapa protegido por mutex.
type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
}

// NewOrderRepository construye el repositorio vacío.
func NewOrderRepository() *OrderRepo {
	return &OrderRepo{orders: make(map[string]*entity.Order)}
}

// Create guarda la orden; número repetido → ErrDuplicate (igual que el índice único en PostgreSQL).
func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	if r.numberTaken(order.Number, order.ID) {
		return domain.ErrDuplicate
	}
	r.orders[order.ID] = clone(order)
	return nil
}

// GetByID devuelve una copia o (nil, nil).
func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return clone(o), nil
}

// List devuelve las órdenes que cumplen el filtro, las más recientes primero.
func (r *OrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Match(o) {
			list = append(list, clone(o))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// ListNumbers números de todas las órdenes.
func (r *OrderRepo) ListNumbers(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Number)
	}
	sort.Strings(out)
	return out, nil
}

// Update reemplaza la orden completa conservando CreatedAt.
func (r *OrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.numberTaken(order.Number, order.ID) {
		return domain.ErrDuplicate
	}
	next := clone(order)
	next.CreatedAt = cur.CreatedAt
	r.orders[order.ID] = next
	return nil
}

// UpdateStatus cambia solo el estado y updated_at.
func (r *OrderRepo) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

// Delete elimina la orden.
func (r *OrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

// numberTaken requiere el lock tomado.
func (r *OrderRepo) numberTaken(number, exceptID string) bool {
	if number == "" {
		return false
	}
	for id, o := range r.orders {
		if id != exceptID && o.Number == number {
			return true
		}
	}
	return false
}

func clone(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.LineItem(nil), o.Items...)
	return &c
}
