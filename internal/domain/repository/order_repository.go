package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
)

// OrderFilter criterios de listado. Los campos vacíos (o cero) no filtran.
type OrderFilter struct {
	Year        int
	Month       int // 1-12, requiere Year
	Search      string
	Responsible string
	Status      string
}

// Match aplica el filtro en memoria (mismas reglas que el listado SQL).
// Search compara sin distinguir mayúsculas contra número, razón social y responsable.
func (f OrderFilter) Match(o *entity.Order) bool {
	if f.Year != 0 {
		if o.Date.Year() != f.Year {
			return false
		}
		if f.Month != 0 && int(o.Date.Month()) != f.Month {
			return false
		}
	}
	if f.Responsible != "" && o.Responsible != f.Responsible {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(o.Number), q) &&
			!strings.Contains(strings.ToLower(o.Supplier.LegalName), q) &&
			!strings.Contains(strings.ToLower(o.Responsible), q) {
			return false
		}
	}
	return true
}

// OrderRepository puerto de persistencia de órdenes de compra.
// GetByID devuelve (nil, nil) si la orden no existe; Update, UpdateStatus y Delete
// devuelven domain.ErrNotFound en ese caso.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	ListNumbers(ctx context.Context) ([]string, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
