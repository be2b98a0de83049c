package purchasing

import (
	"context"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

// OrderTxRunner ejecuta fn en una transacción que serializa la numeración de órdenes.
type OrderTxRunner interface {
	RunOrders(ctx context.Context, fn func(repo repository.OrderRepository) error) error
}

// OrderRenderer genera el PDF de una orden con totales ya recalculados.
type OrderRenderer interface {
	Render(ctx context.Context, order entity.Order, org entity.Organization, assets entity.DocumentAssets) (*entity.Document, error)
}

// AssetLoader resuelve logo y firma. Nunca falla: lo que no carga queda en nil.
type AssetLoader interface {
	Load(ctx context.Context) entity.DocumentAssets
}

// DocumentArchive guarda una copia del PDF generado y devuelve su clave.
type DocumentArchive interface {
	Archive(ctx context.Context, doc *entity.Document, order entity.Order) (string, error)
}

// Confirmer decide si una operación destructiva sigue adelante.
type Confirmer interface {
	Confirm(ctx context.Context, order *entity.Order) bool
}

// ConfirmFunc adapta una función a Confirmer.
type ConfirmFunc func(ctx context.Context, order *entity.Order) bool

// Confirm implementa Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, order *entity.Order) bool { return f(ctx, order) }

// AlwaysConfirm confirmación ya dada por el cliente (API HTTP).
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, *entity.Order) bool { return true })
