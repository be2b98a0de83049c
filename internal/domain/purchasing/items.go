package purchasing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/currency"
)

// NewLineItem ítem vacío con los valores por defecto del formulario (1 UN a R$ 0,00).
func NewLineItem() entity.LineItem {
	return entity.LineItem{
		Quantity:  decimal.NewFromInt(1),
		Unit:      entity.DefaultUnit,
		UnitPrice: decimal.Zero,
		LineTotal: currency.Zero(),
	}
}

// Renumber reasigna Sequence 1..n según la posición actual.
func Renumber(items []entity.LineItem) []entity.LineItem {
	for i := range items {
		items[i].Sequence = i + 1
	}
	return items
}
