// Package purchasing contiene las reglas puras de la orden de compra: totales por línea,
// total de la orden, numeración y mantenimiento de la lista de ítems.
package purchasing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/currency"
)

// LineAmount calcula round(Quantity × UnitPrice, 2).
func LineAmount(item entity.LineItem) decimal.Decimal {
	return item.Quantity.Mul(item.UnitPrice).Round(2)
}

// RecomputeLineTotal devuelve una copia del ítem con LineTotal recalculado.
func RecomputeLineTotal(item entity.LineItem) entity.LineItem {
	item.LineTotal = currency.Format(LineAmount(item))
	return item
}

// RecomputeOrderTotal suma los LineTotal (texto) de los ítems y devuelve el total formateado.
// Un LineTotal ilegible cuenta como 0; nunca falla la suma completa.
func RecomputeOrderTotal(items []entity.LineItem) string {
	return currency.Format(SumLineTotals(items))
}

// SumLineTotals suma los LineTotal parseados.
func SumLineTotals(items []entity.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(currency.Parse(it.LineTotal))
	}
	return sum
}

// Recalculate normaliza una orden antes de persistirla o imprimirla:
// renumera los ítems, aplica la unidad por defecto, recalcula cada LineTotal y el total.
// La orden recibida no se modifica.
func Recalculate(order entity.Order) entity.Order {
	items := make([]entity.LineItem, len(order.Items))
	for i, it := range order.Items {
		if it.Unit == "" {
			it.Unit = entity.DefaultUnit
		}
		items[i] = RecomputeLineTotal(it)
	}
	order.Items = Renumber(items)
	order.Total = RecomputeOrderTotal(order.Items)
	return order
}
