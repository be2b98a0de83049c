package purchasing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/pkg/currency"
)

func item(qty, price string) entity.LineItem {
	return entity.LineItem{
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		Unit:      entity.DefaultUnit,
	}
}

// Escenario: 2 × 10,005 redondea a R$ 20,01 tanto en la línea como en el total.
func TestRecomputeLineTotal_Redondeo(t *testing.T) {
	it := purchasing.RecomputeLineTotal(item("2", "10.005"))
	assert.Equal(t, "R$ 20,01", it.LineTotal)

	order := purchasing.Recalculate(entity.Order{Items: []entity.LineItem{item("2", "10.005")}})
	assert.Equal(t, "R$ 20,01", order.Total)
}

func TestRecomputeLineTotal_DosDecimales(t *testing.T) {
	cases := []struct{ qty, price, want string }{
		{"1", "0", "R$ 0,00"},
		{"3", "7.5", "R$ 22,50"},
		{"0.333", "3", "R$ 1,00"},
		{"1000", "12.345", "R$ 12345,00"},
		{"1.5", "0.01", "R$ 0,02"},
	}
	for _, c := range cases {
		got := purchasing.RecomputeLineTotal(item(c.qty, c.price))
		assert.Equal(t, c.want, got.LineTotal, "%s × %s", c.qty, c.price)
	}
}

func TestRecomputeLineTotal_NegativoNoFalla(t *testing.T) {
	got := purchasing.RecomputeLineTotal(item("-2", "5"))
	assert.Equal(t, "R$ -10,00", got.LineTotal)
}

func TestRecomputeOrderTotal_SinItems(t *testing.T) {
	assert.Equal(t, "R$ 0,00", purchasing.RecomputeOrderTotal(nil))
	assert.Equal(t, "R$ 0,00", purchasing.Recalculate(entity.Order{}).Total)
}

func TestRecomputeOrderTotal_IgnoraTextoInvalido(t *testing.T) {
	items := []entity.LineItem{
		{LineTotal: "R$ 10,00"},
		{LineTotal: "lixo"},
		{LineTotal: ""},
		{LineTotal: "R$ 1.234,56"},
		{LineTotal: "R$ 0,5x"},
	}
	assert.Equal(t, "R$ 1245,06", purchasing.RecomputeOrderTotal(items))
}

// El total de la orden coincide con la suma de los totales individuales recalculados.
func TestRecomputeOrderTotal_SumaDeLineas(t *testing.T) {
	items := []entity.LineItem{
		item("2", "10.005"),
		item("3", "0.333"),
		item("12", "199.90"),
		item("0", "50"),
	}
	want := decimal.Zero
	for i := range items {
		items[i] = purchasing.RecomputeLineTotal(items[i])
		want = want.Add(purchasing.LineAmount(items[i]))
	}
	assert.Equal(t, currency.Format(want), purchasing.RecomputeOrderTotal(items))
}

func TestRecomputeOrderTotal_Idempotente(t *testing.T) {
	items := []entity.LineItem{item("2", "10.005"), item("7", "3.14159")}
	for i := range items {
		items[i] = purchasing.RecomputeLineTotal(items[i])
	}
	first := purchasing.RecomputeOrderTotal(items)
	second := purchasing.RecomputeOrderTotal([]entity.LineItem{{LineTotal: first}})
	assert.Equal(t, first, second)
}

func TestRecalculate_IgnoraTotalesDelCliente(t *testing.T) {
	in := entity.Order{
		Total: "R$ 999,99",
		Items: []entity.LineItem{
			{Sequence: 7, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5), LineTotal: "R$ 1,00"},
			{Sequence: 9, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3), Unit: "CX"},
		},
	}
	out := purchasing.Recalculate(in)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 1, out.Items[0].Sequence)
	assert.Equal(t, 2, out.Items[1].Sequence)
	assert.Equal(t, "UN", out.Items[0].Unit)
	assert.Equal(t, "CX", out.Items[1].Unit)
	assert.Equal(t, "R$ 10,00", out.Items[0].LineTotal)
	assert.Equal(t, "R$ 13,00", out.Total)

	// la orden original no se toca
	assert.Equal(t, "R$ 1,00", in.Items[0].LineTotal)
	assert.Equal(t, 7, in.Items[0].Sequence)
}
