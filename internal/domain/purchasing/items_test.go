package purchasing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/purchasing"
)

func descriptions(items []entity.LineItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Description
	}
	return out
}

func sequences(items []entity.LineItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Sequence
	}
	return out
}

func TestNewLineItem_ValoresPorDefecto(t *testing.T) {
	it := purchasing.NewLineItem()
	assert.True(t, it.Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "UN", it.Unit)
	assert.Equal(t, "R$ 0,00", it.LineTotal)
}

func TestRecalculate_RenumeraEnOrden(t *testing.T) {
	order := entity.Order{Items: []entity.LineItem{
		{Sequence: 7, Description: "cabo"},
		{Sequence: 7, Description: "disjuntor"},
		{Sequence: 1, Description: "tomada"},
	}}
	got := purchasing.Recalculate(order)
	assert.Equal(t, []string{"cabo", "disjuntor", "tomada"}, descriptions(got.Items))
	assert.Equal(t, []int{1, 2, 3}, sequences(got.Items))
	assert.Equal(t, []int{7, 7, 1}, sequences(order.Items), "la orden original no cambia")
}
