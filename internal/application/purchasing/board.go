package purchasing

import (
	"sort"
	"strings"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

// Board estado de la pantalla de órdenes: la lista cargada y el filtro.
// Todas las operaciones devuelven un Board nuevo; el receptor no se modifica.
type Board struct {
	Orders []*entity.Order
	Filter repository.OrderFilter
}

// BoardStats tarjetas del tablero.
type BoardStats struct {
	LastNumber int // mayor número numérico entre todas las órdenes
	Total      int // órdenes del mes
	Open       int
	Closed     int
}

// NewBoard tablero sin filtro.
func NewBoard(orders []*entity.Order) Board {
	return Board{Orders: orders}
}

// Visible órdenes que pasan el filtro, ordenadas por número ascendente (los ilegibles al final).
func (b Board) Visible() []*entity.Order {
	out := make([]*entity.Order, 0, len(b.Orders))
	for _, o := range b.Orders {
		if b.Filter.Match(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, oki := domainpurchasing.NumberValue(out[i].Number)
		vj, okj := domainpurchasing.NumberValue(out[j].Number)
		switch {
		case oki && okj && vi != vj:
			return vi < vj
		case oki != okj:
			return oki
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// Stats último número global y contadores del mes indicado.
func (b Board) Stats(year, month int) BoardStats {
	numbers := make([]string, len(b.Orders))
	var st BoardStats
	for i, o := range b.Orders {
		numbers[i] = o.Number
		if o.Date.Year() != year || int(o.Date.Month()) != month {
			continue
		}
		st.Total++
		if o.IsOpen() {
			st.Open++
		} else {
			st.Closed++
		}
	}
	st.LastNumber = domainpurchasing.LastNumber(numbers)
	return st
}

// Responsibles responsables distintos, ordenados.
func (b Board) Responsibles() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range b.Orders {
		r := strings.TrimSpace(o.Responsible)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Upsert reemplaza la orden con el mismo ID o la agrega al inicio.
func (b Board) Upsert(o *entity.Order) Board {
	orders := make([]*entity.Order, 0, len(b.Orders)+1)
	replaced := false
	for _, cur := range b.Orders {
		if cur.ID == o.ID {
			orders = append(orders, o)
			replaced = true
			continue
		}
		orders = append(orders, cur)
	}
	if !replaced {
		orders = append([]*entity.Order{o}, orders...)
	}
	b.Orders = orders
	return b
}

// Toggle alterna el estado de la orden id (sobre una copia).
func (b Board) Toggle(id string) Board {
	for _, o := range b.Orders {
		if o.ID == id {
			cp := *o
			cp.Status = entity.ToggledStatus(o.Status)
			return b.Upsert(&cp)
		}
	}
	return b
}

// WithFilter reemplaza el filtro.
func (b Board) WithFilter(f repository.OrderFilter) Board {
	b.Filter = f
	return b
}
