package purchasing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

func boardOrder(id, number, resp, status string, date time.Time) *entity.Order {
	return &entity.Order{
		ID: id, Number: number, Responsible: resp, Status: status, Date: date,
		Supplier: entity.Supplier{LegalName: "Fornecedor " + id},
	}
}

func sampleBoard() Board {
	mar := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	return NewBoard([]*entity.Order{
		boardOrder("a", "1300", "Ana", entity.OrderStatusOpen, mar),
		boardOrder("b", "99", "Bruno", entity.OrderStatusClosed, mar),
		boardOrder("c", "S/N", "Ana", entity.OrderStatusOpen, feb),
		boardOrder("d", "1251", "carla", entity.OrderStatusOpen, feb),
	})
}

func ids(orders []*entity.Order) []string {
	var out []string
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestBoard_VisibleOrdenNumerico(t *testing.T) {
	b := sampleBoard()
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(b.Visible()))

	b = b.WithFilter(repository.OrderFilter{Search: "ana"})
	assert.Equal(t, []string{"a", "c"}, ids(b.Visible()))

	b = b.WithFilter(repository.OrderFilter{Year: 2024, Month: 3, Status: entity.OrderStatusOpen})
	assert.Equal(t, []string{"a"}, ids(b.Visible()))

	b = b.WithFilter(repository.OrderFilter{Search: "fornecedor d"})
	assert.Equal(t, []string{"d"}, ids(b.Visible()))
}

func TestBoard_Stats(t *testing.T) {
	st := sampleBoard().Stats(2024, 3)
	assert.Equal(t, BoardStats{LastNumber: 1300, Total: 2, Open: 1, Closed: 1}, st)
	assert.Equal(t, BoardStats{}, NewBoard(nil).Stats(2024, 3))
}

func TestBoard_Responsibles(t *testing.T) {
	assert.Equal(t, []string{"Ana", "Bruno", "carla"}, sampleBoard().Responsibles())
}

func TestBoard_UpsertToggle(t *testing.T) {
	b := sampleBoard()

	n := boardOrder("e", "1400", "Ana", entity.OrderStatusOpen, time.Now())
	b2 := b.Upsert(n)
	assert.Len(t, b2.Orders, 5)
	assert.Equal(t, "e", b2.Orders[0].ID)
	assert.Len(t, b.Orders, 4, "el original no cambia")

	edited := *b2.Orders[1]
	edited.Responsible = "Zé"
	b3 := b2.Upsert(&edited)
	assert.Len(t, b3.Orders, 5)
	assert.Equal(t, "Zé", b3.Orders[1].Responsible)

	b4 := b3.Toggle("a")
	assert.Equal(t, entity.OrderStatusClosed, b4.Orders[1].Status)
	assert.Equal(t, entity.OrderStatusOpen, b3.Orders[1].Status)
	assert.Equal(t, b4, b4.Toggle("no-existe"))
}
