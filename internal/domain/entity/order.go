package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra (valores persistidos).
const (
	OrderStatusOpen   = "aberta"
	OrderStatusClosed = "fechada"
)

// Unidad por defecto de una línea de pedido.
const DefaultUnit = "UN"

// Supplier datos del proveedor impresos en la orden.
type Supplier struct {
	LegalName string // Razão social
	TradeName string // Nome fantasia (opcional)
	TaxID     string // CNPJ
	Address   string
	Site      string
	Contact   string
	Phone     string
	Email     string
}

// LineItem representa una línea de la tabla de ítems de la orden.
// LineTotal es texto monetario derivado de Quantity × UnitPrice; nunca se edita directamente.
type LineItem struct {
	Sequence    int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxNote1    string // IPI
	TaxNote2    string // ST
	LineTotal   string
}

// Order representa la cabecera y el detalle de una orden de compra.
type Order struct {
	ID               string
	Number           string
	Responsible      string
	Date             time.Time
	Supplier         Supplier
	Items            []LineItem
	Total            string // texto monetario, suma de LineTotal
	Freight          string
	DeliveryLocation string
	DeliveryTerm     string
	Transport        string
	PaymentMethod    string
	PaymentTerm      string
	BankDetails      string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOpen indica si la orden sigue pendiente.
func (o *Order) IsOpen() bool { return o.Status != OrderStatusClosed }

// ValidStatus indica si s es un estado persistible.
func ValidStatus(s string) bool {
	return s == OrderStatusOpen || s == OrderStatusClosed
}

// ToggledStatus devuelve el estado opuesto (aberta ↔ fechada).
func ToggledStatus(s string) string {
	if s == OrderStatusOpen {
		return OrderStatusClosed
	}
	return OrderStatusOpen
}
