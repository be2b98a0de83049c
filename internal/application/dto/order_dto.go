package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/currency"
)

// OrderRequest body de POST/PUT /api/ordens, ya normalizado por DecodeOrder.
// Los tags json (camelCase) son los nombres que se reportan en campos_faltando.
type OrderRequest struct {
	NumeroOrdem        string        `json:"numeroOrdem"`
	Responsavel        string        `json:"responsavel" validate:"required"`
	DataOrdem          string        `json:"dataOrdem" validate:"required"`
	RazaoSocial        string        `json:"razaoSocial" validate:"required"`
	NomeFantasia       string        `json:"nomeFantasia"`
	CNPJ               string        `json:"cnpj" validate:"required"`
	EnderecoFornecedor string        `json:"enderecoFornecedor"`
	Site               string        `json:"site"`
	Contato            string        `json:"contato"`
	Telefone           string        `json:"telefone"`
	Email              string        `json:"email"`
	Items              []ItemRequest `json:"items"`
	Frete              string        `json:"frete"`
	LocalEntrega       string        `json:"localEntrega"`
	PrazoEntrega       string        `json:"prazoEntrega"`
	Transporte         string        `json:"transporte"`
	FormaPagamento     string        `json:"formaPagamento" validate:"required"`
	PrazoPagamento     string        `json:"prazoPagamento" validate:"required"`
	DadosBancarios     string        `json:"dadosBancarios"`
	Status             string        `json:"status" validate:"omitempty,oneof=aberta fechada"`
}

// ItemRequest línea de ítem. Cantidad y precio aceptan número JSON o texto ("1,5").
type ItemRequest struct {
	Item          int             `json:"item"`
	Especificacao string          `json:"especificacao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	Unidade       string          `json:"unidade"`
	ValorUnitario decimal.Decimal `json:"valorUnitario"`
	IPI           string          `json:"ipi"`
	ST            string          `json:"st"`
}

// StatusRequest body de PATCH /api/ordens/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

// DecodeOrder normaliza un body en camelCase (formulario) o snake_case (registro guardado).
// Por campo gana snake_case, luego camelCase; null o vacío cuentan como ausentes.
func DecodeOrder(raw []byte) (OrderRequest, error) {
	if !gjson.ValidBytes(raw) {
		return OrderRequest{}, fmt.Errorf("%w: JSON inválido", domain.ErrInvalidInput)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return OrderRequest{}, fmt.Errorf("%w: se esperaba un objeto", domain.ErrInvalidInput)
	}

	req := OrderRequest{
		NumeroOrdem:        str(doc, "numero_ordem", "numeroOrdem"),
		Responsavel:        str(doc, "responsavel", "responsavel"),
		DataOrdem:          str(doc, "data_ordem", "dataOrdem"),
		RazaoSocial:        str(doc, "razao_social", "razaoSocial"),
		NomeFantasia:       str(doc, "nome_fantasia", "nomeFantasia"),
		CNPJ:               str(doc, "cnpj", "cnpj"),
		EnderecoFornecedor: str(doc, "endereco_fornecedor", "enderecoFornecedor"),
		Site:               str(doc, "site", "site"),
		Contato:            str(doc, "contato", "contato"),
		Telefone:           str(doc, "telefone", "telefone"),
		Email:              str(doc, "email", "email"),
		Frete:              str(doc, "frete", "frete"),
		LocalEntrega:       str(doc, "local_entrega", "localEntrega"),
		PrazoEntrega:       str(doc, "prazo_entrega", "prazoEntrega"),
		Transporte:         str(doc, "transporte", "transporte"),
		FormaPagamento:     str(doc, "forma_pagamento", "formaPagamento"),
		PrazoPagamento:     str(doc, "prazo_pagamento", "prazoPagamento"),
		DadosBancarios:     str(doc, "dados_bancarios", "dadosBancarios"),
		Status:             str(doc, "status", "status"),
	}

	items := doc.Get("items")
	// items guardado como texto JSON
	if items.Type == gjson.String && gjson.Valid(items.Str) {
		items = gjson.Parse(items.Str)
	}
	if items.Exists() && items.Type != gjson.Null && !items.IsArray() {
		return OrderRequest{}, fmt.Errorf("%w: items debe ser una lista", domain.ErrInvalidInput)
	}
	items.ForEach(func(_, it gjson.Result) bool {
		req.Items = append(req.Items, decodeItem(it))
		return true
	})
	return req, nil
}

// DecodeOrders decodifica una lista de órdenes (export o respuesta de GET /api/ordens).
func DecodeOrders(raw []byte) ([]OrderRequest, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: JSON inválido", domain.ErrInvalidInput)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: se esperaba una lista", domain.ErrInvalidInput)
	}
	var out []OrderRequest
	var err error
	doc.ForEach(func(_, o gjson.Result) bool {
		var req OrderRequest
		req, err = DecodeOrder([]byte(o.Raw))
		if err != nil {
			return false
		}
		out = append(out, req)
		return true
	})
	return out, err
}

func decodeItem(it gjson.Result) ItemRequest {
	r := ItemRequest{
		Item:          int(pick(it, "item", "item").Int()),
		Especificacao: str(it, "especificacao", "especificacao"),
		Quantidade:    decimal.NewFromInt(1),
		Unidade:       str(it, "unidade", "unidade"),
		ValorUnitario: decimal.Zero,
		IPI:           str(it, "ipi", "ipi"),
		ST:            str(it, "st", "st"),
	}
	if q := pick(it, "quantidade", "quantidade"); q.Exists() {
		r.Quantidade = number(q)
	}
	if p := pick(it, "valor_unitario", "valorUnitario"); p.Exists() {
		r.ValorUnitario = number(p)
	}
	return r
}

// pick devuelve el primer valor presente y no vacío.
func pick(doc gjson.Result, snake, camel string) gjson.Result {
	for _, k := range []string{snake, camel} {
		r := doc.Get(k)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if r.Type == gjson.String && strings.TrimSpace(r.Str) == "" {
			continue
		}
		return r
	}
	return gjson.Result{}
}

func str(doc gjson.Result, snake, camel string) string {
	return strings.TrimSpace(pick(doc, snake, camel).String())
}

// number acepta 2, 2.5, "2,5" o "R$ 10,00"; lo ilegible vale 0.
func number(r gjson.Result) decimal.Decimal {
	switch r.Type {
	case gjson.Number:
		if d, err := decimal.NewFromString(r.Raw); err == nil {
			return d
		}
		return currency.FromFloat(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if strings.Contains(s, currency.DefaultPrefix) {
			return currency.Parse(s)
		}
		return currency.ParseNumber(s)
	}
	return decimal.Zero
}

// OrderResponse forma persistida (snake_case) de una orden.
type OrderResponse struct {
	ID                 string         `json:"id"`
	NumeroOrdem        string         `json:"numero_ordem"`
	Responsavel        string         `json:"responsavel"`
	DataOrdem          string         `json:"data_ordem"`
	RazaoSocial        string         `json:"razao_social"`
	NomeFantasia       *string        `json:"nome_fantasia"`
	CNPJ               string         `json:"cnpj"`
	EnderecoFornecedor *string        `json:"endereco_fornecedor"`
	Site               *string        `json:"site"`
	Contato            *string        `json:"contato"`
	Telefone           *string        `json:"telefone"`
	Email              *string        `json:"email"`
	Items              []ItemResponse `json:"items"`
	ValorTotal         string         `json:"valor_total"`
	Frete              *string        `json:"frete"`
	LocalEntrega       *string        `json:"local_entrega"`
	PrazoEntrega       *string        `json:"prazo_entrega"`
	Transporte         *string        `json:"transporte"`
	FormaPagamento     string         `json:"forma_pagamento"`
	PrazoPagamento     string         `json:"prazo_pagamento"`
	DadosBancarios     *string        `json:"dados_bancarios"`
	Status             string         `json:"status"`
	CreatedAt          string         `json:"created_at"`
	UpdatedAt          string         `json:"updated_at"`
}

// ItemResponse ítem tal como se guarda en la columna items.
type ItemResponse struct {
	Item          int         `json:"item"`
	Especificacao string      `json:"especificacao"`
	Quantidade    json.Number `json:"quantidade"`
	Unidade       string      `json:"unidade"`
	ValorUnitario json.Number `json:"valor_unitario"`
	IPI           string      `json:"ipi"`
	ST            string      `json:"st"`
	ValorTotal    string      `json:"valor_total"`
}

// ToOrderResponse convierte la entidad a la respuesta.
func ToOrderResponse(o *entity.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			Item:          it.Sequence,
			Especificacao: it.Description,
			Quantidade:    json.Number(it.Quantity.String()),
			Unidade:       it.Unit,
			ValorUnitario: json.Number(it.UnitPrice.String()),
			IPI:           it.TaxNote1,
			ST:            it.TaxNote2,
			ValorTotal:    it.LineTotal,
		}
	}
	return OrderResponse{
		ID:                 o.ID,
		NumeroOrdem:        o.Number,
		Responsavel:        o.Responsible,
		DataOrdem:          o.Date.Format("2006-01-02"),
		RazaoSocial:        o.Supplier.LegalName,
		NomeFantasia:       optional(o.Supplier.TradeName),
		CNPJ:               o.Supplier.TaxID,
		EnderecoFornecedor: optional(o.Supplier.Address),
		Site:               optional(o.Supplier.Site),
		Contato:            optional(o.Supplier.Contact),
		Telefone:           optional(o.Supplier.Phone),
		Email:              optional(o.Supplier.Email),
		Items:              items,
		ValorTotal:         o.Total,
		Frete:              optional(o.Freight),
		LocalEntrega:       optional(o.DeliveryLocation),
		PrazoEntrega:       optional(o.DeliveryTerm),
		Transporte:         optional(o.Transport),
		FormaPagamento:     o.PaymentMethod,
		PrazoPagamento:     o.PaymentTerm,
		DadosBancarios:     optional(o.BankDetails),
		Status:             o.Status,
		CreatedAt:          o.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:          o.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// ToOrderResponses convierte una lista.
func ToOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o)
	}
	return out
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// DashboardResponse tarjetas del tablero para un mes.
type DashboardResponse struct {
	Mes          string `json:"mes"` // YYYY-MM
	UltimoNumero int    `json:"ultimo_numero"`
	Total        int    `json:"total"`
	Abertas      int    `json:"abertas"`
	Fechadas     int    `json:"fechadas"`
}

// NextNumberResponse respuesta de GET /api/ordens/next-number.
type NextNumberResponse struct {
	NumeroOrdem string `json:"numero_ordem"`
}

// DeleteResponse respuesta de DELETE /api/ordens/:id.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
