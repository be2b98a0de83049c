package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre la tabla ordens_compra (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// itemRecord forma de cada ítem dentro de la columna items (jsonb).
type itemRecord struct {
	Item          int             `json:"item"`
	Especificacao string          `json:"especificacao"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	Unidade       string          `json:"unidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	IPI           string          `json:"ipi"`
	ST            string          `json:"st"`
	ValorTotal    string          `json:"valor_total"`
}

const orderColumns = `
	id::text, numero_ordem, responsavel, data_ordem, razao_social, nome_fantasia, cnpj,
	endereco_fornecedor, site, contato, telefone, email, items, valor_total, frete,
	local_entrega, prazo_entrega, transporte, forma_pagamento, prazo_pagamento,
	dados_bancarios, status, created_at, updated_at`

// Create persiste una nueva orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return fmt.Errorf("%w: id %q no es UUID", domain.ErrInvalidInput, o.ID)
	}
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO ordens_compra (
			id, numero_ordem, responsavel, data_ordem, razao_social, nome_fantasia, cnpj,
			endereco_fornecedor, site, contato, telefone, email, items, valor_total, valor_total_num,
			frete, local_entrega, prazo_entrega, transporte, forma_pagamento, prazo_pagamento,
			dados_bancarios, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err = r.q.Exec(ctx, query,
		id, o.Number, o.Responsible, o.Date, o.Supplier.LegalName, nullIfEmpty(o.Supplier.TradeName), o.Supplier.TaxID,
		nullIfEmpty(o.Supplier.Address), nullIfEmpty(o.Supplier.Site), nullIfEmpty(o.Supplier.Contact),
		nullIfEmpty(o.Supplier.Phone), nullIfEmpty(o.Supplier.Email),
		items, o.Total, purchasing.SumLineTotals(o.Items),
		nullIfEmpty(o.Freight), nullIfEmpty(o.DeliveryLocation), nullIfEmpty(o.DeliveryTerm), nullIfEmpty(o.Transport),
		o.PaymentMethod, o.PaymentTerm, nullIfEmpty(o.BankDetails), o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert orden: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + orderColumns + ` FROM ordens_compra WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get orden: %w", err)
	}
	return o, nil
}

// List lista las órdenes que cumplen el filtro, las más recientes primero.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	where, args := buildWhere(f)
	query := `SELECT ` + orderColumns + ` FROM ordens_compra` + where + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ordens: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan orden: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListNumbers devuelve todos los numero_ordem (para calcular el siguiente).
func (r *OrderRepo) ListNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT numero_ordem FROM ordens_compra ORDER BY numero_ordem`)
	if err != nil {
		return nil, fmt.Errorf("list numeros: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan numero: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update reemplaza todos los campos editables (created_at no cambia).
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	uid, ok := parseID(o.ID)
	if !ok {
		return domain.ErrNotFound
	}
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE ordens_compra SET
			numero_ordem = $2, responsavel = $3, data_ordem = $4, razao_social = $5, nome_fantasia = $6,
			cnpj = $7, endereco_fornecedor = $8, site = $9, contato = $10, telefone = $11, email = $12,
			items = $13, valor_total = $14, valor_total_num = $15, frete = $16, local_entrega = $17,
			prazo_entrega = $18, transporte = $19, forma_pagamento = $20, prazo_pagamento = $21,
			dados_bancarios = $22, status = $23, updated_at = $24
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		uid, o.Number, o.Responsible, o.Date, o.Supplier.LegalName, nullIfEmpty(o.Supplier.TradeName),
		o.Supplier.TaxID, nullIfEmpty(o.Supplier.Address), nullIfEmpty(o.Supplier.Site),
		nullIfEmpty(o.Supplier.Contact), nullIfEmpty(o.Supplier.Phone), nullIfEmpty(o.Supplier.Email),
		items, o.Total, purchasing.SumLineTotals(o.Items), nullIfEmpty(o.Freight),
		nullIfEmpty(o.DeliveryLocation), nullIfEmpty(o.DeliveryTerm), nullIfEmpty(o.Transport),
		o.PaymentMethod, o.PaymentTerm, nullIfEmpty(o.BankDetails), o.Status, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update orden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus actualiza solo el estado.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	uid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE ordens_compra SET status = $2, updated_at = $3 WHERE id = $1`,
		uid, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una orden por ID.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	uid, ok := parseID(id)
	if !ok {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM ordens_compra WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete orden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// parseID un id que no es UUID no puede existir en la tabla.
func parseID(id string) (uuid.UUID, bool) {
	u, err := uuid.Parse(id)
	return u, err == nil
}

// buildWhere arma la cláusula WHERE con parámetros posicionales.
func buildWhere(f repository.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Year != 0 {
		from := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if f.Month >= 1 && f.Month <= 12 {
			from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		add("data_ordem >= $%d", from)
		add("data_ordem < $%d", to)
	}
	if f.Responsible != "" {
		add("responsavel = $%d", f.Responsible)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(numero_ordem ILIKE $%d OR razao_social ILIKE $%d OR responsavel ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var tradeName, address, site, contact, phone, email *string
	var freight, delivery, deliveryTerm, transport, bank *string
	var items []byte
	err := row.Scan(
		&o.ID, &o.Number, &o.Responsible, &o.Date, &o.Supplier.LegalName, &tradeName, &o.Supplier.TaxID,
		&address, &site, &contact, &phone, &email, &items, &o.Total, &freight,
		&delivery, &deliveryTerm, &transport, &o.PaymentMethod, &o.PaymentTerm,
		&bank, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Supplier.TradeName = derefStr(tradeName)
	o.Supplier.Address = derefStr(address)
	o.Supplier.Site = derefStr(site)
	o.Supplier.Contact = derefStr(contact)
	o.Supplier.Phone = derefStr(phone)
	o.Supplier.Email = derefStr(email)
	o.Freight = derefStr(freight)
	o.DeliveryLocation = derefStr(delivery)
	o.DeliveryTerm = derefStr(deliveryTerm)
	o.Transport = derefStr(transport)
	o.BankDetails = derefStr(bank)
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &o, nil
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	recs := make([]itemRecord, 0, len(items))
	for _, it := range items {
		recs = append(recs, itemRecord{
			Item:          it.Sequence,
			Especificacao: it.Description,
			Quantidade:    it.Quantity,
			Unidade:       it.Unit,
			ValorUnitario: it.UnitPrice,
			IPI:           it.TaxNote1,
			ST:            it.TaxNote2,
			ValorTotal:    it.LineTotal,
		})
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("serializar items: %w", err)
	}
	return b, nil
}

func decodeItems(b []byte) ([]entity.LineItem, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var recs []itemRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("leer items: %w", err)
	}
	items := make([]entity.LineItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, entity.LineItem{
			Sequence:    rec.Item,
			Description: rec.Especificacao,
			Quantity:    rec.Quantidade,
			Unit:        rec.Unidade,
			UnitPrice:   rec.ValorUnitario,
			TaxNote1:    rec.IPI,
			TaxNote2:    rec.ST,
			LineTotal:   rec.ValorTotal,
		})
	}
	return items, nil
}
