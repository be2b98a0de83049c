// Package purchasing casos de uso de órdenes de compra.
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/ordem-compra/internal/application/dto"
	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

// ValidationError campos obligatorios ausentes (nombres del body, en camelCase).
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "campos obrigatórios faltando: " + strings.Join(e.Fields, ", ")
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// OrderUseCase casos de uso del ciclo de vida de una orden.
type OrderUseCase struct {
	repo      repository.OrderRepository
	tx        OrderTxRunner
	numbering domainpurchasing.Numbering
	validate  *validator.Validate
	log       *logger.Logger
	now       func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	repo repository.OrderRepository,
	tx OrderTxRunner,
	numbering domainpurchasing.Numbering,
	log *logger.Logger,
) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		repo:      repo,
		tx:        tx,
		numbering: numbering,
		validate:  newValidator(),
		log:       log.Component("orders"),
		now:       time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// List órdenes según el filtro, por número ascendente (los no numéricos al final).
func (uc *OrderUseCase) List(ctx context.Context, filter repository.OrderFilter) ([]dto.OrderResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	return dto.ToOrderResponses(NewBoard(list).WithFilter(filter).Visible()), nil
}

// Get devuelve una orden o domain.ErrNotFound.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToOrderResponse(o)
	return &resp, nil
}

// Create valida, recalcula y guarda una orden nueva. Sin número se asigna el siguiente.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.OrderRequest) (*dto.OrderResponse, error) {
	order, err := uc.fromRequest(in)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	order.ID = uuid.New().String()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = entity.OrderStatusOpen
	}

	err = uc.tx.RunOrders(ctx, func(repo repository.OrderRepository) error {
		if order.Number == "" {
			numbers, err := repo.ListNumbers(ctx)
			if err != nil {
				return err
			}
			order.Number = uc.numbering.Next(numbers, order.Date.Year())
		}
		return repo.Create(ctx, &order)
	})
	if err != nil {
		return nil, fmt.Errorf("crear orden: %w", err)
	}

	uc.log.Info().Str("id", order.ID).Str("numero", order.Number).Msg("orden creada")
	resp := dto.ToOrderResponse(&order)
	return &resp, nil
}

// Update reemplaza el contenido de la orden. Conserva estado y número guardados si no vienen.
func (uc *OrderUseCase) Update(ctx context.Context, id string, in dto.OrderRequest) (*dto.OrderResponse, error) {
	order, err := uc.fromRequest(in)
	if err != nil {
		return nil, err
	}
	current, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	order.ID = current.ID
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = uc.now()
	if order.Status == "" {
		order.Status = current.Status
	}
	if order.Number == "" {
		order.Number = current.Number
	}

	if err := uc.repo.Update(ctx, &order); err != nil {
		return nil, fmt.Errorf("actualizar orden: %w", err)
	}
	uc.log.Info().Str("id", order.ID).Str("numero", order.Number).Msg("orden actualizada")
	resp := dto.ToOrderResponse(&order)
	return &resp, nil
}

// SetStatus fija el estado; solo aberta o fechada.
func (uc *OrderUseCase) SetStatus(ctx context.Context, id, status string) (*dto.OrderResponse, error) {
	status = strings.TrimSpace(status)
	if !entity.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	if err := uc.repo.UpdateStatus(ctx, id, status, uc.now()); err != nil {
		return nil, fmt.Errorf("cambiar estado: %w", err)
	}
	return uc.Get(ctx, id)
}

// ToggleStatus alterna aberta ↔ fechada.
func (uc *OrderUseCase) ToggleStatus(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	toggled := NewBoard([]*entity.Order{o}).Toggle(o.ID)
	return uc.SetStatus(ctx, id, toggled.Orders[0].Status)
}

// Delete borra la orden si confirm la aprueba; si no, domain.ErrNotConfirmed.
func (uc *OrderUseCase) Delete(ctx context.Context, id string, confirm Confirmer) error {
	o, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm.Confirm(ctx, o) {
		return domain.ErrNotConfirmed
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar orden: %w", err)
	}
	uc.log.Info().Str("id", id).Str("numero", o.Number).Msg("orden eliminada")
	return nil
}

// NextNumber siguiente número sugerido; year 0 = año actual.
func (uc *OrderUseCase) NextNumber(ctx context.Context, year int) (string, error) {
	if year == 0 {
		year = uc.now().Year()
	}
	numbers, err := uc.repo.ListNumbers(ctx)
	if err != nil {
		return "", fmt.Errorf("números de orden: %w", err)
	}
	return uc.numbering.Next(numbers, year), nil
}

// Dashboard último número y contadores del mes; year/month 0 = mes actual.
func (uc *OrderUseCase) Dashboard(ctx context.Context, year, month int) (dto.DashboardResponse, error) {
	if year == 0 || month == 0 {
		now := uc.now()
		year, month = now.Year(), int(now.Month())
	}
	board, err := uc.board(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	st := board.Stats(year, month)
	return dto.DashboardResponse{
		Mes:          fmt.Sprintf("%04d-%02d", year, month),
		UltimoNumero: st.LastNumber,
		Total:        st.Total,
		Abertas:      st.Open,
		Fechadas:     st.Closed,
	}, nil
}

// Responsibles responsables distintos, para el filtro del listado.
func (uc *OrderUseCase) Responsibles(ctx context.Context) ([]string, error) {
	board, err := uc.board(ctx)
	if err != nil {
		return nil, err
	}
	return board.Responsibles(), nil
}

// Order entidad cruda (para el PDF y la CLI).
func (uc *OrderUseCase) Order(ctx context.Context, id string) (*entity.Order, error) {
	return uc.load(ctx, id)
}

func (uc *OrderUseCase) board(ctx context.Context) (Board, error) {
	all, err := uc.repo.List(ctx, repository.OrderFilter{})
	if err != nil {
		return Board{}, fmt.Errorf("listar órdenes: %w", err)
	}
	return NewBoard(all), nil
}

func (uc *OrderUseCase) load(ctx context.Context, id string) (*entity.Order, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// fromRequest valida y convierte el body a una orden con totales recalculados.
func (uc *OrderUseCase) fromRequest(in dto.OrderRequest) (entity.Order, error) {
	if err := uc.check(in); err != nil {
		return entity.Order{}, err
	}
	date, err := ParseOrderDate(in.DataOrdem)
	if err != nil {
		return entity.Order{}, err
	}
	return domainpurchasing.Recalculate(OrderFromRequest(in, date)), nil
}

func (uc *OrderUseCase) check(in dto.OrderRequest) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	missing := &ValidationError{}
	for _, fe := range verrs {
		if fe.Field() == "status" {
			return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
		}
		missing.Fields = append(missing.Fields, fe.Field())
	}
	return missing
}

// ParseOrderDate acepta "2024-03-05" o un timestamp RFC 3339.
func ParseOrderDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: dataOrdem %q", domain.ErrInvalidInput, s)
}

// OrderFromRequest mapea el body a la entidad (sin recalcular). Un ítem sin unidad queda en UN.
func OrderFromRequest(in dto.OrderRequest, date time.Time) entity.Order {
	items := make([]entity.LineItem, len(in.Items))
	for i, it := range in.Items {
		li := domainpurchasing.NewLineItem()
		li.Sequence = it.Item
		li.Description = it.Especificacao
		li.Quantity = it.Quantidade
		if u := strings.TrimSpace(it.Unidade); u != "" {
			li.Unit = u
		}
		li.UnitPrice = it.ValorUnitario
		li.TaxNote1 = it.IPI
		li.TaxNote2 = it.ST
		items[i] = li
	}
	return entity.Order{
		Number:      in.NumeroOrdem,
		Responsible: in.Responsavel,
		Date:        date,
		Supplier: entity.Supplier{
			LegalName: in.RazaoSocial,
			TradeName: in.NomeFantasia,
			TaxID:     in.CNPJ,
			Address:   in.EnderecoFornecedor,
			Site:      in.Site,
			Contact:   in.Contato,
			Phone:     in.Telefone,
			Email:     in.Email,
		},
		Items:            items,
		Freight:          in.Frete,
		DeliveryLocation: in.LocalEntrega,
		DeliveryTerm:     in.PrazoEntrega,
		Transport:        in.Transporte,
		PaymentMethod:    in.FormaPagamento,
		PaymentTerm:      in.PrazoPagamento,
		BankDetails:      in.DadosBancarios,
		Status:           in.Status,
	}
}
