package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordem-compra/internal/application/dto"
	"github.com/jhoicas/ordem-compra/internal/application/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
)

// OrderHandler endpoints de órdenes de compra (protegido por sesión).
type OrderHandler struct {
	uc  *purchasing.OrderUseCase
	pdf *purchasing.PDFUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *purchasing.OrderUseCase, pdf *purchasing.PDFUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, pdf: pdf}
}

// List lista órdenes.
// GET /api/ordens?month=YYYY-MM&search=&responsavel=&status=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		Search:      c.Query("search"),
		Responsible: c.Query("responsavel"),
		Status:      c.Query("status"),
	}
	if m := c.Query("month"); m != "" {
		year, month, err := parseMonth(m)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "month debe ser YYYY-MM"})
		}
		filter.Year, filter.Month = year, month
	}
	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Dashboard último número y contadores del mes.
// GET /api/ordens/dashboard?month=YYYY-MM
func (h *OrderHandler) Dashboard(c *fiber.Ctx) error {
	var year, month int
	if m := c.Query("month"); m != "" {
		var err error
		if year, month, err = parseMonth(m); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "month debe ser YYYY-MM"})
		}
	}
	out, err := h.uc.Dashboard(c.Context(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// NextNumber siguiente número sugerido.
// GET /api/ordens/next-number?year=2024
func (h *OrderHandler) NextNumber(c *fiber.Ctx) error {
	year := c.QueryInt("year", 0)
	n, err := h.uc.NextNumber(c.Context(), year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NextNumberResponse{NumeroOrdem: n})
}

// Responsibles responsables para el filtro.
// GET /api/ordens/responsaveis
func (h *OrderHandler) Responsibles(c *fiber.Ctx) error {
	list, err := h.uc.Responsibles(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []string{}
	}
	return c.JSON(list)
}

// GetByID detalle de una orden.
// GET /api/ordens/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// Create crea una orden (camelCase o snake_case).
// POST /api/ordens
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	in, err := dto.DecodeOrder(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	o, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

// Update reemplaza una orden.
// PUT /api/ordens/:id
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	in, err := dto.DecodeOrder(c.Body())
	if err != nil {
		return writeError(c, err)
	}
	o, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// SetStatus cambia solo el estado.
// PATCH /api/ordens/:id/status
func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	o, err := h.uc.SetStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// ToggleStatus alterna aberta ↔ fechada.
// POST /api/ordens/:id/toggle-status
func (h *OrderHandler) ToggleStatus(c *fiber.Ctx) error {
	o, err := h.uc.ToggleStatus(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// Delete elimina una orden; la confirmación ya la pidió el cliente.
// DELETE /api/ordens/:id
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id"), purchasing.AlwaysConfirm); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DeleteResponse{Success: true, Message: "Ordem removida com sucesso"})
}

// DownloadPDF descarga el PDF de la orden.
// GET /api/ordens/:id/pdf
func (h *OrderHandler) DownloadPDF(c *fiber.Ctx) error {
	doc, err := h.pdf.Download(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, contentDisposition(doc.Filename))
	return c.Send(doc.Bytes)
}

// Health estado del servicio (público).
// GET /health
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339Nano)})
}

// contentDisposition nombre ASCII de respaldo más filename* en UTF-8.
func contentDisposition(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}

// parseMonth "2024-03" → (2024, 3).
func parseMonth(s string) (int, int, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("mes inválido %q", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("año inválido %q", s)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("mes inválido %q", s)
	}
	return year, month, nil
}
