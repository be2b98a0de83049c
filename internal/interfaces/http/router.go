package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordem-compra/internal/application/purchasing"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/session"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC  *purchasing.OrderUseCase
	PDFUC    *purchasing.PDFUseCase
	Verifier session.Verifier
	Log      *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health)

	// Rutas protegidas (requieren X-Session-Token)
	api := app.Group("/api", SessionMiddleware(deps.Verifier, deps.Log))

	orders := api.Group("/ordens")
	h := NewOrderHandler(deps.OrderUC, deps.PDFUC)
	orders.Get("/", h.List)
	orders.Get("/dashboard", h.Dashboard)
	orders.Get("/next-number", h.NextNumber)
	orders.Get("/responsaveis", h.Responsibles)
	orders.Post("/", h.Create)
	orders.Get("/:id", h.GetByID)
	orders.Put("/:id", h.Update)
	orders.Patch("/:id/status", h.SetStatus)
	orders.Post("/:id/toggle-status", h.ToggleStatus)
	orders.Delete("/:id", h.Delete)
	orders.Get("/:id/pdf", h.DownloadPDF)
}
