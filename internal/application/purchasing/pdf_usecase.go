package purchasing

import (
	"context"
	"fmt"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain/repository"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

// PDFUseCase genera el PDF de una orden y, si hay archivo configurado, guarda una copia.
type PDFUseCase struct {
	repo     repository.OrderRepository
	renderer OrderRenderer
	assets   AssetLoader
	archive  DocumentArchive
	org      entity.Organization
	log      *logger.Logger
}

// NewPDFUseCase construye el caso de uso. archive puede ser nil.
func NewPDFUseCase(
	repo repository.OrderRepository,
	renderer OrderRenderer,
	assets AssetLoader,
	archive DocumentArchive,
	org entity.Organization,
	log *logger.Logger,
) *PDFUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PDFUseCase{
		repo:     repo,
		renderer: renderer,
		assets:   assets,
		archive:  archive,
		org:      org,
		log:      log.Component("pdf"),
	}
}

// Download carga la orden, la recalcula y genera el PDF.
// Un fallo del archivo se registra y no impide la descarga.
func (uc *PDFUseCase) Download(ctx context.Context, id string) (*entity.Document, error) {
	// ── 1. Cargar orden ───────────────────────────────────────────────────────
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener orden: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}

	// ── 2. Generar ────────────────────────────────────────────────────────────
	doc, err := uc.Render(ctx, *o)
	if err != nil {
		return nil, err
	}

	// ── 3. Archivar (best-effort) ─────────────────────────────────────────────
	if uc.archive != nil {
		key, err := uc.archive.Archive(ctx, doc, *o)
		if err != nil {
			uc.log.Warn().Err(err).Str("id", o.ID).Msg("no se pudo archivar el PDF")
		} else {
			uc.log.Debug().Str("id", o.ID).Str("key", key).Msg("PDF archivado")
		}
	}
	return doc, nil
}

// Render genera el PDF de una orden que no necesita estar guardada.
// Los totales se recalculan antes de imprimir; los enviados por el cliente se ignoran.
func (uc *PDFUseCase) Render(ctx context.Context, order entity.Order) (*entity.Document, error) {
	order = domainpurchasing.Recalculate(order)

	var assets entity.DocumentAssets
	if uc.assets != nil {
		assets = uc.assets.Load(ctx)
	}
	doc, err := uc.renderer.Render(ctx, order, uc.org, assets)
	if err != nil {
		return nil, fmt.Errorf("pdf: generar orden %s: %w", order.Number, err)
	}
	uc.log.Info().Str("numero", order.Number).Int("paginas", doc.Pages).Msg("PDF generado")
	return doc, nil
}
