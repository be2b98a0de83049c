// Package pdf genera el PDF de la orden de compra.
//
// Layout de la página A4 (el planificador decide los saltos de página):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│            [logo]  ORDEM DE COMPRA  /  Nº 1250               │
//	│  DADOS PARA FATURAMENTO: membrete de la empresa              │
//	│  DADOS DO FORNECEDOR: razão social + campos no vacíos        │
//	│  ITENS DO PEDIDO                                             │
//	│  ITEM | ESPECIFICAÇÃO | QTD | UNID | VALOR UN | IPI | ST | … │
//	│  VALOR TOTAL / LOCAL DE ENTREGA / PRAZO + FRETE / PAGAMENTO  │
//	│  Serra/ES, 5 de Março de 2024  [firma]  ────  firmante       │
//	│  ATENÇÃO SR. FORNECEDOR: aviso con el número de la orden     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	marotoentity "github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
)

// marotoBottomMargin margen físico de maroto; el umbral de salto lo aplica el planificador.
const marotoBottomMargin = 10

// MarotoOrderRenderer compone con maroto v2 el Layout calculado por el Planner.
type MarotoOrderRenderer struct {
	planner *Planner
}

// NewMarotoOrderRenderer construye el renderer.
func NewMarotoOrderRenderer(planner *Planner) *MarotoOrderRenderer {
	return &MarotoOrderRenderer{planner: planner}
}

// Render genera el PDF de la orden. La orden debe venir con los totales ya recalculados.
func (r *MarotoOrderRenderer) Render(
	ctx context.Context,
	order entity.Order,
	org entity.Organization,
	assets entity.DocumentAssets,
) (*entity.Document, error) {
	layout := r.planner.Plan(order, org, assets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := maroto.New(r.buildConfig(order, org))
	for _, pg := range layout.Pages {
		m.AddPages(r.composePage(pg))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return &entity.Document{
		Bytes:    doc.GetBytes(),
		Filename: Filename(order),
		Pages:    len(layout.Pages),
	}, nil
}

// Filename "{razão social}-{número}.pdf" sin separadores de ruta.
func Filename(o entity.Order) string {
	name := fmt.Sprintf("%s-%s.pdf", strings.TrimSpace(o.Supplier.LegalName), strings.TrimSpace(o.Number))
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name)
}

func (r *MarotoOrderRenderer) buildConfig(o entity.Order, org entity.Organization) *marotoentity.Config {
	g := r.planner.Options().Geometry
	bottom := g.BottomMargin
	if bottom > marotoBottomMargin {
		bottom = marotoBottomMargin
	}
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(g.LeftMargin).WithRightMargin(g.RightMargin).
		WithTopMargin(g.TopMargin).WithBottomMargin(bottom).
		WithMaxGridSize(100).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: r.planner.Options().BodySize}).
		WithTitle("Ordem de Compra Nº "+o.Number, true).
		WithAuthor(org.LegalName, true)
	if !o.Date.IsZero() {
		b = b.WithCreationDate(o.Date)
	}
	return b.Build()
}

// ── Composición ──────────────────────────────────────────────────────────────

func (r *MarotoOrderRenderer) composePage(pg Page) core.Page {
	p := page.New()
	for _, b := range pg.Blocks {
		if b.Gap > 0 {
			p.Add(row.New(b.Gap))
		}
		for _, part := range b.Parts {
			p.Add(r.composePart(part))
		}
	}
	return p
}

func (r *MarotoOrderRenderer) composePart(pt Part) core.Row {
	switch {
	case len(pt.Cells) > 0:
		return r.tableRow(pt)
	case pt.Image != nil:
		return row.New(pt.Height).Add(
			col.New(30),
			col.New(40).Add(image.NewFromBytes(pt.Image.Data, imageExtension(pt.Image.Format), props.Rect{
				Center: true, Percent: 100,
			})),
			col.New(30),
		)
	case pt.Rule:
		return row.New(pt.Height).Add(
			col.New(30),
			col.New(40).Add(line.New(props.Line{Thickness: 0.5})),
			col.New(30),
		)
	}

	c := col.New(100)
	for _, l := range pt.Lines {
		c.Add(lineComponents(l)...)
	}
	if st := cellStyle(pt.Fill, pt.Border); st != nil {
		c.WithStyle(st)
	}
	return row.New(pt.Height).Add(c)
}

// tableRow una celda por columna; todas con borde, así quedan las reglas verticales y la horizontal.
func (r *MarotoOrderRenderer) tableRow(pt Part) core.Row {
	step := r.planner.Options().LineStep
	cols := make([]core.Col, 0, len(pt.Cells))
	for _, cell := range pt.Cells {
		c := col.New(cell.Percent)
		top := (pt.Height - float64(len(cell.Lines))*step) / 2
		for i, l := range cell.Lines {
			if l == "" {
				continue
			}
			tp := props.Text{
				Size:  pt.Size,
				Top:   top + float64(i)*step,
				Left:  r.planner.Options().CellPadding,
				Right: r.planner.Options().CellPadding,
				Align: align.Left,
			}
			if cell.Center {
				tp.Align = align.Center
				tp.Left, tp.Right = 0.5, 0.5
			}
			if cell.Bold {
				tp.Style = fontstyle.Bold
			}
			if cell.Color != nil {
				tp.Color = toColor(*cell.Color)
			}
			c.Add(text.New(l, tp))
		}
		if st := cellStyle(pt.Fill, pt.Border); st != nil {
			c.WithStyle(st)
		}
		cols = append(cols, c)
	}
	return row.New(pt.Height).Add(cols...)
}

func lineComponents(l Line) []core.Component {
	style := fontstyle.Normal
	if l.Bold {
		style = fontstyle.Bold
	}
	var out []core.Component
	if l.Label != "" {
		out = append(out, text.New(l.Label, props.Text{
			Size: l.Size, Top: l.Top, Left: l.Left, Style: fontstyle.Bold, Color: optColor(l.Color),
		}))
		if l.Text != "" {
			out = append(out, text.New(l.Text, props.Text{
				Size: l.Size, Top: l.Top, Left: l.Left + l.TextLeft, Style: style, Color: optColor(l.Color),
			}))
		}
		return out
	}
	if l.Text == "" {
		return nil
	}
	tp := props.Text{Size: l.Size, Top: l.Top, Left: l.Left, Style: style, Color: optColor(l.Color)}
	if l.Center {
		tp.Align = align.Center
	}
	return append(out, text.New(l.Text, tp))
}

func cellStyle(fill, borderColor *RGB) *props.Cell {
	if fill == nil && borderColor == nil {
		return nil
	}
	st := &props.Cell{}
	if fill != nil {
		st.BackgroundColor = toColor(*fill)
	}
	if borderColor != nil {
		st.BorderType = border.Full
		st.BorderColor = toColor(*borderColor)
		st.BorderThickness = 0.2
	}
	return st
}

func toColor(c RGB) *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

func optColor(c *RGB) *props.Color {
	if c == nil {
		return nil
	}
	return toColor(*c)
}

func imageExtension(format string) extension.Type {
	if format == entity.ImageFormatJPEG {
		return extension.Jpg
	}
	return extension.Png
}
