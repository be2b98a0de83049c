package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/config"
)

// fixedMeasurer cada rune mide size*0.2 mm.
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(s string, size float64, _ bool) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.2
}

func newTestPlanner(opts Options) *Planner {
	return NewPlanner(opts, fixedMeasurer{})
}

func sampleOrder(items int, desc string) entity.Order {
	o := entity.Order{
		Number:      "1250",
		Responsible: "Carlos",
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Supplier: entity.Supplier{
			LegalName: "ACME LTDA",
			TaxID:     "12.345.678/0001-90",
			Phone:     "(27) 3333-4444",
		},
		Total:         "R$ 0,00",
		PaymentMethod: "Boleto",
		PaymentTerm:   "30 dias",
		Status:        entity.OrderStatusOpen,
	}
	for i := 0; i < items; i++ {
		o.Items = append(o.Items, entity.LineItem{
			Sequence:    i + 1,
			Description: desc,
			Quantity:    decimal.NewFromInt(2),
			Unit:        "UN",
			UnitPrice:   decimal.RequireFromString("10.5"),
			LineTotal:   "R$ 21,00",
		})
	}
	return o
}

func flatKinds(l Layout) []BlockKind {
	var out []BlockKind
	for _, ks := range l.Kinds() {
		out = append(out, ks...)
	}
	return out
}

// assertWellFormed bloques ordenados, sin solaparse y dentro del umbral inferior.
func assertWellFormed(t *testing.T, l Layout, g Geometry) {
	t.Helper()
	for pi, pg := range l.Pages {
		require.NotEmpty(t, pg.Blocks, "página %d vacía", pi)
		assert.InDelta(t, g.TopMargin, pg.Blocks[0].Top, 1e-9, "página %d: el primer bloque no lleva gap", pi)
		y := g.TopMargin
		for _, b := range pg.Blocks {
			assert.GreaterOrEqual(t, b.Top, y)
			assert.LessOrEqual(t, b.Top+b.Height, g.Limit()+1e-9, "página %d: %s supera el margen", pi, b.Kind)
			y = b.Top + b.Height
		}
	}
}

func itemRows(l Layout) []int {
	var out []int
	for _, pg := range l.Pages {
		for _, b := range pg.Blocks {
			if b.Kind == BlockItemRow {
				out = append(out, b.Item)
			}
		}
	}
	return out
}

func TestPlan_OrdenDeSecciones(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	l := p.Plan(sampleOrder(2, "Cabo flexível 2,5mm"), entity.DefaultOrganization(), entity.DocumentAssets{})

	assert.Equal(t, []BlockKind{
		BlockHeading, BlockBillingParty, BlockSupplier,
		BlockItemsTitle, BlockTableHeader, BlockItemRow, BlockItemRow,
		BlockOrderTotal, BlockDelivery, BlockTerms, BlockPayment, BlockSignature, BlockNotice,
	}, flatKinds(l))
	assertWellFormed(t, l, p.Options().Geometry)
}

func TestPlan_MuchosItemsRepiteCabecera(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	l := p.Plan(sampleOrder(60, "Disjuntor bipolar 40A"), entity.DefaultOrganization(), entity.DocumentAssets{})

	require.Greater(t, len(l.Pages), 1)
	assertWellFormed(t, l, p.Options().Geometry)

	rows := itemRows(l)
	require.Len(t, rows, 60)
	for i, idx := range rows {
		assert.Equal(t, i, idx, "las filas conservan el orden")
	}

	// toda página con filas que no sea la primera de la tabla arranca con la cabecera
	firstTablePage := -1
	for pi, pg := range l.Pages {
		hasRow := false
		for _, b := range pg.Blocks {
			if b.Kind == BlockItemRow {
				hasRow = true
			}
		}
		if !hasRow {
			continue
		}
		if firstTablePage < 0 {
			firstTablePage = pi
			continue
		}
		assert.Equal(t, BlockTableHeader, pg.Blocks[0].Kind, "página %d", pi)
	}
}

func TestPlan_FilaNuncaSeParte(t *testing.T) {
	long := strings.Repeat("especificação técnica detalhada ", 12)
	p := newTestPlanner(DefaultOptions())
	l := p.Plan(sampleOrder(25, long), entity.DefaultOrganization(), entity.DocumentAssets{})

	assertWellFormed(t, l, p.Options().Geometry)
	for _, pg := range l.Pages {
		for _, b := range pg.Blocks {
			if b.Kind == BlockItemRow {
				require.Len(t, b.Parts, 1)
				assert.Greater(t, b.Height, p.Options().MinRowHeight)
			}
		}
	}
}

func TestPlan_FilaMasAltaQueLaPagina(t *testing.T) {
	huge := strings.Repeat("palavra ", 3000)
	p := newTestPlanner(DefaultOptions())
	l := p.Plan(sampleOrder(1, huge), entity.DefaultOrganization(), entity.DocumentAssets{})

	var row *Block
	for _, pg := range l.Pages {
		for i, b := range pg.Blocks {
			if b.Kind == BlockItemRow {
				require.Greater(t, i, 0)
				assert.Equal(t, BlockTableHeader, pg.Blocks[i-1].Kind)
				row = &pg.Blocks[i]
			}
		}
	}
	require.NotNil(t, row)
	assertWellFormed(t, l, DefaultOptions().Geometry)
	assert.Equal(t, BlockNotice, flatKinds(l)[len(flatKinds(l))-1])

	// la descripción se recorta y la última línea visible lleva la marca de continuación
	full := wrapText(fixedMeasurer{}, huge, p.descriptionWidth(), p.opts.TableSize, false)
	desc := row.Parts[0].Cells[1].Lines
	require.NotEmpty(t, desc)
	assert.Less(t, len(desc), len(full))
	assert.True(t, strings.HasSuffix(desc[len(desc)-1], "…"))
	assert.LessOrEqual(t, fixedMeasurer{}.TextWidth(desc[len(desc)-1], p.opts.TableSize, false), p.descriptionWidth())
	assert.Equal(t, p.RowHeight(len(desc)), row.Height)
	assert.Equal(t, row.Height, row.Parts[0].Height)
}

func TestPlan_FilaAltaRecortadaTrasOtrasFilas(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	o := sampleOrder(3, "Tomada 10A")
	o.Items[2].Description = strings.Repeat("cabo flexível ", 1500)
	l := p.Plan(o, entity.DefaultOrganization(), entity.DocumentAssets{})

	assertWellFormed(t, l, DefaultOptions().Geometry)
	assert.Equal(t, []int{0, 1, 2}, itemRows(l))
	for _, pg := range l.Pages {
		for i, b := range pg.Blocks {
			if b.Kind == BlockItemRow && b.Item == 2 {
				assert.Equal(t, BlockTableHeader, pg.Blocks[i-1].Kind)
				lines := b.Parts[0].Cells[1].Lines
				assert.True(t, strings.HasSuffix(lines[len(lines)-1], "…"))
			}
		}
	}
}

func TestPlan_SinItemsSoloCabecera(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	l := p.Plan(sampleOrder(0, ""), entity.DefaultOrganization(), entity.DocumentAssets{})

	kinds := flatKinds(l)
	assert.Contains(t, kinds, BlockTableHeader)
	assert.NotContains(t, kinds, BlockItemRow)
}

func blockLines(l Layout, kind BlockKind) []Line {
	var out []Line
	for _, pg := range l.Pages {
		for _, b := range pg.Blocks {
			if b.Kind != kind {
				continue
			}
			for _, pt := range b.Parts {
				out = append(out, pt.Lines...)
			}
		}
	}
	return out
}

func TestPlan_ProveedorOmiteCamposVacios(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	o := sampleOrder(1, "x")

	labels := func(o entity.Order) []string {
		var out []string
		for _, ln := range blockLines(p.Plan(o, entity.DefaultOrganization(), entity.DocumentAssets{}), BlockSupplier) {
			if ln.Label != "" {
				out = append(out, ln.Label)
			}
		}
		return out
	}

	assert.NotContains(t, labels(o), "Nome Fantasia:")
	assert.Contains(t, labels(o), "CNPJ:")
	assert.NotContains(t, labels(o), "E-mail:")

	o.Supplier.TradeName = "ACME"
	assert.Contains(t, labels(o), "Nome Fantasia:")
}

func TestPlan_LocalDeEntregaPorDefecto(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	org := entity.DefaultOrganization()
	org.DefaultDeliveryLocation = "DEPÓSITO CENTRAL"

	o := sampleOrder(1, "x")
	texts := func() string {
		var sb strings.Builder
		for _, ln := range blockLines(p.Plan(o, org, entity.DocumentAssets{}), BlockDelivery) {
			sb.WriteString(ln.Text + "|")
		}
		return sb.String()
	}
	assert.Contains(t, texts(), "DEPÓSITO CENTRAL")

	o.DeliveryLocation = "OBRA 12"
	assert.Contains(t, texts(), "OBRA 12")
	assert.NotContains(t, texts(), "DEPÓSITO CENTRAL")
}

func TestPlan_SinColumnasDeImpuestos(t *testing.T) {
	opts := DefaultOptions()
	opts.TaxColumns = false
	p := newTestPlanner(opts)
	l := p.Plan(sampleOrder(1, "x"), entity.DefaultOrganization(), entity.DocumentAssets{})

	for _, pg := range l.Pages {
		for _, b := range pg.Blocks {
			if b.Kind == BlockTableHeader || b.Kind == BlockItemRow {
				cells := b.Parts[0].Cells
				require.Len(t, cells, 6)
				total := 0
				for _, c := range cells {
					total += c.Percent
				}
				assert.Equal(t, 100, total)
			}
		}
	}
}

func TestPlan_ValoresDeLaFila(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	o := sampleOrder(1, "x")
	o.Items[0].Quantity = decimal.RequireFromString("2.5")
	o.Items[0].TaxNote1 = "5%"
	l := p.Plan(o, entity.DefaultOrganization(), entity.DocumentAssets{})

	for _, pg := range l.Pages {
		for _, b := range pg.Blocks {
			if b.Kind != BlockItemRow {
				continue
			}
			var got []string
			for _, c := range b.Parts[0].Cells {
				got = append(got, c.Lines[0])
			}
			assert.Equal(t, []string{"1", "x", "2,5", "UN", "R$ 10,50", "5%", "-", "R$ 21,00"}, got)
		}
	}
}

func TestPlan_LogoAgregaParte(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	logo := &entity.Image{Data: []byte{1}, Format: entity.ImageFormatPNG}
	with := p.Plan(sampleOrder(1, "x"), entity.DefaultOrganization(), entity.DocumentAssets{Logo: logo})
	without := p.Plan(sampleOrder(1, "x"), entity.DefaultOrganization(), entity.DocumentAssets{})

	assert.Len(t, with.Pages[0].Blocks[0].Parts, 2)
	assert.Len(t, without.Pages[0].Blocks[0].Parts, 1)
	assert.InDelta(t, without.Pages[0].Blocks[0].Height+p.Options().LogoHeight, with.Pages[0].Blocks[0].Height, 1e-9)
}

func TestPlan_Determinista(t *testing.T) {
	p := newTestPlanner(DefaultOptions())
	o := sampleOrder(40, "Luminária LED 18W")
	assert.Equal(t, p.Plan(o, entity.DefaultOrganization(), entity.DocumentAssets{}),
		p.Plan(o, entity.DefaultOrganization(), entity.DocumentAssets{}))
}

func TestSignatureDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Serra/ES, 5 de Março de 2024", SignatureDate("Serra/ES", d))
	d = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Vitória/ES, 31 de Dezembro de 2023", SignatureDate("Vitória/ES", d))
}

func TestWrapText(t *testing.T) {
	m := fixedMeasurer{}
	// size 10 → 2 mm por rune; 20 mm = 10 runes
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrapText(m, "aaa bbb ccc", 20, 10, false))
	assert.Equal(t, []string{""}, wrapText(m, "", 20, 10, false))
	assert.Equal(t, []string{"abcdefghij", "klm"}, wrapText(m, "abcdefghijklm", 20, 10, false))
	assert.Equal(t, []string{"uno", "dos"}, wrapText(m, "uno\ndos\n\n", 20, 10, false))
	assert.Equal(t, []string{"uno", "", "dos"}, wrapText(m, "uno\n\ndos", 20, 10, false))
}

func TestFPDFMeasurer_AnchoCreceConElTexto(t *testing.T) {
	m := NewFPDFMeasurer()
	short := m.TextWidth("ABC", 10, false)
	long := m.TextWidth("ABCABC", 10, false)
	assert.Greater(t, short, 0.0)
	assert.InDelta(t, 2*short, long, 1e-6)
	assert.Greater(t, m.TextWidth("ABC", 10, true), short)
	assert.Greater(t, m.TextWidth("ÇÃO", 10, false), 0.0)
}

func TestFilename(t *testing.T) {
	o := entity.Order{Number: "2024/0013", Supplier: entity.Supplier{LegalName: "ACME LTDA"}}
	assert.Equal(t, "ACME LTDA-2024-0013.pdf", Filename(o))
}

func TestMarotoOrderRenderer_Render(t *testing.T) {
	r := NewMarotoOrderRenderer(NewPlanner(DefaultOptions(), NewFPDFMeasurer()))
	o := sampleOrder(45, "Eletroduto corrugado 3/4")

	doc, err := r.Render(context.Background(), o, entity.DefaultOrganization(), entity.DocumentAssets{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Bytes, []byte("%PDF")))
	assert.Equal(t, "ACME LTDA-1250.pdf", doc.Filename)
	assert.Greater(t, doc.Pages, 1)
}

func TestMarotoOrderRenderer_ContextoCancelado(t *testing.T) {
	r := NewMarotoOrderRenderer(NewPlanner(DefaultOptions(), fixedMeasurer{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Render(ctx, sampleOrder(1, "x"), entity.DefaultOrganization(), entity.DocumentAssets{})
	assert.ErrorIs(t, err, context.Canceled)
}

func ExampleSignatureDate() {
	fmt.Println(SignatureDate("Serra/ES", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	// Output: Serra/ES, 1 de Julho de 2024
}

func TestOptionsFromConfig(t *testing.T) {
	o := OptionsFromConfig(config.PDFConfig{BottomMargin: 25}, false)
	assert.Equal(t, 25.0, o.Geometry.BottomMargin)
	assert.False(t, o.TaxColumns)
	assert.Equal(t, 20.0, OptionsFromConfig(config.PDFConfig{}, true).Geometry.BottomMargin)
}
