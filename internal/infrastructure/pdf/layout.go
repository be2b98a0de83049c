package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/config"
	"github.com/jhoicas/ordem-compra/pkg/currency"
)

// BlockKind identifica cada sección del documento.
type BlockKind string

const (
	BlockHeading      BlockKind = "heading"
	BlockBillingParty BlockKind = "billing_party"
	BlockSupplier     BlockKind = "supplier"
	BlockItemsTitle   BlockKind = "items_title"
	BlockTableHeader  BlockKind = "table_header"
	BlockItemRow      BlockKind = "item_row"
	BlockOrderTotal   BlockKind = "order_total"
	BlockDelivery     BlockKind = "delivery"
	BlockTerms        BlockKind = "terms"
	BlockPayment      BlockKind = "payment"
	BlockSignature    BlockKind = "signature"
	BlockNotice       BlockKind = "notice"
)

// RGB color de relleno, borde o texto.
type RGB struct{ R, G, B int }

// Paleta del documento.
var (
	colorHeaderFill = RGB{108, 117, 125}
	colorZebra      = RGB{240, 240, 240}
	colorWhite      = RGB{255, 255, 255}
	colorBorder     = RGB{200, 200, 200}
	colorNoticeFill = RGB{240, 240, 240}
	colorNoticeHead = RGB{204, 112, 0}
)

// Geometry página y márgenes en mm. BottomMargin es el umbral de salto de página.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	LeftMargin   float64
	RightMargin  float64
	TopMargin    float64
	BottomMargin float64
}

// ContentWidth ancho útil entre márgenes.
func (g Geometry) ContentWidth() float64 { return g.PageWidth - g.LeftMargin - g.RightMargin }

// Limit y máximo antes del cual debe terminar cada bloque.
func (g Geometry) Limit() float64 { return g.PageHeight - g.BottomMargin }

// Options constantes de presentación.
type Options struct {
	Geometry     Geometry
	TaxColumns   bool    // columnas IPI y ST
	MinRowHeight float64 // alto mínimo de una fila de ítems
	LineStep     float64 // alto por línea de descripción
	RowPadding   float64 // relleno vertical total de una fila
	CellPadding  float64 // relleno horizontal a cada lado de la celda
	BodySize     float64 // pt
	TableSize    float64 // pt
	LogoHeight   float64
	SignatureBox float64 // alto reservado para la firma
}

// DefaultOptions A4 con márgenes de 15 mm y umbral inferior de 20 mm.
func DefaultOptions() Options {
	return Options{
		Geometry: Geometry{
			PageWidth: 210, PageHeight: 297,
			LeftMargin: 15, RightMargin: 15, TopMargin: 15,
			BottomMargin: 20,
		},
		TaxColumns:   true,
		MinRowHeight: 10,
		LineStep:     4,
		RowPadding:   4,
		CellPadding:  3,
		BodySize:     10,
		TableSize:    9,
		LogoHeight:   18,
		SignatureBox: 20,
	}
}

// OptionsFromConfig aplica margen inferior y columnas de impuestos configurados.
func OptionsFromConfig(cfg config.PDFConfig, taxColumns bool) Options {
	o := DefaultOptions()
	if cfg.BottomMargin > 0 {
		o.Geometry.BottomMargin = cfg.BottomMargin
	}
	o.TaxColumns = taxColumns
	return o
}

// Line texto posicionado dentro de una parte. Si Label no es vacío se imprime en negrita
// y Text empieza TextLeft mm más a la derecha.
type Line struct {
	Label    string
	Text     string
	Top      float64
	Left     float64
	TextLeft float64
	Size     float64
	Bold     bool
	Center   bool
	Color    *RGB
}

// Cell celda de una fila de tabla.
type Cell struct {
	Percent int // sobre grid de 100
	Lines   []string
	Center  bool
	Bold    bool
	Color   *RGB
}

// Part una fila física del documento (un row de maroto).
type Part struct {
	Height float64
	Lines  []Line
	Image  *entity.Image // centrada en la parte
	Rule   bool          // línea horizontal centrada
	Cells  []Cell
	Fill   *RGB
	Border *RGB
	Size   float64 // pt del texto de las celdas
}

// Block sección indivisible: nunca se parte entre páginas.
type Block struct {
	Kind   BlockKind
	Gap    float64 // espacio previo; se descarta al inicio de página
	Top    float64 // y asignado por el planificador
	Height float64
	Parts  []Part
	Item   int // índice 0-based del ítem (solo BlockItemRow)
}

// Page bloques de una página, en orden.
type Page struct {
	Blocks []Block
}

// Layout resultado del planificador.
type Layout struct {
	Pages []Page
}

// Kinds secuencia de tipos por página (útil para depurar y en tests).
func (l Layout) Kinds() [][]BlockKind {
	out := make([][]BlockKind, len(l.Pages))
	for i, p := range l.Pages {
		for _, b := range p.Blocks {
			out[i] = append(out[i], b.Kind)
		}
	}
	return out
}

// Planner calcula la paginación de una orden. Es puro: misma entrada, mismo Layout.
type Planner struct {
	opts Options
	m    Measurer
}

// NewPlanner construye el planificador.
func NewPlanner(opts Options, m Measurer) *Planner {
	return &Planner{opts: opts, m: m}
}

// Options devuelve las opciones en uso.
func (p *Planner) Options() Options { return p.opts }

// cursor posición vertical y páginas emitidas.
type cursor struct {
	g     Geometry
	pages []Page
	y     float64
}

func (c *cursor) newPage() {
	c.pages = append(c.pages, Page{})
	c.y = c.g.TopMargin
}

func (c *cursor) lastKind() BlockKind {
	if c.atTop() {
		return ""
	}
	blocks := c.pages[len(c.pages)-1].Blocks
	return blocks[len(blocks)-1].Kind
}

func (c *cursor) atTop() bool {
	return len(c.pages) == 0 || len(c.pages[len(c.pages)-1].Blocks) == 0
}

// fits indica si height (más el gap, salvo al inicio de página) entra en la página actual.
func (c *cursor) fits(gap, height float64) bool {
	if c.atTop() {
		gap = 0
	}
	return c.y+gap+height <= c.g.Limit()
}

// place agrega el bloque, abriendo página si no entra. Un bloque más alto que la página
// se coloca igual al inicio de una página nueva.
func (c *cursor) place(b Block) {
	if len(c.pages) == 0 {
		c.newPage()
	}
	if !c.fits(b.Gap, b.Height) && !c.atTop() {
		c.newPage()
	}
	if c.atTop() {
		b.Gap = 0
	}
	b.Top = c.y + b.Gap
	c.pages[len(c.pages)-1].Blocks = append(c.pages[len(c.pages)-1].Blocks, b)
	c.y = b.Top + b.Height
}

// Plan distribuye todos los bloques de la orden en páginas.
func (p *Planner) Plan(o entity.Order, org entity.Organization, assets entity.DocumentAssets) Layout {
	c := &cursor{g: p.opts.Geometry}

	c.place(p.heading(o, assets.Logo))
	c.place(p.billingParty(org))
	c.place(p.supplier(o.Supplier))

	header := p.tableHeader()
	title := p.itemsTitle()
	rows := make([]Block, len(o.Items))
	for i, it := range o.Items {
		rows[i] = p.itemRow(i, it)
	}
	// título + cabecera no quedan huérfanos al pie de la página
	keep := title.Gap + title.Height + header.Gap + header.Height
	if len(rows) > 0 {
		keep += min(rows[0].Height, p.RowHeight(1))
	}
	if !c.fits(0, keep) {
		c.newPage()
	}
	c.place(title)
	c.place(header)
	for _, r := range rows {
		if !c.fits(r.Gap, r.Height) && c.lastKind() != BlockTableHeader {
			c.newPage()
			c.place(header)
		}
		// una fila más alta que la página se recorta bajo la cabecera repetida
		if !c.fits(r.Gap, r.Height) {
			r = p.clipRow(r, c.g.Limit()-c.y-r.Gap)
		}
		c.place(r)
	}

	c.place(p.orderTotal(o))
	c.place(p.delivery(o, org))
	c.place(p.terms(o))
	c.place(p.payment(o))
	c.place(p.signature(o, org, assets.Signature))
	c.place(p.notice(o, org))

	return Layout{Pages: c.pages}
}

// ── Bloques ──────────────────────────────────────────────────────────────────

// lineHeight alto de una línea de texto de size pt.
func lineHeight(size float64) float64 { return size * 0.45 }

// textPart apila líneas; cada una avanza según su tamaño.
func textPart(lines []Line, padding float64) Part {
	y := padding
	for i := range lines {
		lines[i].Top = y
		y += lineHeight(lines[i].Size)
	}
	return Part{Height: y + padding, Lines: lines}
}

func blockOf(kind BlockKind, gap float64, parts ...Part) Block {
	b := Block{Kind: kind, Gap: gap, Parts: parts}
	for _, pt := range parts {
		b.Height += pt.Height
	}
	return b
}

func (p *Planner) heading(o entity.Order, logo *entity.Image) Block {
	var parts []Part
	if logo != nil {
		parts = append(parts, Part{Height: p.opts.LogoHeight, Image: logo})
	}
	parts = append(parts, textPart([]Line{
		{Text: "ORDEM DE COMPRA", Size: 18, Bold: true, Center: true},
		{Text: "Nº " + o.Number, Size: 14, Bold: true, Center: true},
	}, 1))
	return blockOf(BlockHeading, 0, parts...)
}

func (p *Planner) billingParty(org entity.Organization) Block {
	s := p.opts.BodySize
	lines := []Line{
		{Text: "DADOS PARA FATURAMENTO", Size: s + 1, Bold: true},
		{Text: org.LegalName, Size: s, Bold: true},
	}
	for _, l := range []string{org.TaxLine, org.Street, org.CityLine, org.ContactLine} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, p.wrapped(l, s, 0)...)
		}
	}
	return blockOf(BlockBillingParty, 6, textPart(lines, 0.5))
}

func (p *Planner) supplier(s entity.Supplier) Block {
	size := p.opts.BodySize
	lines := []Line{
		{Text: "DADOS DO FORNECEDOR", Size: size + 1, Bold: true},
		{Text: s.LegalName, Size: size, Bold: true},
	}
	pairs := []struct{ label, value string }{
		{"Nome Fantasia:", s.TradeName},
		{"CNPJ:", s.TaxID},
		{"Endereço:", s.Address},
		{"Site:", s.Site},
		{"Contato:", s.Contact},
		{"Telefone:", s.Phone},
		{"E-mail:", s.Email},
	}
	for _, pr := range pairs {
		lines = append(lines, p.pair(pr.label, pr.value, size, 0, p.opts.Geometry.ContentWidth())...)
	}
	return blockOf(BlockSupplier, 6, textPart(lines, 0.5))
}

func (p *Planner) itemsTitle() Block {
	return blockOf(BlockItemsTitle, 6, textPart([]Line{
		{Text: "ITENS DO PEDIDO", Size: p.opts.BodySize + 1, Bold: true},
	}, 0.5))
}

// tableColumns porcentajes del ancho útil por columna.
func (p *Planner) tableColumns() ([]string, []int) {
	if p.opts.TaxColumns {
		return []string{"ITEM", "ESPECIFICAÇÃO", "QTD", "UNID", "VALOR UN", "IPI", "ST", "TOTAL"},
			[]int{5, 35, 8, 8, 12, 10, 10, 12}
	}
	return []string{"ITEM", "ESPECIFICAÇÃO", "QTD", "UNID", "VALOR UN", "TOTAL"},
		[]int{5, 44, 10, 10, 15, 16}
}

func (p *Planner) tableHeader() Block {
	labels, pcts := p.tableColumns()
	cells := make([]Cell, len(labels))
	for i, l := range labels {
		cells[i] = Cell{Percent: pcts[i], Lines: []string{l}, Center: true, Bold: true, Color: &colorWhite}
	}
	fill, border := colorHeaderFill, colorBorder
	return blockOf(BlockTableHeader, 1, Part{
		Height: p.opts.MinRowHeight,
		Cells:  cells,
		Fill:   &fill,
		Border: &border,
		Size:   p.opts.TableSize,
	})
}

// descriptionWidth ancho disponible para el texto de la especificación.
func (p *Planner) descriptionWidth() float64 {
	_, pcts := p.tableColumns()
	return p.opts.Geometry.ContentWidth()*float64(pcts[1])/100 - 2*p.opts.CellPadding
}

// RowHeight alto de la fila según las líneas de la descripción.
func (p *Planner) RowHeight(lines int) float64 {
	h := float64(lines)*p.opts.LineStep + p.opts.RowPadding
	if h < p.opts.MinRowHeight {
		return p.opts.MinRowHeight
	}
	return h
}

func (p *Planner) itemRow(idx int, it entity.LineItem) Block {
	desc := wrapText(p.m, it.Description, p.descriptionWidth(), p.opts.TableSize, false)
	values := []string{
		fmt.Sprint(it.Sequence),
		"",
		strings.Replace(it.Quantity.String(), ".", ",", 1),
		it.Unit,
		currency.Format(it.UnitPrice),
	}
	if p.opts.TaxColumns {
		values = append(values, dash(it.TaxNote1), dash(it.TaxNote2))
	}
	values = append(values, it.LineTotal)

	_, pcts := p.tableColumns()
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Cell{Percent: pcts[i], Lines: []string{v}, Center: true}
	}
	cells[1] = Cell{Percent: pcts[1], Lines: desc}

	border := colorBorder
	part := Part{
		Height: p.RowHeight(len(desc)),
		Cells:  cells,
		Border: &border,
		Size:   p.opts.TableSize,
	}
	if idx%2 == 1 {
		zebra := colorZebra
		part.Fill = &zebra
	}
	b := blockOf(BlockItemRow, 0, part)
	b.Item = idx
	return b
}

// clipRow deja en la descripción solo las líneas que entran en avail mm y marca
// la última con "…".
func (p *Planner) clipRow(b Block, avail float64) Block {
	n := int((avail - p.opts.RowPadding) / p.opts.LineStep)
	if n < 1 {
		n = 1
	}
	part := b.Parts[0]
	desc := part.Cells[1].Lines
	if n >= len(desc) {
		return b
	}
	cells := append([]Cell(nil), part.Cells...)
	lines := append([]string(nil), desc[:n]...)
	lines[n-1] = p.withEllipsis(lines[n-1])
	cells[1].Lines = lines

	part.Cells = cells
	part.Height = p.RowHeight(n)
	b.Parts = []Part{part}
	b.Height = part.Height
	return b
}

const ellipsis = "…"

func (p *Planner) withEllipsis(s string) string {
	w := p.descriptionWidth()
	r := []rune(strings.TrimRight(s, " "))
	for len(r) > 0 && p.m.TextWidth(string(r)+ellipsis, p.opts.TableSize, false) > w {
		r = r[:len(r)-1]
	}
	return strings.TrimRight(string(r), " ") + ellipsis
}

func (p *Planner) orderTotal(o entity.Order) Block {
	s := p.opts.BodySize + 1
	return blockOf(BlockOrderTotal, 8, textPart([]Line{p.labeled("VALOR TOTAL:", o.Total, s, 0, true)}, 0.5))
}

func (p *Planner) delivery(o entity.Order, org entity.Organization) Block {
	s := p.opts.BodySize
	loc := strings.TrimSpace(o.DeliveryLocation)
	if loc == "" {
		loc = org.DefaultDeliveryLocation
	}
	lines := []Line{{Text: "LOCAL DE ENTREGA:", Size: s, Bold: true}}
	lines = append(lines, p.wrapped(loc, s, 0)...)
	return blockOf(BlockDelivery, 5, textPart(lines, 0.5))
}

func (p *Planner) terms(o entity.Order) Block {
	s := p.opts.BodySize
	w := p.opts.Geometry.ContentWidth()
	deadline := p.labeled("PRAZO DE ENTREGA:", dash(o.DeliveryTerm), s, 0, false)
	freight := p.labeled("FRETE:", dash(o.Freight), s, w*0.6, false)

	part := textPart([]Line{deadline}, 0.5)
	// frete en la misma línea, a la derecha
	freight.Top = part.Lines[0].Top
	part.Lines = append(part.Lines, freight)

	if t := strings.TrimSpace(o.Transport); t != "" {
		extra := p.pair("TRANSPORTE:", t, s, 0, w)
		y := part.Height - 0.5
		for i := range extra {
			extra[i].Top = y
			y += lineHeight(extra[i].Size)
		}
		part.Lines = append(part.Lines, extra...)
		part.Height = y + 0.5
	}
	return blockOf(BlockTerms, 5, part)
}

func (p *Planner) payment(o entity.Order) Block {
	s := p.opts.BodySize
	w := p.opts.Geometry.ContentWidth()
	lines := []Line{{Text: "CONDIÇÕES DE PAGAMENTO:", Size: s, Bold: true}}
	lines = append(lines, p.pair("Forma:", o.PaymentMethod, s, 0, w)...)
	lines = append(lines, p.pair("Prazo:", o.PaymentTerm, s, 0, w)...)
	if bank := strings.TrimSpace(o.BankDetails); bank != "" {
		lines = append(lines, Line{Text: "Dados Bancários:", Size: s, Bold: true})
		lines = append(lines, p.wrapped(bank, s, 0)...)
	}
	return blockOf(BlockPayment, 5, textPart(lines, 0.5))
}

func (p *Planner) signature(o entity.Order, org entity.Organization, img *entity.Image) Block {
	date := textPart([]Line{
		{Text: SignatureDate(org.SignatureCity, o.Date), Size: 10, Center: true},
	}, 0.5)
	space := Part{Height: p.opts.SignatureBox, Image: img}
	rule := Part{Height: 2, Rule: true}
	signer := textPart([]Line{
		{Text: org.SignerName, Size: 10, Bold: true, Center: true},
		{Text: org.SignerID, Size: 9, Center: true},
		{Text: org.SignerTitle, Size: 9, Center: true},
	}, 0.5)
	return blockOf(BlockSignature, 12, date, space, rule, signer)
}

func (p *Planner) notice(o entity.Order, org entity.Organization) Block {
	inner := p.opts.Geometry.ContentWidth() - 10
	lines := []Line{{Text: "ATENÇÃO SR. FORNECEDOR:", Size: 10, Bold: true, Left: 5, Color: &colorNoticeHead}}
	for _, l := range []string{
		"1) GENTILEZA MENCIONAR NA NOTA FISCAL O Nº " + o.Number,
		"2) FAVOR ENVIAR A NOTA FISCAL ELETRÔNICA (ARQUIVO .XML) PARA: " + org.InvoiceEmail,
	} {
		for _, w := range wrapText(p.m, l, inner, 9, false) {
			lines = append(lines, Line{Text: w, Size: 9, Left: 5})
		}
	}
	part := textPart(lines, 3)
	fill, border := colorNoticeFill, colorBorder
	part.Fill, part.Border = &fill, &border
	return blockOf(BlockNotice, 8, part)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// wrapped texto libre partido al ancho útil.
func (p *Planner) wrapped(s string, size, left float64) []Line {
	var out []Line
	for _, l := range wrapText(p.m, s, p.opts.Geometry.ContentWidth()-left, size, false) {
		out = append(out, Line{Text: l, Size: size, Left: left})
	}
	return out
}

// labeled etiqueta en negrita y valor en la misma línea.
func (p *Planner) labeled(label, value string, size, left float64, boldValue bool) Line {
	return Line{
		Label:    label,
		Text:     value,
		Size:     size,
		Left:     left,
		TextLeft: p.m.TextWidth(label, size, true) + 1.5,
		Bold:     boldValue,
	}
}

// pair etiqueta + valor; valor vacío → sin líneas. Las continuaciones quedan alineadas con el valor.
func (p *Planner) pair(label, value string, size, left, width float64) []Line {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	first := p.labeled(label, "", size, left, false)
	parts := wrapText(p.m, value, width-left-first.TextLeft, size, false)
	first.Text = parts[0]
	out := []Line{first}
	for _, rest := range parts[1:] {
		out = append(out, Line{Text: rest, Size: size, Left: left + first.TextLeft})
	}
	return out
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// SignatureDate "Serra/ES, 5 de Março de 2024".
func SignatureDate(city string, d time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", city, d.Day(), monthNames[d.Month()-1], d.Year())
}
