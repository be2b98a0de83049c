package pdf

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Measurer mide el ancho (mm) de un texto en la fuente del documento.
type Measurer interface {
	TextWidth(s string, size float64, bold bool) float64
}

// FPDFMeasurer usa las métricas de Helvetica de gofpdf, la misma fuente core que dibuja maroto.
// Las fuentes core indexan el ancho por byte Windows-1252, así que el texto se recodifica antes de medir.
type FPDFMeasurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	enc *encoding.Encoder
}

// NewFPDFMeasurer construye el medidor (sin páginas; solo se consulta la tabla de anchos).
func NewFPDFMeasurer() *FPDFMeasurer {
	return &FPDFMeasurer{
		pdf: gofpdf.New("P", "mm", "A4", ""),
		enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
}

// TextWidth ancho en mm de s con Helvetica al tamaño size (pt).
func (m *FPDFMeasurer) TextWidth(s string, size float64, bold bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	style := ""
	if bold {
		style = "B"
	}
	m.pdf.SetFont("Helvetica", style, size)
	encoded, err := m.enc.String(s)
	if err != nil {
		encoded = s
	}
	return m.pdf.GetStringWidth(encoded)
}

// wrapText parte s en líneas que no superan width, cortando en espacios.
// Una palabra más ancha que la línea se corta por caracteres. Los saltos de línea explícitos se respetan.
// Siempre devuelve al menos una línea.
func wrapText(m Measurer, s string, width, size float64, bold bool) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := ""
		for _, w := range words {
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if m.TextWidth(candidate, size, bold) <= width {
				cur = candidate
				continue
			}
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			// palabra sola más ancha que la línea
			for m.TextWidth(w, size, bold) > width && utf8.RuneCountInString(w) > 1 {
				head := fitPrefix(m, w, width, size, bold)
				out = append(out, head)
				w = w[len(head):]
			}
			cur = w
		}
		out = append(out, cur)
	}
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// fitPrefix prefijo más largo de w (al menos un carácter) que entra en width.
func fitPrefix(m Measurer, w string, width, size float64, bold bool) string {
	end := 0
	for i, r := range w {
		next := i + utf8.RuneLen(r)
		if end > 0 && m.TextWidth(w[:next], size, bold) > width {
			break
		}
		end = next
	}
	return w[:end]
}
