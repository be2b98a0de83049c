package purchasing

import (
	"fmt"
	"strconv"
	"strings"
)

// Formatos de número de orden.
const (
	NumberFormatPlain = "plain" // "1250"
	NumberFormatYear  = "year"  // "2024-0013"
)

// Numbering configura la numeración de órdenes.
// Floor es el primer número cuando todavía no hay órdenes (en formato year, por año).
type Numbering struct {
	Format    string
	Floor     int
	Width     int    // dígitos del sufijo en formato year
	Separator string // separador año/sufijo en formato year
}

// DefaultNumbering numeración simple que arranca en 1250.
func DefaultNumbering() Numbering {
	return Numbering{Format: NumberFormatPlain, Floor: 1250, Width: 4, Separator: "-"}
}

// Next calcula el siguiente número a partir de los números existentes.
// Los números ilegibles (o de otro año, en formato year) se ignoran.
func (n Numbering) Next(existing []string, year int) string {
	if n.Format == NumberFormatYear {
		return n.nextYearScoped(existing, year)
	}
	maxN, found := 0, false
	for _, s := range existing {
		v, ok := leadingInt(s)
		if !ok {
			continue
		}
		if !found || v > maxN {
			maxN, found = v, true
		}
	}
	if !found {
		return strconv.Itoa(n.Floor)
	}
	return strconv.Itoa(maxN + 1)
}

func (n Numbering) nextYearScoped(existing []string, year int) string {
	sep := n.separator()
	maxN, found := 0, false
	for _, s := range existing {
		y, seq, ok := n.splitYearScoped(s)
		if !ok || y != year {
			continue
		}
		if !found || seq > maxN {
			maxN, found = seq, true
		}
	}
	next := n.Floor
	if found {
		next = maxN + 1
	}
	width := n.Width
	if width <= 0 {
		width = 4
	}
	return fmt.Sprintf("%d%s%0*d", year, sep, width, next)
}

// splitYearScoped separa "2024-0013" en (2024, 13).
func (n Numbering) splitYearScoped(s string) (year, seq int, ok bool) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, n.separator())
	if i <= 0 {
		return 0, 0, false
	}
	head, tail := s[:i], s[i+len(n.separator()):]
	if !allDigits(head) || !allDigits(tail) {
		return 0, 0, false
	}
	year, err1 := strconv.Atoi(head)
	seq, err2 := strconv.Atoi(tail)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return year, seq, true
}

func (n Numbering) separator() string {
	if n.Separator == "" {
		return "-"
	}
	return n.Separator
}

// LastNumber mayor número legible (formato plain) o 0 si no hay ninguno.
func LastNumber(existing []string) int {
	maxN := 0
	for _, s := range existing {
		if v, ok := leadingInt(s); ok && v > maxN {
			maxN = v
		}
	}
	return maxN
}

// leadingInt interpreta el prefijo entero de s, como parseInt ("2024-0005" → 2024).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if r >= '0' && r <= '9' {
			end = i + 1
			continue
		}
		if i == 0 && (r == '-' || r == '+') {
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NumberValue valor numérico de un número de orden (prefijo entero); ok=false si no es legible.
func NumberValue(s string) (int, bool) { return leadingInt(s) }
