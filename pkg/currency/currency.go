// Package currency formatea y parsea valores monetarios en texto (R$ 1.234,56).
//
// Todas las funciones de parseo son tolerantes: un texto inválido vale cero y nunca
// retornan error, para que una línea mal escrita no aborte la suma de una orden.
package currency

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrefix prefijo monetario usado en toda la aplicación.
const DefaultPrefix = "R$"

// Formatter convierte decimales a texto monetario, sin separador de miles ("R$ 1234,56").
type Formatter struct {
	Prefix string
}

// Default es el formato de las órdenes: prefijo R$, coma decimal, sin separador de miles.
var Default = Formatter{Prefix: DefaultPrefix}

// Format redondea a 2 decimales (half away from zero) y devuelve el texto monetario.
func (f Formatter) Format(v decimal.Decimal) string {
	out := strings.Replace(v.Round(2).StringFixed(2), ".", ",", 1)
	if f.Prefix == "" {
		return out
	}
	return f.Prefix + " " + out
}

// Parse lee un texto monetario generado por Format (o escrito a mano).
func (f Formatter) Parse(s string) decimal.Decimal {
	prefix := f.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, prefix, ""))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	return leadingDecimal(strings.ReplaceAll(s, " ", ""))
}

// Format atajo con el formato por defecto.
func Format(v decimal.Decimal) string { return Default.Format(v) }

// Parse atajo con el formato por defecto.
func Parse(s string) decimal.Decimal { return Default.Parse(s) }

// Zero texto de un total vacío ("R$ 0,00").
func Zero() string { return Default.Format(decimal.Zero) }

// ParseNumber interpreta un campo numérico libre (cantidad, precio unitario).
// Acepta punto o coma como separador decimal; si ambos aparecen, el último es el decimal.
// Igual que parseFloat, usa el prefijo numérico más largo ("12abc" → 12). Vacío o basura → 0.
func ParseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return leadingDecimal(s)
}

// FromFloat convierte un float64 tolerando NaN/Inf (→ 0).
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// leadingDecimal parsea el prefijo numérico válido más largo de s.
func leadingDecimal(s string) decimal.Decimal {
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s[:end], "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}
