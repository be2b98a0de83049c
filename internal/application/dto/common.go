package dto

// ErrorResponse cuerpo de error HTTP. CamposFaltando lista los campos obligatorios ausentes.
type ErrorResponse struct {
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	CamposFaltando []string `json:"campos_faltando,omitempty"`
}
