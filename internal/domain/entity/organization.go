package entity

// Organization datos fijos de la empresa compradora: membrete, firmante y avisos.
// No provienen de la orden; son iguales en todos los documentos.
type Organization struct {
	LegalName   string
	TaxLine     string // CNPJ + IE
	Street      string
	CityLine    string // barrio, ciudad, CEP
	ContactLine string // teléfono + e-mail

	SignatureCity string // ciudad usada en la fecha de la firma
	SignerName    string
	SignerID      string // RG / CPF
	SignerTitle   string

	DefaultDeliveryLocation string
	InvoiceEmail            string // destino de la NF-e (XML)
}

// DefaultOrganization membrete de I.R. Comércio e Materiais Elétricos.
func DefaultOrganization() Organization {
	return Organization{
		LegalName:   "I.R. COMÉRCIO E MATERIAIS ELÉTRICOS LTDA",
		TaxLine:     "CNPJ: 33.149.502/0001-38  |  IE: 083.780.74-2",
		Street:      "RUA TADORNA Nº 472, SALA 2",
		CityLine:    "NOVO HORIZONTE - SERRA/ES  |  CEP: 29.163-318",
		ContactLine: "TELEFAX: (27) 3209-4291  |  E-MAIL: COMERCIAL.IRCOMERCIO@GMAIL.COM",

		SignatureCity: "Serra/ES",
		SignerName:    "Rosemeire Bicalho de Lima Gravino",
		SignerID:      "MG-10.078.568 / CPF: 045.160.616-78",
		SignerTitle:   "Diretora",

		DefaultDeliveryLocation: "RUA TADORNA Nº 472, SALA 2, NOVO HORIZONTE - SERRA/ES  |  CEP: 29.163-318",
		InvoiceEmail:            "FINANCEIRO.IRCOMERCIO@GMAIL.COM",
	}
}
