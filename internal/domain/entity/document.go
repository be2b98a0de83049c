package entity

// Formatos de imagen aceptados en el documento.
const (
	ImageFormatPNG  = "png"
	ImageFormatJPEG = "jpeg"
)

// Image imagen ya descargada y validada (logo o firma).
type Image struct {
	Source string
	Data   []byte
	Format string // png | jpeg
	Width  int    // px
	Height int    // px
}

// AspectRatio alto/ancho; 0 si las dimensiones no se conocen.
func (i *Image) AspectRatio() float64 {
	if i == nil || i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	return float64(i.Height) / float64(i.Width)
}

// DocumentAssets imágenes opcionales del documento; nil = se omite.
type DocumentAssets struct {
	Logo      *Image
	Signature *Image
}

// Document PDF generado.
type Document struct {
	Bytes    []byte
	Filename string
	Pages    int
}
