package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

// maxAssetBytes límite de tamaño de una imagen.
const maxAssetBytes = 5 << 20

// AssetLoader carga logo y firma desde archivo o URL http(s).
// Una imagen que no carga se omite del documento con un warning; nunca aborta la generación.
type AssetLoader struct {
	logoSource      string
	signatureSource string
	timeout         time.Duration
	client          *http.Client
	maxBytes        int64
	log             *logger.Logger

	mu    sync.Mutex
	cache map[string]*entity.Image
}

// NewAssetLoader construye el cargador. Una fuente vacía deja esa imagen deshabilitada.
func NewAssetLoader(logo, signature string, timeout time.Duration, log *logger.Logger) *AssetLoader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AssetLoader{
		logoSource:      strings.TrimSpace(logo),
		signatureSource: strings.TrimSpace(signature),
		timeout:         timeout,
		client:          &http.Client{Timeout: timeout},
		maxBytes:        maxAssetBytes,
		log:             log.Component("pdf_assets"),
		cache:           make(map[string]*entity.Image),
	}
}

// Load carga ambas imágenes en paralelo. Las cargas exitosas se cachean.
func (l *AssetLoader) Load(ctx context.Context) entity.DocumentAssets {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var assets entity.DocumentAssets
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		assets.Logo = l.get(ctx, "logo", l.logoSource)
		return nil
	})
	g.Go(func() error {
		assets.Signature = l.get(ctx, "signature", l.signatureSource)
		return nil
	})
	_ = g.Wait()
	return assets
}

func (l *AssetLoader) get(ctx context.Context, name, source string) *entity.Image {
	if source == "" {
		return nil
	}
	l.mu.Lock()
	img, ok := l.cache[source]
	l.mu.Unlock()
	if ok {
		return img
	}

	img, err := l.fetch(ctx, source)
	if err != nil {
		l.log.Warn().Err(err).Str("asset", name).Str("source", source).Msg("imagen omitida del documento")
		return nil
	}
	l.mu.Lock()
	l.cache[source] = img
	l.mu.Unlock()
	return img
}

func (l *AssetLoader) fetch(ctx context.Context, source string) (*entity.Image, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.download(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("imagen %s supera %d bytes", source, l.maxBytes)
	}
	return DecodeImage(source, data)
}

func (l *AssetLoader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("descarga %s: status %d", url, resp.StatusCode)
	}
	// un byte de más para distinguir "justo en el límite" de "truncada"
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("descarga %s: supera %d bytes", url, l.maxBytes)
	}
	return data, nil
}

// DecodeImage decodifica la imagen completa (PNG o JPEG) y lee sus dimensiones.
// Un archivo con cabecera válida pero cuerpo truncado se rechaza.
func DecodeImage(source string, data []byte) (*entity.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("imagen vacía")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decodificar imagen: %w", err)
	}
	bounds := img.Bounds()
	switch format {
	case "png":
		format = entity.ImageFormatPNG
	case "jpeg":
		format = entity.ImageFormatJPEG
	default:
		return nil, fmt.Errorf("formato de imagen no soportado: %s", format)
	}
	return &entity.Image{
		Source: source,
		Data:   data,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
