// Package storage archiva los PDFs generados en S3 o un servicio compatible (MinIO, R2).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/pkg/config"
)

const pdfContentType = "application/pdf"

// objectPutter subconjunto del cliente S3 que usa el archivo.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive sube cada PDF a {prefix}/{año}/{mes}/{archivo}.
type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Archive crea el cliente a partir de la configuración.
// Sin credenciales explícitas se usa la cadena por defecto del SDK (env, perfil, rol).
func NewS3Archive(ctx context.Context, cfg config.StorageConfig) (*S3Archive, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage: bucket requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración aws: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Archive(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Archive(client objectPutter, bucket, prefix string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Archive sube el documento y devuelve la clave del objeto.
func (a *S3Archive) Archive(ctx context.Context, doc *entity.Document, order entity.Order) (string, error) {
	if doc == nil || len(doc.Bytes) == 0 {
		return "", errors.New("storage: documento vacío")
	}
	key := a.Key(doc.Filename, order)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(doc.Bytes),
		ContentLength: aws.Int64(int64(len(doc.Bytes))),
		ContentType:   aws.String(pdfContentType),
		Metadata: map[string]string{
			"numero-ordem": order.Number,
			"status":       order.Status,
		},
	})
	if err != nil {
		return "", fmt.Errorf("storage: subir %s: %w", key, err)
	}
	return key, nil
}

// Key ruta del objeto; la fecha de la orden agrupa por año y mes.
func (a *S3Archive) Key(filename string, order entity.Order) string {
	parts := []string{}
	if a.prefix != "" {
		parts = append(parts, a.prefix)
	}
	if !order.Date.IsZero() {
		parts = append(parts, order.Date.Format("2006"), order.Date.Format("01"))
	}
	return path.Join(append(parts, filename)...)
}
