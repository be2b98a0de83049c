package purchasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/memory"
)

type fakeRenderer struct {
	got    entity.Order
	assets entity.DocumentAssets
	err    error
}

func (f *fakeRenderer) Render(_ context.Context, o entity.Order, _ entity.Organization, a entity.DocumentAssets) (*entity.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got, f.assets = o, a
	return &entity.Document{Bytes: []byte("%PDF"), Filename: o.Number + ".pdf", Pages: 1}, nil
}

type fakeAssets struct{ logo *entity.Image }

func (f fakeAssets) Load(context.Context) entity.DocumentAssets {
	return entity.DocumentAssets{Logo: f.logo}
}

type fakeArchive struct {
	calls int
	err   error
}

func (f *fakeArchive) Archive(context.Context, *entity.Document, entity.Order) (string, error) {
	f.calls++
	return "k", f.err
}

func storedOrder(t *testing.T, repo *memory.OrderRepo) *entity.Order {
	t.Helper()
	o := &entity.Order{
		ID: "o1", Number: "1250", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Status: entity.OrderStatusOpen,
		Items: []entity.LineItem{
			{Description: "Cabo", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("6.67"), LineTotal: "R$ 999,00"},
		},
		Total: "R$ 999,00",
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestPDFUseCase_DownloadRecalculaYArchiva(t *testing.T) {
	repo := memory.NewOrderRepository()
	storedOrder(t, repo)
	r := &fakeRenderer{}
	arch := &fakeArchive{}
	logo := &entity.Image{Format: entity.ImageFormatPNG}
	uc := NewPDFUseCase(repo, r, fakeAssets{logo: logo}, arch, entity.DefaultOrganization(), nil)

	doc, err := uc.Download(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "1250.pdf", doc.Filename)
	assert.Equal(t, "R$ 20,01", r.got.Total)
	assert.Equal(t, "R$ 20,01", r.got.Items[0].LineTotal)
	assert.Same(t, logo, r.assets.Logo)
	assert.Equal(t, 1, arch.calls)
}

func TestPDFUseCase_ArchivoFallaNoRompe(t *testing.T) {
	repo := memory.NewOrderRepository()
	storedOrder(t, repo)
	arch := &fakeArchive{err: errors.New("s3 caído")}
	uc := NewPDFUseCase(repo, &fakeRenderer{}, nil, arch, entity.DefaultOrganization(), nil)

	doc, err := uc.Download(context.Background(), "o1")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Bytes)
	assert.Equal(t, 1, arch.calls)
}

func TestPDFUseCase_Errores(t *testing.T) {
	repo := memory.NewOrderRepository()
	uc := NewPDFUseCase(repo, &fakeRenderer{}, nil, nil, entity.DefaultOrganization(), nil)
	_, err := uc.Download(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	storedOrder(t, repo)
	boom := errors.New("boom")
	uc = NewPDFUseCase(repo, &fakeRenderer{err: boom}, nil, nil, entity.DefaultOrganization(), nil)
	_, err = uc.Download(context.Background(), "o1")
	assert.ErrorIs(t, err, boom)
}
