package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordem-compra/internal/application/dto"
	"github.com/jhoicas/ordem-compra/internal/application/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/memory"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/pdf"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/session"
	apphttp "github.com/jhoicas/ordem-compra/internal/interfaces/http"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

const testToken = "tok-valido"

// stubVerifier acepta solo testToken; err simula un portal caído.
type stubVerifier struct{ err error }

func (s stubVerifier) Verify(_ context.Context, token string) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != testToken {
		return nil, domain.ErrUnauthorized
	}
	return &session.Session{UserID: "u1", Name: "Ana"}, nil
}

func buildTestApp(t *testing.T, v session.Verifier) *fiber.App {
	t.Helper()
	repo := memory.NewOrderRepository()
	orderUC := purchasing.NewOrderUseCase(repo, memory.NewTxRunner(repo), domainpurchasing.DefaultNumbering(), nil)
	renderer := pdf.NewMarotoOrderRenderer(pdf.NewPlanner(pdf.DefaultOptions(), pdf.NewFPDFMeasurer()))
	pdfUC := purchasing.NewPDFUseCase(repo, renderer, nil, nil, entity.DefaultOrganization(), nil)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{OrderUC: orderUC, PDFUC: pdfUC, Verifier: v, Log: logger.Nop()})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(apphttp.HeaderSessionToken, token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const orderBody = `{
	"responsavel": "Ana", "dataOrdem": "2024-03-05", "razaoSocial": "ACME/ES LTDA",
	"cnpj": "12.345.678/0001-90", "formaPagamento": "Boleto", "prazoPagamento": "30 dias",
	"items": [{"especificacao": "Cabo", "quantidade": 3, "valorUnitario": "6,67"}]
}`

func TestHealth_Publico(t *testing.T) {
	app := buildTestApp(t, stubVerifier{})
	resp := do(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, resp).Status)
}

func TestSession_SinTokenTokenInvalidoYFalla(t *testing.T) {
	app := buildTestApp(t, stubVerifier{})

	resp := do(t, app, http.MethodGet, "/api/ordens", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_SESSION", decode[dto.ErrorResponse](t, resp).Code)

	resp = do(t, app, http.MethodGet, "/api/ordens", "", "otro")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_SESSION", decode[dto.ErrorResponse](t, resp).Code)

	down := buildTestApp(t, stubVerifier{err: errors.New("portal caído")})
	resp = do(t, down, http.MethodGet, "/api/ordens", "", testToken)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCreate_CamposFaltando(t *testing.T) {
	app := buildTestApp(t, stubVerifier{})
	resp := do(t, app, http.MethodPost, "/api/ordens", `{"responsavel":"Ana","dataOrdem":"2024-03-05"}`, testToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, []string{"razaoSocial", "cnpj", "formaPagamento", "prazoPagamento"}, body.CamposFaltando)

	resp = do(t, app, http.MethodPost, "/api/ordens", `{not json`, testToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOrdens_CicloCompleto(t *testing.T) {
	app := buildTestApp(t, stubVerifier{})

	resp := do(t, app, http.MethodPost, "/api/ordens", orderBody, testToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.OrderResponse](t, resp)
	assert.Equal(t, "1250", created.NumeroOrdem)
	assert.Equal(t, "R$ 20,01", created.ValorTotal)
	assert.Equal(t, "aberta", created.Status)

	resp = do(t, app, http.MethodGet, "/api/ordens?month=2024-03&search=acme", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.OrderResponse](t, resp), 1)

	resp = do(t, app, http.MethodGet, "/api/ordens?month=2024-13", "", testToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/ordens/"+created.ID, "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[dto.OrderResponse](t, resp).ID)

	update := strings.Replace(orderBody, `"Ana"`, `"Bruno"`, 1)
	resp = do(t, app, http.MethodPut, "/api/ordens/"+created.ID, update, testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bruno", decode[dto.OrderResponse](t, resp).Responsavel)

	resp = do(t, app, http.MethodPatch, "/api/ordens/"+created.ID+"/status", `{"status":"cancelada"}`, testToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPatch, "/api/ordens/"+created.ID+"/status", `{"status":"fechada"}`, testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fechada", decode[dto.OrderResponse](t, resp).Status)

	resp = do(t, app, http.MethodPost, "/api/ordens/"+created.ID+"/toggle-status", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "aberta", decode[dto.OrderResponse](t, resp).Status)

	resp = do(t, app, http.MethodGet, "/api/ordens/dashboard?month=2024-03", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.DashboardResponse{Mes: "2024-03", UltimoNumero: 1250, Total: 1, Abertas: 1}, decode[dto.DashboardResponse](t, resp))

	resp = do(t, app, http.MethodGet, "/api/ordens/next-number", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1251", decode[dto.NextNumberResponse](t, resp).NumeroOrdem)

	resp = do(t, app, http.MethodGet, "/api/ordens/responsaveis", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bruno"}, decode[[]string](t, resp))

	resp = do(t, app, http.MethodGet, "/api/ordens/"+created.ID+"/pdf", "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="ACME-ES LTDA-1250.pdf"`)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = do(t, app, http.MethodDelete, "/api/ordens/"+created.ID, "", testToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.DeleteResponse{Success: true, Message: "Ordem removida com sucesso"}, decode[dto.DeleteResponse](t, resp))

	resp = do(t, app, http.MethodGet, "/api/ordens/"+created.ID, "", testToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, app, http.MethodGet, "/api/ordens/"+created.ID+"/pdf", "", testToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreate_NumeroDuplicado(t *testing.T) {
	app := buildTestApp(t, stubVerifier{})
	body := strings.Replace(orderBody, `"responsavel"`, `"numeroOrdem": "77", "responsavel"`, 1)

	resp := do(t, app, http.MethodPost, "/api/ordens", body, testToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, app, http.MethodPost, "/api/ordens", body, testToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
