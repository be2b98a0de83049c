// Package session valida el token de sesión emitido por el portal.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/pkg/jwt"
)

// Session datos mínimos del usuario autenticado.
type Session struct {
	UserID string
	Name   string
	Raw    json.RawMessage // objeto session tal como lo devolvió el portal
}

// Verifier valida un token. Token inválido → domain.ErrUnauthorized; cualquier otro error es falla del verificador.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

var (
	_ Verifier = (*PortalVerifier)(nil)
	_ Verifier = (*JWTVerifier)(nil)
)

// PortalVerifier consulta POST {portal}/api/verify-session.
type PortalVerifier struct {
	url    string
	client *http.Client
}

// NewPortalVerifier construye el verificador contra el portal.
func NewPortalVerifier(portalURL string, timeout time.Duration) *PortalVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PortalVerifier{
		url:    strings.TrimRight(portalURL, "/") + "/api/verify-session",
		client: &http.Client{Timeout: timeout},
	}
}

// Verify envía {sessionToken} y espera {valid, session}.
func (v *PortalVerifier) Verify(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthorized
	}
	payload, err := json.Marshal(map[string]string{"sessionToken": token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("session: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session: portal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: portal respondió %d", domain.ErrUnauthorized, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("session: leer respuesta: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("session: respuesta del portal no es JSON")
	}
	if !gjson.GetBytes(body, "valid").Bool() {
		return nil, domain.ErrUnauthorized
	}

	sess := gjson.GetBytes(body, "session")
	return &Session{
		UserID: firstString(sess, "user.id", "user_id", "userId", "id"),
		Name:   firstString(sess, "user.name", "user.nome", "name", "nome"),
		Raw:    json.RawMessage(sess.Raw),
	}, nil
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// JWTVerifier acepta tokens HS256 firmados con el secreto compartido.
type JWTVerifier struct {
	secret string
	issuer string
}

// NewJWTVerifier construye el verificador local.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

// Verify valida firma, expiración y emisor.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := jwt.Parse(v.secret, v.issuer, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return &Session{UserID: claims.UserID, Name: claims.Name}, nil
}
