package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordem-compra/internal/application/dto"
	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/session"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

// HeaderSessionToken header con el token emitido por el portal.
const HeaderSessionToken = "X-Session-Token"

// LocalUserID key del usuario de la sesión en los Locals de Fiber.
const LocalUserID = "user_id"

// SessionMiddleware exige un X-Session-Token válido.
// 401 si falta o es inválido; 500 si el verificador no pudo responder.
func SessionMiddleware(v session.Verifier, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("session")
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Get(HeaderSessionToken))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SESSION", Message: "Não autenticado"})
		}
		s, err := v.Verify(c.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				log.Debug().Err(err).Str("path", c.Path()).Msg("sesión rechazada")
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SESSION", Message: "Sessão inválida"})
			}
			log.Error().Err(err).Msg("verificar sesión")
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Code: "SESSION_CHECK_FAILED", Message: "Erro ao verificar autenticação",
			})
		}
		c.Locals(LocalUserID, s.UserID)
		return c.Next()
	}
}

// GetUserID devuelve el usuario de la sesión (después del middleware).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
