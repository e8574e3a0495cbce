package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/atlaspay/internal/config"
	"github.com/example/atlaspay/internal/utils"
)

const dashboardUserKey = "dashboardUserID"

// DashboardAuth guards merchant dashboard routes. It accepts the bearer
// tokens minted by the auth handler (HS256, TTL from config) and loads the
// authenticated account id into the request context.
func DashboardAuth(cfg *config.Config, log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			log.Debug("dashboard token rejected", "path", c.Path(), "err", err)
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(dashboardUserKey, userID)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// DashboardUserID extracts the authenticated account id from the request context.
func DashboardUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(dashboardUserKey).(uuid.UUID)
	return id, ok
}
