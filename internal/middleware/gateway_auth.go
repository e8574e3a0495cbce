package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/atlaspay/internal/services"
)

type gatewayRequestID struct {
	ID any `json:"id"`
}

// GatewayAuth authenticates the gateway's Basic credential. This is the trust
// boundary for the reconciliation endpoint: individual RPC calls are not
// re-verified against the merchant key. The password half of the credential
// must equal the key exactly; the login half is whatever the gateway sends.
func GatewayAuth(merchantKey string) fiber.Handler {
	key := []byte(merchantKey)
	return func(c *fiber.Ctx) error {
		// The rejection envelope echoes the request id when the body carries one.
		var reqID gatewayRequestID
		_ = json.Unmarshal(c.Body(), &reqID)

		scheme, token, found := strings.Cut(c.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Basic") {
			return writeGatewayAuthError(c, reqID.ID)
		}

		decoded, err := base64.StdEncoding.DecodeString(token)
		if err != nil {
			return writeGatewayAuthError(c, reqID.ID)
		}

		_, password, found := strings.Cut(string(decoded), ":")
		if !found {
			return writeGatewayAuthError(c, reqID.ID)
		}

		if subtle.ConstantTimeCompare([]byte(password), key) != 1 {
			return writeGatewayAuthError(c, reqID.ID)
		}

		return c.Next()
	}
}

func writeGatewayAuthError(c *fiber.Ctx, id any) error {
	info := services.GatewayErrorInvalidAuthorization
	return c.JSON(fiber.Map{
		"error": fiber.Map{
			"code": info.Code,
			"message": fiber.Map{
				"uz": info.Message["uz"],
				"ru": info.Message["ru"],
				"en": info.Message["en"],
			},
			"data": nil,
		},
		"id": id,
	})
}
