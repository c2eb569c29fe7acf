package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

// BearerSecret accepts requests carrying "Authorization: Bearer <secret>".
// An empty secret rejects everything.
func BearerSecret(secret string) echo.MiddlewareFunc {
	return echoMw.KeyAuthWithConfig(echoMw.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			if secret == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1, nil
		},
	})
}
