package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/safar/go-trip-orders/internal/auth"
)

// AccountIDKey is the echo context key holding the authenticated account id.
const AccountIDKey = "user_id"

// JWTAuth rejects requests without a valid Bearer access token and stores the
// token subject under AccountIDKey.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			sub, err := auth.ParseAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(AccountIDKey, sub)
			return next(c)
		}
	}
}

// AccountID returns the account id set by JWTAuth, or "" outside protected routes.
func AccountID(c echo.Context) string {
	id, _ := c.Get(AccountIDKey).(string)
	return id
}
