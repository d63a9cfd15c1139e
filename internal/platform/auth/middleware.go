package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
)

type Claims struct {
	jwt.RegisteredClaims
}

// JWTMiddleware validates HS256 bearer tokens signed with the configured
// secret and puts the token subject on the request context.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, claims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevAuthMiddleware stands in for JWTMiddleware in development mode: every
// request runs as a fixed dev user.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), UserIDKey, "dev-user")
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
