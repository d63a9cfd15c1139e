package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout returns middleware that sets a context deadline on each
// request. The graph endpoints are pure in-memory transformations and
// normally answer in milliseconds; a deadline keeps a pathological upload
// or query from pinning a worker forever. On expiry the client gets 504.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					if !c.Response().Committed {
						return echo.NewHTTPError(http.StatusGatewayTimeout, "request processing exceeded the allowed time limit")
					}
					return nil
				}
				// Client disconnect or other cancellation.
				return ctx.Err()
			}
		}
	}
}
