package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_FastHandlerPasses(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestTimeout(time.Second)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_SlowHandlerTimesOut(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestTimeout(10 * time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	err := handler(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %v", err)
	}
}

func TestRequestTimeout_HandlerSeesDeadline(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestTimeout(time.Second)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected a deadline on the request context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
