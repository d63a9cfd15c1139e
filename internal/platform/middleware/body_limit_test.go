package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"20M", 20 << 20},
		{"512K", 512 << 10},
		{"1G", 1 << 30},
		{"1024", 1024},
		{"", 1 << 20},
		{"garbage", 1 << 20},
	}
	for _, tc := range cases {
		if got := parseLimit(tc.in); got != tc.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBodyLimit_RejectsByContentLength(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := BodyLimit("32")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
}

func TestBodyLimit_EnforcesWhileReading(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1 // unknown length: the reader must catch it
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var readErr error
	handler := BodyLimit("32")(func(c echo.Context) error {
		buf := make([]byte, 128)
		for {
			if _, readErr = c.Request().Body.Read(buf); readErr != nil {
				return readErr
			}
		}
	})
	err := handler(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limited reader, got %v", err)
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader("small"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := BodyLimit("1K")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
