package db

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthHandler_NilPool(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(nil)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", body["status"])
	}
	if body["catalog"] != "memory" {
		t.Errorf("expected catalog memory, got %v", body["catalog"])
	}
}

func TestPoolStats_Healthy(t *testing.T) {
	stats := &PoolStats{TotalConns: 3, MaxConns: 10, Healthy: true}
	if !stats.Healthy {
		t.Error("expected Healthy to be true")
	}
	if stats.TotalConns != 3 {
		t.Errorf("expected TotalConns 3, got %d", stats.TotalConns)
	}
}
