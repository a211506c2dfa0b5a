package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func runReadiness(t *testing.T, checks map[string]Check) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := NewReadinessHandler(checks).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec, resp
}

func TestReadiness_AllHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec, resp := runReadiness(t, map[string]Check{
		"redis":   RedisCheck(rdb),
		"mongodb": func(context.Context) error { return nil },
	})
	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", rec.Code, resp)
	}
	if resp.Dependencies["redis"].Status != "ok" {
		t.Fatalf("redis should be ok: %+v", resp.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	rec, resp := runReadiness(t, map[string]Check{
		"redis":   RedisCheck(rdb),
		"mongodb": func(context.Context) error { return errors.New("server selection timeout") },
	})
	if rec.Code != http.StatusServiceUnavailable || resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", rec.Code, resp)
	}
	for _, name := range []string{"redis", "mongodb"} {
		if resp.Dependencies[name].Status != "unhealthy" || resp.Dependencies[name].Error == "" {
			t.Fatalf("%s should be unhealthy: %+v", name, resp.Dependencies[name])
		}
	}
}
