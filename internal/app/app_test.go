package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"verdant/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load("projecthub", 5174)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func newTestRouter(t *testing.T, spec Spec) *gin.Engine {
	t.Helper()
	rt, err := NewRuntime(context.Background(), spec, memoryConfig(t))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return NewRouter(spec, rt)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter(t, ProjectHub)

	w := get(r, "/")
	if w.Code != http.StatusOK || w.Body.String() != ProjectHub.Banner {
		t.Fatalf("unexpected banner response %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}

	if w := get(r, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("expected healthy store, got %d", w.Code)
	}

	w = get(r, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "api_requests_total") {
		t.Fatalf("expected request counter in exposition")
	}
}

func TestSpecsMountTheirAPIs(t *testing.T) {
	hub := newTestRouter(t, ProjectHub)
	if w := get(hub, "/api/projects"); w.Code != http.StatusUnauthorized {
		t.Fatalf("projecthub: expected 401 on a guarded route, got %d", w.Code)
	}
	if w := get(hub, "/api/products"); w.Code != http.StatusNotFound {
		t.Fatalf("projecthub should not serve products, got %d", w.Code)
	}

	shop := newTestRouter(t, PlantStore)
	if w := get(shop, "/api/products"); w.Code != http.StatusOK {
		t.Fatalf("plantstore: expected public product list, got %d", w.Code)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
