package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"verdant/internal/auth"
	"verdant/internal/authz"
	"verdant/internal/services"
	"verdant/internal/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

func testClock() services.Clock {
	return services.Clock{Now: func() time.Time { return testNow }, Location: time.UTC}
}

func newTestEnforcer(t *testing.T) *authz.Enforcer {
	t.Helper()
	enforcer, err := authz.NewEnforcer("", "")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return enforcer
}

func newStoreRouter(t *testing.T) *gin.Engine {
	t.Helper()
	s := memstore.New().Store()
	tokens := auth.NewTokens("secret", time.Hour)
	clock := testClock()

	r := gin.New()
	RegisterStoreRoutes(r, StoreDeps{
		Tokens:   tokens,
		Enforcer: newTestEnforcer(t),
		Accounts: services.NewAccounts(s.Users, tokens, clock, true),
		Catalog:  services.NewCatalog(s.Products, clock),
		Orders:   services.NewOrders(s.Orders, clock),
	})
	return r
}

func newHubRouter(t *testing.T) *gin.Engine {
	t.Helper()
	s := memstore.New().Store()
	tokens := auth.NewTokens("secret", time.Hour)
	clock := testClock()

	r := gin.New()
	RegisterProjectHubRoutes(r, ProjectHubDeps{
		Tokens:   tokens,
		Enforcer: newTestEnforcer(t),
		Accounts: services.NewAccounts(s.Users, tokens, clock, true),
		Projects: services.NewProjects(s, clock),
		Tasks:    services.NewTasks(s, clock),
		Comments: services.NewComments(s, clock, false),
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

type testSession struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func signup(t *testing.T, r http.Handler, name, role string) testSession {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password1",
		"role":     role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", name, w.Code, w.Body.String())
	}
	return decode[testSession](t, w)
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[struct {
		Error string `json:"error"`
	}](t, w).Error
}
