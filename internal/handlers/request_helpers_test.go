package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"verdant/internal/services"
)

func TestFlexibleTime(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-06-10"`:                time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		`"2024-06-10T08:15"`:          time.Date(2024, 6, 10, 8, 15, 0, 0, time.UTC),
		`"2024-06-10T08:15:30"`:       time.Date(2024, 6, 10, 8, 15, 30, 0, time.UTC),
		`"2024-06-10T08:15:30+02:00"`: time.Date(2024, 6, 10, 6, 15, 30, 0, time.UTC),
	}
	for raw, want := range cases {
		var f flexibleTime
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if !f.Equal(want) {
			t.Fatalf("%s: got %v, want %v", raw, f.Time, want)
		}
	}

	var f flexibleTime
	if err := json.Unmarshal([]byte(`""`), &f); err != nil || f.Ptr() != nil {
		t.Fatalf("empty string should leave the time unset, got %v (%v)", f.Ptr(), err)
	}
	if err := json.Unmarshal([]byte(`"tomorrow"`), &f); err == nil {
		t.Fatal("expected an error for an unparseable date")
	}
}

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("", "10")
	if err != nil || page != 0 || limit != 0 {
		t.Fatalf("expected no paging without page, got %d/%d (%v)", page, limit, err)
	}

	page, limit, err = parsePaginationParams("3", "20")
	if err != nil || page != 3 || limit != 20 {
		t.Fatalf("expected 3/20, got %d/%d (%v)", page, limit, err)
	}

	for _, pair := range [][2]string{{"0", "10"}, {"1", "0"}, {"1", "101"}, {"x", "10"}} {
		if _, _, err := parsePaginationParams(pair[0], pair[1]); err == nil {
			t.Fatalf("expected error for %v", pair)
		}
	}
}

func TestRespondServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&services.ValidationError{Message: "validation failed"}, http.StatusBadRequest},
		{services.ErrInvalidID, http.StatusBadRequest},
		{&services.NotFoundError{Entity: "task"}, http.StatusNotFound},
		{&services.ForbiddenError{Reason: "nope"}, http.StatusForbidden},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("find: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondServiceError(c, "GET /", tc.err)
		if w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestNotFoundMessageIsCapitalized(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondServiceError(c, "GET /", &services.NotFoundError{Entity: "project"})
	if msg := errorMessage(t, w); msg != "Project not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestHealthz(t *testing.T) {
	r := gin.New()
	healthy := true
	r.GET("/healthz", Healthz(func(context.Context) error {
		if healthy {
			return nil
		}
		return fmt.Errorf("no primary")
	}))
	r.GET("/", Home("plant store API"))

	if w := doJSON(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	healthy = false
	if w := doJSON(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/", "", nil); w.Body.String() != "plant store API" {
		t.Fatalf("unexpected banner %q", w.Body.String())
	}
}
