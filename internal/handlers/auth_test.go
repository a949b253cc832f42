package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegisterLoginAndMe(t *testing.T) {
	r := newStoreRouter(t)

	sess := signup(t, r, "fern", "")
	if sess.Token == "" || sess.User.Role != "user" || sess.User.Email != "fern@example.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "FERN@example.com", "password": "password1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	login := decode[testSession](t, w)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	me := decode[userResponse](t, w)
	if me.ID != sess.User.ID || me.Name != "fern" {
		t.Fatalf("unexpected profile: %+v", me)
	}
}

func TestRegisterUsernameFallbackAndDuplicate(t *testing.T) {
	r := newStoreRouter(t)

	body := gin.H{"username": "ivy", "email": "ivy@example.com", "password": "pw"}
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got := decode[testSession](t, w).User.Name; got != "ivy" {
		t.Fatalf("expected name from username, got %q", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "User already exists" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newStoreRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"name": "moss", "email": "not-an-email", "password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decode[struct {
		Details []string `json:"details"`
	}](t, w)
	if len(body.Details) != 1 || body.Details[0] != "email must be a valid email" {
		t.Fatalf("unexpected details: %v", body.Details)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "moss@example.com", "password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a name, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "moss", "email": "moss@example.com", "password": strings.Repeat("x", 80),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an 80 byte password, got %d: %s", w.Code, w.Body.String())
	}
	body = decode[struct {
		Details []string `json:"details"`
	}](t, w)
	if len(body.Details) != 1 || body.Details[0] != "password must be at most 72 bytes" {
		t.Fatalf("unexpected details: %v", body.Details)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newStoreRouter(t)
	signup(t, r, "sage", "")

	for _, body := range []gin.H{
		{"email": "sage@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "password1"},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		if msg := errorMessage(t, w); msg != "Invalid credentials" {
			t.Fatalf("unexpected error %q", msg)
		}
	}
}

func TestMeRequiresToken(t *testing.T) {
	r := newHubRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
