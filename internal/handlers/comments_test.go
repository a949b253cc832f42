package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"verdant/internal/models"
)

func TestCommentThread(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")
	member := signup(t, r, "member", "")
	outsider := signup(t, r, "outsider", "")

	p := createProject(t, r, owner.Token, gin.H{"name": "Pond", "members": []string{member.User.ID}})
	task := createTask(t, r, owner.Token, gin.H{"title": "Skim leaves", "project": p.ID.Hex()})

	w := doJSON(t, r, http.MethodPost, "/api/comments", member.Token, gin.H{"text": "  on it  ", "task": task.ID.Hex()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	comment := decode[models.CommentView](t, w)
	if comment.Text != "on it" || comment.User == nil || comment.User.Username != "member" || comment.Project != p.ID {
		t.Fatalf("unexpected comment %+v", comment)
	}

	w = doJSON(t, r, http.MethodPost, "/api/comments", owner.Token, gin.H{"text": "thanks", "taskId": task.ID.Hex()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create via taskId: expected 201, got %d", w.Code)
	}

	listPath := "/api/comments/task/" + task.ID.Hex()
	w = doJSON(t, r, http.MethodGet, listPath, owner.Token, nil)
	if got := decode[[]models.CommentView](t, w); len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	if w := doJSON(t, r, http.MethodGet, listPath, outsider.Token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("outsider list: expected 403, got %d", w.Code)
	}

	path := "/api/comments/" + comment.ID.Hex()
	if w := doJSON(t, r, http.MethodPut, path, owner.Token, gin.H{"text": "edited"}); w.Code != http.StatusForbidden {
		t.Fatalf("owner edit of another's comment: expected 403, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, path, member.Token, gin.H{"text": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("author edit: expected 200, got %d", w.Code)
	}
	if got := decode[models.CommentView](t, w).Text; got != "on it" {
		t.Fatalf("blank edit should keep the text, got %q", got)
	}

	if w := doJSON(t, r, http.MethodDelete, path, outsider.Token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("outsider delete: expected 403, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, path, owner.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: expected 200, got %d", w.Code)
	}
	if msg := decode[gin.H](t, w)["msg"]; msg != "Comment removed" {
		t.Fatalf("unexpected delete body %v", msg)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")

	if w := doJSON(t, r, http.MethodPost, "/api/comments", owner.Token, gin.H{"task": "bad"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without text, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/comments", owner.Token, gin.H{"text": "hi", "task": "bad"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad task id, got %d", w.Code)
	}
}
