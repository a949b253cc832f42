package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
	"verdant/internal/services"
)

func createProject(t *testing.T, r http.Handler, token string, body gin.H) models.ProjectView {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/projects", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[models.ProjectView](t, w)
}

func memberIDs(p models.ProjectView) map[string]bool {
	ids := make(map[string]bool, len(p.Members))
	for _, m := range p.Members {
		ids[m.ID.Hex()] = true
	}
	return ids
}

func TestGardenScenario(t *testing.T) {
	r := newHubRouter(t)
	a := signup(t, r, "alice", "")

	garden := createProject(t, r, a.Token, gin.H{"name": "Garden"})
	if garden.Owner == nil || garden.Owner.ID.Hex() != a.User.ID {
		t.Fatalf("expected alice to own the project, got %+v", garden.Owner)
	}
	if ids := memberIDs(garden); len(ids) != 1 || !ids[a.User.ID] {
		t.Fatalf("expected members [alice], got %v", ids)
	}

	b := signup(t, r, "bob", "")
	path := "/api/projects/" + garden.ID.Hex()
	w := doJSON(t, r, http.MethodPut, path, a.Token, gin.H{"members": []string{b.User.ID}})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ids := memberIDs(decode[models.ProjectView](t, w)); len(ids) != 2 || !ids[a.User.ID] || !ids[b.User.ID] {
		t.Fatalf("expected members {alice, bob}, got %v", ids)
	}

	taskBody := gin.H{"title": "Water the ferns", "project": garden.ID.Hex()}
	if w := doJSON(t, r, http.MethodPost, "/api/tasks", "", taskBody); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 creating a task without a token, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/tasks", a.Token, taskBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	task := decode[models.TaskView](t, w)

	c := signup(t, r, "carol", "")
	w = doJSON(t, r, http.MethodPost, "/api/comments", c.Token, gin.H{"text": "hi", "task": task.ID.Hex()})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for an outsider comment, got %d", w.Code)
	}
}

func TestProjectAccessRules(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")
	member := signup(t, r, "member", "")
	outsider := signup(t, r, "outsider", "")

	p := createProject(t, r, owner.Token, gin.H{"name": "Orchard", "members": []string{member.User.ID}})
	path := "/api/projects/" + p.ID.Hex()

	w := doJSON(t, r, http.MethodGet, path, member.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("member get: expected 200, got %d", w.Code)
	}
	detail := decode[services.ProjectDetail](t, w)
	if detail.Project.Name != "Orchard" || len(detail.Tasks) != 0 {
		t.Fatalf("unexpected detail %+v", detail)
	}

	if w := doJSON(t, r, http.MethodGet, path, outsider.Token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("outsider get: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, path, member.Token, gin.H{"name": "Taken"}); w.Code != http.StatusForbidden {
		t.Fatalf("member update: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, path, member.Token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("member delete: expected 403, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects", outsider.Token, nil)
	if got := decode[[]models.ProjectView](t, w); len(got) != 0 {
		t.Fatalf("outsider should see no projects, got %d", len(got))
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects/count", member.Token, nil)
	if got := decode[map[string]int](t, w)["totalProjects"]; got != 1 {
		t.Fatalf("expected totalProjects 1, got %d", got)
	}

	w = doJSON(t, r, http.MethodGet, path+"/members", outsider.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("members: expected 200, got %d", w.Code)
	}
	if emails := decode[[]string](t, w); len(emails) != 2 {
		t.Fatalf("expected 2 member emails, got %v", emails)
	}

	w = doJSON(t, r, http.MethodDelete, path, owner.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: expected 200, got %d", w.Code)
	}
	if msg := decode[gin.H](t, w)["msg"]; msg != "Project deleted" {
		t.Fatalf("unexpected delete body %v", msg)
	}
	if w := doJSON(t, r, http.MethodGet, path, owner.Token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")

	if w := doJSON(t, r, http.MethodPost, "/api/projects", owner.Token, gin.H{"name": "ab"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a short name, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/projects", owner.Token, gin.H{"name": "Beds", "status": "Paused"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/projects", owner.Token, gin.H{"name": "Beds", "endDate": "soon"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad date, got %d", w.Code)
	}
}

func TestProjectListFilters(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")
	createProject(t, r, owner.Token, gin.H{"name": "Rose Garden"})
	createProject(t, r, owner.Token, gin.H{"name": "Herb Spiral", "status": models.ProjectInProgress})

	cases := map[string]int{
		"/api/projects":                        2,
		"/api/projects?status=All":             2,
		"/api/projects?status=In%20Progress":   1,
		"/api/projects?search=garden":          1,
		"/api/projects?search=nothing-matches": 0,
	}
	for path, want := range cases {
		w := doJSON(t, r, http.MethodGet, path, owner.Token, nil)
		if got := decode[[]models.ProjectView](t, w); len(got) != want {
			t.Fatalf("%s: expected %d projects, got %d", path, want, len(got))
		}
	}
}

func TestProjectsDueToday(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")
	other := signup(t, r, "other", "")

	createProject(t, r, owner.Token, gin.H{"name": "Today", "endDate": "2024-06-10T18:00"})
	createProject(t, r, owner.Token, gin.H{"name": "Tomorrow", "endDate": "2024-06-11"})
	createProject(t, r, owner.Token, gin.H{"name": "Open ended"})

	w := doJSON(t, r, http.MethodGet, "/api/projects/due/today", other.Token, nil)
	got := decode[[]models.ProjectView](t, w)
	if len(got) != 1 || got[0].Name != "Today" {
		t.Fatalf("expected only the project ending today, got %+v", got)
	}
}

func TestProjectNotFoundAndInvalidID(t *testing.T) {
	r := newHubRouter(t)
	owner := signup(t, r, "owner", "")

	if w := doJSON(t, r, http.MethodGet, "/api/projects/"+primitive.NewObjectID().Hex(), owner.Token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/projects/zzz", owner.Token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
