package services

import (
	"context"
	"testing"
	"time"

	"verdant/internal/auth"
	"verdant/internal/models"
	"verdant/internal/store"
	"verdant/internal/store/memstore"
)

type fixture struct {
	store    *store.Store
	accounts *Accounts
	projects *Projects
	tasks    *Tasks
	comments *Comments
	clock    *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func fixedClock(at time.Time) Clock {
	return Clock{Now: func() time.Time { return at }, Location: time.UTC}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureFor(t, memstore.New().Store(), false)
}

func newFixtureFor(t *testing.T, s *store.Store, transactional bool) *fixture {
	t.Helper()
	fc := &fakeClock{now: time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)}
	clock := Clock{Now: fc.Now, Location: time.UTC}
	return &fixture{
		store:    s,
		accounts: NewAccounts(s.Users, auth.NewTokens("secret", time.Hour), clock, true),
		projects: NewProjects(s, clock),
		tasks:    NewTasks(s, clock),
		comments: NewComments(s, clock, transactional),
		clock:    fc,
	}
}

func (f *fixture) register(t *testing.T, name string) auth.Identity {
	t.Helper()
	sess, err := f.accounts.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return auth.Identity{UserID: sess.User.ID, Role: sess.User.Role}
}

func (f *fixture) project(t *testing.T, owner auth.Identity, name string, members ...auth.Identity) *models.ProjectView {
	t.Helper()
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID.Hex())
	}
	p, err := f.projects.Create(context.Background(), owner, ProjectInput{Name: name, Members: ids})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

func (f *fixture) task(t *testing.T, caller auth.Identity, project *models.ProjectView, title string) *models.TaskView {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), caller, TaskInput{Title: title, Project: project.ID.Hex()})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func memberIDs(p *models.ProjectView) map[string]bool {
	out := map[string]bool{}
	for _, m := range p.Members {
		out[m.ID.Hex()] = true
	}
	return out
}
