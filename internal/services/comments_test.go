package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
	"verdant/internal/store"
	"verdant/internal/store/memstore"
)

func TestCommentCreateRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member, outsider := f.register(t, "owner"), f.register(t, "member"), f.register(t, "outsider")
	p := f.project(t, owner, "Garden", member)
	task := f.task(t, owner, p, "Mulch beds")

	c, err := f.comments.Create(ctx, member, task.ID, "  on it  ")
	if err != nil {
		t.Fatalf("member create: %v", err)
	}
	if c.Text != "on it" || c.Project != p.ID || c.User == nil || c.User.ID != member.UserID {
		t.Fatalf("unexpected comment %+v", c)
	}

	if _, err := f.comments.Create(ctx, outsider, task.ID, "let me in"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider create: expected forbidden, got %v", err)
	}
	if _, err := f.comments.ListByTask(ctx, outsider, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider list: expected forbidden, got %v", err)
	}
	if _, err := f.comments.Create(ctx, member, task.ID, "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank text: expected validation error, got %v", err)
	}
}

func TestCommentListOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner")
	p := f.project(t, owner, "Garden")
	task := f.task(t, owner, p, "Mulch beds")

	base := f.clock.now
	for i, text := range []string{"first", "second", "third"} {
		f.clock.now = base.Add(time.Duration(i) * time.Second)
		if _, err := f.comments.Create(ctx, owner, task.ID, text); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := f.comments.ListByTask(ctx, owner, task.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Text != "first" || got[2].Text != "third" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestCommentUpdateAuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member := f.register(t, "owner"), f.register(t, "member")
	p := f.project(t, owner, "Garden", member)
	task := f.task(t, owner, p, "Mulch beds")
	c, err := f.comments.Create(ctx, member, task.ID, "draft")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.comments.Update(ctx, owner, c.ID, "owner edit"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("project owner update: expected forbidden, got %v", err)
	}

	updated, err := f.comments.Update(ctx, member, c.ID, "final")
	if err != nil || updated.Text != "final" {
		t.Fatalf("author update: %+v (%v)", updated, err)
	}

	kept, err := f.comments.Update(ctx, member, c.ID, "  ")
	if err != nil || kept.Text != "final" {
		t.Fatalf("blank update should keep text: %+v (%v)", kept, err)
	}
}

func TestCommentUpdateRechecksLiveMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, member := f.register(t, "owner"), f.register(t, "member")
	p := f.project(t, owner, "Garden", member)
	task := f.task(t, owner, p, "Mulch beds")
	c, err := f.comments.Create(ctx, member, task.ID, "draft")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.projects.Update(ctx, owner, p.ID, ProjectInput{Members: []string{}}); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if _, err := f.comments.Update(ctx, member, c.ID, "still here?"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("removed member update: expected forbidden, got %v", err)
	}
}

func TestCommentDeleteAuthorOrProjectOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, a, b := f.register(t, "owner"), f.register(t, "a"), f.register(t, "b")
	p := f.project(t, owner, "Garden", a, b)
	task := f.task(t, owner, p, "Mulch beds")

	first, err := f.comments.Create(ctx, a, task.ID, "by a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := f.comments.Create(ctx, a, task.ID, "also by a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.comments.Delete(ctx, b, first.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other member delete: expected forbidden, got %v", err)
	}
	if err := f.comments.Delete(ctx, a, first.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := f.comments.Delete(ctx, owner, second.ID); err != nil {
		t.Fatalf("project owner delete: %v", err)
	}
	if err := f.comments.Delete(ctx, owner, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestCommentOnMissingTask(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "owner")
	p := f.project(t, owner, "Garden")
	task := f.task(t, owner, p, "Mulch beds")
	if err := f.tasks.Delete(context.Background(), task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	_, err := f.comments.Create(context.Background(), owner, task.ID, "hello")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "task" {
		t.Fatalf("expected task not found, got %v", err)
	}
}

type countingTx struct {
	calls int
}

func (c *countingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

func TestCommentCreateUsesTransactionWhenEnabled(t *testing.T) {
	s := memstore.New().Store()
	tx := &countingTx{}
	s.Tx = tx
	f := newFixtureFor(t, s, true)

	owner := f.register(t, "owner")
	p := f.project(t, owner, "Garden")
	task := f.task(t, owner, p, "Mulch beds")

	if _, err := f.comments.Create(context.Background(), owner, task.ID, "hi"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", tx.calls)
	}
}

func TestTransactionalCommentCreateWritesProject(t *testing.T) {
	f := newFixtureFor(t, memstore.New().Store(), true)
	owner := f.register(t, "owner")
	p := f.project(t, owner, "Garden")
	task := f.task(t, owner, p, "Mulch beds")

	f.clock.now = f.clock.now.Add(time.Hour)
	if _, err := f.comments.Create(context.Background(), owner, task.ID, "hi"); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := f.store.Projects.FindByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("find project: %v", err)
	}
	if !got.UpdatedAt.Equal(f.clock.now) {
		t.Fatalf("expected project updatedAt %v, got %v", f.clock.now, got.UpdatedAt)
	}
}

// deletingProjects removes the project right after it is read, the way a
// concurrent delete lands between the membership check and the insert.
type deletingProjects struct {
	store.Projects
}

func (d deletingProjects) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	p, err := d.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Projects.Delete(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func TestTransactionalCommentCreateLosesToProjectDelete(t *testing.T) {
	s := memstore.New().Store()
	f := newFixtureFor(t, s, true)
	owner := f.register(t, "owner")
	p := f.project(t, owner, "Garden")
	task := f.task(t, owner, p, "Mulch beds")

	racing := *s
	racing.Projects = deletingProjects{s.Projects}
	comments := NewComments(&racing, Clock{Now: f.clock.Now, Location: time.UTC}, true)

	_, err := comments.Create(context.Background(), owner, task.ID, "hi")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "project" {
		t.Fatalf("expected project not found, got %v", err)
	}
	left, err := s.Comments.ListByTask(context.Background(), task.ID)
	if err != nil || len(left) != 0 {
		t.Fatalf("expected no comment stored, got %v (%v)", left, err)
	}
}
