package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
	"verdant/internal/store"
)

// expander resolves the user and project references embedded in responses.
// Dangling references come back as nil or as a bare id.
type expander struct {
	users    store.Users
	projects store.Projects
}

func (e expander) userMap(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := e.users.FindMany(ctx, ids)
	if err != nil {
		return nil, storeErr("users", err)
	}
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func projectView(p models.Project, users map[primitive.ObjectID]models.UserSummary) models.ProjectView {
	v := models.ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Members:     make([]models.UserSummary, 0, len(p.Members)),
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if owner, ok := users[p.Owner]; ok {
		v.Owner = &owner
	}
	for _, m := range p.Members {
		if u, ok := users[m]; ok {
			v.Members = append(v.Members, u)
		}
	}
	return v
}

func (e expander) expandProjects(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	var ids []primitive.ObjectID
	for _, p := range projects {
		ids = append(ids, p.Owner)
		ids = append(ids, p.Members...)
	}
	users, err := e.userMap(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectView(p, users))
	}
	return out, nil
}

func (e expander) expandProject(ctx context.Context, p models.Project) (*models.ProjectView, error) {
	views, err := e.expandProjects(ctx, []models.Project{p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (e expander) expandTasks(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	refs := map[primitive.ObjectID]models.ProjectRef{}
	var assignees []primitive.ObjectID
	for _, t := range tasks {
		if t.AssignedTo != nil {
			assignees = append(assignees, *t.AssignedTo)
		}
		if _, seen := refs[t.Project]; seen || t.Project.IsZero() {
			continue
		}
		ref := models.ProjectRef{ID: t.Project}
		p, err := e.projects.FindByID(ctx, t.Project)
		switch {
		case err == nil:
			ref.Name = p.Name
			ref.Description = p.Description
		case !errors.Is(err, store.ErrNotFound):
			return nil, storeErr("project", err)
		}
		refs[t.Project] = ref
	}

	users, err := e.userMap(ctx, assignees)
	if err != nil {
		return nil, err
	}

	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := models.TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Project:     refs[t.Project],
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
		if v.Project.ID.IsZero() {
			v.Project.ID = t.Project
		}
		if t.AssignedTo != nil {
			if u, ok := users[*t.AssignedTo]; ok {
				v.AssignedTo = &u
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (e expander) expandTask(ctx context.Context, t models.Task) (*models.TaskView, error) {
	views, err := e.expandTasks(ctx, []models.Task{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (e expander) expandComments(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	users, err := e.userMap(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		v := models.CommentView{
			ID:        c.ID,
			Text:      c.Text,
			Task:      c.Task,
			Project:   c.Project,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if u, ok := users[c.User]; ok {
			v.User = &u
		}
		out = append(out, v)
	}
	return out, nil
}

func (e expander) expandComment(ctx context.Context, c models.Comment) (*models.CommentView, error) {
	views, err := e.expandComments(ctx, []models.Comment{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
