package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/auth"
	"verdant/internal/logging"
	"verdant/internal/models"
	"verdant/internal/store"
)

type Projects struct {
	projects store.Projects
	tasks    store.Tasks
	users    store.Users
	clock    Clock
	expand   expander
}

func NewProjects(s *store.Store, clock Clock) *Projects {
	return &Projects{
		projects: s.Projects,
		tasks:    s.Tasks,
		users:    s.Users,
		clock:    clock,
		expand:   expander{users: s.Users, projects: s.Projects},
	}
}

type ProjectInput struct {
	Name        string
	Description string
	Members     []string
	EndDate     *time.Time
	Status      string
}

// ProjectDetail is a project together with its tasks.
type ProjectDetail struct {
	Project models.ProjectView `json:"project"`
	Tasks   []models.TaskView  `json:"tasks"`
}

const minNameLength = 3

func validateProjectStatus(status string) error {
	if status != "" && !slices.Contains(models.ProjectStatuses, status) {
		return invalid("validation failed", "status must be one of Not Started, In Progress, Completed, On Hold")
	}
	return nil
}

// validMembers keeps the supplied ids that are well formed and belong to an
// existing user, in their original order. Anything else is dropped.
func (s *Projects) validMembers(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(r)); err == nil {
			ids = append(ids, id)
		}
	}
	users, err := s.users.FindMany(ctx, ids)
	if err != nil {
		return nil, storeErr("users", err)
	}
	exists := make(map[primitive.ObjectID]bool, len(users))
	for _, u := range users {
		exists[u.ID] = true
	}
	out := ids[:0]
	for _, id := range ids {
		if exists[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// unionIDs concatenates the lists and drops repeats, keeping first positions.
func unionIDs(lists ...[]primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{}
	out := []primitive.ObjectID{}
	for _, list := range lists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func (s *Projects) Create(ctx context.Context, caller auth.Identity, in ProjectInput) (*models.ProjectView, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < minNameLength {
		return nil, invalid("validation failed", "name must be at least 3 characters")
	}
	if err := validateProjectStatus(in.Status); err != nil {
		return nil, err
	}

	members := []primitive.ObjectID{caller.UserID}
	if in.Members != nil {
		valid, err := s.validMembers(ctx, in.Members)
		if err != nil {
			return nil, err
		}
		members = unionIDs(members, valid)
	}

	status := in.Status
	if status == "" {
		status = models.ProjectNotStarted
	}

	now := s.clock.Now()
	p := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Owner:       caller.UserID,
		Members:     members,
		Status:      status,
		StartDate:   now,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, storeErr("project", err)
	}

	logging.Ctx(ctx).Info().Str("project_id", p.ID.Hex()).Int("members", len(members)).Msg("project created")
	return s.expand.expandProject(ctx, *p)
}

// List returns the caller's projects. Status "All" disables the status
// filter.
func (s *Projects) List(ctx context.Context, caller auth.Identity, search, status string) ([]models.ProjectView, error) {
	if status == "All" {
		status = ""
	}
	projects, err := s.projects.List(ctx, store.ProjectFilter{
		Member: caller.UserID,
		Search: strings.TrimSpace(search),
		Status: status,
	})
	if err != nil {
		return nil, storeErr("projects", err)
	}
	return s.expand.expandProjects(ctx, projects)
}

func (s *Projects) load(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("project", err)
	}
	return p, nil
}

func (s *Projects) Get(ctx context.Context, caller auth.Identity, id primitive.ObjectID) (*ProjectDetail, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasAccess(caller.UserID) {
		return nil, forbidden("Not authorized to view this project")
	}

	view, err := s.expand.expandProject(ctx, *p)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, store.TaskFilter{Project: &p.ID})
	if err != nil {
		return nil, storeErr("tasks", err)
	}
	taskViews, err := s.expand.expandTasks(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: *view, Tasks: taskViews}, nil
}

// Update is owner only. Empty fields are ignored; a non-nil Members list
// replaces the current members, and the owner is always kept.
func (s *Projects) Update(ctx context.Context, caller auth.Identity, id primitive.ObjectID, in ProjectInput) (*models.ProjectView, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsOwner(caller.UserID) {
		return nil, forbidden("Not authorized to update this project")
	}

	patch := store.ProjectPatch{UpdatedAt: s.clock.Now()}
	if name := strings.TrimSpace(in.Name); name != "" {
		if len(name) < minNameLength {
			return nil, invalid("validation failed", "name must be at least 3 characters")
		}
		patch.Name = &name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		patch.Description = &desc
	}
	if in.Status != "" {
		if err := validateProjectStatus(in.Status); err != nil {
			return nil, err
		}
		patch.Status = &in.Status
	}
	patch.EndDate = in.EndDate
	if in.Members != nil {
		valid, err := s.validMembers(ctx, in.Members)
		if err != nil {
			return nil, err
		}
		patch.Members = unionIDs(valid, []primitive.ObjectID{p.Owner})
	}

	updated, err := s.projects.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr("project", err)
	}
	return s.expand.expandProject(ctx, *updated)
}

// Delete is owner only. Tasks and comments of the project are left in place.
func (s *Projects) Delete(ctx context.Context, caller auth.Identity, id primitive.ObjectID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsOwner(caller.UserID) {
		return forbidden("Not authorized to delete this project")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return storeErr("project", err)
	}
	logging.Ctx(ctx).Info().Str("project_id", id.Hex()).Msg("project deleted")
	return nil
}

func (s *Projects) Count(ctx context.Context, caller auth.Identity) (int64, error) {
	n, err := s.projects.Count(ctx, caller.UserID)
	if err != nil {
		return 0, storeErr("projects", err)
	}
	return n, nil
}

// DueToday lists every project ending today, whoever owns it.
func (s *Projects) DueToday(ctx context.Context) ([]models.ProjectView, error) {
	projects, err := s.projects.EndingBetween(ctx, s.clock.Today())
	if err != nil {
		return nil, storeErr("projects", err)
	}
	return s.expand.expandProjects(ctx, projects)
}

// MemberEmails lists member emails without checking the caller's access.
func (s *Projects) MemberEmails(ctx context.Context, id primitive.ObjectID) ([]string, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.expand.userMap(ctx, p.Members)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		if u, ok := users[m]; ok {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}
