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

// Tasks requires an authenticated caller but does not check project
// membership on any operation.
type Tasks struct {
	tasks  store.Tasks
	clock  Clock
	expand expander
}

func NewTasks(s *store.Store, clock Clock) *Tasks {
	return &Tasks{
		tasks:  s.Tasks,
		clock:  clock,
		expand: expander{users: s.Users, projects: s.Projects},
	}
}

type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssignedTo  string
	Project     string
}

func validateTaskEnums(status, priority string) error {
	var details []string
	if status != "" && !slices.Contains(models.TaskStatuses, status) {
		details = append(details, "status must be one of To Do, In Progress, Done, Blocked")
	}
	if priority != "" && !slices.Contains(models.TaskPriorities, priority) {
		details = append(details, "priority must be one of Low, Medium, High")
	}
	if len(details) > 0 {
		return invalid("validation failed", details...)
	}
	return nil
}

// parseAssignee treats an empty value as unassigned.
func parseAssignee(raw string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, invalid("validation failed", "assignedTo is invalid")
	}
	return &id, nil
}

func (s *Tasks) Create(ctx context.Context, caller auth.Identity, in TaskInput) (*models.TaskView, error) {
	title := strings.TrimSpace(in.Title)
	if len(title) < minNameLength {
		return nil, invalid("validation failed", "title must be at least 3 characters")
	}
	projectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(in.Project))
	if err != nil {
		return nil, invalid("validation failed", "project is invalid")
	}
	if err := validateTaskEnums(in.Status, in.Priority); err != nil {
		return nil, err
	}
	assignee, err := parseAssignee(in.AssignedTo)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.TaskToDo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.clock.Now()
	t := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Project:     projectID,
		AssignedTo:  assignee,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, storeErr("task", err)
	}

	logging.Ctx(ctx).Info().
		Str("task_id", t.ID.Hex()).
		Str("project_id", projectID.Hex()).
		Str("created_by", caller.UserID.Hex()).
		Msg("task created")
	return s.expand.expandTask(ctx, *t)
}

func (s *Tasks) list(ctx context.Context, f store.TaskFilter) ([]models.TaskView, error) {
	tasks, err := s.tasks.List(ctx, f)
	if err != nil {
		return nil, storeErr("tasks", err)
	}
	return s.expand.expandTasks(ctx, tasks)
}

func (s *Tasks) All(ctx context.Context) ([]models.TaskView, error) {
	return s.list(ctx, store.TaskFilter{})
}

func (s *Tasks) ByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.TaskView, error) {
	return s.list(ctx, store.TaskFilter{Project: &projectID})
}

func (s *Tasks) ByUser(ctx context.Context, caller auth.Identity) ([]models.TaskView, error) {
	return s.list(ctx, store.TaskFilter{AssignedTo: &caller.UserID})
}

func (s *Tasks) Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("task", err)
	}
	return s.expand.expandTask(ctx, *t)
}

// Update overwrites title, description, status and priority when given.
// Due date and assignee are always replaced, so leaving them out clears
// them.
func (s *Tasks) Update(ctx context.Context, id primitive.ObjectID, in TaskInput) (*models.TaskView, error) {
	patch := store.TaskPatch{DueDate: in.DueDate, UpdatedAt: s.clock.Now()}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) < minNameLength {
			return nil, invalid("validation failed", "title must be at least 3 characters")
		}
		patch.Title = &title
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		patch.Description = &desc
	}
	if err := validateTaskEnums(in.Status, in.Priority); err != nil {
		return nil, err
	}
	if in.Status != "" {
		patch.Status = &in.Status
	}
	if in.Priority != "" {
		patch.Priority = &in.Priority
	}
	assignee, err := parseAssignee(in.AssignedTo)
	if err != nil {
		return nil, err
	}
	patch.AssignedTo = assignee

	t, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr("task", err)
	}
	return s.expand.expandTask(ctx, *t)
}

func (s *Tasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return storeErr("task", err)
	}
	return nil
}

func (s *Tasks) Count(ctx context.Context) (int64, error) {
	n, err := s.tasks.Count(ctx, store.TaskFilter{})
	if err != nil {
		return 0, storeErr("tasks", err)
	}
	return n, nil
}

func (s *Tasks) CountByUser(ctx context.Context, caller auth.Identity) (int64, error) {
	n, err := s.tasks.Count(ctx, store.TaskFilter{AssignedTo: &caller.UserID})
	if err != nil {
		return 0, storeErr("tasks", err)
	}
	return n, nil
}

// DueToday lists every task due today, whoever it belongs to.
func (s *Tasks) DueToday(ctx context.Context) ([]models.TaskView, error) {
	tasks, err := s.tasks.DueBetween(ctx, s.clock.Today())
	if err != nil {
		return nil, storeErr("tasks", err)
	}
	return s.expand.expandTasks(ctx, tasks)
}
