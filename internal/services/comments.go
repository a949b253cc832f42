package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/auth"
	"verdant/internal/logging"
	"verdant/internal/models"
	"verdant/internal/store"
)

// Comments gates every operation on membership of the task's project.
type Comments struct {
	comments      store.Comments
	tasks         store.Tasks
	projects      store.Projects
	tx            store.TxRunner
	transactional bool
	clock         Clock
	expand        expander
}

// NewComments builds the comment service. With transactional set, Create
// checks membership, writes the project and inserts the comment in one store
// transaction, so a concurrent project delete aborts one side.
func NewComments(s *store.Store, clock Clock, transactional bool) *Comments {
	return &Comments{
		comments:      s.Comments,
		tasks:         s.Tasks,
		projects:      s.Projects,
		tx:            s.Tx,
		transactional: transactional && s.Tx != nil,
		clock:         clock,
		expand:        expander{users: s.Users, projects: s.Projects},
	}
}

// taskProject resolves the task and the project it belongs to.
func (s *Comments) taskProject(ctx context.Context, taskID primitive.ObjectID) (*models.Task, *models.Project, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, storeErr("task", err)
	}
	project, err := s.projects.FindByID(ctx, task.Project)
	if err != nil {
		return nil, nil, storeErr("project", err)
	}
	return task, project, nil
}

func (s *Comments) Create(ctx context.Context, caller auth.Identity, taskID primitive.ObjectID, text string) (*models.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("validation failed", "text is required")
	}

	var comment *models.Comment
	create := func(ctx context.Context) error {
		task, project, err := s.taskProject(ctx, taskID)
		if err != nil {
			return err
		}
		if !project.HasAccess(caller.UserID) {
			return forbidden("User not authorized to comment on this task/project")
		}

		now := s.clock.Now()
		if s.transactional {
			// Writing the project makes a concurrent delete conflict with this transaction.
			if err := s.projects.Touch(ctx, project.ID, now); err != nil {
				return storeErr("project", err)
			}
		}
		c := &models.Comment{
			Text:      text,
			User:      caller.UserID,
			Task:      task.ID,
			Project:   project.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.comments.Create(ctx, c); err != nil {
			return storeErr("comment", err)
		}
		comment = c
		return nil
	}

	var err error
	if s.transactional {
		err = s.tx.WithTransaction(ctx, create)
	} else {
		err = create(ctx)
	}
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("comment_id", comment.ID.Hex()).Str("task_id", taskID.Hex()).Msg("comment created")
	return s.expand.expandComment(ctx, *comment)
}

func (s *Comments) ListByTask(ctx context.Context, caller auth.Identity, taskID primitive.ObjectID) ([]models.CommentView, error) {
	_, project, err := s.taskProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !project.HasAccess(caller.UserID) {
		return nil, forbidden("User not authorized to view comments for this task/project")
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, storeErr("comments", err)
	}
	return s.expand.expandComments(ctx, comments)
}

// Update is author only, and the author must still have access to the
// project as it stands now. Blank text keeps the current text.
func (s *Comments) Update(ctx context.Context, caller auth.Identity, id primitive.ObjectID, text string) (*models.CommentView, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("comment", err)
	}
	if comment.User != caller.UserID {
		return nil, forbidden("User not authorized to update this comment")
	}

	project, err := s.projects.FindByID(ctx, comment.Project)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr("project", err)
	}
	if project == nil || !project.HasAccess(caller.UserID) {
		return nil, forbidden("User no longer authorized to access the related project")
	}

	if text = strings.TrimSpace(text); text == "" {
		text = comment.Text
	}
	updated, err := s.comments.UpdateText(ctx, id, text, s.clock.Now())
	if err != nil {
		return nil, storeErr("comment", err)
	}
	return s.expand.expandComment(ctx, *updated)
}

// Delete is allowed for the comment's author and the project owner.
func (s *Comments) Delete(ctx context.Context, caller auth.Identity, id primitive.ObjectID) error {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return storeErr("comment", err)
	}

	project, err := s.projects.FindByID(ctx, comment.Project)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return storeErr("project", err)
	}
	isAuthor := comment.User == caller.UserID
	isProjectOwner := project != nil && project.IsOwner(caller.UserID)
	if !isAuthor && !isProjectOwner {
		return forbidden("User not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		return storeErr("comment", err)
	}
	return nil
}
