// Package store defines the persistence contracts used by the services.
// mongostore is the production implementation; memstore keeps everything in
// process for tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Page selects a window of results. A zero Limit means no paging.
type Page struct {
	Skip  int64
	Limit int64
}

type ProductFilter struct {
	Category string
	Search   string
	Page     Page
}

type ProjectFilter struct {
	// Member restricts results to projects owned by or shared with this user.
	Member primitive.ObjectID
	Search string
	Status string
}

type TaskFilter struct {
	Project    *primitive.ObjectID
	AssignedTo *primitive.ObjectID
}

// TimeRange is half open: From <= t < To.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ProductPatch carries the fields to overwrite; nil fields are left alone.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Image       *string
	Description *string
	Category    *string
	PlantCare   *string
	Size        *string
	InStock     *bool
	Rating      *float64
}

// ProjectPatch carries the fields to overwrite; nil fields are left alone.
// A non-nil Members replaces the whole member list.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
	EndDate     *time.Time
	Members     []primitive.ObjectID
	UpdatedAt   time.Time
}

// TaskPatch overwrites Title, Description, Status and Priority when non-nil.
// DueDate and AssignedTo are always written, so nil clears them.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssignedTo  *primitive.ObjectID
	UpdatedAt   time.Time
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindMany returns the users that exist, in no particular order.
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	// ListByUser and ListAll sort by placement time, newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
}

type Projects interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	// List sorts by creation time, newest first.
	List(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	Count(ctx context.Context, member primitive.ObjectID) (int64, error)
	EndingBetween(ctx context.Context, r TimeRange) ([]models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, patch ProjectPatch) (*models.Project, error)
	// Touch sets updatedAt only. ErrNotFound when the project is gone.
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Tasks interface {
	Create(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, f TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, f TaskFilter) (int64, error)
	DueBetween(ctx context.Context, r TimeRange) ([]models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, patch TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Comments interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// ListByTask sorts by creation time, oldest first.
	ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Comment, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string, at time.Time) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TxRunner runs fn so that all store calls made with the ctx it receives
// commit or abort together.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles every repository an app may need.
type Store struct {
	Users    Users
	Products Products
	Orders   Orders
	Projects Projects
	Tasks    Tasks
	Comments Comments
	Tx       TxRunner
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}
