package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProjectNotStarted = "Not Started"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectOnHold     = "On Hold"
)

var ProjectStatuses = []string{ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectOnHold}

// Project is owned by one user and readable by its members. The owner is
// always present in Members.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	Status      string               `bson:"status" json:"status"`
	StartDate   time.Time            `bson:"startDate" json:"startDate"`
	EndDate     *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (p Project) IsOwner(userID primitive.ObjectID) bool {
	return p.Owner == userID
}

func (p Project) IsMember(userID primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// HasAccess reports whether userID may read the project.
func (p Project) HasAccess(userID primitive.ObjectID) bool {
	return p.IsOwner(userID) || p.IsMember(userID)
}

// ProjectRef is the short project form embedded in task responses.
type ProjectRef struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
}

// ProjectView is a project with owner and members expanded.
type ProjectView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Owner       *UserSummary       `json:"owner"`
	Members     []UserSummary      `json:"members"`
	Status      string             `json:"status"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
