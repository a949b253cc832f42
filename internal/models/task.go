package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskDone       = "Done"
	TaskBlocked    = "Blocked"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

var (
	TaskStatuses   = []string{TaskToDo, TaskInProgress, TaskDone, TaskBlocked}
	TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Project     primitive.ObjectID  `bson:"project" json:"project"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo" json:"assignedTo"`
	Status      string              `bson:"status" json:"status"`
	Priority    string              `bson:"priority" json:"priority"`
	DueDate     *time.Time          `bson:"dueDate" json:"dueDate"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// TaskView is a task with its project and assignee expanded.
type TaskView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Project     ProjectRef         `json:"project"`
	AssignedTo  *UserSummary       `json:"assignedTo"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	DueDate     *time.Time         `json:"dueDate"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
