package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment belongs to a task. Project is copied from the task when the
// comment is created.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text      string             `bson:"text" json:"text"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Task      primitive.ObjectID `bson:"task" json:"task"`
	Project   primitive.ObjectID `bson:"project" json:"project"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Text      string             `json:"text"`
	User      *UserSummary       `json:"user"`
	Task      primitive.ObjectID `json:"task"`
	Project   primitive.ObjectID `json:"project"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
