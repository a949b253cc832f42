package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"verdant/internal/logging"
)

func ensureIndexes(db *mongo.Database, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		logging.Error().Err(err).Str("collection", collection).Msg("index creation failed")
		return err
	}
	logging.Info().Str("collection", collection).Strs("indexes", names).Msg("indexes ensured")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "users", mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	})
}

func EnsureProductIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "products",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_index"),
		},
	)
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "orders", mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "placedAt", Value: -1}},
		Options: options.Index().SetName("user_placedAt_index"),
	})
}

func EnsureProjectIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "projects",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetName("owner_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("members_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "endDate", Value: 1}},
			Options: options.Index().SetName("endDate_index"),
		},
	)
}

func EnsureTaskIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "tasks",
		mongo.IndexModel{
			Keys:    bson.D{{Key: "project", Value: 1}},
			Options: options.Index().SetName("project_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "assignedTo", Value: 1}},
			Options: options.Index().SetName("assignedTo_index"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "dueDate", Value: 1}},
			Options: options.Index().SetName("dueDate_index"),
		},
	)
}

func EnsureCommentIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "comments", mongo.IndexModel{
		Keys:    bson.D{{Key: "task", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("task_createdAt_index"),
	})
}

// EnsureStoreIndexes covers the plant store collections.
func EnsureStoreIndexes(db *mongo.Database) error {
	return errors.Join(
		EnsureUserIndexes(db),
		EnsureProductIndexes(db),
		EnsureOrderIndexes(db),
	)
}

// EnsureProjectHubIndexes covers the project tool collections.
func EnsureProjectHubIndexes(db *mongo.Database) error {
	return errors.Join(
		EnsureUserIndexes(db),
		EnsureProjectIndexes(db),
		EnsureTaskIndexes(db),
		EnsureCommentIndexes(db),
	)
}
