package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"verdant/internal/metrics"
	"verdant/internal/models"
	"verdant/internal/store"
)

type Tasks struct {
	coll *mongo.Collection
}

func taskQuery(f store.TaskFilter) bson.M {
	filter := bson.M{}
	if f.Project != nil {
		filter["project"] = *f.Project
	}
	if f.AssignedTo != nil {
		filter["assignedTo"] = *f.AssignedTo
	}
	return filter
}

func (r *Tasks) Create(ctx context.Context, t *models.Task) (err error) {
	defer metrics.ObserveStore(tasksCollection, "insert", time.Now(), &err)
	res, err := r.coll.InsertOne(ctx, t)
	if err != nil {
		return err
	}
	t.ID = insertedID(res)
	return nil
}

func (r *Tasks) FindByID(ctx context.Context, id primitive.ObjectID) (_ *models.Task, err error) {
	defer metrics.ObserveStore(tasksCollection, "find_one", time.Now(), &err)
	var t models.Task
	if err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *Tasks) List(ctx context.Context, f store.TaskFilter) (_ []models.Task, err error) {
	defer metrics.ObserveStore(tasksCollection, "find", time.Now(), &err)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Task](ctx, r.coll, taskQuery(f), opts)
}

func (r *Tasks) Count(ctx context.Context, f store.TaskFilter) (_ int64, err error) {
	defer metrics.ObserveStore(tasksCollection, "count", time.Now(), &err)
	return r.coll.CountDocuments(ctx, taskQuery(f))
}

func (r *Tasks) DueBetween(ctx context.Context, tr store.TimeRange) (_ []models.Task, err error) {
	defer metrics.ObserveStore(tasksCollection, "find", time.Now(), &err)
	filter := bson.M{"dueDate": bson.M{"$gte": tr.From, "$lt": tr.To}}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Task](ctx, r.coll, filter, opts)
}

func (r *Tasks) Update(ctx context.Context, id primitive.ObjectID, patch store.TaskPatch) (_ *models.Task, err error) {
	defer metrics.ObserveStore(tasksCollection, "update", time.Now(), &err)
	set := bson.M{
		"dueDate":    patch.DueDate,
		"assignedTo": patch.AssignedTo,
		"updatedAt":  patch.UpdatedAt,
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}

	var t models.Task
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&t)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *Tasks) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	defer metrics.ObserveStore(tasksCollection, "delete", time.Now(), &err)
	return deleteByID(ctx, r.coll, id)
}
