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
)

type Comments struct {
	coll *mongo.Collection
}

func (r *Comments) Create(ctx context.Context, c *models.Comment) (err error) {
	defer metrics.ObserveStore(commentsCollection, "insert", time.Now(), &err)
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = insertedID(res)
	return nil
}

func (r *Comments) FindByID(ctx context.Context, id primitive.ObjectID) (_ *models.Comment, err error) {
	defer metrics.ObserveStore(commentsCollection, "find_one", time.Now(), &err)
	var c models.Comment
	if err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Comments) ListByTask(ctx context.Context, taskID primitive.ObjectID) (_ []models.Comment, err error) {
	defer metrics.ObserveStore(commentsCollection, "find", time.Now(), &err)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Comment](ctx, r.coll, bson.M{"task": taskID}, opts)
}

func (r *Comments) UpdateText(ctx context.Context, id primitive.ObjectID, text string, at time.Time) (_ *models.Comment, err error) {
	defer metrics.ObserveStore(commentsCollection, "update", time.Now(), &err)
	var c models.Comment
	update := bson.M{"$set": bson.M{"text": text, "updatedAt": at}}
	if err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Comments) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	defer metrics.ObserveStore(commentsCollection, "delete", time.Now(), &err)
	return deleteByID(ctx, r.coll, id)
}
