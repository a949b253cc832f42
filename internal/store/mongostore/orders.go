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

type Orders struct {
	coll *mongo.Collection
}

var newestOrdersFirst = options.Find().SetSort(bson.D{{Key: "placedAt", Value: -1}, {Key: "_id", Value: -1}})

func (r *Orders) Create(ctx context.Context, o *models.Order) (err error) {
	defer metrics.ObserveStore(ordersCollection, "insert", time.Now(), &err)
	res, err := r.coll.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	o.ID = insertedID(res)
	return nil
}

func (r *Orders) ListByUser(ctx context.Context, userID primitive.ObjectID) (_ []models.Order, err error) {
	defer metrics.ObserveStore(ordersCollection, "find", time.Now(), &err)
	return findAll[models.Order](ctx, r.coll, bson.M{"user": userID}, newestOrdersFirst)
}

func (r *Orders) ListAll(ctx context.Context) (_ []models.Order, err error) {
	defer metrics.ObserveStore(ordersCollection, "find", time.Now(), &err)
	return findAll[models.Order](ctx, r.coll, bson.M{}, newestOrdersFirst)
}

func (r *Orders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (_ *models.Order, err error) {
	defer metrics.ObserveStore(ordersCollection, "update", time.Now(), &err)
	var o models.Order
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}}, returnAfter).Decode(&o)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}
