package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"verdant/internal/metrics"
	"verdant/internal/models"
)

type Users struct {
	coll *mongo.Collection
}

func (r *Users) Create(ctx context.Context, u *models.User) (err error) {
	defer metrics.ObserveStore(usersCollection, "insert", time.Now(), &err)
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err = r.coll.InsertOne(ctx, u); err != nil {
		return duplicate(err)
	}
	return nil
}

func (r *Users) FindByID(ctx context.Context, id primitive.ObjectID) (_ *models.User, err error) {
	defer metrics.ObserveStore(usersCollection, "find_one", time.Now(), &err)
	var u models.User
	if err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Users) FindByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	defer metrics.ObserveStore(usersCollection, "find_one", time.Now(), &err)
	var u models.User
	if err = r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Users) FindMany(ctx context.Context, ids []primitive.ObjectID) (_ []models.User, err error) {
	defer metrics.ObserveStore(usersCollection, "find", time.Now(), &err)
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
}
