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

type Projects struct {
	coll *mongo.Collection
}

func memberFilter(userID primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"owner": userID},
		bson.M{"members": userID},
	}}
}

func (r *Projects) Create(ctx context.Context, p *models.Project) (err error) {
	defer metrics.ObserveStore(projectsCollection, "insert", time.Now(), &err)
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = insertedID(res)
	return nil
}

func (r *Projects) FindByID(ctx context.Context, id primitive.ObjectID) (_ *models.Project, err error) {
	defer metrics.ObserveStore(projectsCollection, "find_one", time.Now(), &err)
	var p models.Project
	if err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Projects) List(ctx context.Context, f store.ProjectFilter) (_ []models.Project, err error) {
	defer metrics.ObserveStore(projectsCollection, "find", time.Now(), &err)
	filter := bson.M{}
	if !f.Member.IsZero() {
		filter = memberFilter(f.Member)
	}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return findAll[models.Project](ctx, r.coll, filter, opts)
}

func (r *Projects) Count(ctx context.Context, member primitive.ObjectID) (_ int64, err error) {
	defer metrics.ObserveStore(projectsCollection, "count", time.Now(), &err)
	return r.coll.CountDocuments(ctx, memberFilter(member))
}

func (r *Projects) EndingBetween(ctx context.Context, tr store.TimeRange) (_ []models.Project, err error) {
	defer metrics.ObserveStore(projectsCollection, "find", time.Now(), &err)
	filter := bson.M{"endDate": bson.M{"$gte": tr.From, "$lt": tr.To}}
	opts := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Project](ctx, r.coll, filter, opts)
}

func (r *Projects) Update(ctx context.Context, id primitive.ObjectID, patch store.ProjectPatch) (_ *models.Project, err error) {
	defer metrics.ObserveStore(projectsCollection, "update", time.Now(), &err)
	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.Members != nil {
		set["members"] = patch.Members
	}

	var p models.Project
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *Projects) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) (err error) {
	defer metrics.ObserveStore(projectsCollection, "update", time.Now(), &err)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updatedAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Projects) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	defer metrics.ObserveStore(projectsCollection, "delete", time.Now(), &err)
	return deleteByID(ctx, r.coll, id)
}
