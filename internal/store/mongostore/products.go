package mongostore

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"verdant/internal/metrics"
	"verdant/internal/models"
	"verdant/internal/store"
)

type Products struct {
	coll *mongo.Collection
}

func (r *Products) Create(ctx context.Context, p *models.Product) (err error) {
	defer metrics.ObserveStore(productsCollection, "insert", time.Now(), &err)
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = insertedID(res)
	return nil
}

func (r *Products) FindByID(ctx context.Context, id primitive.ObjectID) (_ *models.Product, err error) {
	defer metrics.ObserveStore(productsCollection, "find_one", time.Now(), &err)
	var raw bson.M
	if err = r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		return nil, notFound(err)
	}
	p, err := normalizeProductDocument(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func productQuery(f store.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		filter["name"] = containsFold(f.Search)
	}
	return filter
}

func (r *Products) List(ctx context.Context, f store.ProductFilter) (_ []models.Product, _ int64, err error) {
	defer metrics.ObserveStore(productsCollection, "find", time.Now(), &err)
	filter := productQuery(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Page.Limit > 0 {
		opts.SetSkip(f.Page.Skip).SetLimit(f.Page.Limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *Products) Update(ctx context.Context, id primitive.ObjectID, patch store.ProductPatch) (_ *models.Product, err error) {
	defer metrics.ObserveStore(productsCollection, "update", time.Now(), &err)
	set := bson.M{}
	setIf := func(key string, v any, ok bool) {
		if ok {
			set[key] = v
		}
	}
	setIf("name", deref(patch.Name), patch.Name != nil)
	setIf("price", deref(patch.Price), patch.Price != nil)
	setIf("image", deref(patch.Image), patch.Image != nil)
	setIf("description", deref(patch.Description), patch.Description != nil)
	setIf("category", deref(patch.Category), patch.Category != nil)
	setIf("plantCare", deref(patch.PlantCare), patch.PlantCare != nil)
	setIf("size", deref(patch.Size), patch.Size != nil)
	setIf("inStock", deref(patch.InStock), patch.InStock != nil)
	setIf("rating", deref(patch.Rating), patch.Rating != nil)

	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var raw bson.M
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter).Decode(&raw)
	if err != nil {
		return nil, notFound(err)
	}
	p, err := normalizeProductDocument(raw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Products) Delete(ctx context.Context, id primitive.ObjectID) (err error) {
	defer metrics.ObserveStore(productsCollection, "delete", time.Now(), &err)
	return deleteByID(ctx, r.coll, id)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// normalizeProductDocument accepts catalog rows written by older admin tools:
// prices and ratings stored as strings or integers, a missing inStock flag
// and category stored as a list.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cats, ok := raw["category"].(bson.A); ok {
		raw["category"] = ""
		if len(cats) > 0 {
			if first, ok := cats[0].(string); ok {
				raw["category"] = first
			}
		}
	}

	raw["price"] = toFloat(raw["price"])
	raw["rating"] = toFloat(raw["rating"])

	switch typed := raw["inStock"].(type) {
	case bool:
	case string:
		raw["inStock"] = typed != "false"
	default:
		raw["inStock"] = true
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func toFloat(v any) float64 {
	switch typed := v.(type) {
	case float64:
		return typed
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case int:
		return float64(typed)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(typed.String(), 64)
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
