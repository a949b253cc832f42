package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPlaced    = "Placed"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
)

var OrderStatuses = []string{OrderPlaced, OrderShipped, OrderDelivered}

// OrderItem is a snapshot of a product line at checkout time, not a live
// reference to the catalog.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Order defines the persisted order document. Only Status changes after
// creation.
type Order struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user" json:"user"`
	Items    []OrderItem        `bson:"items" json:"items"`
	Total    float64            `bson:"total" json:"total"`
	PlacedAt time.Time          `bson:"placedAt" json:"placedAt"`
	Status   string             `bson:"status" json:"status"`
}
