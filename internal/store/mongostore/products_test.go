package mongostore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeProductDocumentLegacyShapes(t *testing.T) {
	id := primitive.NewObjectID()
	raw := bson.M{
		"_id":      id,
		"name":     "Fiddle Leaf Fig",
		"price":    "24.50",
		"rating":   int32(4),
		"category": bson.A{"indoor", "large"},
	}

	p, err := normalizeProductDocument(raw)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if p.ID != id || p.Price != 24.5 || p.Rating != 4 || p.Category != "indoor" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if !p.InStock {
		t.Fatal("missing inStock should default to true")
	}
}

func TestNormalizeProductDocumentKeepsExplicitStock(t *testing.T) {
	p, err := normalizeProductDocument(bson.M{"name": "Cactus", "price": 3.0, "inStock": false})
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if p.InStock {
		t.Fatal("expected inStock false to be kept")
	}
	if p.Price != 3 {
		t.Fatalf("expected price 3, got %v", p.Price)
	}
}
