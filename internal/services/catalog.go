package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/models"
	"verdant/internal/store"
)

type Catalog struct {
	products store.Products
	clock    Clock
}

func NewCatalog(products store.Products, clock Clock) *Catalog {
	return &Catalog{products: products, clock: clock}
}

type ProductInput struct {
	Name        string
	Price       float64
	Image       string
	Description string
	Category    string
	PlantCare   string
	Size        string
	InStock     *bool
	Rating      float64
}

func validateRating(r float64) error {
	if r < 0 || r > 5 {
		return invalid("validation failed", "rating must be between 0 and 5")
	}
	return nil
}

func (s *Catalog) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	var details []string
	if strings.TrimSpace(in.Name) == "" {
		details = append(details, "name is required")
	}
	if strings.TrimSpace(in.Image) == "" {
		details = append(details, "image is required")
	}
	if in.Price < 0 {
		details = append(details, "price must not be negative")
	}
	if in.Rating < 0 || in.Rating > 5 {
		details = append(details, "rating must be between 0 and 5")
	}
	if len(details) > 0 {
		return nil, invalid("validation failed", details...)
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Description: in.Description,
		Category:    in.Category,
		PlantCare:   in.PlantCare,
		Size:        in.Size,
		InStock:     in.InStock == nil || *in.InStock,
		Rating:      in.Rating,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeErr("product", err)
	}
	return p, nil
}

// ProductList is one page of products. Page and Limit are zero when the
// request did not ask for paging.
type ProductList struct {
	Products []models.Product
	Total    int64
	Page     int64
	Limit    int64
}

func (s *Catalog) List(ctx context.Context, category, search string, page, limit int64) (*ProductList, error) {
	f := store.ProductFilter{
		Category: strings.TrimSpace(category),
		Search:   strings.TrimSpace(search),
	}
	if limit > 0 {
		f.Page = store.Page{Skip: (page - 1) * limit, Limit: limit}
	}
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, storeErr("products", err)
	}
	return &ProductList{Products: products, Total: total, Page: page, Limit: limit}, nil
}

func (s *Catalog) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("product", err)
	}
	return p, nil
}

func (s *Catalog) Update(ctx context.Context, id primitive.ObjectID, patch store.ProductPatch) (*models.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("validation failed", "name must not be empty")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, invalid("validation failed", "price must not be negative")
	}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	p, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr("product", err)
	}
	return p, nil
}

func (s *Catalog) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return storeErr("product", err)
	}
	return nil
}
