package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"verdant/internal/services"
	"verdant/internal/store"
)

type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Image       string   `json:"image" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PlantCare   string   `json:"plantCare"`
	Size        string   `json:"size"`
	InStock     *bool    `json:"inStock"`
	Rating      float64  `json:"rating" binding:"gte=0,lte=5"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	PlantCare   *string  `json:"plantCare"`
	Size        *string  `json:"size"`
	InStock     *bool    `json:"inStock"`
	Rating      *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

// GetProducts is public. Paging applies only when both page and limit are
// given; the unpaged total is sent in X-Total-Count.
func GetProducts(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := catalog.List(ctx, c.Query("category"), c.Query("search"), page, limit)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.Header("X-Total-Count", strconv.FormatInt(list.Total, 10))
		c.JSON(http.StatusOK, list.Products)
	}
}

func GetProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := catalog.Get(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := catalog.Create(ctx, services.ProductInput{
			Name:        req.Name,
			Price:       *req.Price,
			Image:       req.Image,
			Description: req.Description,
			Category:    req.Category,
			PlantCare:   req.PlantCare,
			Size:        req.Size,
			InStock:     req.InStock,
			Rating:      req.Rating,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := catalog.Update(ctx, id, store.ProductPatch{
			Name:        req.Name,
			Price:       req.Price,
			Image:       req.Image,
			Description: req.Description,
			Category:    req.Category,
			PlantCare:   req.PlantCare,
			Size:        req.Size,
			InStock:     req.InStock,
			Rating:      req.Rating,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := catalog.Delete(ctx, id); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
