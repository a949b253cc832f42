package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"verdant/internal/services"
)

type createOrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	Items []createOrderItemRequest `json:"items" binding:"dive"`
	Total float64                  `json:"total"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Placed Shipped Delivered"`
}

// CreateOrder stores the lines and total as the client sent them.
func CreateOrder(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items := make([]services.OrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, services.OrderItemInput{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.Place(ctx, id, items, req.Total)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func GetMyOrders(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/my"
		defer handlePanic(c, route)

		id, ok := caller(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.Mine(ctx, id)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetAllOrders(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := orders.All(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func UpdateOrderStatus(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id"
		defer handlePanic(c, route)

		id, ok := parseIDParam(c, route, "id")
		if !ok {
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.SetStatus(ctx, id, req.Status)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
