package services

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/auth"
	"verdant/internal/logging"
	"verdant/internal/models"
	"verdant/internal/store"
)

type Orders struct {
	orders store.Orders
	clock  Clock
}

func NewOrders(orders store.Orders, clock Clock) *Orders {
	return &Orders{orders: orders, clock: clock}
}

type OrderItemInput struct {
	ProductID string
	Name      string
	Quantity  int
	Price     float64
}

// Place stores the order exactly as submitted; lines and total are not
// checked against the catalog and stock is not reserved.
func (s *Orders) Place(ctx context.Context, caller auth.Identity, items []OrderItemInput, total float64) (*models.Order, error) {
	if len(items) == 0 {
		return nil, invalid("No items to order")
	}

	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, invalid("validation failed", "productId is invalid")
		}
		lines = append(lines, models.OrderItem{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	order := &models.Order{
		UserID:   caller.UserID,
		Items:    lines,
		Total:    total,
		PlacedAt: s.clock.Now(),
		Status:   models.OrderPlaced,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storeErr("order", err)
	}

	logging.Ctx(ctx).Info().
		Str("order_id", order.ID.Hex()).
		Str("user_id", caller.UserID.Hex()).
		Int("items", len(lines)).
		Msg("order placed")
	return order, nil
}

func (s *Orders) Mine(ctx context.Context, caller auth.Identity) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("orders", err)
	}
	return orders, nil
}

func (s *Orders) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, storeErr("orders", err)
	}
	return orders, nil
}

// SetStatus moves an order to any known status; there is no transition
// graph.
func (s *Orders) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	if !slices.Contains(models.OrderStatuses, status) {
		return nil, invalid("validation failed", "status must be one of Placed, Shipped, Delivered")
	}
	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storeErr("order", err)
	}
	return order, nil
}
