package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-api/internal/domain"
	"shop-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderInput is a submitted cart plus shipping details.
type PlaceOrderInput struct {
	Items            []domain.CartLine
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Postcode         string
	Country          string
	Phone            string
	// Status may be empty or Pending; orders always start Pending.
	Status domain.OrderStatus
	UserID uuid.UUID
}

// OrderService defines the interface for the order workflow
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	CountOrders(ctx context.Context) (int, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// PlaceOrder creates one item per cart line and an order whose total is the
// sum of current product price times quantity. The order and its items are
// written atomically; client supplied totals are never trusted.
func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if input.Status != "" && input.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("%w: new orders must be %s", ErrInvalidStatus, domain.OrderStatusPending)
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity < 1 || line.Quantity > domain.MaxOrderQuantity {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, line.ProductID)
	}

	prices, err := s.productRepo.FindPrices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	order := &domain.Order{
		ID:               uuid.New(),
		OrderItems:       make([]*domain.OrderItem, 0, len(input.Items)),
		ShippingAddress1: input.ShippingAddress1,
		ShippingAddress2: input.ShippingAddress2,
		City:             input.City,
		Postcode:         input.Postcode,
		Country:          input.Country,
		Phone:            input.Phone,
		Status:           domain.OrderStatusPending,
		TotalPrice:       decimal.Zero,
		UserID:           input.UserID,
		DateOrdered:      time.Now().UTC(),
	}

	for _, line := range input.Items {
		price, ok := prices[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s does not exist", ErrInvalidProduct, line.ProductID)
		}

		order.TotalPrice = order.TotalPrice.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		order.OrderItems = append(order.OrderItems, &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if order.TotalPrice.GreaterThan(domain.MaxOrderTotal) {
		return nil, ErrOrderTotalTooLarge
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	populated, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		// The order is committed; fall back to the unpopulated copy.
		return order, nil
	}

	return populated, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. Setting the current status
// again succeeds without a write.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status == status {
		return order, nil
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, status)
	}

	// The write only lands if the status is still the one checked above.
	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrOrderStatusChanged) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidStatusTransition, ErrOrderStatusConflict)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = status
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (s *orderService) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	total, err := s.orderRepo.TotalSales(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute total sales: %w", err)
	}
	return total, nil
}

func (s *orderService) CountOrders(ctx context.Context) (int, error) {
	count, err := s.orderRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
