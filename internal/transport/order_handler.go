package transport

import (
	"net/http"

	"shop-api/internal/domain"
	"shop-api/internal/middleware"
	"shop-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderItemRequest is one cart line
type OrderItemRequest struct {
	Product  string `json:"product" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=10000"`
}

// PlaceOrderRequest is the checkout payload. Any totalPrice sent by the
// client is ignored.
type PlaceOrderRequest struct {
	OrderItems       []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string             `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string             `json:"shippingAddress2"`
	City             string             `json:"city" validate:"required"`
	Postcode         string             `json:"postcode" validate:"required"`
	Country          string             `json:"country" validate:"required"`
	Phone            string             `json:"phone" validate:"required"`
	Status           string             `json:"status"`
	User             string             `json:"user" validate:"omitempty,uuid"`
}

// UpdateOrderStatusRequest is the only accepted order update
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TotalSalesResponse is the payload of GET /orders/get/totalsales
type TotalSalesResponse struct {
	TotalSales decimal.Decimal `json:"totalsales"`
}

// OrderHandler handles HTTP requests for the order workflow
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes mounts the order routes. Every route requires an
// authenticated caller.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.PlaceOrder)
		r.Get("/{id}", h.GetOrder)
		r.With(middleware.RequireSelfOrAdmin("userid", h.logger)).
			Get("/get/userorders/{userid}", h.ListUserOrders)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.logger))
			r.Get("/", h.ListOrders)
			r.Get("/get/totalsales", h.TotalSales)
			r.Get("/get/count", h.CountOrders)
			r.Put("/{id}", h.UpdateStatus)
			r.Delete("/{id}", h.DeleteOrder)
		})
	})
}

// PlaceOrder places an order for the caller. Administrators may place an
// order on behalf of another user by naming them in the payload.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	userID := callerID
	if req.User != "" {
		requested := uuid.MustParse(req.User)
		if requested != callerID && !middleware.IsAdmin(r.Context()) {
			h.logger.Warn("User attempted to place an order for another user",
				zap.String("user_id", callerID.String()),
				zap.String("target_user_id", requested.String()),
			)
			middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		userID = requested
	}

	input := service.PlaceOrderInput{
		Items:            make([]domain.CartLine, 0, len(req.OrderItems)),
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Postcode:         req.Postcode,
		Country:          req.Country,
		Phone:            req.Phone,
		Status:           domain.OrderStatus(req.Status),
		UserID:           userID,
	}
	for _, item := range req.OrderItems {
		input.Items = append(input.Items, domain.CartLine{
			ProductID: uuid.MustParse(item.Product),
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), input)
	if err != nil {
		respondWithError(w, h.logger, "Failed to place order", err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total_price", order.TotalPrice.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrder returns a populated order to its owner or an administrator
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		respondWithError(w, h.logger, "Failed to get order", err)
		return
	}

	if order.UserID != callerID && !middleware.IsAdmin(r.Context()) {
		h.logger.Warn("User attempted to read another user's order",
			zap.String("user_id", callerID.String()),
			zap.String("order_id", id.String()),
		)
		middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to list orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userid", "user")
	if !ok {
		return
	}

	orders, err := h.orderService.ListUserOrders(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, "Failed to list user orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus changes only the status of an order
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order status validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		respondWithError(w, h.logger, "Failed to update order status", err)
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// DeleteOrder removes an order together with its items
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
		respondWithError(w, h.logger, "Failed to delete order", err)
		return
	}

	h.logger.Info("Order deleted", zap.String("order_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "the order is deleted"})
}

func (h *OrderHandler) TotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.orderService.TotalSales(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to compute total sales", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, TotalSalesResponse{TotalSales: total})
}

func (h *OrderHandler) CountOrders(w http.ResponseWriter, r *http.Request) {
	count, err := h.orderService.CountOrders(r.Context())
	if err != nil {
		respondWithError(w, h.logger, "Failed to count orders", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, countResponse{Count: count})
}
