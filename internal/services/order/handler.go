package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/httpx"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the order endpoints under /api/orders
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:orderId", h.GetOrder)
	orders.PUT("/:orderId/order-status", h.ChangeOrderStatus)
	orders.GET("/:orderId/history", h.OrderHistory)
}

// CreateOrder handles POST /api/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "order_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ChangeOrderStatus handles PUT /api/orders/{orderId}/order-status
func (h *Handler) ChangeOrderStatus(c *gin.Context) {
	orderID, err := httpx.ParseID(c, "orderId")
	if err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	var req models.ChangeOrderStatusRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	order, err := h.service.ChangeOrderStatus(c.Request.Context(), orderID, &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "order_status_change_failed", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := httpx.ParseID(c, "orderId")
	if err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, "order_lookup_failed", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		h.fail(c, "order_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// OrderHistory handles GET /api/orders/{orderId}/history
func (h *Handler) OrderHistory(c *gin.Context) {
	orderID, err := httpx.ParseID(c, "orderId")
	if err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	history, err := h.service.OrderHistory(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, "order_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) fail(c *gin.Context, action string, err error) {
	httpx.WriteError(c, h.logger, action, err, httpx.StatusFor(err, http.StatusBadRequest))
}
