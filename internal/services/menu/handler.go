package menu

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/httpx"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
)

// Handler handles HTTP requests for menu groups, products and menus
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/menu-groups", h.CreateMenuGroup)
	api.GET("/menu-groups", h.ListMenuGroups)
	api.POST("/products", h.CreateProduct)
	api.GET("/products", h.ListProducts)
	api.POST("/menus", h.CreateMenu)
	api.GET("/menus", h.ListMenus)
}

func (h *Handler) CreateMenuGroup(c *gin.Context) {
	var req models.MenuGroupCreateRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	group, err := h.service.CreateMenuGroup(c.Request.Context(), &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "menu_group_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) ListMenuGroups(c *gin.Context) {
	groups, err := h.service.ListMenuGroups(c.Request.Context())
	if err != nil {
		h.fail(c, "menu_group_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "product_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, "product_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateMenu(c *gin.Context) {
	var req models.MenuCreateRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	menu, err := h.service.CreateMenu(c.Request.Context(), &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "menu_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (h *Handler) ListMenus(c *gin.Context) {
	menus, err := h.service.ListMenus(c.Request.Context())
	if err != nil {
		h.fail(c, "menu_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

func (h *Handler) fail(c *gin.Context, action string, err error) {
	httpx.WriteError(c, h.logger, action, err, httpx.StatusFor(err, http.StatusBadRequest))
}
