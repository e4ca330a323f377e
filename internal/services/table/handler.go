package table

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/httpx"
	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
)

// Handler handles HTTP requests for order tables
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// RegisterRoutes mounts the table endpoints under /api/tables
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tables := api.Group("/tables")
	tables.POST("", h.CreateTable)
	tables.GET("", h.ListTables)
	tables.GET("/:tableId", h.GetTable)
	tables.PUT("/:tableId/empty", h.ChangeEmpty)
}

func (h *Handler) CreateTable(c *gin.Context) {
	var req models.TableCreateRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	table, err := h.service.CreateTable(c.Request.Context(), &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "table_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.service.ListTables(c.Request.Context())
	if err != nil {
		h.fail(c, "table_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *Handler) GetTable(c *gin.Context) {
	id, err := httpx.ParseID(c, "tableId")
	if err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	table, err := h.service.GetTable(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "table_lookup_failed", err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// ChangeEmpty handles PUT /api/tables/{tableId}/empty
func (h *Handler) ChangeEmpty(c *gin.Context) {
	id, err := httpx.ParseID(c, "tableId")
	if err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	var req models.TableChangeEmptyRequest
	if err := httpx.DecodeJSON(c, &req); err != nil {
		h.fail(c, "validation_failed", err)
		return
	}

	table, err := h.service.ChangeEmpty(c.Request.Context(), id, &req, httpx.RequestID(c))
	if err != nil {
		h.fail(c, "table_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *Handler) fail(c *gin.Context, action string, err error) {
	httpx.WriteError(c, h.logger, action, err, httpx.StatusFor(err, http.StatusNotFound))
}
