package supply

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/handler"
	"github.com/woundtrack/supply-api/internal/middleware"
	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/supply"
)

type Handler struct {
	service supply.Service
}

func NewHandler(service supply.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	supplies := r.Group("/supplies")
	{
		supplies.POST("", h.CreateSupply)
		supplies.GET("", h.ListSupplies)
		supplies.GET("/:id", h.GetSupply)
		supplies.PUT("/:id", h.UpdateSupply)
		supplies.DELETE("/:id", h.DeleteSupply)
		supplies.POST("/retire", h.RetireSupplies)
	}
}

func (h *Handler) CreateSupply(c *gin.Context) {
	var req model.CreateSupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateSupply(c.Request.Context(), middleware.IdentityFromContext(c), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid supply ID"))
		return
	}

	found, err := h.service.GetSupply(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid supply ID"))
		return
	}

	var req model.UpdateSupplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateSupply(c.Request.Context(), middleware.IdentityFromContext(c), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteSupply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid supply ID"))
		return
	}

	if err := h.service.DeleteSupply(c.Request.Context(), middleware.IdentityFromContext(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "supply deleted"}))
}

func (h *Handler) ListSupplies(c *gin.Context) {
	supplies, err := h.service.ListSupplies(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(supplies))
}

func (h *Handler) RetireSupplies(c *gin.Context) {
	var req model.RetireSuppliesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.RetireSupplies(c.Request.Context(), middleware.IdentityFromContext(c), req.CodeStart, req.CodeEnd)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
