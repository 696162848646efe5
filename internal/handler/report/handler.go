package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/handler"
	"github.com/woundtrack/supply-api/internal/middleware"
	"github.com/woundtrack/supply-api/internal/service/report"
)

type Handler struct {
	service report.Service
}

func NewHandler(service report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/dashboard", h.Dashboard)
		reports.GET("/itemized", h.Itemized)
	}
}

func facilityFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("facilityId")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (h *Handler) Dashboard(c *gin.Context) {
	facilityID, ok := facilityFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid facilityId"))
		return
	}

	result, err := h.service.Dashboard(
		c.Request.Context(),
		middleware.IdentityFromContext(c),
		facilityID,
		c.Query("month"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewReportResponse(string(result.Mode), result.Rows))
}

func (h *Handler) Itemized(c *gin.Context) {
	facilityID, ok := facilityFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid facilityId"))
		return
	}

	result, err := h.service.Itemized(
		c.Request.Context(),
		middleware.IdentityFromContext(c),
		facilityID,
		c.Query("month"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewReportResponse(string(result.Mode), result.Rows))
}
