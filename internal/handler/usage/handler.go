package usage

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/woundtrack/supply-api/internal/handler"
	"github.com/woundtrack/supply-api/internal/middleware"
	"github.com/woundtrack/supply-api/internal/model"
	"github.com/woundtrack/supply-api/internal/service/usage"
)

type Handler struct {
	service usage.Service
}

func NewHandler(service usage.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/usage", h.RecordUsage)
	r.GET("/usage/:patientId", h.ListUsage)
}

func (h *Handler) RecordUsage(c *gin.Context) {
	var req model.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patientId"))
		return
	}
	supplyID, err := uuid.Parse(req.SupplyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid supplyId"))
		return
	}

	record, err := h.service.RecordUsage(
		c.Request.Context(),
		middleware.IdentityFromContext(c),
		patientID,
		supplyID,
		req.DayOfMonth,
		*req.Quantity,
		req.WoundDiagnosis,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) ListUsage(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	records, err := h.service.ListUsage(c.Request.Context(), middleware.IdentityFromContext(c), patientID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
