package handler

import (
	"net/http"
	"strconv"

	"kraisys/internal/dto"
	"kraisys/internal/middleware"
	"kraisys/internal/service"

	"github.com/gin-gonic/gin"
)

// MaterialsHandler covers the price side of the material catalog: updates
// with history, and the history listing.
type MaterialsHandler struct{ svc service.MaterialService }

func NewMaterialsHandler(svc service.MaterialService) *MaterialsHandler {
	return &MaterialsHandler{svc: svc}
}

func (h *MaterialsHandler) UpdatePrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMaterialPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	changedBy := "system"
	if claims := middleware.GetClaims(c); claims != nil {
		changedBy = claims.Username
	}

	if err := h.svc.UpdatePrice(c.Request.Context(), id, changedBy, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MaterialsHandler) PriceHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	resp, err := h.svc.ListPriceHistory(c.Request.Context(), id, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
