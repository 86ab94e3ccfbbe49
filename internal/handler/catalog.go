package handler

import (
	"net/http"

	"kraisys/internal/apierror"
	"kraisys/internal/dto"
	"kraisys/internal/model"
	"kraisys/internal/service"

	"github.com/gin-gonic/gin"
)

// catalogKinds maps URL segments onto reference tables.
var catalogKinds = map[string]model.CatalogKind{
	"perforations":  model.KindPerforation,
	"linings":       model.KindLining,
	"lastings":      model.KindLasting,
	"cutting-parts": model.KindCuttingPart,
	"materials":     model.KindMaterial,
}

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) kind(c *gin.Context) (model.CatalogKind, bool) {
	kind, ok := catalogKinds[c.Param("kind")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("unknown catalog"))
		return "", false
	}
	return kind, true
}

// List returns the active records of one reference table.
func (h *CatalogHandler) List(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	records, err := h.svc.ListActive(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list catalog"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}

// CuttingMaterials returns the material subset offered for cutting parts.
func (h *CatalogHandler) CuttingMaterials(c *gin.Context) {
	records, err := h.svc.CuttingMaterials(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list materials"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}

func (h *CatalogHandler) Create(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var req dto.CreateCatalogRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rec, err := h.svc.CreateRecord(c.Request.Context(), kind, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCatalogRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.UpdateRecord(c.Request.Context(), kind, id, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
