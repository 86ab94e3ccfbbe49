package handler

import (
	"net/http"

	"kraisys/internal/dto"
	"kraisys/internal/service"

	"github.com/gin-gonic/gin"
)

// SpecificationsHandler exposes the variant editor workflow over HTTP:
// prefill an editor, save the edited draft, list and inspect the results.
type SpecificationsHandler struct{ svc service.SpecificationService }

func NewSpecificationsHandler(svc service.SpecificationService) *SpecificationsHandler {
	return &SpecificationsHandler{svc: svc}
}

// NewVariantEditor prefills an editable draft for a new variant of a model.
func (h *SpecificationsHandler) NewVariantEditor(c *gin.Context) {
	modelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	editor, err := h.svc.LoadForVariantCreation(c.Request.Context(), modelID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, editor)
}

// EditVariantEditor reopens a persisted variant as an editable draft.
func (h *SpecificationsHandler) EditVariantEditor(c *gin.Context) {
	specID, ok := pathID(c, "id")
	if !ok {
		return
	}
	editor, err := h.svc.LoadForVariantEdit(c.Request.Context(), specID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, editor)
}

// SaveVariant validates and persists a variant draft. Creates when spec_id is
// zero, updates otherwise.
func (h *SpecificationsHandler) SaveVariant(c *gin.Context) {
	var req dto.SaveVariantRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SaveVariant(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	status := http.StatusOK
	if req.SpecID == 0 {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// AppendPart resolves a cutting-part template and returns the posted part
// list with the template's row appended.
func (h *SpecificationsHandler) AppendPart(c *gin.Context) {
	var req dto.AppendPartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	parts, err := h.svc.AppendPart(c.Request.Context(), req.TemplateID, req.CuttingParts)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cutting_parts": parts})
}

func (h *SpecificationsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSpecification(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SpecificationsHandler) ListVariants(c *gin.Context) {
	modelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListVariants(c.Request.Context(), modelID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

// SaveBase replaces the allowed option sets and reference cutting-part list
// of a model's base specification.
func (h *SpecificationsHandler) SaveBase(c *gin.Context) {
	modelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SaveBaseSpecificationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SaveBase(c.Request.Context(), modelID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeactivateBase refuses while variants still reference the model (409).
func (h *SpecificationsHandler) DeactivateBase(c *gin.Context) {
	modelID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateBase(c.Request.Context(), modelID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
