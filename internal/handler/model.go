package handler

import (
	"net/http"

	"brai/internal/models"

	"github.com/gin-gonic/gin"
)

// ListModels returns every model id.
func (h *Handler) ListModels(c *gin.Context) {
	ids, err := h.models.ListModels(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, models.ModelList{Models: ids, NumberOfModels: len(ids)})
}

// GetModel returns one model's metadata.
func (h *Handler) GetModel(c *gin.Context) {
	m, err := h.models.GetModel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, m)
}
