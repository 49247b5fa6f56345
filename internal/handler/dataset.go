package handler

import (
	"net/http"

	"brai/internal/models"

	"github.com/gin-gonic/gin"
)

// ListDatasets returns every dataset id.
func (h *Handler) ListDatasets(c *gin.Context) {
	ids, err := h.datasets.ListDatasets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, models.DatasetList{Datasets: ids, NumberOfDatasets: len(ids)})
}

// GetDataset returns one dataset with its strains, traits and SNP info.
func (h *Handler) GetDataset(c *gin.Context) {
	ds, err := h.datasets.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, ds)
}
