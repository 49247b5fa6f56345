package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type strainQuery struct {
	DatasetID string `json:"datasetId" form:"datasetId"`
}

// GetStrain returns a strain. The dataset may be narrowed with the datasetId
// query parameter, or on POST with a {"datasetId": ...} body.
func (h *Handler) GetStrain(c *gin.Context) {
	var q strainQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err))
		return
	}
	if c.Request.Method == http.MethodPost {
		if err := bindOptionalJSON(c, &q); err != nil {
			h.fail(c, err)
			return
		}
	}

	strain, err := h.strains.GetStrain(c.Request.Context(), c.Param("id"), q.DatasetID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, strain)
}
