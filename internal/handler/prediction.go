package handler

import (
	"net/http"

	"brai/internal/models"

	"github.com/gin-gonic/gin"
)

type listQuery struct {
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=10"`
	Sort  string `form:"sort,default=desc"`
}

type combinationQuery struct {
	MaleID   string `form:"maleId" binding:"required"`
	FemaleID string `form:"femaleId" binding:"required"`
}

// CreatePrediction computes a prediction, or returns the stored one for an
// identical request with 200 instead of 201.
func (h *Handler) CreatePrediction(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	pred, created, err := h.predictor.CreatePrediction(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, pred)
}

// ListPredictions returns a page of stored predictions.
func (h *Handler) ListPredictions(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err))
		return
	}

	page, err := h.predictor.ListPredictions(c.Request.Context(), models.PageQuery{
		Page:  q.Page,
		Limit: q.Limit,
		Sort:  q.Sort,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Items,
		"total":   page.Total,
		"page":    page.Page,
		"limit":   page.Limit,
		"hasMore": page.HasMore,
	})
}

// GetPrediction returns a prediction by id.
func (h *Handler) GetPrediction(c *gin.Context) {
	pred, err := h.predictor.GetPrediction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, pred)
}

// GetPredictionByCombination returns the latest prediction for maleId x femaleId.
func (h *Handler) GetPredictionByCombination(c *gin.Context) {
	var q combinationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err))
		return
	}

	pred, err := h.predictor.GetPredictionByCombination(c.Request.Context(), q.MaleID, q.FemaleID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, pred)
}

// ListCombinations returns the combination index, optionally filtered by
// dataset and model.
func (h *Handler) ListCombinations(c *gin.Context) {
	var filter models.CombinationFilter
	if err := bindOptionalJSON(c, &filter); err != nil {
		h.fail(c, err)
		return
	}

	combos, err := h.predictor.ListCombinations(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": combos})
}
