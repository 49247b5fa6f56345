package models

import (
	"strings"
	"time"
)

// Prediction modes.
const (
	ModeBaseline = "baseline"
	ModeAdvanced = "advanced"
)

// Sort orders accepted by prediction listings.
const (
	SortDesc = "desc"
	SortAsc  = "asc"
)

// PhenotypePrediction is the predicted value of a single trait.
type PhenotypePrediction struct {
	Value      TraitValue `json:"value"`
	Confidence float64    `json:"confidence"`
	Grade      *int       `json:"grade,omitempty"`
}

// Prediction is a computed offspring phenotype estimate for a male x female cross.
type Prediction struct {
	ID                 string                         `json:"id"`
	DatasetID          string                         `json:"datasetId"`
	ModelID            string                         `json:"modelId"`
	MaleStrainID       string                         `json:"maleStrainId"`
	FemaleStrainID     string                         `json:"femaleStrainId"`
	MaleStrain         *Strain                        `json:"maleStrain,omitempty"`
	FemaleStrain       *Strain                        `json:"femaleStrain,omitempty"`
	PredictedPhenotype map[string]PhenotypePrediction `json:"predictedPhenotype"`
	OverallScore       float64                        `json:"overallScore"`
	Mode               string                         `json:"mode"`
	CreatedAt          time.Time                      `json:"createdAt"`
}

// CombinationKey returns the "{female}-{male}" key of the prediction's parents.
func (p *Prediction) CombinationKey() string {
	return CombinationKey(p.MaleStrainID, p.FemaleStrainID)
}

// CombinationKey builds the lookup key for an ordered parent pair.
func CombinationKey(maleID, femaleID string) string {
	return femaleID + "-" + maleID
}

// PredictionRequest is the body of POST /api/predictions.
type PredictionRequest struct {
	DatasetID      string `json:"datasetId" binding:"required"`
	ModelID        string `json:"modelId" binding:"required"`
	MaleStrainID   string `json:"maleStrainId" binding:"required"`
	FemaleStrainID string `json:"femaleStrainId" binding:"required"`
}

// PageQuery selects a page of stored predictions.
type PageQuery struct {
	Page  int
	Limit int
	Sort  string
}

// Offset is the index of the first item on the page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Ascending reports whether the query asks for oldest-first ordering.
func (q PageQuery) Ascending() bool {
	return q.Sort == SortAsc
}

// NormalizeSort maps user input to SortAsc or SortDesc. Empty input means SortDesc.
func NormalizeSort(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "desc", "descending":
		return SortDesc, true
	case "asc", "ascending":
		return SortAsc, true
	}
	return "", false
}

// PredictionPage is one page of a prediction listing.
type PredictionPage struct {
	Items   []*Prediction `json:"data"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"hasMore"`
}

// Combination is an entry of the combination index.
type Combination struct {
	Key            string `json:"key"`
	MaleStrainID   string `json:"maleStrainId"`
	FemaleStrainID string `json:"femaleStrainId"`
	PredictionID   string `json:"predictionId"`
}

// CombinationFilter narrows a combination listing. Empty fields match all.
type CombinationFilter struct {
	DatasetID string `json:"datasetId"`
	ModelID   string `json:"modelId"`
}

// Accepts reports whether p passes the filter.
func (f CombinationFilter) Accepts(p *Prediction) bool {
	if f.DatasetID != "" && p.DatasetID != f.DatasetID {
		return false
	}
	if f.ModelID != "" && p.ModelID != f.ModelID {
		return false
	}
	return true
}
