package models

// Model describes a breeding-prediction model. Models backed by trained
// regressors carry Traits, LineIDs and NPcs from their meta file.
type Model struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	ModelType   string             `json:"modelType"`
	ModelDetail string             `json:"modelDetail"`
	TrainedBy   string             `json:"trainedBy,omitempty"`
	Traits      []string           `json:"traits,omitempty"`
	LineIDs     []string           `json:"lineIds,omitempty"`
	NPcs        int                `json:"nPcs,omitempty"`
	Confidence  map[string]float64 `json:"confidence,omitempty"`
	Artifacts   map[string]string  `json:"artifacts,omitempty"`
	Advanced    bool               `json:"advanced"`
}

// ModelList is the payload of the model listing endpoint.
type ModelList struct {
	Models         []string `json:"models"`
	NumberOfModels int      `json:"numberOfModels"`
}
