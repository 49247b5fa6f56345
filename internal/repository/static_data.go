package repository

import "brai/internal/models"

// Built-in tables served when the catalogs run in static mode.

var staticDatasets = map[string]models.Dataset{
	"TC1": {
		ID:        "TC1",
		Name:      "TC1",
		Strains:   []string{"TC1_001", "TC1_002", "TC1_003", "TC1_022"},
		Phenotype: []string{"weight", "length", "width", "ratio", "brix", "firmness", "skinThickness", "shape"},
		SNPInfo: models.SNPInfo{
			Chr:         []string{"1", "1", "1", "1", "1"},
			BP:          []string{"20288", "62862", "65279", "65409", "65869"},
			NumberOfSNP: 5,
		},
	},
	"AI": {
		ID:        "AI",
		Name:      "AI",
		Strains:   []string{"AI_101", "AI_142", "AI_213"},
		Phenotype: []string{"weight", "length", "width", "brix", "firmness"},
		SNPInfo: models.SNPInfo{
			Chr:         []string{"2", "2", "3"},
			BP:          []string{"85201", "103992", "209331"},
			NumberOfSNP: 3,
		},
	},
}

func num(v float64) models.TraitValue { return models.NumberValue(v) }

var staticStrains = map[string]models.Strain{
	"TC1_001": {
		ID:        "TC1_001",
		Name:      "TC1_001",
		Type:      models.StrainBoth,
		DatasetID: "TC1",
		Phenotype: map[string]models.TraitValue{
			"weight":        num(45.12),
			"length":        num(43.87),
			"width":         num(37.98),
			"ratio":         num(1.15),
			"brix":          num(5.11),
			"firmness":      num(0.49),
			"skinThickness": num(6.73),
			"shape":         models.TextValue("round"),
		},
	},
	"TC1_022": {
		ID:        "TC1_022",
		Name:      "TC1_022",
		Type:      models.StrainBoth,
		DatasetID: "TC1",
		Phenotype: map[string]models.TraitValue{
			"weight":        num(47.24),
			"length":        num(44.38),
			"width":         num(38.59),
			"ratio":         num(1.15),
			"brix":          num(5.24),
			"firmness":      num(0.51),
			"skinThickness": num(6.81),
			"shape":         models.TextValue("round"),
		},
	},
	"AI_101": {
		ID:        "AI_101",
		Name:      "AI_101",
		Type:      "fruit",
		DatasetID: "AI",
		Phenotype: map[string]models.TraitValue{
			"weight":   num(39.02),
			"length":   num(40.12),
			"width":    num(34.87),
			"brix":     num(6.15),
			"firmness": num(0.62),
		},
	},
	"AI_142": {
		ID:        "AI_142",
		Name:      "AI_142",
		Type:      "fruit",
		DatasetID: "AI",
		Phenotype: map[string]models.TraitValue{
			"weight":   num(42.88),
			"length":   num(42.05),
			"width":    num(36.02),
			"brix":     num(6.02),
			"firmness": num(0.66),
		},
	},
	"AI_213": {
		ID:        "AI_213",
		Name:      "AI_213",
		Type:      "fruit",
		DatasetID: "AI",
		Phenotype: map[string]models.TraitValue{
			"weight":   num(41.33),
			"length":   num(41.77),
			"width":    num(35.75),
			"brix":     num(6.44),
			"firmness": num(0.59),
		},
	},
}

var staticModels = map[string]models.Model{
	"sj_rf": {
		ID:          "sj_rf",
		Name:        "sj_rf",
		ModelType:   "combiationAbility",
		ModelDetail: "radomforest",
		TrainedBy:   "AI",
	},
	"keti_ai": {
		ID:          "keti_ai",
		Name:        "keti_ai",
		ModelType:   "combiationAbility",
		ModelDetail: "radomforest",
		TrainedBy:   "TC1",
	},
}
