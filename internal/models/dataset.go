package models

// SNPInfo holds marker positions parsed from a dataset's strain file.
type SNPInfo struct {
	Chr         []string `json:"chr"`
	BP          []string `json:"bp"`
	NumberOfSNP int      `json:"numberOfSNP"`
}

// Dataset is a named collection of strains sharing SNP marker and phenotype schema.
type Dataset struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Strains   []string `json:"strains"`
	Phenotype []string `json:"phenotype"`
	SNPInfo   SNPInfo  `json:"snpInfo"`
}

// HasStrain reports whether strainID belongs to the dataset.
func (d *Dataset) HasStrain(strainID string) bool {
	for _, id := range d.Strains {
		if id == strainID {
			return true
		}
	}
	return false
}

// DatasetList is the payload of the dataset listing endpoint.
type DatasetList struct {
	Datasets         []string `json:"datasets"`
	NumberOfDatasets int      `json:"numberOfDatasets"`
}
