package regressor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"brai/internal/models"
)

// PCTable holds the principal-component row of every training line.
type PCTable struct {
	columns []string
	rows    map[string][]float64
}

// NewPCTable builds a table from line_pcs.csv. Column 0 holds the line id and
// the remaining columns the components in order.
func NewPCTable(header []string, rows [][]string) (*PCTable, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("principal-component table needs an id column and at least one component")
	}
	t := &PCTable{
		columns: header[1:],
		rows:    make(map[string][]float64, len(rows)),
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d (%s): expected %d cells, got %d", i+2, id, len(header), len(row))
		}
		values := make([]float64, len(t.columns))
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s) column %s: %w", i+2, id, t.columns[j], err)
			}
			values[j] = v
		}
		t.rows[id] = values
	}
	return t, nil
}

// Components is the number of component columns.
func (t *PCTable) Components() int { return len(t.columns) }

// Len is the number of lines in the table.
func (t *PCTable) Len() int { return len(t.rows) }

// Features builds the cross feature vector of two lines: the elementwise mean
// of their first n components followed by the elementwise absolute difference.
// n <= 0 uses every component.
func (t *PCTable) Features(maleID, femaleID string, n int) ([]float64, error) {
	male, ok := t.rows[maleID]
	if !ok {
		return nil, fmt.Errorf("principal components: %w", models.NotFound("strain", maleID))
	}
	female, ok := t.rows[femaleID]
	if !ok {
		return nil, fmt.Errorf("principal components: %w", models.NotFound("strain", femaleID))
	}
	if n <= 0 {
		n = len(t.columns)
	}
	if n > len(t.columns) {
		return nil, fmt.Errorf("model uses %d components but the table has %d", n, len(t.columns))
	}

	features := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		features[i] = (male[i] + female[i]) / 2
		features[n+i] = math.Abs(male[i] - female[i])
	}
	return features, nil
}

// Set is the loaded artifact bundle of one model.
type Set struct {
	PCs        *PCTable
	NPcs       int
	ByTrait    map[string]Regressor
	Confidence map[string]float64
}

// DefaultConfidence is reported for traits without a configured confidence.
const DefaultConfidence = 0.9

// ConfidenceFor returns the configured confidence of trait.
func (s *Set) ConfidenceFor(trait string) float64 {
	if c, ok := s.Confidence[trait]; ok {
		return c
	}
	return DefaultConfidence
}
