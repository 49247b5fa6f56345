package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinationKeyIsFemaleFirst(t *testing.T) {
	assert.Equal(t, "TC1_022-TC1_001", CombinationKey("TC1_001", "TC1_022"))
	p := &Prediction{MaleStrainID: "A", FemaleStrainID: "B"}
	assert.Equal(t, "B-A", p.CombinationKey())
}

func TestNormalizeSort(t *testing.T) {
	cases := map[string]string{
		"":           SortDesc,
		"desc":       SortDesc,
		"DESC":       SortDesc,
		"descending": SortDesc,
		"asc":        SortAsc,
		"Ascending":  SortAsc,
	}
	for in, want := range cases {
		got, ok := NormalizeSort(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := NormalizeSort("sideways")
	assert.False(t, ok)
}

func TestPageQueryOffset(t *testing.T) {
	assert.Equal(t, 10, PageQuery{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 0, PageQuery{Page: 1, Limit: 25}.Offset())
}

func TestCombinationFilter(t *testing.T) {
	p := &Prediction{DatasetID: "TC1", ModelID: "sj_rf"}
	assert.True(t, CombinationFilter{}.Accepts(p))
	assert.True(t, CombinationFilter{DatasetID: "TC1"}.Accepts(p))
	assert.False(t, CombinationFilter{ModelID: "keti_ai"}.Accepts(p))
}
