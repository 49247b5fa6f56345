package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Strain types accepted for user-facing strain records.
const (
	StrainMale   = "male"
	StrainFemale = "female"
	StrainBoth   = "both"
)

// TraitValue is a phenotype measurement: either a number or free text.
type TraitValue struct {
	number  float64
	text    string
	numeric bool
}

// NumberValue wraps a numeric measurement.
func NumberValue(v float64) TraitValue {
	return TraitValue{number: v, numeric: true}
}

// TextValue wraps a textual measurement such as a shape label.
func TextValue(s string) TraitValue {
	return TraitValue{text: s}
}

// ParseTraitValue converts a raw CSV cell. Blank cells and numbers that are
// not finite (NaN, Inf, or out of float64 range) report ok=false.
func ParseTraitValue(raw string) (TraitValue, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return TraitValue{}, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return TraitValue{}, false
		}
		return NumberValue(f), true
	}
	return TextValue(s), true
}

// Float returns the numeric value and whether the value is numeric.
func (v TraitValue) Float() (float64, bool) {
	return v.number, v.numeric
}

// IsNumeric reports whether the value holds a number.
func (v TraitValue) IsNumeric() bool { return v.numeric }

func (v TraitValue) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	}
	return v.text
}

func (v TraitValue) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.number)
	}
	return json.Marshal(v.text)
}

func (v *TraitValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("trait value must be a number or a string: %w", err)
	}
	*v = NumberValue(f)
	return nil
}

// StrainMetadata carries optional provenance information.
type StrainMetadata struct {
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Strain is a genetic line with recorded phenotype measurements.
type Strain struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Type      string                `json:"type"`
	DatasetID string                `json:"datasetId,omitempty"`
	Phenotype map[string]TraitValue `json:"phenotype"`
	Metadata  *StrainMetadata       `json:"metadata,omitempty"`
}
