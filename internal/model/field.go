package model

import "fmt"

// Confidence is the trust tier of a sourced field value.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // manufacturer spec
	ConfidenceMedium Confidence = "medium" // reputable third party
	ConfidenceLow    Confidence = "low"    // blog/review/conflicting/cross-region
)

// Rank maps a confidence tier to an ordinal for threshold comparisons.
// Unknown or empty confidence ranks below low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Region identifies a product's intended market. The empty string means
// "not region-specific".
type Region string

const (
	RegionUS    Region = "US"
	RegionEU    Region = "EU"
	RegionOther Region = "other"
)

// Dimensions holds folded dimensions in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%g x %g x %g", d.Length, d.Width, d.Height)
}

// FieldValue is a single spec value with provenance. Every comparable or
// filterable field on a record is wrapped in one; raw values never reach the
// evaluator or the comparison builder.
type FieldValue struct {
	Value      any        `json:"value"`
	SourceURL  string     `json:"source_url,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	Region     Region     `json:"region,omitempty"`
	Excluded   bool       `json:"excluded_from_recommendations,omitempty"`
}

// Float returns the value as a float64 if it is numeric.
func (f *FieldValue) Float() (float64, bool) {
	if f == nil || f.Value == nil {
		return 0, false
	}
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// String returns the value as a string if it is one.
func (f *FieldValue) String() (string, bool) {
	if f == nil || f.Value == nil {
		return "", false
	}
	s, ok := f.Value.(string)
	return s, ok
}

// Bool returns the value as a bool if it is one.
func (f *FieldValue) Bool() (bool, bool) {
	if f == nil || f.Value == nil {
		return false, false
	}
	b, ok := f.Value.(bool)
	return b, ok
}

// StringList returns the value as a list of strings. JSON decoding produces
// []any, so both representations are accepted.
func (f *FieldValue) StringList() []string {
	if f == nil || f.Value == nil {
		return nil
	}
	switch v := f.Value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Contains reports whether the value is a string list containing s.
func (f *FieldValue) Contains(s string) bool {
	for _, e := range f.StringList() {
		if e == s {
			return true
		}
	}
	return false
}

// Dims returns the value as folded dimensions if it has that shape.
func (f *FieldValue) Dims() (Dimensions, bool) {
	if f == nil || f.Value == nil {
		return Dimensions{}, false
	}
	switch v := f.Value.(type) {
	case Dimensions:
		return v, true
	case *Dimensions:
		return *v, true
	case map[string]any:
		l, lok := toFloat(v["length"])
		w, wok := toFloat(v["width"])
		h, hok := toFloat(v["height"])
		if lok && wok && hok {
			return Dimensions{Length: l, Width: w, Height: h}, true
		}
	}
	return Dimensions{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
