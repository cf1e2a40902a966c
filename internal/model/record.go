package model

// Canonical field names used across the engine. The dataset may carry more
// fields than these; unknown fields still get wrapped and policy-gated.
const (
	FieldWeight        = "stroller_weight_lb"
	FieldFoldedDims    = "folded_dimensions_in"
	FieldMaxChildLb    = "max_child_weight_lb"
	FieldFoldChars     = "fold_characteristics"
	FieldTerrainTags   = "terrain_tags"
	FieldConfigScope   = "configuration_scope"
	FieldIntendedUse   = "intended_use_category"
	FieldSeatRevers    = "seat_reversible"
	FieldTravelSysComp = "travel_system_compatibility"
)

// CabinApproved is the fold characteristic required before any overhead-bin
// claim may be made.
const CabinApproved = "cabin_approved"

// ProductRecord is one product variant (product + region combination).
// Records are immutable once ingested; a re-ingested snapshot replaces the
// prior record wholesale.
type ProductRecord struct {
	ProductID     string                 `json:"product_id"`
	Region        Region                 `json:"region"`
	Brand         string                 `json:"brand,omitempty"`
	Model         string                 `json:"model,omitempty"`
	Variant       string                 `json:"variant,omitempty"`
	Fields        map[string]*FieldValue `json:"fields"`
	ExtractedDate string                 `json:"extracted_date,omitempty"`
	SchemaVersion string                 `json:"schema_version,omitempty"`
}

// Field returns the named field value, or nil if absent.
func (r *ProductRecord) Field(name string) *FieldValue {
	if r == nil || r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// StringField returns the named field's string value, or "".
func (r *ProductRecord) StringField(name string) string {
	s, _ := r.Field(name).String()
	return s
}

// Highlights are the handful of values surfaced on listing and evaluation
// responses regardless of eligibility outcome.
type Highlights struct {
	StrollerWeightLb          *float64    `json:"stroller_weight_lb,omitempty"`
	FoldedDimensionsIn        *Dimensions `json:"folded_dimensions_in,omitempty"`
	MaxChildWeightLb          *float64    `json:"max_child_weight_lb,omitempty"`
	SeatReversible            bool        `json:"seat_reversible"`
	TravelSystemCompatibility any         `json:"travel_system_compatibility"`
}

// HighlightsOf extracts display highlights from a record.
func HighlightsOf(r *ProductRecord) Highlights {
	var h Highlights
	if w, ok := r.Field(FieldWeight).Float(); ok {
		h.StrollerWeightLb = &w
	}
	if d, ok := r.Field(FieldFoldedDims).Dims(); ok {
		h.FoldedDimensionsIn = &d
	}
	if w, ok := r.Field(FieldMaxChildLb).Float(); ok {
		h.MaxChildWeightLb = &w
	}
	h.SeatReversible, _ = r.Field(FieldSeatRevers).Bool()
	if tc := r.Field(FieldTravelSysComp); tc != nil {
		h.TravelSystemCompatibility = tc.Value
	}
	return h
}

// RecordSummary is the listing projection of a record.
type RecordSummary struct {
	ProductID           string       `json:"product_id"`
	Brand               string       `json:"brand,omitempty"`
	Model               string       `json:"model,omitempty"`
	Variant             string       `json:"variant,omitempty"`
	Region              Region       `json:"region"`
	IntendedUseCategory string       `json:"intended_use_category,omitempty"`
	Highlights          Highlights   `json:"highlights"`
	RequiredDisclosures []Disclosure `json:"required_disclosures"`
}
