package model

// Terrain values accepted in constraint sets.
const (
	TerrainSmooth      = "smooth"
	TerrainUrban       = "urban"
	TerrainLightUneven = "light_uneven"
	TerrainAllTerrain  = "all_terrain"
	TerrainJogging     = "jogging"
)

// TravelModeAir triggers the overhead-bin refusal check.
const TravelModeAir = "air"

// Constraints is a caller-supplied filter for eligibility queries.
// Nil / empty members are unconstrained. Ephemeral, per-request.
type Constraints struct {
	Terrain      string   `json:"terrain,omitempty"`
	MaxWeightLbs *float64 `json:"max_weight_lbs,omitempty"`
	TravelMode   string   `json:"travel,omitempty"`
}

// Empty reports whether no dimension is constrained.
func (c Constraints) Empty() bool {
	return c.Terrain == "" && c.MaxWeightLbs == nil && c.TravelMode == ""
}

// ComparisonRequest asks for a per-field matrix across 2..6 products.
type ComparisonRequest struct {
	ProductIDs []string `json:"product_ids"`
	Region     Region   `json:"region"`
	Fields     []string `json:"fields"`
}

// RecordFilter selects records for listing. ConfidenceMin, when medium or
// higher, excludes records whose core comparison fields fail the usability
// gate.
type RecordFilter struct {
	Region              Region     `json:"region,omitempty"`
	IntendedUseCategory string     `json:"intended_use_category,omitempty"`
	SeatReversible      *bool      `json:"seat_reversible,omitempty"`
	ConfidenceMin       Confidence `json:"confidence_min,omitempty"`
}
