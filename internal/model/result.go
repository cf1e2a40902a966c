package model

// Bucket is the outcome classification of a constraint evaluation.
type Bucket string

const (
	BucketEligible    Bucket = "eligible"
	BucketIneligible  Bucket = "ineligible"
	BucketNeedsReview Bucket = "needs_review"
)

// Stronger reports whether b outranks other. Precedence, strongest first:
// ineligible > needs_review > eligible.
func (b Bucket) Stronger(other Bucket) bool {
	return bucketRank(b) > bucketRank(other)
}

func bucketRank(b Bucket) int {
	switch b {
	case BucketIneligible:
		return 2
	case BucketNeedsReview:
		return 1
	}
	return 0
}

// DisclosureReason classifies why a field is disclosed rather than used.
type DisclosureReason string

const (
	ReasonMissingData    DisclosureReason = "missing_data"
	ReasonLowConfidence  DisclosureReason = "low_confidence"
	ReasonRegionMismatch DisclosureReason = "region_mismatch"
	ReasonConfigScope    DisclosureReason = "configuration_scope"
)

// Disclosure is a non-blocking note about data quality or scope limiting
// comparability. It never fails a request; it is always surfaced.
type Disclosure struct {
	Field   string           `json:"field"`
	Reason  DisclosureReason `json:"reason"`
	Message string           `json:"message"`
}

// RefusalReasonUnverified marks a claim declined for missing verification.
const RefusalReasonUnverified = "unverified"

// Refusal is a claim the engine explicitly declines to make. Refusals are
// first-class output, not errors.
type Refusal struct {
	Claim   string `json:"claim"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// EvaluationResult is the outcome of matching one record against a
// constraint set.
type EvaluationResult struct {
	Bucket      Bucket       `json:"bucket"`
	Reasons     []string     `json:"reasons,omitempty"`
	Disclosures []Disclosure `json:"disclosures"`
	Refusals    []Refusal    `json:"refusals"`
}

// ProductEvaluation pairs a record identity with its evaluation, for
// store-wide partitions.
type ProductEvaluation struct {
	ProductID           string           `json:"product_id"`
	Brand               string           `json:"brand,omitempty"`
	Model               string           `json:"model,omitempty"`
	Variant             string           `json:"variant,omitempty"`
	IntendedUseCategory string           `json:"intended_use_category,omitempty"`
	Result              EvaluationResult `json:"result"`
	Highlights          Highlights       `json:"highlights"`
}

// Cell is one comparison matrix entry: either a live field value or an
// exclusion carrying its disclosure. Never both.
type Cell struct {
	Field      string      `json:"field"`
	Value      *FieldValue `json:"value,omitempty"`
	Excluded   bool        `json:"excluded,omitempty"`
	Disclosure *Disclosure `json:"disclosure,omitempty"`
}

// MatrixRow holds one product's cells, ordered as the requested fields.
type MatrixRow struct {
	ProductID string `json:"product_id"`
	Cells     []Cell `json:"cells"`
}

// ComparisonMatrix is strictly tabular: per-field, per-product cells plus
// deduplicated warnings. No winner, no aggregate score.
type ComparisonMatrix struct {
	Region   Region       `json:"region"`
	Fields   []string     `json:"fields"`
	Rows     []MatrixRow  `json:"rows"`
	Warnings []Disclosure `json:"warnings"`
}
