// Package policy holds the pure gating rules of the engine: which field
// values are trustworthy enough to compare, what must be disclosed, and
// which claims must be refused outright. Every function here is total over
// its inputs and free of side effects.
package policy

import (
	"fmt"
	"strings"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

// Usable reports whether a field value may influence a decision or appear as
// a live comparison cell for the target region. Usable iff the value is
// present, not flagged as excluded, carries medium-or-better confidence, and
// is either region-free or sourced for the target region.
func Usable(f *model.FieldValue, target model.Region) bool {
	if f == nil || f.Value == nil || f.Excluded {
		return false
	}
	if f.Confidence.Rank() < model.ConfidenceMedium.Rank() {
		return false
	}
	return f.Region == "" || f.Region == target
}

// Resolve returns the single disclosure owed for a non-usable field value,
// or nil when the value is usable. Precedence: missing data, then region
// mismatch, then low confidence. Region mismatch wins over confidence even
// for high-confidence values: a spec sourced for another market is still
// untrustworthy for the target one.
func Resolve(field string, f *model.FieldValue, target model.Region) *model.Disclosure {
	if Usable(f, target) {
		return nil
	}
	if f == nil || f.Value == nil {
		return &model.Disclosure{
			Field:   field,
			Reason:  model.ReasonMissingData,
			Message: fmt.Sprintf("%s has no verified value in this dataset", field),
		}
	}
	if f.Region != "" && f.Region != target {
		return &model.Disclosure{
			Field:   field,
			Reason:  model.ReasonRegionMismatch,
			Message: fmt.Sprintf("%s was sourced for region %s and is excluded for region %s", field, f.Region, target),
		}
	}
	return &model.Disclosure{
		Field:   field,
		Reason:  model.ReasonLowConfidence,
		Message: fmt.Sprintf("%s is low confidence or excluded and requires manual verification", field),
	}
}

// ClaimOverheadBin is the claim gated by cabin approval verification.
const ClaimOverheadBin = "fits overhead bin"

// ResolveRefusal returns the refusal owed for an air-travel claim, or nil
// when the record's fold characteristics are usable and verified
// cabin-approved.
func ResolveRefusal(rec *model.ProductRecord, target model.Region) *model.Refusal {
	fc := rec.Field(model.FieldFoldChars)
	if Usable(fc, target) && fc.Contains(model.CabinApproved) {
		return nil
	}
	return &model.Refusal{
		Claim:   ClaimOverheadBin,
		Reason:  model.RefusalReasonUnverified,
		Message: "cannot claim overhead bin fit without cabin_approved verification",
	}
}

// LowConfidenceCore returns the core comparison fields of a record that fail
// the usability gate for the target region, in rules order.
func (r Rules) LowConfidenceCore(rec *model.ProductRecord, target model.Region) []string {
	var low []string
	for _, name := range r.CoreFields {
		if !Usable(rec.Field(name), target) {
			low = append(low, name)
		}
	}
	return low
}

// RecordDisclosures computes the always-surfaced disclosures for a record:
// region-mismatched fields, low-confidence core fields, and configuration
// scope caveats. Order is deterministic: mismatches in core-field order
// first, then remaining low-confidence core fields, then scope.
func (r Rules) RecordDisclosures(rec *model.ProductRecord, target model.Region) []model.Disclosure {
	var out []model.Disclosure
	seen := map[string]bool{}

	for _, name := range r.CoreFields {
		f := rec.Field(name)
		if f != nil && f.Value != nil && f.Region != "" && f.Region != target {
			out = append(out, *Resolve(name, f, target))
			seen[name] = true
		}
	}
	for _, name := range r.LowConfidenceCore(rec, target) {
		if seen[name] {
			continue
		}
		out = append(out, *Resolve(name, rec.Field(name), target))
		seen[name] = true
	}
	if d := r.ScopeDisclosure(rec); d != nil {
		out = append(out, *d)
	}
	return out
}

// ScopeDisclosure returns a configuration_scope disclosure when the record's
// scope note signals that measured values cover only a specific
// configuration (seat-only, accessories sold separately, and so on).
func (r Rules) ScopeDisclosure(rec *model.ProductRecord) *model.Disclosure {
	scope := rec.StringField(model.FieldConfigScope)
	if scope == "" {
		return nil
	}
	for _, kw := range r.ScopeKeywords {
		if strings.Contains(scope, kw) {
			return &model.Disclosure{
				Field:   model.FieldConfigScope,
				Reason:  model.ReasonConfigScope,
				Message: "weight and sizing may apply to a specific configuration; check scope notes before comparing",
			}
		}
	}
	return nil
}
