// Package engine implements the eligibility evaluator and the comparison
// builder. Both are stateless, deterministic functions over immutable
// record snapshots: data problems downgrade results, they never error.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/strollerlabs/stroller-truth/internal/model"
	"github.com/strollerlabs/stroller-truth/internal/policy"
)

// Reason codes attached to ineligible results.
const (
	reasonTerrainNotMatched = "terrain_not_matched"
	reasonOverWeightLimit   = "over_weight_limit"
)

// Evaluator matches records against constraint sets. It carries only the
// policy rules; evaluating the same inputs twice yields identical output.
type Evaluator struct {
	rules policy.Rules
}

// New creates an Evaluator with the given policy rules.
func New(rules policy.Rules) *Evaluator {
	return &Evaluator{rules: rules}
}

// ValidateConstraints rejects malformed constraint sets before evaluation.
func (e *Evaluator) ValidateConstraints(cs model.Constraints) error {
	if cs.Terrain != "" && !e.rules.KnownTerrain(cs.Terrain) {
		return NewInvalidRequest("unknown terrain %q", cs.Terrain)
	}
	if cs.MaxWeightLbs != nil && *cs.MaxWeightLbs <= 0 {
		return NewInvalidRequest("max_weight_lbs must be positive, got %g", *cs.MaxWeightLbs)
	}
	if cs.TravelMode != "" && cs.TravelMode != model.TravelModeAir && cs.TravelMode != "none" {
		return NewInvalidRequest("unknown travel mode %q", cs.TravelMode)
	}
	return nil
}

// Evaluate classifies one record against a constraint set for the target
// region. Constrained dimensions are checked in a fixed order; the first
// numeric or categorical violation wins and stops further dimension checks.
// Unusable data never hard-fails: it downgrades to needs_review with a
// disclosure. An air-travel refusal can only raise scrutiny, never pass.
func (e *Evaluator) Evaluate(rec *model.ProductRecord, target model.Region, cs model.Constraints) model.EvaluationResult {
	res := model.EvaluationResult{
		Bucket:      model.BucketEligible,
		Disclosures: []model.Disclosure{},
		Refusals:    []model.Refusal{},
	}
	seen := map[string]bool{}
	disclose := func(d *model.Disclosure) {
		if d == nil {
			return
		}
		key := d.Field + "|" + string(d.Reason)
		if seen[key] {
			return
		}
		seen[key] = true
		res.Disclosures = append(res.Disclosures, *d)
	}
	downgrade := func(b model.Bucket) {
		if b.Stronger(res.Bucket) {
			res.Bucket = b
		}
	}

	violated := false

	if cs.Terrain != "" {
		switch e.terrainCheck(rec, target, cs.Terrain) {
		case terrainViolated:
			res.Reasons = append(res.Reasons, fmt.Sprintf("%s:%s", reasonTerrainNotMatched, cs.Terrain))
			downgrade(model.BucketIneligible)
			violated = true
		case terrainUnverified:
			disclose(policy.Resolve(model.FieldTerrainTags, rec.Field(model.FieldTerrainTags), target))
			downgrade(model.BucketNeedsReview)
		}
	}

	if cs.MaxWeightLbs != nil && !violated {
		w := rec.Field(model.FieldWeight)
		if v, ok := usableFloat(w, target); ok {
			if v > *cs.MaxWeightLbs {
				res.Reasons = append(res.Reasons, fmt.Sprintf("%s:%g>%g", reasonOverWeightLimit, v, *cs.MaxWeightLbs))
				downgrade(model.BucketIneligible)
				violated = true
			}
		} else {
			disclose(policy.Resolve(model.FieldWeight, w, target))
			downgrade(model.BucketNeedsReview)
		}
	}

	// Cross-cutting refusal check: runs even after a violation so the
	// refusal is always surfaced to the caller.
	if cs.TravelMode == model.TravelModeAir {
		if ref := policy.ResolveRefusal(rec, target); ref != nil {
			res.Refusals = append(res.Refusals, *ref)
			downgrade(model.BucketNeedsReview)
		}
	}

	// Always-surfaced record disclosures. Core fields with unverified data
	// keep an otherwise-eligible record in needs_review.
	for _, d := range e.rules.RecordDisclosures(rec, target) {
		d := d
		disclose(&d)
	}
	if len(e.rules.LowConfidenceCore(rec, target)) > 0 {
		downgrade(model.BucketNeedsReview)
	}

	return res
}

type terrainOutcome int

const (
	terrainOK terrainOutcome = iota
	terrainViolated
	terrainUnverified
)

// terrainCheck matches the requested terrain against the record's terrain
// tags. A jogging request also passes when the record's intended use
// category is jogging, tags aside.
func (e *Evaluator) terrainCheck(rec *model.ProductRecord, target model.Region, terrain string) terrainOutcome {
	if terrain == model.TerrainJogging && rec.StringField(model.FieldIntendedUse) == model.TerrainJogging {
		return terrainOK
	}
	tags := rec.Field(model.FieldTerrainTags)
	if !policy.Usable(tags, target) {
		return terrainUnverified
	}
	if tags.Contains(terrain) {
		return terrainOK
	}
	return terrainViolated
}

func usableFloat(f *model.FieldValue, target model.Region) (float64, bool) {
	if !policy.Usable(f, target) {
		return 0, false
	}
	return f.Float()
}

// Partition groups store-wide evaluation results into the three outcome
// buckets, each ordered by snapshot record order.
type Partition struct {
	Eligible    []model.ProductEvaluation `json:"eligible_products"`
	Ineligible  []model.ProductEvaluation `json:"ineligible_products"`
	NeedsReview []model.ProductEvaluation `json:"needs_review_products"`
}

// EvaluateAll evaluates every record of the target region and partitions the
// results. Records for other regions are skipped. Evaluation fans out across
// a bounded worker group; output ordering stays deterministic because
// results land by index before partitioning.
func (e *Evaluator) EvaluateAll(ctx context.Context, records []*model.ProductRecord, region model.Region, cs model.Constraints) (*Partition, error) {
	if err := e.ValidateConstraints(cs); err != nil {
		return nil, err
	}

	var scoped []*model.ProductRecord
	for _, rec := range records {
		if rec.Region == region {
			scoped = append(scoped, rec)
		}
	}

	results := make([]model.EvaluationResult, len(scoped))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rec := range scoped {
		i, rec := i, rec
		g.Go(func() error {
			results[i] = e.Evaluate(rec, region, cs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &Partition{
		Eligible:    []model.ProductEvaluation{},
		Ineligible:  []model.ProductEvaluation{},
		NeedsReview: []model.ProductEvaluation{},
	}
	for i, rec := range scoped {
		pe := model.ProductEvaluation{
			ProductID:           rec.ProductID,
			Brand:               rec.Brand,
			Model:               rec.Model,
			Variant:             rec.Variant,
			IntendedUseCategory: rec.StringField(model.FieldIntendedUse),
			Result:              results[i],
			Highlights:          model.HighlightsOf(rec),
		}
		switch results[i].Bucket {
		case model.BucketEligible:
			p.Eligible = append(p.Eligible, pe)
		case model.BucketIneligible:
			p.Ineligible = append(p.Ineligible, pe)
		case model.BucketNeedsReview:
			p.NeedsReview = append(p.NeedsReview, pe)
		}
	}
	return p, nil
}
