package engine

import (
	"github.com/strollerlabs/stroller-truth/internal/model"
	"github.com/strollerlabs/stroller-truth/internal/policy"
)

// Comparison size bounds. Fewer than two products is not a comparison; more
// than six stops being readable apples-to-apples.
const (
	MinCompareProducts = 2
	MaxCompareProducts = 6
)

// RecordSource is the read-only lookup the comparison builder needs.
// *store.Snapshot satisfies it.
type RecordSource interface {
	Lookup(productID string) (*model.ProductRecord, bool)
}

// Compare builds a per-field comparison matrix across the requested
// products. Cells failing the confidence policy become exclusion markers
// with their disclosure; warnings summarize exclusions deduplicated per
// field and reason. Unknown product ids fail the whole request: a partial
// comparison is misleading.
func (e *Evaluator) Compare(src RecordSource, req model.ComparisonRequest) (*model.ComparisonMatrix, error) {
	if n := len(req.ProductIDs); n < MinCompareProducts || n > MaxCompareProducts {
		return nil, NewInvalidRequest("comparison requires %d to %d product ids, got %d", MinCompareProducts, MaxCompareProducts, n)
	}
	if len(req.Fields) == 0 {
		return nil, NewInvalidRequest("comparison requires at least one field")
	}
	dup := map[string]bool{}
	for _, id := range req.ProductIDs {
		if dup[id] {
			return nil, NewInvalidRequest("duplicate product id %q", id)
		}
		dup[id] = true
	}

	records := make([]*model.ProductRecord, 0, len(req.ProductIDs))
	var missing []string
	for _, id := range req.ProductIDs {
		rec, ok := src.Lookup(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		records = append(records, rec)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{ProductIDs: missing}
	}

	matrix := &model.ComparisonMatrix{
		Region:   req.Region,
		Fields:   req.Fields,
		Rows:     make([]model.MatrixRow, 0, len(records)),
		Warnings: []model.Disclosure{},
	}
	warned := map[string]bool{}

	for _, rec := range records {
		row := model.MatrixRow{
			ProductID: rec.ProductID,
			Cells:     make([]model.Cell, 0, len(req.Fields)),
		}
		for _, field := range req.Fields {
			fv := rec.Field(field)
			if d := policy.Resolve(field, fv, req.Region); d != nil {
				row.Cells = append(row.Cells, model.Cell{
					Field:      field,
					Excluded:   true,
					Disclosure: d,
				})
				key := d.Field + "|" + string(d.Reason)
				if !warned[key] {
					warned[key] = true
					matrix.Warnings = append(matrix.Warnings, *d)
				}
				continue
			}
			// Resolve returned nil, so the value must pass the gate. If it
			// does not, the engine itself is broken.
			if !policy.Usable(fv, req.Region) {
				return nil, &PolicyViolationError{ProductID: rec.ProductID, Field: field}
			}
			row.Cells = append(row.Cells, model.Cell{Field: field, Value: fv})
		}
		matrix.Rows = append(matrix.Rows, row)
	}

	return matrix, nil
}
