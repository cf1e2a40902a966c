package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/strollerlabs/stroller-truth/internal/engine"
	"github.com/strollerlabs/stroller-truth/internal/model"
)

type datasetMeta struct {
	DatasetExtractedDate string `json:"dataset_extracted_date,omitempty"`
	SchemaVersion        string `json:"schema_version,omitempty"`
}

type listResponse struct {
	Count     int                   `json:"count"`
	Strollers []model.RecordSummary `json:"strollers"`
	Meta      datasetMeta           `json:"meta"`
}

type recordResponse struct {
	Stroller            *model.ProductRecord `json:"stroller"`
	RequiredDisclosures []model.Disclosure   `json:"required_disclosures"`
}

type evaluateRequest struct {
	Region      model.Region      `json:"region"`
	Constraints model.Constraints `json:"constraints"`
}

type evaluateResponse struct {
	Region      model.Region      `json:"region"`
	Constraints model.Constraints `json:"constraints"`
	*engine.Partition
	Meta evaluateMeta `json:"meta"`
}

type evaluateMeta struct {
	datasetMeta
	CountTotal       int `json:"count_total"`
	CountEligible    int `json:"count_eligible"`
	CountNeedsReview int `json:"count_needs_review"`
	CountIneligible  int `json:"count_ineligible"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RecordFilter{
		Region:              model.Region(q.Get("region")),
		IntendedUseCategory: q.Get("intended_use_category"),
		ConfidenceMin:       model.Confidence(q.Get("confidence_min")),
	}
	if v := q.Get("seat_reversible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seat_reversible must be a boolean")
			return
		}
		filter.SeatReversible = &b
	}

	snap := s.mem.Snapshot()
	records := snap.Filter(filter, s.rules)

	summaries := make([]model.RecordSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, s.summarize(rec))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Count:     len(summaries),
		Strollers: summaries,
		Meta: datasetMeta{
			DatasetExtractedDate: snap.Meta().ExtractedDate,
			SchemaVersion:        snap.Meta().SchemaVersion,
		},
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	rec, ok := s.mem.Lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":      "not_found",
			"product_id": id,
		})
		return
	}
	disclosures := s.rules.RecordDisclosures(rec, rec.Region)
	if disclosures == nil {
		disclosures = []model.Disclosure{}
	}
	writeJSON(w, http.StatusOK, recordResponse{
		Stroller:            rec,
		RequiredDisclosures: disclosures,
	})
}

func (s *Server) handleEligibleProducts(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Region == "" {
		req.Region = model.RegionUS
	}

	snap := s.mem.Snapshot()
	partition, err := s.eval.EvaluateAll(r.Context(), snap.Records(), req.Region, req.Constraints)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Region:      req.Region,
		Constraints: req.Constraints,
		Partition:   partition,
		Meta: evaluateMeta{
			datasetMeta: datasetMeta{
				DatasetExtractedDate: snap.Meta().ExtractedDate,
				SchemaVersion:        snap.Meta().SchemaVersion,
			},
			CountTotal:       snap.Len(),
			CountEligible:    len(partition.Eligible),
			CountNeedsReview: len(partition.NeedsReview),
			CountIneligible:  len(partition.Ineligible),
		},
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req model.ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Region == "" {
		req.Region = model.RegionUS
	}

	matrix, err := s.eval.Compare(s.mem.Snapshot(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

func (s *Server) summarize(rec *model.ProductRecord) model.RecordSummary {
	disclosures := s.rules.RecordDisclosures(rec, rec.Region)
	if disclosures == nil {
		disclosures = []model.Disclosure{}
	}
	return model.RecordSummary{
		ProductID:           rec.ProductID,
		Brand:               rec.Brand,
		Model:               rec.Model,
		Variant:             rec.Variant,
		Region:              rec.Region,
		IntendedUseCategory: rec.StringField(model.FieldIntendedUse),
		Highlights:          model.HighlightsOf(rec),
		RequiredDisclosures: disclosures,
	}
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses.
// PolicyViolation is an engine bug: it logs loudly and returns 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsInvalidRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("engine failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
