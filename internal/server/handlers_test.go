package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strollerlabs/stroller-truth/internal/config"
	"github.com/strollerlabs/stroller-truth/internal/engine"
	"github.com/strollerlabs/stroller-truth/internal/model"
	"github.com/strollerlabs/stroller-truth/internal/policy"
	"github.com/strollerlabs/stroller-truth/internal/store"
)

func fv(v any, conf model.Confidence) *model.FieldValue {
	return &model.FieldValue{Value: v, Confidence: conf, SourceURL: "https://example.com/specs"}
}

func testRecords() []*model.ProductRecord {
	return []*model.ProductRecord{
		{
			ProductID: "vista-us", Region: model.RegionUS, Brand: "UPPAbaby", Model: "Vista",
			Fields: map[string]*model.FieldValue{
				model.FieldWeight:      fv(27.0, model.ConfidenceHigh),
				model.FieldFoldedDims:  fv(model.Dimensions{Length: 17.3, Width: 25.7, Height: 33.3}, model.ConfidenceHigh),
				model.FieldMaxChildLb:  fv(50.0, model.ConfidenceHigh),
				model.FieldTerrainTags: fv([]string{model.TerrainSmooth, model.TerrainUrban}, model.ConfidenceHigh),
				model.FieldIntendedUse: fv("everyday", model.ConfidenceHigh),
				model.FieldSeatRevers:  fv(true, model.ConfidenceHigh),
			},
		},
		{
			ProductID: "yoyo-us", Region: model.RegionUS, Brand: "BABYZEN", Model: "YOYO2",
			Fields: map[string]*model.FieldValue{
				model.FieldWeight:      fv(13.6, model.ConfidenceHigh),
				model.FieldFoldedDims:  fv(model.Dimensions{Length: 20.5, Width: 17.3, Height: 7.1}, model.ConfidenceHigh),
				model.FieldMaxChildLb:  fv(48.5, model.ConfidenceMedium),
				model.FieldTerrainTags: fv([]string{model.TerrainSmooth, model.TerrainUrban}, model.ConfidenceMedium),
				model.FieldIntendedUse: fv("travel", model.ConfidenceHigh),
				model.FieldFoldChars:   fv([]string{"one_hand_fold", model.CabinApproved}, model.ConfidenceHigh),
				model.FieldSeatRevers:  fv(false, model.ConfidenceHigh),
			},
		},
		{
			ProductID: "nest-us", Region: model.RegionUS, Brand: "Graco", Model: "Modes Nest",
			Fields: map[string]*model.FieldValue{
				model.FieldWeight:      fv(28.8, model.ConfidenceLow),
				model.FieldMaxChildLb:  fv(50.0, model.ConfidenceMedium),
				model.FieldTerrainTags: fv([]string{model.TerrainSmooth}, model.ConfidenceLow),
				model.FieldIntendedUse: fv("everyday", model.ConfidenceMedium),
			},
		},
		{
			ProductID: "fox-eu", Region: model.RegionEU, Brand: "Bugaboo", Model: "Fox 5",
			Fields: map[string]*model.FieldValue{
				model.FieldWeight:      fv(24.5, model.ConfidenceHigh),
				model.FieldIntendedUse: fv("everyday", model.ConfidenceHigh),
			},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := store.NewMemory()
	meta := store.SnapshotMeta{
		SnapshotID:    "test-snap",
		ExtractedDate: "2026-07-14",
		SchemaVersion: "1.2.0",
		IngestedAt:    time.Now().UTC(),
	}
	mem.Swap(store.NewSnapshot(meta, testRecords()))

	rules := policy.DefaultRules()
	srv := New(config.ServerConfig{}, mem, engine.New(rules), rules)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t *testing.T, ts *httptest.Server, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts, "/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListRecords(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body listResponse
	status := getJSON(t, ts, "/v1/datasets/strollers", &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 4, body.Count)
	assert.Len(t, body.Strollers, 4)
	assert.Equal(t, "2026-07-14", body.Meta.DatasetExtractedDate)
	assert.Equal(t, "1.2.0", body.Meta.SchemaVersion)
}

func TestListRecords_Filters(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body listResponse
	status := getJSON(t, ts, "/v1/datasets/strollers?region=EU", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "fox-eu", body.Strollers[0].ProductID)

	status = getJSON(t, ts, "/v1/datasets/strollers?intended_use_category=travel", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "yoyo-us", body.Strollers[0].ProductID)

	status = getJSON(t, ts, "/v1/datasets/strollers?region=US&seat_reversible=true", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "vista-us", body.Strollers[0].ProductID)

	// medium+ confidence floor drops the record with low-confidence core fields.
	status = getJSON(t, ts, "/v1/datasets/strollers?region=US&confidence_min=medium", &body)
	require.Equal(t, http.StatusOK, status)
	ids := make([]string, 0, body.Count)
	for _, s := range body.Strollers {
		ids = append(ids, s.ProductID)
	}
	assert.NotContains(t, ids, "nest-us")
	assert.Contains(t, ids, "vista-us")
}

func TestListRecords_BadSeatReversible(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts, "/v1/datasets/strollers?seat_reversible=maybe", &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "seat_reversible")
}

func TestGetRecord(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body recordResponse
	status := getJSON(t, ts, "/v1/strollers/yoyo-us", &body)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, body.Stroller)
	assert.Equal(t, "yoyo-us", body.Stroller.ProductID)
	assert.NotNil(t, body.RequiredDisclosures)
}

func TestGetRecord_Disclosures(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body recordResponse
	status := getJSON(t, ts, "/v1/strollers/nest-us", &body)
	require.Equal(t, http.StatusOK, status)

	fields := map[string]model.DisclosureReason{}
	for _, d := range body.RequiredDisclosures {
		fields[d.Field] = d.Reason
	}
	assert.Equal(t, model.ReasonLowConfidence, fields[model.FieldWeight])
	assert.Equal(t, model.ReasonMissingData, fields[model.FieldFoldedDims])
}

func TestGetRecord_NotFound(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts, "/v1/strollers/no-such-stroller", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "no-such-stroller", body["product_id"])
}

func TestEligibleProducts(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body evaluateResponse
	status := postJSON(t, ts, "/v1/eligible-products",
		`{"region":"US","constraints":{"max_weight_lbs":20}}`, &body)
	require.Equal(t, http.StatusOK, status)

	require.NotNil(t, body.Partition)
	var eligible, ineligible []string
	for _, pe := range body.Eligible {
		eligible = append(eligible, pe.ProductID)
	}
	for _, pe := range body.Ineligible {
		ineligible = append(ineligible, pe.ProductID)
	}
	assert.Equal(t, []string{"yoyo-us"}, eligible)
	assert.Contains(t, ineligible, "vista-us")

	// The EU record never enters a US evaluation.
	assert.Equal(t, 3, body.Meta.CountEligible+body.Meta.CountNeedsReview+body.Meta.CountIneligible)
	assert.Equal(t, 4, body.Meta.CountTotal)
	assert.Equal(t, "2026-07-14", body.Meta.DatasetExtractedDate)
}

func TestEligibleProducts_AirRefusal(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body evaluateResponse
	status := postJSON(t, ts, "/v1/eligible-products",
		`{"region":"US","constraints":{"travel":"air"}}`, &body)
	require.Equal(t, http.StatusOK, status)

	// Records without verified cabin approval land in needs_review with a
	// refusal, never in eligible.
	var eligible []string
	for _, pe := range body.Eligible {
		eligible = append(eligible, pe.ProductID)
	}
	assert.Equal(t, []string{"yoyo-us"}, eligible)

	refused := map[string]bool{}
	for _, pe := range body.NeedsReview {
		for _, ref := range pe.Result.Refusals {
			if ref.Reason == model.RefusalReasonUnverified {
				refused[pe.ProductID] = true
			}
		}
	}
	assert.True(t, refused["vista-us"])
}

func TestEligibleProducts_DefaultRegion(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body evaluateResponse
	status := postJSON(t, ts, "/v1/eligible-products", `{}`, &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.RegionUS, body.Region)
}

func TestEligibleProducts_InvalidConstraints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := postJSON(t, ts, "/v1/eligible-products",
		`{"region":"US","constraints":{"terrain":"lunar"}}`, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "terrain")
}

func TestEligibleProducts_MalformedBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := postJSON(t, ts, "/v1/eligible-products", `{not json`, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCompare(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var matrix model.ComparisonMatrix
	status := postJSON(t, ts, "/v1/compare",
		`{"product_ids":["vista-us","yoyo-us"],"region":"US","fields":["stroller_weight_lb","folded_dimensions_in"]}`,
		&matrix)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, model.RegionUS, matrix.Region)
	require.Len(t, matrix.Rows, 2)
	assert.Equal(t, "vista-us", matrix.Rows[0].ProductID)
	assert.Equal(t, "yoyo-us", matrix.Rows[1].ProductID)
	require.Len(t, matrix.Rows[0].Cells, 2)
}

func TestCompare_ExcludedCellAndWarning(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var matrix model.ComparisonMatrix
	status := postJSON(t, ts, "/v1/compare",
		`{"product_ids":["vista-us","nest-us"],"region":"US","fields":["stroller_weight_lb"]}`,
		&matrix)
	require.Equal(t, http.StatusOK, status)

	var nestCell *model.Cell
	for i := range matrix.Rows {
		if matrix.Rows[i].ProductID == "nest-us" {
			nestCell = &matrix.Rows[i].Cells[0]
		}
	}
	require.NotNil(t, nestCell)
	assert.True(t, nestCell.Excluded)
	require.NotNil(t, nestCell.Disclosure)
	assert.Equal(t, model.ReasonLowConfidence, nestCell.Disclosure.Reason)
	assert.NotEmpty(t, matrix.Warnings)
}

func TestCompare_TooFewProducts(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := postJSON(t, ts, "/v1/compare",
		`{"product_ids":["vista-us"],"region":"US","fields":["stroller_weight_lb"]}`, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCompare_UnknownProduct(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body map[string]string
	status := postJSON(t, ts, "/v1/compare",
		`{"product_ids":["vista-us","ghost-product"],"region":"US","fields":["stroller_weight_lb"]}`, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "ghost-product")
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	rules := policy.DefaultRules()
	cfg := config.ServerConfig{RateLimitRPS: 1, RateLimitBurst: 1}
	ts := httptest.NewServer(New(cfg, mem, engine.New(rules), rules).Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
