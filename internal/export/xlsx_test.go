package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

func sampleMatrix() *model.ComparisonMatrix {
	lowConf := model.Disclosure{
		Field:   model.FieldWeight,
		Reason:  model.ReasonLowConfidence,
		Message: "stroller_weight_lb has low confidence",
	}
	return &model.ComparisonMatrix{
		Region: model.RegionUS,
		Fields: []string{model.FieldWeight, model.FieldFoldedDims, model.FieldTerrainTags},
		Rows: []model.MatrixRow{
			{
				ProductID: "vista-us",
				Cells: []model.Cell{
					{Field: model.FieldWeight, Value: &model.FieldValue{Value: 27.0, Confidence: model.ConfidenceHigh}},
					{Field: model.FieldFoldedDims, Value: &model.FieldValue{Value: model.Dimensions{Length: 17.3, Width: 25.7, Height: 33.3}, Confidence: model.ConfidenceHigh}},
					{Field: model.FieldTerrainTags, Value: &model.FieldValue{Value: []string{"smooth", "urban"}, Confidence: model.ConfidenceHigh}},
				},
			},
			{
				ProductID: "nest-us",
				Cells: []model.Cell{
					{Field: model.FieldWeight, Excluded: true, Disclosure: &lowConf},
					{Field: model.FieldFoldedDims},
					{Field: model.FieldTerrainTags, Value: &model.FieldValue{Value: []string{"smooth"}, Confidence: model.ConfidenceMedium}},
				},
			},
		},
		Warnings: []model.Disclosure{lowConf},
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "comparison.xlsx")
	require.NoError(t, WriteXLSX(sampleMatrix(), path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	sheet := wb.Sheets[0]
	assert.Equal(t, "Comparison", sheet.Name)

	header := sheet.Rows[0]
	assert.Equal(t, "Product", header.Cells[0].String())
	assert.Equal(t, "Stroller Weight Lb", header.Cells[1].String())
	assert.Equal(t, "Folded Dimensions In", header.Cells[2].String())

	vista := sheet.Rows[1]
	assert.Equal(t, "vista-us", vista.Cells[0].String())
	assert.Equal(t, "27", vista.Cells[1].String())
	assert.Equal(t, "17.3 x 25.7 x 33.3", vista.Cells[2].String())
	assert.Equal(t, "smooth, urban", vista.Cells[3].String())

	nest := sheet.Rows[2]
	assert.Equal(t, "nest-us", nest.Cells[0].String())
	assert.Equal(t, "— (low_confidence)", nest.Cells[1].String())
	assert.Equal(t, "", nest.Cells[2].String())
	assert.Equal(t, "smooth", nest.Cells[3].String())
}

func TestWriteXLSX_Warnings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "comparison.xlsx")
	require.NoError(t, WriteXLSX(sampleMatrix(), path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := wb.Sheets[0]

	// The warnings block sits below the table: a "Warnings" label row
	// followed by one row per warning.
	label := -1
	for i, row := range sheet.Rows {
		if len(row.Cells) > 0 && row.Cells[0].String() == "Warnings" {
			label = i
		}
	}
	require.GreaterOrEqual(t, label, 3)
	require.Greater(t, len(sheet.Rows), label+1)
	warning := sheet.Rows[label+1]
	assert.Equal(t, model.FieldWeight, warning.Cells[0].String())
	assert.Equal(t, "low_confidence", warning.Cells[1].String())
	assert.Equal(t, "stroller_weight_lb has low confidence", warning.Cells[2].String())
}

func TestWriteXLSX_NoWarnings(t *testing.T) {
	t.Parallel()

	m := sampleMatrix()
	m.Warnings = nil
	path := filepath.Join(t.TempDir(), "comparison.xlsx")
	require.NoError(t, WriteXLSX(m, path))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, wb.Sheets[0].Rows, 3)
}

func TestHeaderTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Max Child Weight Lb", headerTitle("max_child_weight_lb"))
	assert.Equal(t, "Brand", headerTitle("brand"))
}
