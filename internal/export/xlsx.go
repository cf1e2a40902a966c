// Package export renders comparison matrices to XLSX workbooks for offline
// review. Excluded cells stay visibly excluded; nothing is aggregated.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

const excludedMarker = "—"

var titler = cases.Title(language.English)

// WriteXLSX writes the matrix to path: one sheet, products as rows, fields
// as columns, warnings listed below the table.
func WriteXLSX(matrix *model.ComparisonMatrix, path string) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Comparison")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Product")
	for _, field := range matrix.Fields {
		header.AddCell().SetString(headerTitle(field))
	}

	for _, row := range matrix.Rows {
		r := sheet.AddRow()
		r.AddCell().SetString(row.ProductID)
		for _, cell := range row.Cells {
			c := r.AddCell()
			if cell.Excluded {
				c.SetString(fmt.Sprintf("%s (%s)", excludedMarker, cell.Disclosure.Reason))
				continue
			}
			c.SetString(cellText(cell.Value))
		}
	}

	if len(matrix.Warnings) > 0 {
		sheet.AddRow()
		wh := sheet.AddRow()
		wh.AddCell().SetString("Warnings")
		for _, wn := range matrix.Warnings {
			r := sheet.AddRow()
			r.AddCell().SetString(wn.Field)
			r.AddCell().SetString(string(wn.Reason))
			r.AddCell().SetString(wn.Message)
		}
	}

	return eris.Wrapf(wb.Save(path), "export: save %s", path)
}

// headerTitle turns a snake_case field name into a display title.
func headerTitle(field string) string {
	return titler.String(strings.ReplaceAll(field, "_", " "))
}

func cellText(fv *model.FieldValue) string {
	if fv == nil || fv.Value == nil {
		return ""
	}
	if d, ok := fv.Dims(); ok {
		return d.String()
	}
	if list := fv.StringList(); list != nil {
		return strings.Join(list, ", ")
	}
	return fmt.Sprintf("%v", fv.Value)
}
