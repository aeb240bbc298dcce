// Package export renders a risk register as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"accredis/internal/risk/models"
	dErrors "accredis/pkg/domain-errors"
)

const (
	SheetName   = "Risk Register"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Header is the first row of the register sheet.
var Header = []string{
	"Title",
	"Category",
	"Severity",
	"Likelihood",
	"Score",
	"Tier",
	"Status",
	"Mitigation Plan",
	"Description",
	"Linked Documents",
	"Created",
	"Updated",
}

var columnWidths = []float64{40, 12, 10, 12, 8, 10, 12, 50, 60, 40, 20, 20}

// tierFills colours the tier column.
var tierFills = map[models.Tier]string{
	models.TierHigh:   "#F8CBAD",
	models.TierMedium: "#FFE699",
	models.TierLow:    "#C6EFCE",
}

// WriteRegister writes risks, in the order given, as one sheet.
func WriteRegister(w io.Writer, risks []*models.Risk) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return exportErr("rename sheet", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return exportErr("create header style", err)
	}
	tierStyles := make(map[models.Tier]int, len(tierFills))
	for tier, color := range tierFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return exportErr("create tier style", err)
		}
		tierStyles[tier] = style
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return exportErr("write header", err)
	}
	last, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return exportErr("resolve header range", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", headerStyle); err != nil {
		return exportErr("style header", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return exportErr("resolve column", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return exportErr("set column width", err)
		}
	}

	for i, r := range risks {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return exportErr("resolve row", err)
		}
		row := registerRow(r)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return exportErr(fmt.Sprintf("write row %d", rowNum), err)
		}
		tierCell, err := excelize.CoordinatesToCellName(6, rowNum)
		if err != nil {
			return exportErr("resolve tier cell", err)
		}
		if err := f.SetCellStyle(SheetName, tierCell, tierCell, tierStyles[r.Tier()]); err != nil {
			return exportErr("style tier", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return exportErr("freeze header", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return exportErr("write workbook", err)
	}
	return nil
}

func registerRow(r *models.Risk) []any {
	plan := ""
	if r.MitigationPlan != nil {
		plan = *r.MitigationPlan
	}
	linked := make([]string, 0, len(r.LinkedDocs))
	for _, d := range r.LinkedDocs {
		linked = append(linked, d.String())
	}
	return []any{
		r.Title,
		string(r.Category),
		int(r.Severity),
		int(r.Likelihood),
		r.Score(),
		string(r.Tier()),
		string(r.Status),
		plan,
		r.Description,
		strings.Join(linked, ", "),
		r.CreatedAt.UTC().Format(time.DateTime),
		r.UpdatedAt.UTC().Format(time.DateTime),
	}
}

func exportErr(step string, err error) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to export risk register: "+step)
}
