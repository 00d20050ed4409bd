// Package export builds spreadsheet downloads for the admin console.
package export

import (
	"bytes"
	"fmt"
	"strconv"

	"brgygo/pkg/types"

	"github.com/xuri/excelize/v2"
)

const (
	residentsSheet = "Residents"
	timeLayout     = "2006-01-02 15:04"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ResidentsHeader = []string{
	"Full Name",
	"Email",
	"Role",
	"Address",
	"Purok",
	"Household Size",
	"Emergency Contact",
	"Emergency Number",
	"Registered",
}

var residentsColumnWidths = []float64{28, 32, 10, 40, 12, 16, 28, 18, 18}

// Residents renders the resident directory as an xlsx workbook.
func Residents(profiles []*types.Profile) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(residentsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range ResidentsHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(residentsSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(residentsSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(residentsSheet, col, col, residentsColumnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, p := range profiles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(residentsSheet, cell, residentRow(p)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(residentsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func residentRow(p *types.Profile) *[]any {
	household := ""
	if p.HouseholdSize != nil {
		household = strconv.Itoa(*p.HouseholdSize)
	}

	row := []any{
		p.DisplayName(),
		str(p.Email),
		string(p.Role),
		str(p.Address),
		str(p.Purok),
		household,
		str(p.EmergencyContactName),
		str(p.EmergencyContactNumber),
		p.CreatedAt.Format(timeLayout),
	}
	return &row
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
