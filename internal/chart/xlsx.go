package chart

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"resalelens/server/internal/models"
)

const sheetName = "시세"

// Workbook exports the series as an XLSX file with a native line chart
func Workbook(series models.TrendSeries) (*bytes.Buffer, error) {
	if len(series.Points) == 0 {
		return nil, ErrEmptySeries
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"월", "예상 시세", "하한", "상한"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range series.Points {
		row := []any{p.Label, p.Price, p.Low, p.High}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write month %d: %w", p.Month, err)
		}
	}

	last := len(series.Points) + 1
	numFmt := "#,##0"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "B2", fmt.Sprintf("D%d", last), style); err != nil {
		return nil, fmt.Errorf("failed to apply number style: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "D", 14); err != nil {
		return nil, err
	}

	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheetName, last)
	if err := f.AddChart(sheetName, "F2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", sheetName),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheetName, last),
				Line:       excelize.ChartLine{Width: 2},
				Marker:     excelize.ChartMarker{Symbol: "circle", Size: 6},
			},
		},
		Title:  []excelize.RichTextRun{{Text: Title(series.Category)}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		YAxis:  excelize.ChartAxis{NumFmt: excelize.ChartNumFmt{CustomNumFmt: numFmt}},
	}); err != nil {
		return nil, fmt.Errorf("failed to add chart: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
