package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rpps-dados/carteira/internal/domain"
)

const (
	xlsxSheetSegments  = "Segmentos"
	xlsxSheetPeriods   = "Periodos"
	xlsxSheetBreakdown = "Detalhe"

	// excelize built-in number format 4: #,##0.00
	numFmtMoney = 4
)

// WriteXLSX writes the report as a workbook with one sheet per table.
func WriteXLSX(w io.Writer, report domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheetSegments); err != nil {
		return fmt.Errorf("renaming first sheet: %w", err)
	}
	for _, name := range []string{xlsxSheetPeriods, xlsxSheetBreakdown} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("creating number style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	tables := []struct {
		sheet      string
		rows       [][]any
		moneyCols  string
		lastHeader string
	}{
		{xlsxSheetSegments, buildSegmentRows(report.Segments), "B:C", "D1"},
		{xlsxSheetPeriods, buildPeriodRows(report.Periods), "B:B", "B1"},
		{xlsxSheetBreakdown, buildBreakdownRows(report.Breakdown), "C:E", "E1"},
	}

	for _, t := range tables {
		if err := f.SetColStyle(t.sheet, t.moneyCols, money); err != nil {
			return fmt.Errorf("styling %s: %w", t.sheet, err)
		}
		if err := writeSheetRows(f, t.sheet, t.rows); err != nil {
			return err
		}
		if err := f.SetCellStyle(t.sheet, "A1", t.lastHeader, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", t.sheet, err)
		}
		if err := f.SetColWidth(t.sheet, "A", "B", 28); err != nil {
			return fmt.Errorf("sizing %s columns: %w", t.sheet, err)
		}
	}

	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
