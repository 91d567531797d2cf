package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"liftcast/domain/typicality"
)

// wideHeader is Day, Hour and the twelve bucket columns.
func wideHeader() []string {
	header := []string{"Day", "Hour"}
	for _, m := range typicality.Buckets() {
		header = append(header, fmt.Sprintf("%dmin", m))
	}
	return header
}

// WriteCSV writes rows in the historical wide format with a leading Day column.
func WriteCSV(w io.Writer, rows []DayHourRow) error {
	cw := csv.NewWriter(w)

	header := wideHeader()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range rows {
		record[0] = strconv.Itoa(row.Day)
		record[1] = strconv.Itoa(row.Hour)
		for i, f := range row.Floors {
			record[i+2] = strconv.Itoa(f)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write day %d hour %d: %w", row.Day, row.Hour, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same wide layout to the first sheet of a workbook.
func WriteXLSX(path string, rows []DayHourRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for i, h := range wideHeader() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := make([]interface{}, 0, 2+len(row.Floors))
		values = append(values, row.Day, row.Hour)
		for _, floor := range row.Floors {
			values = append(values, floor)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write day %d hour %d: %w", row.Day, row.Hour, err)
		}
	}

	return f.SaveAs(path)
}
