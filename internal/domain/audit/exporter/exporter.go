// Package exporter packages an analysis report as a spreadsheet workbook.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/service"
)

const (
	sheetTransactions = "All Transactions"
	sheetSummary      = "Summary"
	sheetAnomalies    = "Anomalies"

	maxAnomalySampleRows = 50
)

// Workbook renders the report as a three-sheet xlsx file: every cleaned
// transaction with its flags, the summary metrics, and a sample of the
// anomalous rows.
func Workbook(report *service.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeTransactions(f, report); err != nil {
		return nil, err
	}
	if err := writeSummary(f, report); err != nil {
		return nil, err
	}
	if err := writeAnomalies(f, report); err != nil {
		return nil, err
	}

	// Drop the default sheet so the report opens on the transactions.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheetTransactions)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTransactions(f *excelize.File, report *service.Report) error {
	if _, err := f.NewSheet(sheetTransactions); err != nil {
		return err
	}
	if err := writeHeader(f, sheetTransactions, report.ColumnNames()); err != nil {
		return err
	}
	for i := range report.Table.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetTransactions, cell, rowPtr(report.RowValues(i))); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, report *service.Report) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Total Entries", report.Summary.TotalEntries},
		{"Net Balance", report.Summary.NetBalance},
		{"Imbalance %", report.Summary.ImbalancePct},
		{"Anomalies Found", report.Summary.AnomaliesFound},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, rowPtr(row)); err != nil {
			return err
		}
	}
	return nil
}

func writeAnomalies(f *excelize.File, report *service.Report) error {
	if _, err := f.NewSheet(sheetAnomalies); err != nil {
		return err
	}
	if err := writeHeader(f, sheetAnomalies, report.ColumnNames()); err != nil {
		return err
	}
	for n, idx := range report.AnomalyIndexes() {
		if n >= maxAnomalySampleRows {
			break
		}
		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err := f.SetSheetRow(sheetAnomalies, cell, rowPtr(report.RowValues(idx))); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, names []string) error {
	header := make([]any, len(names))
	for i, name := range names {
		header[i] = name
	}
	return f.SetSheetRow(sheet, "A1", &header)
}

func rowPtr(values []any) *[]any {
	return &values
}
