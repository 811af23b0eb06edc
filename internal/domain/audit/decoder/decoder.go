// Package decoder turns uploaded file bytes into a RawTable. It routes on
// the file extension: xlsx via excelize, legacy xls via xlsReader, and
// everything else as delimited UTF-8 text (with a Windows-1252 fallback for
// exports from older GL systems).
package decoder

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/sniffer"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/table"
	"github.com/FACorreiaa/je-audit/internal/domain/common"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode produces a RawTable from uploaded bytes. The returned table always
// has at least one data row; an upload without any is the fatal input error
// common.ErrEmptyFile.
func Decode(filename string, data []byte) (*table.RawTable, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return decodeWorkbook(data)
	case ".xls":
		return decodeLegacyWorkbook(data)
	default:
		return decodeDelimited(data)
	}
}

func decodeDelimited(data []byte) (*table.RawTable, error) {
	data = normalizeEncoding(data)

	config, err := sniffer.DetectConfig(data)
	if err != nil {
		return nil, err
	}

	rows, err := sniffer.ReadRows(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrEmptyFile
	}
	return table.New(config.Headers, rows), nil
}

func decodeWorkbook(data []byte) (*table.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	// First sheet only.
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return tableFromGrid(rows)
}

func decodeLegacyWorkbook(data []byte) (*table.RawTable, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("xls workbook has no sheets")
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return tableFromGrid(rows)
}

func tableFromGrid(rows [][]string) (*table.RawTable, error) {
	if len(rows) < 2 {
		return nil, common.ErrEmptyFile
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return table.New(headers, rows[1:]), nil
}

// normalizeEncoding strips a UTF-8 BOM and re-decodes Windows-1252 bytes, so
// accented header names from legacy exports survive the keyword scan.
func normalizeEncoding(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return data
	}
	return decoded
}
