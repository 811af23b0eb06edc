package decoder

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/je-audit/internal/domain/common"
)

func TestDecode_CSV(t *testing.T) {
	data := []byte("Date,Debit,Credit\n2024-01-02,100,\n2024-01-03,,50\n")
	tbl, err := Decode("journal.csv", data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tbl.Headers) != 3 || len(tbl.Rows) != 2 {
		t.Fatalf("table shape = %dx%d, want 3x2", len(tbl.Headers), len(tbl.Rows))
	}
	if got := tbl.Column("Debit"); got[0] != "100" || got[1] != "" {
		t.Errorf("Debit column = %v", got)
	}
}

func TestDecode_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Amount\n10\n")...)
	tbl, err := Decode("journal.csv", data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tbl.Headers[0] != "Amount" {
		t.Errorf("header = %q, BOM not stripped", tbl.Headers[0])
	}
}

func TestDecode_CSVWindows1252Fallback(t *testing.T) {
	// "Débito" in Windows-1252: é is 0xE9, invalid as UTF-8.
	data := []byte("D\xe9bito,Credit\n100,50\n")
	tbl, err := Decode("journal.csv", data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tbl.Headers[0] != "Débito" {
		t.Errorf("header = %q, want re-decoded %q", tbl.Headers[0], "Débito")
	}
}

func TestDecode_RaggedRowsArePadded(t *testing.T) {
	data := []byte("Amount,Description,Account\n10,misc\n20,rent,4000,extra\n")
	tbl, err := Decode("journal.csv", data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i, row := range tbl.Rows {
		if len(row) != 3 {
			t.Errorf("row %d width = %d, want 3", i, len(row))
		}
	}
	if tbl.Rows[0][2] != "" {
		t.Errorf("short row not padded: %v", tbl.Rows[0])
	}
}

func TestDecode_Workbook(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Posting Date", "Debit", "Credit", "Description"},
		{"2024-01-06", 100, 0, "misc"},
		{"2024-01-07", 0, 50, "rent"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	tbl, err := Decode("journal.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.Headers[0] != "Posting Date" {
		t.Errorf("header = %q", tbl.Headers[0])
	}
	if got := tbl.Column("Debit"); got[0] != "100" {
		t.Errorf("Debit column = %v", got)
	}
}

func TestDecode_EmptyInputs(t *testing.T) {
	if _, err := Decode("journal.csv", nil); !errors.Is(err, common.ErrEmptyFile) {
		t.Errorf("empty csv error = %v, want ErrEmptyFile", err)
	}
	if _, err := Decode("journal.csv", []byte("Amount\n")); !errors.Is(err, common.ErrEmptyFile) {
		t.Errorf("header-only csv error = %v, want ErrEmptyFile", err)
	}

	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	if _, err := Decode("journal.xlsx", buf.Bytes()); !errors.Is(err, common.ErrEmptyFile) {
		t.Errorf("empty workbook error = %v, want ErrEmptyFile", err)
	}
}

func TestDecode_GarbageWorkbookFails(t *testing.T) {
	if _, err := Decode("journal.xlsx", []byte("not a zip archive")); err == nil {
		t.Error("expected an error for a corrupt workbook")
	}
}
