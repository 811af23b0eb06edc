package engine

import (
	"testing"
	"time"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/schema"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/table"
)

func ptr(v float64) *float64 { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func textRow(amount float64, d *time.Time, account, description string) Row {
	return Row{
		Amount:      amount,
		PostingDate: d,
		Fields: map[schema.Role]string{
			schema.RoleAccount:     account,
			schema.RoleDescription: description,
		},
	}
}

func fullTable(rows ...Row) *Table {
	return &Table{
		Rows:      rows,
		TextRoles: []schema.Role{schema.RoleAccount, schema.RoleDescription},
		HasDate:   true,
	}
}

func TestClean_DropsNullAmountAndNullDate(t *testing.T) {
	raw := table.New(
		[]string{"Amount", "Date"},
		[][]string{{"10", "2024-01-01"}, {"bad", "2024-01-02"}, {"30", "bad"}, {"40", "2024-01-04"}},
	)
	m, err := schema.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	amounts := []*float64{ptr(10), nil, ptr(30), ptr(40)}
	dates := []*time.Time{date(2024, 1, 1), date(2024, 1, 2), nil, date(2024, 1, 4)}

	cleaned := Clean(raw, m, amounts, dates, true)
	if len(cleaned.Rows) != 2 {
		t.Fatalf("cleaned rows = %d, want 2", len(cleaned.Rows))
	}
	if cleaned.Rows[0].Amount != 10 || cleaned.Rows[1].Amount != 40 {
		t.Errorf("wrong rows survived: %+v", cleaned.Rows)
	}
	if len(cleaned.Rows) > len(raw.Rows) {
		t.Error("cleaning must never grow the row set")
	}
}

func TestClean_NoDateColumnKeepsAllParsedAmounts(t *testing.T) {
	raw := table.New([]string{"Amount"}, [][]string{{"1"}, {"2"}})
	m, err := schema.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	cleaned := Clean(raw, m, []*float64{ptr(1), ptr(2)}, nil, false)
	if len(cleaned.Rows) != 2 {
		t.Fatalf("cleaned rows = %d, want 2", len(cleaned.Rows))
	}
	if cleaned.HasDate {
		t.Error("HasDate should be false")
	}
}

func TestEvaluate_RoundLargeAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   bool
	}{
		{1500, true},
		{-2000, true},
		{1000, false},  // not strictly above the floor
		{1500.5, false},
		{999, false},
		{0.25, false},
	}
	for _, tc := range tests {
		tbl := &Table{Rows: []Row{{Amount: tc.amount}}}
		flags := Evaluate(tbl)
		if flags[0].RoundLargeAmount != tc.want {
			t.Errorf("RoundLargeAmount(%v) = %v, want %v", tc.amount, flags[0].RoundLargeAmount, tc.want)
		}
	}
}

func TestEvaluate_NearZeroAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   bool
	}{
		{0, true},
		{0.99, true},
		{-0.5, true},
		{1, false},
		{-1, false},
	}
	for _, tc := range tests {
		tbl := &Table{Rows: []Row{{Amount: tc.amount}}}
		flags := Evaluate(tbl)
		if flags[0].NearZeroAmount != tc.want {
			t.Errorf("NearZeroAmount(%v) = %v, want %v", tc.amount, flags[0].NearZeroAmount, tc.want)
		}
	}
}

func TestEvaluate_SuspiciousDescription(t *testing.T) {
	tbl := fullTable(
		textRow(5, date(2024, 1, 2), "1000", "misc"),
		textRow(6, date(2024, 1, 2), "1000", "MISC"),
		textRow(7, date(2024, 1, 2), "1000", "rent"),
		textRow(8, date(2024, 1, 2), "1000", "suspense"),
	)
	flags := Evaluate(tbl)
	want := []bool{true, true, false, true}
	for i, w := range want {
		if flags[i].SuspiciousDescription != w {
			t.Errorf("row %d SuspiciousDescription = %v, want %v", i, flags[i].SuspiciousDescription, w)
		}
	}
}

func TestEvaluate_SuspiciousFalseWithoutDescriptionColumn(t *testing.T) {
	tbl := &Table{Rows: []Row{{Amount: 5, Fields: map[schema.Role]string{}}}}
	flags := Evaluate(tbl)
	if flags[0].SuspiciousDescription {
		t.Error("SuspiciousDescription must be false with no description column")
	}
}

func TestEvaluate_WeekendEntry(t *testing.T) {
	tbl := fullTable(
		textRow(1.5, date(2024, 1, 6), "a", "x"), // Saturday
		textRow(2.5, date(2024, 1, 7), "b", "y"), // Sunday
		textRow(3.5, date(2024, 1, 8), "c", "z"), // Monday
	)
	flags := Evaluate(tbl)
	want := []bool{true, true, false}
	for i, w := range want {
		if flags[i].WeekendEntry != w {
			t.Errorf("row %d WeekendEntry = %v, want %v", i, flags[i].WeekendEntry, w)
		}
	}
}

func TestEvaluate_DuplicateAndRepeating(t *testing.T) {
	// Two fully identical rows, plus one differing only in posting date.
	tbl := fullTable(
		textRow(100, date(2024, 1, 2), "4000", "supplies"),
		textRow(100, date(2024, 1, 2), "4000", "supplies"),
		textRow(100, date(2024, 1, 3), "4000", "supplies"),
		textRow(100, date(2024, 1, 2), "4000", "rent"),
	)
	flags := Evaluate(tbl)

	// Repeating keys on (account, amount, description): first three match.
	wantRepeating := []bool{true, true, true, false}
	for i, w := range wantRepeating {
		if flags[i].RepeatingEntry != w {
			t.Errorf("row %d RepeatingEntry = %v, want %v", i, flags[i].RepeatingEntry, w)
		}
	}

	// Duplicate keys include the date, so only the identical pair matches.
	wantDuplicate := []bool{true, true, false, false}
	for i, w := range wantDuplicate {
		if flags[i].DuplicateEntry != w {
			t.Errorf("row %d DuplicateEntry = %v, want %v", i, flags[i].DuplicateEntry, w)
		}
	}
}

func TestEvaluate_DuplicateFalseWithoutNonAmountColumns(t *testing.T) {
	tbl := &Table{Rows: []Row{{Amount: 1}, {Amount: 1}}}
	flags := Evaluate(tbl)
	if flags[0].DuplicateEntry || flags[1].DuplicateEntry {
		t.Error("DuplicateEntry must be false with zero non-amount columns")
	}
}

func TestEvaluate_RepeatingFalseWithoutAccountColumn(t *testing.T) {
	tbl := &Table{
		Rows: []Row{
			{Amount: 1, Fields: map[schema.Role]string{schema.RoleDescription: "misc"}},
			{Amount: 1, Fields: map[schema.Role]string{schema.RoleDescription: "misc"}},
		},
		TextRoles: []schema.Role{schema.RoleDescription},
	}
	flags := Evaluate(tbl)
	if flags[0].RepeatingEntry {
		t.Error("RepeatingEntry must be false without an account column")
	}
}

func TestEvaluate_HighValueEntry(t *testing.T) {
	rows := make([]Row, 0, 11)
	for i := 0; i < 10; i++ {
		rows = append(rows, Row{Amount: 10.5})
	}
	rows = append(rows, Row{Amount: -9999.5})

	tbl := &Table{Rows: rows}
	flags := Evaluate(tbl)
	for i := 0; i < 10; i++ {
		if flags[i].HighValueEntry {
			t.Errorf("row %d flagged high-value, want only the outlier", i)
		}
	}
	if !flags[10].HighValueEntry {
		t.Error("outlier not flagged high-value")
	}
}

func TestEvaluate_HighValueNeedsMoreThanTenRows(t *testing.T) {
	rows := make([]Row, 0, 10)
	for i := 0; i < 9; i++ {
		rows = append(rows, Row{Amount: 10.5})
	}
	rows = append(rows, Row{Amount: 1e9})

	flags := Evaluate(&Table{Rows: rows})
	for i, f := range flags {
		if f.HighValueEntry {
			t.Errorf("row %d flagged high-value in a 10-row set", i)
		}
	}
}

func TestEvaluate_HasAnomalyIsDisjunction(t *testing.T) {
	tbl := fullTable(
		textRow(50.5, date(2024, 1, 3), "a", "rent"),    // Wednesday, nothing suspicious
		textRow(50.5, date(2024, 1, 6), "b", "rent"),    // Saturday
		textRow(1500, date(2024, 1, 3), "c", "payroll"), // round large
	)
	flags := Evaluate(tbl)

	if flags[0].HasAnomaly {
		t.Error("row 0: all seven flags false, HasAnomaly must be false")
	}
	for i := 1; i < 3; i++ {
		if !flags[i].HasAnomaly {
			t.Errorf("row %d: a flag is set, HasAnomaly must be true", i)
		}
	}
	for i, f := range flags {
		or := f.RoundLargeAmount || f.NearZeroAmount || f.SuspiciousDescription ||
			f.WeekendEntry || f.DuplicateEntry || f.HighValueEntry || f.RepeatingEntry
		if f.HasAnomaly != or {
			t.Errorf("row %d: HasAnomaly = %v, OR of flags = %v", i, f.HasAnomaly, or)
		}
	}
}

func TestQuantileNearest_Deterministic(t *testing.T) {
	vs := []float64{5, 1, 4, 2, 3}
	if got := quantileNearest(vs, 0.99); got != 5 {
		t.Errorf("q99 = %v, want 5", got)
	}
	if got := quantileNearest(vs, 0.5); got != 3 {
		t.Errorf("q50 = %v, want 3", got)
	}
	// Input must not be mutated.
	if vs[0] != 5 {
		t.Error("quantileNearest mutated its input")
	}
}
