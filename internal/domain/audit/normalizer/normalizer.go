// Package normalizer derives typed canonical values from inferred raw
// columns: a signed net amount per row and, when a date column resolved,
// a posting date parsed with a single column-wide format.
package normalizer

import (
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/schema"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/table"
)

// ReconcileAmounts produces one signed amount per row. With a resolved
// debit/credit pair the amount is debit minus credit (positive = net debit)
// and unparseable cells count as zero. With only a single amount column,
// unparseable cells become nil and are dropped by the row cleaner.
func ReconcileAmounts(t *table.RawTable, m schema.Mapping) []*float64 {
	amounts := make([]*float64, len(t.Rows))

	if m.DoubleEntry() {
		debitCol, _ := m.Source(schema.RoleDebit)
		creditCol, _ := m.Source(schema.RoleCredit)
		debits := t.Column(debitCol)
		credits := t.Column(creditCol)
		for i := range t.Rows {
			v := parseLenient(debits[i]) - parseLenient(credits[i])
			amounts[i] = &v
		}
		return amounts
	}

	amountCol, _ := m.Source(schema.RoleAmount)
	for i, cell := range t.Column(amountCol) {
		amounts[i] = parseStrict(cell)
	}
	return amounts
}

// parseLenient strips thousands separators and falls back to zero for
// anything that still does not parse as a number.
func parseLenient(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseStrict returns nil for cells that do not parse as a number.
func parseStrict(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// dateLayouts is the fixed, ordered list of formats tried against a date
// column. The first layout that parses at least one cell is adopted for the
// entire column; there is no per-row format mixing.
var dateLayouts = []string{
	"2006-01-02",
	"2-Jan-2006",
	"2-Jan-06",
	"1/2/2006",
	"2/1/2006",
	"20060102",
	"January 2, 2006",
	"Jan 2, 2006",
	"2-1-2006",
	"1-2-2006",
}

// NormalizeDates picks one layout for the whole column and applies it per
// cell. Cells that fail under the adopted layout become nil and their rows
// are later dropped. When no layout parses any cell the second return value
// is false and the date role is dropped for the request.
func NormalizeDates(cells []string) ([]*time.Time, bool) {
	for _, layout := range dateLayouts {
		parsed := make([]*time.Time, len(cells))
		hits := 0
		for i, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if t, err := time.ParseInLocation(layout, cell, time.UTC); err == nil {
				parsed[i] = &t
				hits++
			}
		}
		if hits > 0 {
			return parsed, true
		}
	}
	return nil, false
}
