// Package engine implements the row cleaner, the anomaly rules, and the
// summary aggregation over a canonical journal-entry table.
package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/schema"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/table"
)

// Row is one cleaned journal entry. Amount is always present; PostingDate
// and the text fields exist only when a matching source column resolved.
type Row struct {
	Amount      float64
	PostingDate *time.Time
	Fields      map[schema.Role]string
}

// Table is the cleaned, immutable row set the anomaly rules operate on.
type Table struct {
	Rows      []Row
	TextRoles []schema.Role // resolved text roles, canonical order
	HasDate   bool
}

// Flags holds the seven per-row anomaly indicators plus their disjunction.
type Flags struct {
	RoundLargeAmount      bool
	NearZeroAmount        bool
	SuspiciousDescription bool
	WeekendEntry          bool
	DuplicateEntry        bool
	HighValueEntry        bool
	RepeatingEntry        bool
	HasAnomaly            bool
}

// Serialized flag column names, in evaluation order.
const (
	FlagRoundLargeAmount      = "Round Large Amount"
	FlagNearZeroAmount        = "Near-Zero Amount"
	FlagSuspiciousDescription = "Suspicious Description"
	FlagWeekendEntry          = "Weekend Entry"
	FlagDuplicateEntry        = "Duplicate Entry"
	FlagHighValueEntry        = "High-Value Entry"
	FlagRepeatingEntry        = "Repeating Entry"
	FlagHasAnomaly            = "Has Anomaly"
)

// FlagNames lists the seven rule columns in serialization order.
var FlagNames = []string{
	FlagRoundLargeAmount,
	FlagNearZeroAmount,
	FlagSuspiciousDescription,
	FlagWeekendEntry,
	FlagDuplicateEntry,
	FlagHighValueEntry,
	FlagRepeatingEntry,
}

// ByName returns the flag value for a serialized flag column name.
func (f Flags) ByName(name string) bool {
	switch name {
	case FlagRoundLargeAmount:
		return f.RoundLargeAmount
	case FlagNearZeroAmount:
		return f.NearZeroAmount
	case FlagSuspiciousDescription:
		return f.SuspiciousDescription
	case FlagWeekendEntry:
		return f.WeekendEntry
	case FlagDuplicateEntry:
		return f.DuplicateEntry
	case FlagHighValueEntry:
		return f.HighValueEntry
	case FlagRepeatingEntry:
		return f.RepeatingEntry
	case FlagHasAnomaly:
		return f.HasAnomaly
	}
	return false
}

// Clean assembles canonical rows and drops the unusable ones: rows with a
// nil amount and, when a date column resolved, rows with a nil date. No
// other row is ever dropped.
func Clean(raw *table.RawTable, m schema.Mapping, amounts []*float64, dates []*time.Time, hasDate bool) *Table {
	var textRoles []schema.Role
	textCells := make(map[schema.Role][]string)
	for _, role := range schema.TextRoles {
		if source, ok := m.Source(role); ok {
			textRoles = append(textRoles, role)
			textCells[role] = raw.Column(source)
		}
	}

	cleaned := &Table{TextRoles: textRoles, HasDate: hasDate}
	for i := range raw.Rows {
		if amounts[i] == nil {
			continue
		}
		if hasDate && dates[i] == nil {
			continue
		}
		row := Row{Amount: *amounts[i], Fields: make(map[schema.Role]string, len(textRoles))}
		if hasDate {
			row.PostingDate = dates[i]
		}
		for _, role := range textRoles {
			row.Fields[role] = textCells[role][i]
		}
		cleaned.Rows = append(cleaned.Rows, row)
	}
	return cleaned
}

// suspiciousKeywords are descriptions that commonly accompany manual or
// corrective entries.
var suspiciousKeywords = map[string]struct{}{
	"adjust": {}, "misc": {}, "manual": {}, "override": {}, "error": {},
	"temp": {}, "reversal": {}, "correction": {}, "clearing": {},
	"suspense": {}, "miscellaneous": {},
}

const (
	roundAmountFloor   = 1000.0
	nearZeroCeiling    = 1.0
	highValueQuantile  = 0.99
	highValueMinSample = 10
)

// Evaluate computes the seven anomaly rules for every row of the cleaned
// set. Each rule is independent; Has Anomaly is their disjunction.
func Evaluate(t *Table) []Flags {
	dupCounts := countOccurrences(t, duplicateKey, t.nonAmountColumns() > 0)
	repCounts := countOccurrences(t, repeatingKey, t.hasRole(schema.RoleAccount) && t.hasRole(schema.RoleDescription))
	threshold, hasThreshold := highValueThreshold(t)

	flags := make([]Flags, len(t.Rows))
	for i, row := range t.Rows {
		abs := math.Abs(row.Amount)

		f := Flags{
			RoundLargeAmount: math.Mod(abs, 1) == 0 && abs > roundAmountFloor,
			NearZeroAmount:   abs < nearZeroCeiling,
		}

		if desc, ok := row.Fields[schema.RoleDescription]; ok {
			_, f.SuspiciousDescription = suspiciousKeywords[strings.ToLower(desc)]
		}

		if row.PostingDate != nil {
			wd := row.PostingDate.Weekday()
			f.WeekendEntry = wd == time.Saturday || wd == time.Sunday
		}

		if dupCounts != nil {
			f.DuplicateEntry = dupCounts[duplicateKey(t, row)] > 1
		}
		if repCounts != nil {
			f.RepeatingEntry = repCounts[repeatingKey(t, row)] > 1
		}
		if hasThreshold {
			f.HighValueEntry = abs >= threshold
		}

		f.HasAnomaly = f.RoundLargeAmount || f.NearZeroAmount || f.SuspiciousDescription ||
			f.WeekendEntry || f.DuplicateEntry || f.HighValueEntry || f.RepeatingEntry
		flags[i] = f
	}
	return flags
}

func (t *Table) hasRole(role schema.Role) bool {
	for _, r := range t.TextRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (t *Table) nonAmountColumns() int {
	n := len(t.TextRoles)
	if t.HasDate {
		n++
	}
	return n
}

// countOccurrences tallies key frequencies over the cleaned set, or returns
// nil when the rule's prerequisite columns are absent.
func countOccurrences(t *Table, key func(*Table, Row) string, enabled bool) map[string]int {
	if !enabled {
		return nil
	}
	counts := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		counts[key(t, row)]++
	}
	return counts
}

// duplicateKey joins every non-amount canonical column of the row.
func duplicateKey(t *Table, row Row) string {
	var sb strings.Builder
	if t.HasDate {
		sb.WriteString(row.PostingDate.Format(time.RFC3339))
	}
	for _, role := range t.TextRoles {
		sb.WriteByte(0x1f)
		sb.WriteString(row.Fields[role])
	}
	return sb.String()
}

// repeatingKey joins the (account, amount, description) tuple. The amount is
// rendered with the shortest exact float representation so distinct values
// never collide.
func repeatingKey(t *Table, row Row) string {
	return row.Fields[schema.RoleAccount] + "\x1f" +
		strconv.FormatFloat(row.Amount, 'g', -1, 64) + "\x1f" +
		row.Fields[schema.RoleDescription]
}

// highValueThreshold computes the 99th percentile of absolute amounts over
// the whole cleaned set. Sets of ten or fewer rows are too small for a
// meaningful quantile, so the rule stays off.
func highValueThreshold(t *Table) (float64, bool) {
	if len(t.Rows) <= highValueMinSample {
		return 0, false
	}
	return quantileNearest(absAmounts(t.Rows), highValueQuantile), true
}

func absAmounts(rows []Row) []float64 {
	vs := make([]float64, len(rows))
	for i, row := range rows {
		vs[i] = math.Abs(row.Amount)
	}
	return vs
}

// quantileNearest returns the q-quantile using nearest interpolation: the
// value at index round(q*(n-1)) of the ascending-sorted sample. The method
// is pinned so identical inputs always reproduce identical flags.
func quantileNearest(vs []float64, q float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	idx := int(math.Round(q * float64(len(sorted)-1)))
	return sorted[idx]
}
