package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// imbalanceEpsilon keeps the imbalance ratio defined when the cleaned set is
// empty or nets out to all zeros.
const imbalanceEpsilon = 1e-6

// Summary carries the headline metrics over the cleaned, flagged set.
// The JSON field names match the report column labels.
type Summary struct {
	TotalEntries   int     `json:"Total Entries"`
	NetBalance     float64 `json:"Net Balance"`
	ImbalancePct   float64 `json:"Imbalance %"`
	AnomaliesFound int     `json:"Anomalies Found"`
}

// Summarize computes the summary metrics and the per-flag counts. Counts are
// taken over the anomalous subset; a true flag implies Has Anomaly, so they
// equal whole-set counts.
func Summarize(t *Table, flags []Flags) (Summary, map[string]int) {
	var net, absTotal float64
	for _, row := range t.Rows {
		net += row.Amount
		absTotal += math.Abs(row.Amount)
	}

	counts := make(map[string]int, len(FlagNames))
	for _, name := range FlagNames {
		counts[name] = 0
	}
	anomalies := 0
	for _, f := range flags {
		if !f.HasAnomaly {
			continue
		}
		anomalies++
		for _, name := range FlagNames {
			if f.ByName(name) {
				counts[name]++
			}
		}
	}

	imbalance := math.Abs(net) / (absTotal + imbalanceEpsilon) * 100

	return Summary{
		TotalEntries:   len(t.Rows),
		NetBalance:     round2(net),
		ImbalancePct:   round2(imbalance),
		AnomaliesFound: anomalies,
	}, counts
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
