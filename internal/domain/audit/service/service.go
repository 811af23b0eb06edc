// Package service provides the journal-entry audit orchestration logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/decoder"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/engine"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/normalizer"
	"github.com/FACorreiaa/je-audit/internal/domain/audit/schema"
)

// AuditService runs the normalization + anomaly-detection pipeline over one
// uploaded file. It holds no per-request state; concurrent requests are
// independent.
type AuditService struct {
	logger *slog.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(logger *slog.Logger) *AuditService {
	return &AuditService{logger: logger}
}

// Report is the flagged result set of one analysis.
type Report struct {
	Table      *engine.Table
	Flags      []engine.Flags
	Summary    engine.Summary
	FlagCounts map[string]int
}

// Analyze decodes the upload, infers the schema, reconciles amounts, parses
// dates, cleans the row set, evaluates the anomaly rules, and aggregates the
// summary. Each stage is a pure function of the previous stage's output.
func (s *AuditService) Analyze(ctx context.Context, filename string, data []byte) (*Report, error) {
	start := time.Now()

	raw, err := decoder.Decode(filename, data)
	if err != nil {
		return nil, err
	}

	mapping, err := schema.Resolve(raw)
	if err != nil {
		return nil, err
	}

	amounts := normalizer.ReconcileAmounts(raw, mapping)

	var dates []*time.Time
	hasDate := false
	if source, ok := mapping.Source(schema.RoleDate); ok {
		dates, hasDate = normalizer.NormalizeDates(raw.Column(source))
	}

	cleaned := engine.Clean(raw, mapping, amounts, dates, hasDate)
	flags := engine.Evaluate(cleaned)
	summary, counts := engine.Summarize(cleaned, flags)

	s.logger.InfoContext(ctx, "analysis completed",
		"file", filename,
		"raw_rows", len(raw.Rows),
		"cleaned_rows", summary.TotalEntries,
		"anomalies", summary.AnomaliesFound,
		"duration", time.Since(start),
	)

	return &Report{
		Table:      cleaned,
		Flags:      flags,
		Summary:    summary,
		FlagCounts: counts,
	}, nil
}

// ColumnNames lists the serialized columns of the flagged result set: the
// canonical fields present in this report followed by the flag columns.
func (r *Report) ColumnNames() []string {
	names := []string{string(schema.RoleAmount)}
	if r.Table.HasDate {
		names = append(names, string(schema.RoleDate))
	}
	for _, role := range r.Table.TextRoles {
		names = append(names, string(role))
	}
	names = append(names, engine.FlagNames...)
	return append(names, engine.FlagHasAnomaly)
}

// RowValues renders row i in ColumnNames order, typed for serialization.
func (r *Report) RowValues(i int) []any {
	row := r.Table.Rows[i]
	flags := r.Flags[i]

	values := []any{row.Amount}
	if r.Table.HasDate {
		values = append(values, *row.PostingDate)
	}
	for _, role := range r.Table.TextRoles {
		values = append(values, row.Fields[role])
	}
	for _, name := range engine.FlagNames {
		values = append(values, flags.ByName(name))
	}
	return append(values, flags.HasAnomaly)
}

// RowMap renders row i as a flat column-name-to-value mapping.
func (r *Report) RowMap(i int) map[string]any {
	names := r.ColumnNames()
	values := r.RowValues(i)
	m := make(map[string]any, len(names))
	for j, name := range names {
		m[name] = values[j]
	}
	return m
}

// AnomalyIndexes returns the indexes of rows where Has Anomaly is true.
func (r *Report) AnomalyIndexes() []int {
	var idxs []int
	for i, f := range r.Flags {
		if f.HasAnomaly {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
