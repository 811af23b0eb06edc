// Package sniffer provides automatic detection of delimited journal-entry
// export formats. It identifies the delimiter and the header row, skipping
// any metadata lines some GL systems prepend to the export.
package sniffer

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/FACorreiaa/je-audit/internal/domain/common"
)

// Common journal-entry export header keywords
var headerKeywords = []string{
	"date", "debit", "credit", "amount", "amt", "account", "description",
	"posted", "effective", "je_id", "journal", "entry",
	"created_by", "posted_by", "cost_center", "project",
}

// FileConfig holds the detected configuration for a delimited file
type FileConfig struct {
	Delimiter rune     // The field delimiter (',', ';', '\t', '|')
	SkipLines int      // Number of metadata lines before headers
	Headers   []string // Detected header names
}

// DetectConfig analyzes a delimited file and returns its configuration.
// If no line looks like a header row, the first non-empty line is assumed
// to be one, matching how generic CSV readers treat exports.
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, common.ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")
	delimiter, skipLines := findHeaderRow(lines)

	headerLine := strings.TrimRight(lines[skipLines], "\r")
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter: delimiter,
		SkipLines: skipLines,
		Headers:   headers,
	}, nil
}

// ReadRows parses the data rows following the detected header row.
func ReadRows(data []byte, config *FileConfig) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = config.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	for i := 0; i <= config.SkipLines; i++ {
		if _, err := reader.Read(); err == io.EOF {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed line; skip it rather than failing the whole file.
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// findHeaderRow locates the header row and its delimiter. A single-column
// export has no delimiter occurrences at all, so zero counts are legal and
// comma is used as the fallback.
func findHeaderRow(lines []string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}

	firstNonEmpty := 0
	seenNonEmpty := false
	for i, line := range lines {
		if i > 20 {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !seenNonEmpty {
			firstNonEmpty = i
			seenNonEmpty = true
		}

		lineLower := strings.ToLower(line)
		hasKeyword := false
		for _, kw := range headerKeywords {
			if strings.Contains(lineLower, kw) {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			continue
		}

		return bestDelimiter(line, delimiters), i
	}

	// No keyword line found; assume the first non-empty line is the header.
	return bestDelimiter(lines[firstNonEmpty], delimiters), firstNonEmpty
}

func bestDelimiter(line string, delimiters []rune) rune {
	best := ','
	bestCount := 0
	for _, d := range delimiters {
		if count := strings.Count(line, string(d)); count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best
}
