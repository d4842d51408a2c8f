package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Common header aliases checked when the literal column names are absent.
var (
	timestampAliases = []string{"ds", "date", "datetime", "timestamp", "time", "period", "month", "day"}
	valueAliases     = []string{"y", "value", "target", "amount", "sales", "demand", "revenue", "count", "quantity", "qty", "close"}
)

// parseableThreshold is the share of rows a column must parse at for the
// majority-parseable fallback to pick it.
const parseableThreshold = 0.6

// ParseCSVOptions controls column resolution during CSV parsing
type ParseCSVOptions struct {
	TimestampColumn string // explicit ds column name; empty means auto-detect
	ValueColumn     string // explicit y column name; empty means auto-detect
}

// ParseCSV reads CSV content and returns a validated, sorted table.
// Column names are matched case-insensitively; when neither the requested
// names nor the known aliases are present, columns are picked by a
// majority-parseable heuristic.
func ParseCSV(r io.Reader, opts ParseCSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in the uploaded data")
	}

	header := rows[0]
	if len(header) > 0 {
		// Strip UTF-8 BOM from the first header cell
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	body := rows[1:]
	if len(body) == 0 {
		return nil, fmt.Errorf("no data rows found below the CSV header")
	}

	dsIdx, yIdx, err := resolveColumns(header, body, opts)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(body))
	var badTS []string
	var badY []string
	for _, row := range body {
		if dsIdx >= len(row) || yIdx >= len(row) {
			badTS = append(badTS, strings.Join(row, ","))
			continue
		}
		ts, tsErr := ParseTimestamp(row[dsIdx])
		if tsErr != nil {
			badTS = append(badTS, row[dsIdx])
			continue
		}
		y, yErr := parseValue(row[yIdx])
		if yErr != nil {
			badY = append(badY, row[yIdx])
			continue
		}
		points = append(points, Point{TS: ts, Value: y})
	}
	if len(badTS) > 0 {
		return nil, fmt.Errorf(
			"found %d rows with invalid or missing timestamps in %q (examples: %s); use ISO-8601 date or datetime strings",
			len(badTS), header[dsIdx], formatExamples(badTS))
	}
	if len(badY) > 0 {
		return nil, fmt.Errorf(
			"found %d rows with non-numeric or missing values in %q (examples: %s); targets must be numeric",
			len(badY), header[yIdx], formatExamples(badY))
	}

	return finalize(points)
}

// ParseCSVString parses CSV text
func ParseCSVString(s string, opts ParseCSVOptions) (*Table, error) {
	return ParseCSV(strings.NewReader(s), opts)
}

// resolveColumns finds the timestamp and value column indices
func resolveColumns(header []string, body [][]string, opts ParseCSVOptions) (int, int, error) {
	normalized := make(map[string]int, len(header))
	for i, col := range header {
		normalized[strings.ToLower(strings.TrimSpace(col))] = i
	}

	dsIdx := -1
	yIdx := -1

	// Explicit names first
	if opts.TimestampColumn != "" {
		idx, ok := normalized[strings.ToLower(strings.TrimSpace(opts.TimestampColumn))]
		if !ok {
			return 0, 0, fmt.Errorf("missing required column %q; found: %s",
				opts.TimestampColumn, strings.Join(header, ", "))
		}
		dsIdx = idx
	}
	if opts.ValueColumn != "" {
		idx, ok := normalized[strings.ToLower(strings.TrimSpace(opts.ValueColumn))]
		if !ok {
			return 0, 0, fmt.Errorf("missing required column %q; found: %s",
				opts.ValueColumn, strings.Join(header, ", "))
		}
		yIdx = idx
	}

	// Alias matching
	if dsIdx < 0 {
		for _, alias := range timestampAliases {
			if idx, ok := normalized[alias]; ok {
				dsIdx = idx
				break
			}
		}
	}
	if yIdx < 0 {
		for _, alias := range valueAliases {
			if idx, ok := normalized[alias]; ok && idx != dsIdx {
				yIdx = idx
				break
			}
		}
	}

	// Majority-parseable fallback
	if dsIdx < 0 {
		dsIdx = firstColumnWhere(body, len(header), -1, func(cell string) bool {
			_, err := ParseTimestamp(cell)
			return err == nil
		})
	}
	if yIdx < 0 {
		yIdx = firstColumnWhere(body, len(header), dsIdx, func(cell string) bool {
			_, err := parseValue(cell)
			return err == nil
		})
	}

	if dsIdx < 0 {
		return 0, 0, fmt.Errorf("unable to detect a timestamp column; found: %s", strings.Join(header, ", "))
	}
	if yIdx < 0 || yIdx == dsIdx {
		return 0, 0, fmt.Errorf("unable to detect a numeric value column; found: %s", strings.Join(header, ", "))
	}
	return dsIdx, yIdx, nil
}

// firstColumnWhere returns the first column index (excluding skip) where at
// least parseableThreshold of the cells satisfy the predicate.
func firstColumnWhere(body [][]string, columns, skip int, parses func(string) bool) int {
	for col := 0; col < columns; col++ {
		if col == skip {
			continue
		}
		total := 0
		ok := 0
		for _, row := range body {
			if col >= len(row) {
				continue
			}
			total++
			if parses(row[col]) {
				ok++
			}
		}
		if total > 0 && float64(ok)/float64(total) >= parseableThreshold {
			return col
		}
	}
	return -1
}

// parseValue parses a numeric cell, rejecting NaN and infinities
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
