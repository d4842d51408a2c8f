// Package timeseries validates raw tabular input and turns it into a clean,
// sorted (timestamp, value) table for the forecasting engine.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Point is a single time-series observation
type Point struct {
	TS    time.Time
	Value float64
}

// Record is the wire form of a single observation
type Record struct {
	DS string  `json:"ds"`
	Y  float64 `json:"y"`
}

// Table is an ordered sequence of observations with strictly increasing,
// deduplicated timestamps. Construct through ParseCSV or FromRecords; both
// enforce the invariants.
type Table struct {
	Points []Point
}

// Len returns the number of observations
func (t *Table) Len() int {
	return len(t.Points)
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	points := make([]Point, len(t.Points))
	copy(points, t.Points)
	return &Table{Points: points}
}

// Slice returns a copy of rows [i, j)
func (t *Table) Slice(i, j int) *Table {
	points := make([]Point, j-i)
	copy(points, t.Points[i:j])
	return &Table{Points: points}
}

// Append adds an observation to the end of the table
func (t *Table) Append(ts time.Time, value float64) {
	t.Points = append(t.Points, Point{TS: ts, Value: value})
}

// Timestamps returns the timestamp column
func (t *Table) Timestamps() []time.Time {
	out := make([]time.Time, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.TS
	}
	return out
}

// Values returns the value column
func (t *Table) Values() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Value
	}
	return out
}

// Records converts the table back to wire records with ISO-8601 timestamps
func (t *Table) Records() []Record {
	out := make([]Record, len(t.Points))
	for i, p := range t.Points {
		out[i] = Record{DS: p.TS.Format(time.RFC3339), Y: p.Value}
	}
	return out
}

// FromRecords validates inline records and builds a sorted table
func FromRecords(records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no rows found in the provided data")
	}

	points := make([]Point, 0, len(records))
	var badTS []string
	var badY []string
	for _, r := range records {
		ts, err := ParseTimestamp(r.DS)
		if err != nil {
			badTS = append(badTS, r.DS)
			continue
		}
		if math.IsNaN(r.Y) || math.IsInf(r.Y, 0) {
			badY = append(badY, fmt.Sprintf("%v", r.Y))
			continue
		}
		points = append(points, Point{TS: ts, Value: r.Y})
	}
	if len(badTS) > 0 {
		return nil, fmt.Errorf(
			"found %d rows with invalid or missing timestamps in 'ds' (examples: %s); use ISO-8601 date or datetime strings",
			len(badTS), formatExamples(badTS))
	}
	if len(badY) > 0 {
		return nil, fmt.Errorf(
			"found %d rows with non-numeric or missing values in 'y' (examples: %s); targets must be numeric",
			len(badY), formatExamples(badY))
	}

	return finalize(points)
}

// finalize sorts, checks duplicates, and enforces the minimum row count
func finalize(points []Point) (*Table, error) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].TS.Before(points[j].TS)
	})

	var dups []string
	for i := 1; i < len(points); i++ {
		if points[i].TS.Equal(points[i-1].TS) {
			dups = append(dups, points[i].TS.Format("2006-01-02 15:04:05"))
		}
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf(
			"duplicate timestamps detected in 'ds' (examples: %s); ensure each timestamp is unique",
			formatExamples(dups))
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("at least two observations are required for forecasting")
	}

	return &Table{Points: points}, nil
}

// timestampLayouts are tried in order when parsing the ds column
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006-01",
}

// ParseTimestamp parses a timestamp string using the supported layouts
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// formatExamples renders a short preview of invalid values for error messages
func formatExamples(values []string) string {
	limit := 3
	if len(values) < limit {
		limit = len(values)
	}
	quoted := make([]string, limit)
	for i := 0; i < limit; i++ {
		quoted[i] = fmt.Sprintf("%q", values[i])
	}
	return strings.Join(quoted, ", ")
}
